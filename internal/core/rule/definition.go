package rule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse builds a Rule from its nested definition.
//
// A definition is either one mapping (a single conjunction) or a list of mappings.
// Each mapping goes from "field" or "field.transform" to a mapping of comparator
// to literal. A list literal expands to one condition per element, all of which
// must hold.
//
//	[{"description.lower": {"contains": "market"}, "amount": {"less": 0}}]
func Parse(regs *Registries, def any) (Rule, error) {
	var items []any
	switch v := def.(type) {
	case nil:
		return Rule{}, fmt.Errorf("%w: empty definition", ErrMalformedRule)
	case []any:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		items = []any{v}
	}

	conjunctions := make([]Conjunction, 0, len(items))
	for i, item := range items {
		m, err := asMapping(item)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: conjunction %d: %v", ErrMalformedRule, i, err)
		}
		conj, err := ParseConjunction(regs, m)
		if err != nil {
			return Rule{}, fmt.Errorf("conjunction %d: %w", i, err)
		}
		conjunctions = append(conjunctions, conj)
	}
	return NewRule(conjunctions...), nil
}

// ParseConjunction builds the conditions of one mapping in sorted key order.
func ParseConjunction(regs *Registries, def map[string]any) (Conjunction, error) {
	keys := make([]string, 0, len(def))
	for k := range def {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conditions []Condition
	for _, key := range keys {
		field, transform, err := splitKey(key)
		if err != nil {
			return Conjunction{}, err
		}
		cmps, err := asMapping(def[key])
		if err != nil {
			return Conjunction{}, fmt.Errorf("%w: key %q: %v", ErrMalformedRule, key, err)
		}
		if len(cmps) == 0 {
			return Conjunction{}, fmt.Errorf("%w: key %q has no comparators", ErrMalformedRule, key)
		}

		cmpKeys := make([]string, 0, len(cmps))
		for c := range cmps {
			cmpKeys = append(cmpKeys, c)
		}
		sort.Strings(cmpKeys)

		for _, cmp := range cmpKeys {
			literals, err := literalList(cmps[cmp])
			if err != nil {
				return Conjunction{}, fmt.Errorf("%w: key %q comparator %q: %v", ErrMalformedRule, key, cmp, err)
			}
			for _, lit := range literals {
				cond, err := NewCondition(regs, field, transform, cmp, lit)
				if err != nil {
					return Conjunction{}, err
				}
				conditions = append(conditions, cond)
			}
		}
	}
	return NewConjunction(conditions...), nil
}

// ParseJSON decodes a JSON definition. Numbers keep their exact text.
func ParseJSON(regs *Registries, data []byte) (Rule, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var def any
	if err := dec.Decode(&def); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return Parse(regs, def)
}

// ParseYAML decodes a YAML definition.
func ParseYAML(regs *Registries, data []byte) (Rule, error) {
	var def any
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return Parse(regs, def)
}

// splitKey splits at the first dot: "description.lower" is field description, transform lower.
func splitKey(key string) (field, transform string, err error) {
	field, transform, found := strings.Cut(key, ".")
	if field == "" || (found && transform == "") {
		return "", "", fmt.Errorf("%w: invalid key %q", ErrMalformedRule, key)
	}
	return field, transform, nil
}

func asMapping(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			out[ks] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", v)
}

func literalList(v any) ([]any, error) {
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty literal list")
	}
	for _, item := range items {
		switch item.(type) {
		case nil, []any, map[string]any, map[any]any:
			return nil, fmt.Errorf("unsupported literal %v", item)
		}
	}
	return items, nil
}

package rule

import (
	"encoding/json"
	"sort"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Rule is a disjunction of conjunctions. A rule with no conjunctions matches nothing.
type Rule struct {
	conjunctions []Conjunction
}

func NewRule(conjunctions ...Conjunction) Rule {
	return Rule{conjunctions: append([]Conjunction(nil), conjunctions...)}
}

func (r Rule) Conjunctions() []Conjunction {
	return append([]Conjunction(nil), r.conjunctions...)
}

// Evaluate stops at the first matching conjunction.
func (r Rule) Evaluate(t *ledger.Transaction) bool {
	for _, c := range r.conjunctions {
		if c.Evaluate(t) {
			return true
		}
	}
	return false
}

// Mask evaluates the rule against every transaction without mutating any of them.
func (r Rule) Mask(txns []ledger.Transaction) []bool {
	mask := make([]bool, len(txns))
	for i := range txns {
		mask[i] = r.Evaluate(&txns[i])
	}
	return mask
}

// Definition returns the list-of-mappings form accepted by Parse.
func (r Rule) Definition() []any {
	def := make([]any, 0, len(r.conjunctions))
	for _, c := range r.conjunctions {
		def = append(def, c.Definition())
	}
	return def
}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Definition())
}

// TagRef is a tag name read through the tags field. FoldCase marks a read made
// through the lower or upper transform, which matches any tag whose name
// differs only in letter case.
type TagRef struct {
	Name     string
	FoldCase bool
}

// TagRefs lists the tag references of the rule ordered by name. Regex conditions
// and transforms other than identity, lower and upper name no tag and are skipped.
func (r Rule) TagRefs() []TagRef {
	seen := make(map[TagRef]struct{})
	for _, c := range r.conjunctions {
		for _, cond := range c.conditions {
			if cond.field != ledger.FieldTags {
				continue
			}
			switch cond.comparator {
			case CompareContains, CompareNotContains, CompareEqual:
			default:
				continue
			}
			var fold bool
			switch cond.transform {
			case TransformIdentity:
			case TransformLower, TransformUpper:
				fold = true
			default:
				continue
			}
			if name, ok := cond.literal.(string); ok && name != "" {
				seen[TagRef{Name: name, FoldCase: fold}] = struct{}{}
			}
		}
	}
	out := make([]TagRef, 0, len(seen))
	for ref := range seen {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return !out[i].FoldCase && out[j].FoldCase
	})
	return out
}

// ReferencedTags lists the tag names the rule reads, as written, in ascending order.
func (r Rule) ReferencedTags() []string {
	refs := r.TagRefs()
	out := make([]string, 0, len(refs))
	for i, ref := range refs {
		if i > 0 && refs[i-1].Name == ref.Name {
			continue
		}
		out = append(out, ref.Name)
	}
	return out
}

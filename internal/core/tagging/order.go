package tagging

import (
	"fmt"
	"sort"
	"strings"
)

// Order returns tags sorted so every tag comes after the tags it depends on.
// Among tags with no pending dependency the input order is kept.
// Dependencies on names outside the list are ignored; see resolveDependencies for matching.
func Order(tags []Tag) ([]Tag, error) {
	deps := resolveDependencies(tags)
	pending := make([]int, len(tags))
	dependents := make([][]int, len(tags))
	for i := range tags {
		pending[i] = len(deps[i])
		for _, j := range deps[i] {
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]Tag, 0, len(tags))
	done := make([]bool, len(tags))
	for len(ordered) < len(tags) {
		next := -1
		for i := range tags {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, t := range tags {
				if !done[i] {
					stuck = append(stuck, t.Name)
				}
			}
			sort.Strings(stuck)
			return nil, fmt.Errorf("%w: %s", ErrTagCycle, strings.Join(stuck, ", "))
		}
		done[next] = true
		ordered = append(ordered, tags[next])
		for _, d := range dependents[next] {
			pending[d]--
		}
	}
	return ordered, nil
}

// ValidateOrder checks that tags are already in dependency order.
func ValidateOrder(tags []Tag) error {
	for i, deps := range resolveDependencies(tags) {
		for _, j := range deps {
			if j > i {
				return fmt.Errorf("%w: %q reads %q", ErrTagOrder, tags[i].Name, tags[j].Name)
			}
		}
	}
	return nil
}

// resolveDependencies returns, per tag, the positions of the other tags its rule reads.
// Case-folded references match every tag whose lowercased name is equal.
func resolveDependencies(tags []Tag) [][]int {
	exact := make(map[string]int, len(tags))
	folded := make(map[string][]int, len(tags))
	for i, t := range tags {
		exact[t.Name] = i
		key := strings.ToLower(t.Name)
		folded[key] = append(folded[key], i)
	}

	deps := make([][]int, len(tags))
	for i, t := range tags {
		seen := map[int]bool{i: true}
		for _, ref := range t.Rule.TagRefs() {
			var hits []int
			if ref.FoldCase {
				hits = folded[strings.ToLower(ref.Name)]
			} else if j, ok := exact[ref.Name]; ok {
				hits = []int{j}
			}
			for _, j := range hits {
				if !seen[j] {
					seen[j] = true
					deps[i] = append(deps[i], j)
				}
			}
		}
	}
	return deps
}

package ledger

import (
	"sort"
	"strings"
)

// TagSet is an unordered set of tag names. The empty string is never a member.
type TagSet map[string]struct{}

// NewTagSet builds a set from names, skipping empty names and duplicates.
func NewTagSet(names ...string) TagSet {
	s := make(TagSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name. Adding an existing name is a no-op.
func (s TagSet) Add(name string) {
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Remove deletes name if present.
func (s TagSet) Remove(name string) {
	delete(s, name)
}

// Has reports whether name is a member.
func (s TagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// HasAny reports whether at least one of names is a member.
func (s TagSet) HasAny(names ...string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Len returns the number of members; a nil set has zero.
func (s TagSet) Len() int {
	return len(s)
}

// Clone returns an independent copy. Cloning nil yields an empty, non-nil set.
func (s TagSet) Clone() TagSet {
	c := make(TagSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Union adds every member of other to s.
func (s TagSet) Union(other TagSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Equal reports whether both sets hold exactly the same names.
func (s TagSet) Equal(other TagSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// String renders the set as a comma-joined sorted list.
func (s TagSet) String() string {
	return strings.Join(s.Sorted(), ",")
}

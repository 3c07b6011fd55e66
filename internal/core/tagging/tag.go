package tagging

import (
	"errors"
	"fmt"

	"github.com/spendlens/spendlens/internal/core/rule"
)

var (
	// ErrInvalidTag is returned for a tag without a name.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrTagOrder is returned when a tag is applied before a tag its rule reads.
	ErrTagOrder = errors.New("tag applied before its dependency")

	// ErrTagCycle is returned when tags depend on each other in a loop.
	ErrTagCycle = errors.New("tag dependency cycle")
)

// Tag binds a name to the rule that decides which transactions carry it.
// Identity is the name.
type Tag struct {
	Name string
	Rule rule.Rule
}

func NewTag(name string, r rule.Rule) (Tag, error) {
	if name == "" {
		return Tag{}, fmt.Errorf("%w: name is required", ErrInvalidTag)
	}
	return Tag{Name: name, Rule: r}, nil
}

// DependsOn returns the other tag names the rule reads. A tag reading itself is not a dependency.
func (t Tag) DependsOn() []string {
	refs := t.Rule.ReferencedTags()
	out := refs[:0]
	for _, name := range refs {
		if name != t.Name {
			out = append(out, name)
		}
	}
	return out
}

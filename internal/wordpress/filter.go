package wordpress

import (
	"strings"

	"github.com/pdiddy/site-import/pkg/types"
)

// PostPredicate reports whether a post should be written. Predicates must
// not have side effects.
type PostPredicate func(types.Post) bool

// Filters is a named set of predicates combined with logical AND. An empty
// set accepts every post.
type Filters map[string]PostPredicate

// SatisfiesAll reports whether every predicate accepts p.
func (f Filters) SatisfiesAll(p types.Post) bool {
	for _, pred := range f {
		if !pred(p) {
			return false
		}
	}
	return true
}

// Apply returns the posts accepted by every predicate, keeping order.
func (f Filters) Apply(posts []types.Post) []types.Post {
	out := make([]types.Post, 0, len(posts))
	for _, p := range posts {
		if f.SatisfiesAll(p) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultFilters accepts published posts of type "post".
func DefaultFilters() Filters {
	return Filters{
		"type":   TypeIs(types.PostTypePost),
		"status": StatusIs(types.PostStatusPublish),
	}
}

// TypeIs accepts posts whose type is one of postTypes.
func TypeIs(postTypes ...string) PostPredicate {
	return func(p types.Post) bool {
		for _, t := range postTypes {
			if p.Type == t {
				return true
			}
		}
		return false
	}
}

// StatusIs accepts posts whose status is one of statuses.
func StatusIs(statuses ...string) PostPredicate {
	return func(p types.Post) bool {
		for _, s := range statuses {
			if p.Status == s {
				return true
			}
		}
		return false
	}
}

// ExcludeCategory rejects posts carrying any of the given categories or
// tags, compared case-insensitively.
func ExcludeCategory(names ...string) PostPredicate {
	return func(p types.Post) bool {
		for _, n := range names {
			for _, c := range p.Categories {
				if strings.EqualFold(c, n) {
					return false
				}
			}
			for _, t := range p.Tags {
				if strings.EqualFold(t, n) {
					return false
				}
			}
		}
		return true
	}
}

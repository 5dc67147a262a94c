package linq

import (
	"github.com/roach88/idxc/internal/expr"
)

// DefaultGroupAlias is the range variable bound by GroupBy.
const DefaultGroupAlias = "group"

// Grouping is the implicit variable a query sees after GroupBy.
//
// Root is the group variable itself; Key is its "key" member, typed with the
// key selector's type so callers can reach into composite keys
// (g.Key.Get("name") renders as group.Key.Name).
type Grouping struct {
	Root    *expr.Path
	Key     *expr.Path
	KeyType string
}

// NewGrouping creates a grouping whose key has type keyType. The variable is
// named alias[0] when given, DefaultGroupAlias otherwise.
func NewGrouping(keyType string, alias ...string) Grouping {
	name := DefaultGroupAlias
	if len(alias) > 0 && alias[0] != "" {
		name = alias[0]
	}
	root := expr.NewRoot(name)
	return Grouping{
		Root:    root,
		Key:     root.GetTyped("key", keyType, ""),
		KeyType: keyType,
	}
}

// Sum aggregates selector over the group's elements. The selector gets an
// inferred lambda: g.Sum(pr.Get("count")) renders as group.Sum(pr => pr.Count).
func (g Grouping) Sum(selector expr.Node) (*expr.Operation, error) {
	fn, err := InferLambda(selector)
	if err != nil {
		return nil, err
	}
	return expr.NewOperation(expr.OpSum, g.Root, fn), nil
}

// MustSum is like Sum but panics if the selector has no single root.
// Intended for statically known selectors in tests and fixtures.
func (g Grouping) MustSum(selector expr.Node) *expr.Operation {
	op, err := g.Sum(selector)
	if err != nil {
		panic(err)
	}
	return op
}

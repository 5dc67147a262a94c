package linq

import (
	"sort"

	"github.com/roach88/idxc/internal/expr"
)

// Roots returns the sorted distinct root variable names referenced by n.
//
// The walk follows Path parent links, Operation operands and Projection
// field expressions. Lambdas, raw templates and LAMBDA/PARAMS operations are
// opaque: their parameters are bound, so they never contribute a free root.
func Roots(n expr.Node) []string {
	seen := make(map[string]struct{})
	collectRoots(n, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SingleRoot returns the only root referenced by n.
// Returns an AMBIGUOUS_ROOT error when n references zero or several roots.
func SingleRoot(n expr.Node) (string, error) {
	roots := Roots(n)
	if len(roots) != 1 {
		return "", NewAmbiguousRootError(roots)
	}
	return roots[0], nil
}

func collectRoots(n expr.Node, seen map[string]struct{}) {
	switch node := n.(type) {
	case *expr.Path:
		if node != nil {
			seen[node.Root().Name] = struct{}{}
		}
	case *expr.Operation:
		if node == nil || node.Op == expr.OpLambda || node.Op == expr.OpParams {
			return
		}
		for _, arg := range node.Args {
			collectRoots(arg, seen)
		}
	case *expr.Projection:
		if node == nil {
			return
		}
		for _, f := range node.Fields {
			collectRoots(f.Expr, seen)
		}
	case *expr.Lambda, expr.RawTemplate, expr.Constant:
		// Opaque or leaf.
	}
}

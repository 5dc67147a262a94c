package linq

import (
	"github.com/roach88/idxc/internal/expr"
)

// InferLambda wraps n in a single-parameter lambda over its only root.
//
// Raw templates pass through unchanged. Any other node must reference
// exactly one root, which becomes the lambda parameter:
//
//	company.Name.StartsWith("C")  ->  company => company.Name.StartsWith("C")
func InferLambda(n expr.Node) (expr.Node, error) {
	if raw, ok := n.(expr.RawTemplate); ok {
		return raw, nil
	}
	root, err := SingleRoot(n)
	if err != nil {
		return nil, err
	}
	return &expr.Lambda{Param: expr.NewRoot(root), Body: n}, nil
}

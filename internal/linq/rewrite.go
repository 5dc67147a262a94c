package linq

import (
	"fmt"
	"strings"

	"github.com/roach88/idxc/internal/expr"
)

// transIDPrefix names synthesized transparent identifiers: transId_1, transId_2, ...
const transIDPrefix = "transId_"

// frame records one SelectMany traversal.
type frame struct {
	TransID    string
	OuterField string
	OuterRoot  string
	InnerField string
	InnerRoot  string
}

// rewriter tracks transparent identifiers across chained SelectMany calls.
//
// After each SelectMany the outer and inner range variables are absorbed
// into fields of a fresh transparent identifier. Every later operand is
// resolved through the absorption map, so person.firstname written by the
// caller becomes transId_1.Person.Firstname.
//
// Numbering is sequential across the whole chain. A rewriter belongs to one
// IndexSource and is not safe for concurrent mutation.
type rewriter struct {
	frames []frame
	next   int

	// pinned is the variable the next SelectMany collection must be rooted
	// at: the latest transparent identifier, or "" after a caller-supplied
	// result projection.
	pinned string

	// absorbed maps an absorbed root name to the path that now reaches it.
	absorbed map[string]*expr.Path
}

func newRewriter() *rewriter {
	return &rewriter{
		next:     1,
		absorbed: make(map[string]*expr.Path),
	}
}

func (r *rewriter) clone() *rewriter {
	cp := &rewriter{
		frames:   append([]frame(nil), r.frames...),
		next:     r.next,
		pinned:   r.pinned,
		absorbed: make(map[string]*expr.Path, len(r.absorbed)),
	}
	for k, v := range r.absorbed {
		cp.absorbed[k] = v
	}
	return cp
}

// resolve returns n with every path rooted at an absorbed variable re-rooted
// onto its replacement. Lambdas and LAMBDA/PARAMS operations bind their own
// parameters and are left alone.
func (r *rewriter) resolve(n expr.Node) expr.Node {
	if len(r.absorbed) == 0 {
		return n
	}
	switch node := n.(type) {
	case *expr.Path:
		if node == nil {
			return n
		}
		if repl, ok := r.absorbed[node.Root().Name]; ok {
			return node.Rebase(repl)
		}
		return node
	case *expr.Operation:
		if node == nil || node.Op == expr.OpLambda || node.Op == expr.OpParams {
			return n
		}
		args := make([]expr.Node, len(node.Args))
		for i, arg := range node.Args {
			args[i] = r.resolve(arg)
		}
		return expr.NewOperation(node.Op, args...)
	case *expr.Projection:
		if node == nil {
			return n
		}
		out := expr.New()
		for _, f := range node.Fields {
			out = out.With(f.Name, r.resolve(f.Expr))
		}
		return out
	default:
		return n
	}
}

// bind checks a SelectMany element against its collection and returns the
// element variable, the resolved collection and its outer root.
func (r *rewriter) bind(collection, element expr.Node) (*expr.Path, expr.Node, string, error) {
	elem, ok := element.(*expr.Path)
	if !ok || elem == nil || !elem.IsRoot() {
		return nil, nil, "", NewNotARootError(element)
	}
	if strings.HasPrefix(elem.Name, transIDPrefix) {
		return nil, nil, "", &Error{
			Code:    ErrCodeNotARoot,
			Message: fmt.Sprintf("element variable %q uses the reserved prefix %s", elem.Name, transIDPrefix),
			Root:    elem.Name,
		}
	}

	resolved := r.resolve(collection)
	outer, err := SingleRoot(resolved)
	if err != nil {
		return nil, nil, "", err
	}
	if r.pinned != "" && outer != r.pinned {
		return nil, nil, "", &Error{
			Code:    ErrCodeAmbiguousRoot,
			Message: fmt.Sprintf("collection is rooted at %s, expected a member of %s", outer, r.pinned),
			Roots:   []string{outer},
		}
	}

	if coll, ok := collection.(*expr.Path); ok && coll.Elem != "" && elem.Type != "" && coll.Elem != elem.Type {
		return nil, nil, "", NewElementTypeMismatchError(elem.Name, coll.Elem, elem.Type)
	}

	inner := elem.Name
	if inner == outer {
		return nil, nil, "", NewDuplicateRewriteError(inner)
	}
	if _, live := r.absorbed[inner]; live {
		return nil, nil, "", NewDuplicateRewriteError(inner)
	}
	if _, live := r.absorbed[outer]; live {
		return nil, nil, "", NewDuplicateRewriteError(outer)
	}
	return elem, resolved, outer, nil
}

// selectMany composes a SelectMany over current and updates the absorption
// state. element must be a bare root variable; collection must reach its
// root through the latest transparent identifier when one exists.
func (r *rewriter) selectMany(current, collection, element expr.Node) (expr.Node, error) {
	elem, resolved, outer, err := r.bind(collection, element)
	if err != nil {
		return nil, err
	}
	inner := elem.Name

	f := frame{
		TransID:    fmt.Sprintf("%s%d", transIDPrefix, r.next),
		OuterField: expr.Capitalize(outer),
		OuterRoot:  outer,
		InnerField: expr.Capitalize(inner),
		InnerRoot:  inner,
	}

	outerVar := expr.NewRoot(outer)
	innerVar := expr.NewRoot(inner)
	resultFn := expr.NewOperation(expr.OpLambda,
		expr.NewOperation(expr.OpParams, outerVar, innerVar),
		expr.New().With(f.OuterField, outerVar).With(f.InnerField, innerVar),
	)
	composed := expr.NewOperation(expr.OpSelectMany, current,
		&expr.Lambda{Param: outerVar, Body: resolved}, resultFn)

	trans := expr.NewRoot(f.TransID)
	outerSlot := trans.Get(f.OuterField)
	for name, repl := range r.absorbed {
		if repl.Root().Name == outer {
			r.absorbed[name] = repl.Rebase(outerSlot)
		}
	}
	r.absorbed[outer] = outerSlot
	r.absorbed[inner] = trans.GetTyped(f.InnerField, elem.Type, "")

	r.frames = append(r.frames, f)
	r.pinned = f.TransID
	r.next++
	return composed, nil
}

// selectManyInto composes a SelectMany whose result selector is the
// caller's projection over (outer, element). No transparent identifier is
// synthesized and the absorption map is left as it is; later operands range
// over the projected objects.
func (r *rewriter) selectManyInto(current, collection, element expr.Node, result *expr.Projection) (expr.Node, error) {
	if result == nil || len(result.Fields) == 0 {
		return nil, &Error{
			Code:    ErrCodeInvalidField,
			Message: "SelectMany result projection has no fields",
		}
	}
	elem, resolved, outer, err := r.bind(collection, element)
	if err != nil {
		return nil, err
	}

	outerVar := expr.NewRoot(outer)
	resultFn := expr.NewOperation(expr.OpLambda,
		expr.NewOperation(expr.OpParams, outerVar, expr.NewRoot(elem.Name)),
		r.resolve(result),
	)
	r.pinned = ""
	return expr.NewOperation(expr.OpSelectMany, current,
		&expr.Lambda{Param: outerVar, Body: resolved}, resultFn), nil
}

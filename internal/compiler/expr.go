package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/model"
)

var binaryOps = map[string]func(a, b expr.Node) *expr.Operation{
	"eq":         expr.Eq,
	"ne":         expr.Ne,
	"lt":         expr.Lt,
	"gt":         expr.Gt,
	"lte":        expr.Lte,
	"gte":        expr.Gte,
	"and":        expr.And,
	"or":         expr.Or,
	"add":        expr.Add,
	"sub":        expr.Sub,
	"mul":        expr.Mul,
	"div":        expr.Div,
	"startsWith": expr.StartsWith,
	"endsWith":   expr.EndsWith,
	"contains":   expr.Contains,
}

var unaryOps = map[string]func(a expr.Node) *expr.Operation{
	"not":    expr.Not,
	"size":   expr.Size,
	"length": expr.Length,
}

// scope holds the range variables visible to a query's expressions.
type scope struct {
	m        *model.Model
	vars     map[string]*expr.Path
	grouping *linq.Grouping
}

func newScope(m *model.Model) *scope {
	return &scope{m: m, vars: make(map[string]*expr.Path)}
}

func (s *scope) bind(p *expr.Path) {
	s.vars[p.Name] = p
}

// path resolves a dotted reference such as "company.address.city". The first
// segment names a range variable; numeric segments index lists.
func (s *scope) path(field string, v cue.Value, ref string) (*expr.Path, error) {
	segs := strings.Split(ref, ".")
	root, ok := s.vars[segs[0]]
	if !ok {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown variable %q in %q", segs[0], ref),
			Pos:     v.Pos(),
		}
	}
	rest := segs[1:]
	if g := s.grouping; g != nil && root == g.Root && len(rest) > 0 && rest[0] == "key" {
		root, rest = g.Key, rest[1:]
	}
	p, err := s.m.Resolve(root, rest...)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return p, nil
}

func (s *scope) compileExpr(field string, v cue.Value) (expr.Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.Kind() {
	case cue.StringKind:
		ref, _ := v.String()
		return s.path(field, v, ref)
	case cue.IntKind, cue.FloatKind, cue.BoolKind:
		return literal(field, v)
	case cue.StructKind:
		return s.compileOperator(field, v)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression must be a path, number, bool or operator object, got %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func (s *scope) compileOperator(field string, v cue.Value) (expr.Node, error) {
	name, arg, err := singleField(field, v)
	if err != nil {
		return nil, err
	}
	sub := field + "." + name

	if fn, ok := binaryOps[name]; ok {
		args, err := listOf(sub, arg, 2)
		if err != nil {
			return nil, err
		}
		a, err := s.compileExpr(sub+"[0]", args[0])
		if err != nil {
			return nil, err
		}
		b, err := s.compileExpr(sub+"[1]", args[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}

	if fn, ok := unaryOps[name]; ok {
		a, err := s.compileExpr(sub, arg)
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}

	switch name {
	case "value":
		return literal(sub, arg)
	case "raw":
		text, err := arg.String()
		if err != nil {
			return nil, &CompileError{Field: sub, Message: "raw template must be a string", Pos: arg.Pos()}
		}
		return expr.Template(text), nil
	case "new":
		return s.compileProjection(sub, arg)
	case "sum":
		if s.grouping == nil {
			return nil, &CompileError{Field: sub, Message: "sum requires a preceding groupBy", Pos: arg.Pos()}
		}
		sel, err := s.compileExpr(sub, arg)
		if err != nil {
			return nil, err
		}
		op, err := s.grouping.Sum(sel)
		if err != nil {
			return nil, &CompileError{Field: sub, Message: err.Error(), Pos: arg.Pos(), Err: err}
		}
		return op, nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("unknown operator %q", name),
		Pos:     v.Pos(),
	}
}

// compileProjection keeps the declaration order of the CUE struct.
func (s *scope) compileProjection(field string, v cue.Value) (expr.Node, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "new requires a struct of fields", Pos: v.Pos()}
	}
	p := expr.New()
	for iter.Next() {
		name := selectorName(iter.Selector())
		n, err := s.compileExpr(field+"."+name, iter.Value())
		if err != nil {
			return nil, err
		}
		p = p.With(name, n)
	}
	return p, nil
}

func literal(field string, v cue.Value) (expr.Node, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, _ := v.String()
		return expr.Str(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return expr.Num(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return expr.Dec(f), nil
	case cue.BoolKind:
		b, _ := v.Bool()
		return expr.Truth(b), nil
	}
	return nil, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("literal must be a string, number or bool, got %s", v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}

// singleField returns the only field of an operator object.
func singleField(field string, v cue.Value) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err)
	}
	var (
		name string
		val  cue.Value
		n    int
	)
	for iter.Next() {
		name, val = selectorName(iter.Selector()), iter.Value()
		n++
	}
	if n != 1 {
		return "", cue.Value{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("operator object must have exactly one key, found %d", n),
			Pos:     v.Pos(),
		}
	}
	return name, val, nil
}

// listOf returns the elements of a CUE list. want < 0 accepts any length.
func listOf(field string, v cue.Value, want int) ([]cue.Value, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "expected a list", Pos: v.Pos()}
	}
	var out []cue.Value
	for iter.Next() {
		out = append(out, iter.Value())
	}
	if want >= 0 && len(out) != want {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected %d operands, got %d", want, len(out)),
			Pos:     v.Pos(),
		}
	}
	return out, nil
}

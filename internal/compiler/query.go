package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/model"
)

var stepKinds = []string{"where", "select", "groupBy", "orderBy", "selectMany"}

// CompileQuery parses a query block into an IndexSource.
//
//	{from: "Company", as: "c", query: [{where: ...}, {select: ...}]}
//	{root: "results", of: "PersonResult", query: [...]}
//	{entityIs: ["Cat", "Dog"], of: "Animal", query: [...]}
//
// A selectMany step may supply its own result selector; yields names the
// variable later steps use for the projected objects:
//
//	{selectMany: "company.employees", as: "person", into: {new: {...}}, yields: "entry"}
//
// Collections are named by m unless opts override the namer.
func CompileQuery(v cue.Value, m *model.Model, opts ...linq.Option) (*linq.IndexSource, error) {
	return compileQuery("query", v, m, opts)
}

func compileQuery(field string, v cue.Value, m *model.Model, opts []linq.Option) (*linq.IndexSource, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	opts = append([]linq.Option{linq.WithCollectionNamer(m.Collection)}, opts...)
	s := newScope(m)

	src, err := s.compileSource(field, v, opts)
	if err != nil {
		return nil, err
	}

	qv := v.LookupPath(cue.ParsePath("query"))
	if !qv.Exists() {
		return src, nil
	}
	steps, err := listOf(field+".query", qv, -1)
	if err != nil {
		return nil, err
	}
	for i, step := range steps {
		stepField := fmt.Sprintf("%s.query[%d]", field, i)
		if err := s.compileStep(stepField, step, src); err != nil {
			return nil, err
		}
		if err := src.Err(); err != nil {
			return nil, &CompileError{Field: stepField, Message: err.Error(), Pos: step.Pos(), Err: err}
		}
	}
	return src, nil
}

func (s *scope) compileSource(field string, v cue.Value, opts []linq.Option) (*linq.IndexSource, error) {
	of, err := optionalString(v, "of")
	if err != nil {
		return nil, err
	}
	as, err := optionalString(v, "as")
	if err != nil {
		return nil, err
	}

	var src *linq.IndexSource
	switch {
	case v.LookupPath(cue.ParsePath("from")).Exists():
		from, err := optionalString(v, "from")
		if err != nil {
			return nil, err
		}
		of = from
		src = linq.FromType(from, opts...)
	case v.LookupPath(cue.ParsePath("root")).Exists():
		root, err := optionalString(v, "root")
		if err != nil {
			return nil, err
		}
		src = linq.FromRoot(root, opts...)
	case v.LookupPath(cue.ParsePath("entityIs")).Exists():
		ev := v.LookupPath(cue.ParsePath("entityIs"))
		items, err := listOf(field+".entityIs", ev, -1)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			name, err := it.String()
			if err != nil {
				return nil, &CompileError{Field: field + ".entityIs", Message: "entity names must be strings", Pos: it.Pos()}
			}
			names = append(names, name)
		}
		src = linq.WhereEntityIs(names, opts...)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: "query requires one of from, root or entityIs",
			Pos:     v.Pos(),
		}
	}

	if as == "" && of == "" {
		// No range variable: only raw templates can reference the source.
		return src, nil
	}
	if as == "" {
		as = expr.VarName(of)
	}
	if of == "" {
		s.bind(expr.NewRoot(as))
		return src, nil
	}
	root, err := s.m.Var(as, of)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	s.bind(root)
	return src, nil
}

func (s *scope) compileStep(field string, v cue.Value, src *linq.IndexSource) error {
	kind, arg, err := stepKind(field, v)
	if err != nil {
		return err
	}
	sub := field + "." + kind

	switch kind {
	case "where", "select":
		n, err := s.compileExpr(sub, arg)
		if err != nil {
			return err
		}
		if kind == "where" {
			src.Where(n)
		} else {
			src.Select(n)
		}

	case "groupBy":
		key, err := s.compileExpr(sub, arg)
		if err != nil {
			return err
		}
		alias, err := optionalString(v, "as")
		if err != nil {
			return err
		}
		keyType, err := optionalString(v, "keyType")
		if err != nil {
			return err
		}
		if p, ok := key.(*expr.Path); ok && keyType == "" {
			keyType = p.Type
		}
		g := linq.NewGrouping(keyType, alias)
		s.grouping = &g
		s.bind(g.Root)
		src.GroupBy(key)

	case "orderBy":
		items, err := listOf(sub, arg, -1)
		if err != nil {
			return err
		}
		specs := make([]expr.OrderSpec, 0, len(items))
		for i, it := range items {
			spec, err := s.compileOrder(fmt.Sprintf("%s[%d]", sub, i), it)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		src.OrderBy(specs...)

	case "selectMany":
		coll, err := s.compileExpr(sub, arg)
		if err != nil {
			return err
		}
		as, err := optionalString(v, "as")
		if err != nil {
			return err
		}
		var elem string
		if p, ok := coll.(*expr.Path); ok {
			elem = p.Elem
		}
		if as == "" {
			if elem == "" {
				return &CompileError{Field: sub, Message: "selectMany over an untyped collection needs as", Pos: v.Pos()}
			}
			as = expr.VarName(elem)
		}
		element := expr.NewRoot(as)
		if elem != "" {
			element = expr.TypedRoot(as, elem)
		}
		s.bind(element)

		iv := v.LookupPath(cue.ParsePath("into"))
		if !iv.Exists() {
			src.SelectMany(coll, element)
			return nil
		}
		n, err := s.compileExpr(field+".into", iv)
		if err != nil {
			return err
		}
		result, ok := n.(*expr.Projection)
		if !ok {
			return &CompileError{Field: field + ".into", Message: "into must be a new projection", Pos: iv.Pos()}
		}
		yields, err := optionalString(v, "yields")
		if err != nil {
			return err
		}
		src.SelectManyInto(coll, element, result)

		// Later steps range over the projected objects only.
		s.vars = make(map[string]*expr.Path)
		s.grouping = nil
		if yields != "" {
			s.bind(expr.NewRoot(yields))
		}
	}
	return nil
}

func (s *scope) compileOrder(field string, v cue.Value) (expr.OrderSpec, error) {
	if v.Kind() == cue.StructKind {
		name, arg, err := singleField(field, v)
		if err != nil {
			return expr.OrderSpec{}, err
		}
		if name == "asc" || name == "desc" {
			n, err := s.compileExpr(field+"."+name, arg)
			if err != nil {
				return expr.OrderSpec{}, err
			}
			if name == "desc" {
				return expr.Desc(n), nil
			}
			return expr.Asc(n), nil
		}
	}
	n, err := s.compileExpr(field, v)
	if err != nil {
		return expr.OrderSpec{}, err
	}
	return expr.Asc(n), nil
}

// stepKind finds the single step operator of a query step.
func stepKind(field string, v cue.Value) (string, cue.Value, error) {
	var (
		kind string
		arg  cue.Value
	)
	for _, k := range stepKinds {
		kv := v.LookupPath(cue.ParsePath(k))
		if !kv.Exists() {
			continue
		}
		if kind != "" {
			return "", cue.Value{}, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("step has both %s and %s", kind, k),
				Pos:     v.Pos(),
			}
		}
		kind, arg = k, kv
	}
	if kind == "" {
		return "", cue.Value{}, &CompileError{
			Field:   field,
			Message: "step requires one of where, select, groupBy, orderBy or selectMany",
			Pos:     v.Pos(),
		}
	}
	return kind, arg, nil
}

func optionalString(v cue.Value, key string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(key))
	if !sv.Exists() {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", &CompileError{Field: key, Message: "must be a string", Pos: sv.Pos()}
	}
	return s, nil
}

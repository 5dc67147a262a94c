package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/idxc/internal/indexdef"
	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/model"
)

// CompileIndex parses a CUE index declaration into an IndexDefinition.
//
//	index: "Companies/ByPets": {
//		map: [{from: "Company", query: [...]}]
//		reduce: {root: "results", of: "PersonResult", query: [...]}
//		stores: {Name: "yes"}
//	}
//
// map may also be a single query block. The index name is the struct label.
func CompileIndex(v cue.Value, m *model.Model, opts ...linq.Option) (*indexdef.IndexDefinition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name := labelOf(v)
	b := indexdef.NewBuilder()

	mv := v.LookupPath(cue.ParsePath("map"))
	if !mv.Exists() {
		return nil, &CompileError{Field: "map", Message: "map is required", Pos: v.Pos()}
	}
	maps := []cue.Value{mv}
	if mv.Kind() == cue.ListKind {
		var err error
		if maps, err = listOf("map", mv, -1); err != nil {
			return nil, err
		}
	}
	for i, qv := range maps {
		src, err := compileQuery(fmt.Sprintf("map[%d]", i), qv, m, opts)
		if err != nil {
			return nil, err
		}
		b.Map(src)
	}

	if rv := v.LookupPath(cue.ParsePath("reduce")); rv.Exists() {
		src, err := compileQuery("reduce", rv, m, opts)
		if err != nil {
			return nil, err
		}
		b.Reduce(src)
	}
	if tv := v.LookupPath(cue.ParsePath("transform")); tv.Exists() {
		src, err := compileQuery("transform", tv, m, opts)
		if err != nil {
			return nil, err
		}
		b.TransformResults(src)
	}

	if err := compileFieldOptions(v, b); err != nil {
		return nil, err
	}

	def, err := b.Build(name)
	if err != nil {
		return nil, &CompileError{Field: "index", Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return def, nil
}

// CompileTransformer parses a CUE transformer declaration.
//
//	transformer: PersonNames: {transform: {root: "results", of: "Person", query: [...]}}
func CompileTransformer(v cue.Value, m *model.Model, opts ...linq.Option) (*indexdef.TransformerDefinition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	tv := v.LookupPath(cue.ParsePath("transform"))
	if !tv.Exists() {
		return nil, &CompileError{Field: "transform", Message: "transform is required", Pos: v.Pos()}
	}
	src, err := compileQuery("transform", tv, m, opts)
	if err != nil {
		return nil, err
	}
	def, err := indexdef.NewBuilder().TransformResults(src).BuildTransformer(labelOf(v))
	if err != nil {
		return nil, &CompileError{Field: "transformer", Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return def, nil
}

func compileFieldOptions(v cue.Value, b *indexdef.Builder) error {
	err := eachOption(v, "stores", func(field, value string) error {
		s, err := indexdef.ParseFieldStorage(value)
		if err != nil {
			return err
		}
		b.Store(field, s)
		return nil
	})
	if err != nil {
		return err
	}
	err = eachOption(v, "indexes", func(field, value string) error {
		ix, err := indexdef.ParseFieldIndexing(value)
		if err != nil {
			return err
		}
		b.Index(field, ix)
		return nil
	})
	if err != nil {
		return err
	}
	err = eachOption(v, "sort", func(field, value string) error {
		so, err := indexdef.ParseSortOptions(value)
		if err != nil {
			return err
		}
		b.Sort(field, so)
		return nil
	})
	if err != nil {
		return err
	}
	return eachOption(v, "analyzers", func(field, value string) error {
		b.Analyze(field, value)
		return nil
	})
}

// eachOption calls set for every field: value pair of the struct at key.
func eachOption(v cue.Value, key string, set func(field, value string) error) error {
	ov := v.LookupPath(cue.ParsePath(key))
	if !ov.Exists() {
		return nil
	}
	iter, err := ov.Fields()
	if err != nil {
		return &CompileError{Field: key, Message: "expected a struct of field options", Pos: ov.Pos()}
	}
	for iter.Next() {
		field := selectorName(iter.Selector())
		where := key + "." + field
		value, err := iter.Value().String()
		if err != nil {
			return &CompileError{Field: where, Message: "option must be a string", Pos: iter.Value().Pos()}
		}
		if err := set(field, value); err != nil {
			return &CompileError{Field: where, Message: err.Error(), Pos: iter.Value().Pos(), Err: err}
		}
	}
	return nil
}

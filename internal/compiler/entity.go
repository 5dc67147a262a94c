package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/idxc/internal/model"
)

// CompileEntity parses a CUE entity declaration into a model.Entity.
//
// The value should be the entity struct itself:
//
//	entity: Company: {
//		collection: "Companies" // optional
//		fields: {name: "string", employees: "[]Person"}
//	}
func CompileEntity(v cue.Value) (model.Entity, error) {
	if err := v.Err(); err != nil {
		return model.Entity{}, formatCUEError(err)
	}

	e := model.Entity{Name: labelOf(v)}

	if cv := v.LookupPath(cue.ParsePath("collection")); cv.Exists() {
		collection, err := cv.String()
		if err != nil {
			return model.Entity{}, formatCUEError(err)
		}
		e.Collection = collection
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return e, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return model.Entity{}, formatCUEError(err)
	}
	for iter.Next() {
		name := selectorName(iter.Selector())
		decl, err := iter.Value().String()
		if err != nil {
			return model.Entity{}, &CompileError{
				Field:   fmt.Sprintf("fields.%s", name),
				Message: "field type must be a string such as \"int\" or \"[]Person\"",
				Pos:     iter.Value().Pos(),
			}
		}
		e.Fields = append(e.Fields, model.ParseField(name, decl))
	}

	return e, nil
}

// labelOf returns the last path label of v, unquoted.
func labelOf(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return selectorName(sels[len(sels)-1])
}

func selectorName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

// Package model describes the client-side object model that queries are
// written against: entity types, their typed fields, and the naming
// convention that maps an entity to its server collection.
//
// Paths built through a Model carry declared types, which lets the query
// compiler check SelectMany element variables against collection element
// types. Untyped paths from package expr remain valid everywhere.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/roach88/idxc/internal/expr"
)

// Primitive type names accepted in field declarations.
var primitives = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
	"any":    true,
}

// IsPrimitive reports whether typ is a built-in scalar type.
func IsPrimitive(typ string) bool {
	return primitives[typ]
}

// Field is one typed member of an entity. Elem is set for list fields.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Elem string `json:"elem,omitempty"`
}

// ParseField builds a field from a declaration such as "string" or "[]Person".
func ParseField(name, decl string) Field {
	decl = strings.TrimSpace(decl)
	if elem, ok := strings.CutPrefix(decl, "[]"); ok {
		return Field{Name: name, Type: decl, Elem: elem}
	}
	return Field{Name: name, Type: decl}
}

// IsList reports whether the field holds a list.
func (f Field) IsList() bool {
	return f.Elem != ""
}

// Entity is a document type.
type Entity struct {
	Name string `json:"name"`

	// Collection overrides the pluralized collection name when set.
	Collection string `json:"collection,omitempty"`

	Fields []Field `json:"fields"`
}

// Field looks up a field by name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Error reports a reference to an unknown entity or field.
type Error struct {
	Entity  string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("model: %s.%s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("model: %s: %s", e.Entity, e.Message)
}

// Model is a set of entities.
type Model struct {
	entities map[string]*Entity
}

// New creates an empty model.
func New() *Model {
	return &Model{entities: make(map[string]*Entity)}
}

// Add registers an entity. Field types must be primitives or entities that
// are already registered or registered later; Validate checks them.
func (m *Model) Add(e Entity) error {
	if e.Name == "" {
		return &Error{Message: "entity name is required"}
	}
	if _, dup := m.entities[e.Name]; dup {
		return &Error{Entity: e.Name, Message: "entity already defined"}
	}
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" || strings.Contains(f.Name, ".") {
			return &Error{Entity: e.Name, Field: f.Name, Message: "invalid field name"}
		}
		if seen[f.Name] {
			return &Error{Entity: e.Name, Field: f.Name, Message: "field already defined"}
		}
		seen[f.Name] = true
	}
	cp := e
	cp.Fields = append([]Field(nil), e.Fields...)
	m.entities[e.Name] = &cp
	return nil
}

// Define is a convenience wrapper around Add taking field declarations in
// name/declaration pairs: Define("Company", "name", "string", "employees", "[]Person").
func (m *Model) Define(name string, decls ...string) error {
	if len(decls)%2 != 0 {
		return &Error{Entity: name, Message: "field declarations must come in name/type pairs"}
	}
	e := Entity{Name: name}
	for i := 0; i < len(decls); i += 2 {
		e.Fields = append(e.Fields, ParseField(decls[i], decls[i+1]))
	}
	return m.Add(e)
}

// Validate checks that every field type names a primitive or a known entity.
func (m *Model) Validate() error {
	for _, e := range m.Entities() {
		for _, f := range e.Fields {
			typ := f.Type
			if f.IsList() {
				typ = f.Elem
			}
			if !IsPrimitive(typ) && m.entities[typ] == nil {
				return &Error{Entity: e.Name, Field: f.Name, Message: fmt.Sprintf("unknown type %q", typ)}
			}
		}
	}
	return nil
}

// Entity looks up an entity by name.
func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.entities[name]
	return e, ok
}

// Entities returns all entities sorted by name.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Root returns the conventional range variable for an entity:
// Root("PersonResult") is the root path personResult of type PersonResult.
func (m *Model) Root(entity string) (*expr.Path, error) {
	return m.Var(expr.VarName(entity), entity)
}

// Var returns a root variable with an explicit name.
func (m *Model) Var(name, entity string) (*expr.Path, error) {
	if _, ok := m.entities[entity]; !ok {
		return nil, &Error{Entity: entity, Message: "unknown entity"}
	}
	return expr.TypedRoot(name, entity), nil
}

// Get returns the typed member field of p. Untyped paths yield untyped
// members.
func (m *Model) Get(p *expr.Path, field string) (*expr.Path, error) {
	if p.Type == "" {
		return p.Get(field), nil
	}
	e, ok := m.entities[p.Type]
	if !ok {
		return nil, &Error{Entity: p.Type, Field: field, Message: fmt.Sprintf("%s has no members", p)}
	}
	f, ok := e.Field(field)
	if !ok {
		return nil, &Error{Entity: e.Name, Field: field, Message: "unknown field"}
	}
	return p.GetTyped(f.Name, f.Type, f.Elem), nil
}

// Resolve walks dotted member names from p. Numeric segments index list
// members: Resolve(company, "employees", "0", "name").
func (m *Model) Resolve(p *expr.Path, segments ...string) (*expr.Path, error) {
	cur := p
	for _, seg := range segments {
		if i, ok, err := index(seg); ok {
			if err != nil {
				return nil, &Error{Entity: cur.Type, Field: seg, Message: fmt.Sprintf("list index %s is out of range", seg)}
			}
			if cur.Type != "" && cur.Elem == "" {
				return nil, &Error{Entity: cur.Type, Field: seg, Message: fmt.Sprintf("%s is not a list", cur)}
			}
			cur = cur.At(i)
			continue
		}
		next, err := m.Get(cur, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Collection returns the server collection name for an entity: the explicit
// override when set, Pluralize(entity) otherwise.
func (m *Model) Collection(entity string) string {
	if e, ok := m.entities[entity]; ok && e.Collection != "" {
		return e.Collection
	}
	return Pluralize(entity)
}

// index parses a numeric list segment. ok is false for member names.
func index(seg string) (n int, ok bool, err error) {
	if seg == "" || strings.TrimLeft(seg, "0123456789") != "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(seg)
	return n, true, err
}

var (
	rulesOnce sync.Once
	rules     *inflect.Ruleset
)

// Pluralize names the collection of an entity type with regular English
// plurals: Company -> Companies, Person -> Persons, PersonResult -> PersonResults.
func Pluralize(entity string) string {
	if entity == "" {
		return entity
	}
	rulesOnce.Do(func() {
		rules = inflect.NewDefaultRuleset()
		rules.AddIrregular("person", "persons")
	})
	return expr.Capitalize(rules.Pluralize(expr.VarName(entity)))
}

package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Node represents any expression tree node.
//
// This is a sealed interface - only types in this package implement it.
// Compilers switch over:
//   - *Path: root variable or property access
//   - Constant: literal value
//   - *Operation: operator with ordered operands
//   - *Lambda: single-parameter lambda
//   - *Projection: anonymous object literal
//   - RawTemplate: opaque pre-rendered text
type Node interface {
	exprNode() // Marker method - seals interface to this package
}

// PathKind distinguishes the three kinds of path segment.
type PathKind int

const (
	// PathRoot is a range variable / lambda parameter (no parent).
	PathRoot PathKind = iota
	// PathProperty is a named member access on the parent.
	PathProperty
	// PathListElement is an indexed element of a list-valued parent.
	PathListElement
)

func (k PathKind) String() string {
	switch k {
	case PathProperty:
		return "property"
	case PathListElement:
		return "element"
	default:
		return "root"
	}
}

// Path references a root variable or a member reachable from one.
//
// A chain of Parent links always terminates in exactly one root. Type and
// Elem carry the declared model type when the path was built from a model
// (Elem is set for list-valued members only); both are empty for untyped paths.
type Path struct {
	Parent *Path
	Name   string
	Kind   PathKind
	Type   string
	Elem   string
}

func (*Path) exprNode() {}

// NewRoot creates an untyped root variable.
func NewRoot(name string) *Path {
	return &Path{Name: name, Kind: PathRoot}
}

// TypedRoot creates a root variable of the given declared type.
func TypedRoot(name, typ string) *Path {
	return &Path{Name: name, Kind: PathRoot, Type: typ}
}

// VarName returns the conventional variable name for a type name:
// the type name with a lower-cased initial ("PersonResult" -> "personResult").
func VarName(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToLower(r)) + typeName[size:]
}

// Capitalize upper-cases the first letter of s and leaves the rest untouched
// ("transId_1" -> "TransId_1").
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Get returns an untyped property of p.
func (p *Path) Get(name string) *Path {
	return &Path{Parent: p, Name: name, Kind: PathProperty}
}

// GetTyped returns a property of p with a declared type. elem is the element
// type for list-valued properties and empty otherwise.
func (p *Path) GetTyped(name, typ, elem string) *Path {
	return &Path{Parent: p, Name: name, Kind: PathProperty, Type: typ, Elem: elem}
}

// At returns the list element at index i.
func (p *Path) At(i int) *Path {
	return &Path{Parent: p, Name: strconv.Itoa(i), Kind: PathListElement, Type: p.Elem}
}

// IsRoot reports whether p has no parent.
func (p *Path) IsRoot() bool {
	return p.Parent == nil
}

// Root walks the parent chain to the root variable.
func (p *Path) Root() *Path {
	cur := p
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Segments returns the names from the root to p, root first.
func (p *Path) Segments() []string {
	var segs []string
	for cur := p; cur != nil; cur = cur.Parent {
		segs = append(segs, cur.Name)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// String returns the dotted path as written by the caller, e.g. "company.name".
func (p *Path) String() string {
	return strings.Join(p.Segments(), ".")
}

// Rebase returns a copy of p whose root is replaced by base. Intermediate
// segments are copied; base itself is shared.
func (p *Path) Rebase(base *Path) *Path {
	if p.Parent == nil {
		return base
	}
	parent := p.Parent.Rebase(base)
	return &Path{Parent: parent, Name: p.Name, Kind: p.Kind, Type: p.Type, Elem: p.Elem}
}

// Constant is a literal leaf.
type Constant struct {
	Value Value
}

func (Constant) exprNode() {}

// Operation applies an operator to ordered operands. Arity is fixed per
// operator; see the template table in package linq.
type Operation struct {
	Op   Operator
	Args []Node
}

func (*Operation) exprNode() {}

// NewOperation creates an operation. The operand slice is copied.
func NewOperation(op Operator, args ...Node) *Operation {
	cp := make([]Node, len(args))
	copy(cp, args)
	return &Operation{Op: op, Args: cp}
}

// Arg returns the i-th operand.
func (o *Operation) Arg(i int) Node {
	return o.Args[i]
}

// Lambda is a single-parameter lambda. Param is always a root path.
type Lambda struct {
	Param *Path
	Body  Node
}

func (*Lambda) exprNode() {}

// Field is one named member of a projection.
type Field struct {
	Name string
	Expr Node
}

// Projection is an anonymous-object literal. Field order is emission order.
type Projection struct {
	Fields []Field
}

func (*Projection) exprNode() {}

// New starts an empty projection.
func New() *Projection {
	return &Projection{}
}

// With returns a new projection with the field appended.
func (p *Projection) With(name string, value Node) *Projection {
	fields := make([]Field, len(p.Fields), len(p.Fields)+1)
	copy(fields, p.Fields)
	fields = append(fields, Field{Name: name, Expr: value})
	return &Projection{Fields: fields}
}

// WithPath appends a field named after target's last segment, capitalized
// ("personResult.name" -> "Name").
func (p *Projection) WithPath(target *Path, value Node) *Projection {
	return p.With(Capitalize(target.Name), value)
}

// RawTemplate is opaque pre-rendered text, passed through unchanged.
type RawTemplate string

func (RawTemplate) exprNode() {}

// Template creates a raw template node.
func Template(text string) RawTemplate {
	return RawTemplate(text)
}

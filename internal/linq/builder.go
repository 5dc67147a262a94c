package linq

import (
	"fmt"
	"strings"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/model"
)

// DefaultDocsRoot is the server-side name of the document collection root.
const DefaultDocsRoot = "docs"

type options struct {
	casing    Casing
	docsRoot  string
	namer     func(entity string) string
	templates map[expr.Operator]Template
}

// Option configures an IndexSource.
type Option func(*options)

// WithCasing selects the property casing convention.
func WithCasing(c Casing) Option {
	return func(o *options) { o.casing = c }
}

// WithDocsRoot replaces the "docs" collection root.
func WithDocsRoot(root string) Option {
	return func(o *options) { o.docsRoot = root }
}

// WithCollectionNamer replaces model.Pluralize for naming entity collections.
func WithCollectionNamer(fn func(entity string) string) Option {
	return func(o *options) { o.namer = fn }
}

// WithTemplates replaces the operator template table.
func WithTemplates(t map[expr.Operator]Template) Option {
	return func(o *options) { o.templates = t }
}

func buildOptions(opts []Option) options {
	o := options{
		casing:   CasingCapitalize,
		docsRoot: DefaultDocsRoot,
		namer:    model.Pluralize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IndexSource accumulates a fluent query chain into one expression tree.
//
// Each call wraps the current tree in a new operation whose operand is the
// argument passed through lambda inference. Errors are sticky: the first
// failing call is recorded, later calls are no-ops, and ToText returns the
// error with no partial text.
//
// An IndexSource is not safe for concurrent mutation; use Clone to branch.
type IndexSource struct {
	current expr.Node
	rw      *rewriter
	ser     *Serializer
	err     error
}

// FromType starts a query over the collection of an entity type:
// FromType("Company") renders as docs.Companies.
func FromType(entity string, opts ...Option) *IndexSource {
	o := buildOptions(opts)
	return newIndexSource(o.docsRoot+"."+o.namer(entity), o)
}

// FromRoot starts a query over an arbitrary root such as "results".
func FromRoot(root string, opts ...Option) *IndexSource {
	return newIndexSource(root, buildOptions(opts))
}

// WhereEntityIs starts a query over documents of several entity types:
// docs.WhereEntityIs(new string[] { "Cats", "Dogs" }).
func WhereEntityIs(entities []string, opts ...Option) *IndexSource {
	o := buildOptions(opts)
	quoted := make([]string, len(entities))
	for i, e := range entities {
		quoted[i] = expr.String(o.namer(e)).Literal()
	}
	root := fmt.Sprintf("%s.WhereEntityIs(new string[] { %s })", o.docsRoot, strings.Join(quoted, ", "))
	return newIndexSource(root, o)
}

func newIndexSource(root string, o options) *IndexSource {
	s := &IndexSource{
		current: expr.Template(root),
		rw:      newRewriter(),
	}
	s.ser, s.err = NewSerializer(o.casing, o.templates)
	return s
}

// Where filters by predicate. Consecutive calls chain; clauses never merge.
func (s *IndexSource) Where(predicate expr.Node) *IndexSource {
	return s.apply(expr.OpWhere, predicate)
}

// Select projects each element.
func (s *IndexSource) Select(projection expr.Node) *IndexSource {
	return s.apply(expr.OpSelect, projection)
}

// GroupBy groups by key. Later operands use a Grouping to refer to the group.
func (s *IndexSource) GroupBy(key expr.Node) *IndexSource {
	return s.apply(expr.OpGroupBy, key)
}

// OrderBy applies one ordering per spec, left to right.
func (s *IndexSource) OrderBy(specs ...expr.OrderSpec) *IndexSource {
	for _, spec := range specs {
		op := expr.OpOrderBy
		if spec.Descending {
			op = expr.OpOrderByDesc
		}
		s.apply(op, spec.Target)
	}
	return s
}

// OrderByDescending orders by each target descending, left to right.
func (s *IndexSource) OrderByDescending(targets ...expr.Node) *IndexSource {
	for _, t := range targets {
		s.apply(expr.OpOrderByDesc, t)
	}
	return s
}

// SelectMany flattens collection, binding each element to the root variable
// element. The outer and inner variables are absorbed into a transparent
// identifier; later operands may keep referring to them by their original
// names.
func (s *IndexSource) SelectMany(collection, element expr.Node) *IndexSource {
	if s.err != nil {
		return s
	}
	next, err := s.rw.selectMany(s.current, collection, element)
	if err != nil {
		s.err = fmt.Errorf("select many: %w", err)
		return s
	}
	s.current = next
	return s
}

// SelectManyInto flattens collection like SelectMany but emits result as the
// result selector over (outer, element):
//
//	.SelectMany(company => company.Employees, (company, person) => new {Name = person.Name})
//
// No transparent identifier is synthesized. Later operands range over the
// projected objects under a fresh variable.
func (s *IndexSource) SelectManyInto(collection, element expr.Node, result *expr.Projection) *IndexSource {
	if s.err != nil {
		return s
	}
	next, err := s.rw.selectManyInto(s.current, collection, element, result)
	if err != nil {
		s.err = fmt.Errorf("select many: %w", err)
		return s
	}
	s.current = next
	return s
}

func (s *IndexSource) apply(op expr.Operator, arg expr.Node) *IndexSource {
	if s.err != nil {
		return s
	}
	fn, err := InferLambda(s.rw.resolve(arg))
	if err != nil {
		s.err = fmt.Errorf("%s: %w", strings.ToLower(strings.ReplaceAll(string(op), "_", " ")), err)
		return s
	}
	s.current = expr.NewOperation(op, s.current, fn)
	return s
}

// ToText renders the query. It does not change the builder, so repeated
// calls return the same text.
func (s *IndexSource) ToText() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.ser.Render(s.current)
}

// Err returns the first error recorded by a fluent call, if any.
func (s *IndexSource) Err() error {
	return s.err
}

// Tree returns the current expression tree.
func (s *IndexSource) Tree() expr.Node {
	return s.current
}

// TransparentIDs returns the synthesized transparent identifiers in order.
func (s *IndexSource) TransparentIDs() []string {
	ids := make([]string, len(s.rw.frames))
	for i, f := range s.rw.frames {
		ids[i] = f.TransID
	}
	return ids
}

// Clone returns an independent copy. The tree is shared (nodes are
// immutable); the rewrite state is copied.
func (s *IndexSource) Clone() *IndexSource {
	return &IndexSource{
		current: s.current,
		rw:      s.rw.clone(),
		ser:     s.ser,
		err:     s.err,
	}
}

// String returns the rendered text, or an error marker.
func (s *IndexSource) String() string {
	text, err := s.ToText()
	if err != nil {
		return "!error(" + err.Error() + ")"
	}
	return text
}

package indexdef

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/linq"
)

var (
	// ErrMapRequired is returned by Build when no map function was added.
	ErrMapRequired = errors.New("map is required to generate an index")

	// ErrDuplicateField is returned by Build when a field option is given
	// both by path and by name.
	ErrDuplicateField = errors.New("duplicate field key")

	// ErrTransformRequired is returned by BuildTransformer without a transform.
	ErrTransformRequired = errors.New("transform is required to generate a transformer")
)

// Source renders query text. *linq.IndexSource satisfies it.
type Source interface {
	ToText() (string, error)
}

// Text is a Source holding pre-written query text.
type Text string

// ToText returns the text unchanged.
func (t Text) ToText() (string, error) {
	return string(t), nil
}

// options holds one per-field option kind keyed both ways.
type options[T any] struct {
	byPath map[string]T
	byName map[string]T
}

func newOptions[T any]() options[T] {
	return options[T]{byPath: make(map[string]T), byName: make(map[string]T)}
}

// merge combines path and name keys, NFC normalized. A key present in both
// is an error.
func (o options[T]) merge(kind string) (map[string]T, error) {
	if len(o.byPath) == 0 && len(o.byName) == 0 {
		return nil, nil
	}
	out := make(map[string]T, len(o.byPath)+len(o.byName))
	for k, v := range o.byPath {
		out[norm.NFC.String(k)] = v
	}
	for k, v := range o.byName {
		k = norm.NFC.String(k)
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%w in %s: %s", ErrDuplicateField, kind, k)
		}
		out[k] = v
	}
	return out, nil
}

// Builder assembles an IndexDefinition from query sources and per-field
// options.
//
//	def, err := indexdef.NewBuilder().
//	    Map(linq.FromType("Company").Select(...)).
//	    StorePath(company.Get("name"), indexdef.StorageYes).
//	    Build("Companies/ByName")
type Builder struct {
	maps      []Source
	reduce    Source
	transform Source

	stores    options[FieldStorage]
	indexes   options[FieldIndexing]
	sorts     options[SortOptions]
	analyzers options[string]

	err error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		stores:    newOptions[FieldStorage](),
		indexes:   newOptions[FieldIndexing](),
		sorts:     newOptions[SortOptions](),
		analyzers: newOptions[string](),
	}
}

// Map adds a map function. At least one is required.
func (b *Builder) Map(src Source) *Builder {
	b.maps = append(b.maps, src)
	return b
}

// Reduce sets the reduce function.
func (b *Builder) Reduce(src Source) *Builder {
	b.reduce = src
	return b
}

// TransformResults sets the result transformation.
func (b *Builder) TransformResults(src Source) *Builder {
	b.transform = src
	return b
}

// Store sets the storage option of a field by name.
func (b *Builder) Store(field string, v FieldStorage) *Builder {
	b.stores.byName[field] = v
	return b
}

// StorePath sets the storage option of the field p refers to.
func (b *Builder) StorePath(p *expr.Path, v FieldStorage) *Builder {
	b.setPath(p, func(k string) { b.stores.byPath[k] = v })
	return b
}

// Index sets the indexing option of a field by name.
func (b *Builder) Index(field string, v FieldIndexing) *Builder {
	b.indexes.byName[field] = v
	return b
}

// IndexPath sets the indexing option of the field p refers to.
func (b *Builder) IndexPath(p *expr.Path, v FieldIndexing) *Builder {
	b.setPath(p, func(k string) { b.indexes.byPath[k] = v })
	return b
}

// Sort sets the sort option of a field by name.
func (b *Builder) Sort(field string, v SortOptions) *Builder {
	b.sorts.byName[field] = v
	return b
}

// SortPath sets the sort option of the field p refers to.
func (b *Builder) SortPath(p *expr.Path, v SortOptions) *Builder {
	b.setPath(p, func(k string) { b.sorts.byPath[k] = v })
	return b
}

// Analyze sets the analyzer of a field by name.
func (b *Builder) Analyze(field, analyzer string) *Builder {
	b.analyzers.byName[field] = analyzer
	return b
}

// AnalyzePath sets the analyzer of the field p refers to.
func (b *Builder) AnalyzePath(p *expr.Path, analyzer string) *Builder {
	b.setPath(p, func(k string) { b.analyzers.byPath[k] = analyzer })
	return b
}

func (b *Builder) setPath(p *expr.Path, set func(key string)) {
	key, err := FieldKey(p)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	set(key)
}

// FieldKey converts a member path to the server's field name: segments after
// the root, capitalized and joined with "_" (company.address.city -> Address_City).
// List element segments are skipped.
func FieldKey(p *expr.Path) (string, error) {
	if p == nil || p.IsRoot() {
		return "", fmt.Errorf("field key: %v is not a member path", p)
	}
	var parts []string
	for cur := p; cur.Parent != nil; cur = cur.Parent {
		if cur.Kind == expr.PathListElement {
			continue
		}
		parts = append(parts, expr.Capitalize(cur.Name))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "_"), nil
}

// Build renders every source and returns the definition. All text is NFC
// normalized.
func (b *Builder) Build(name string) (*IndexDefinition, error) {
	name = norm.NFC.String(name)
	if b.err != nil {
		return nil, fmt.Errorf("index %s: %w", name, b.err)
	}
	if len(b.maps) == 0 {
		return nil, fmt.Errorf("index %s: %w", name, ErrMapRequired)
	}

	def := &IndexDefinition{Name: name}
	for i, m := range b.maps {
		text, err := m.ToText()
		if err != nil {
			return nil, fmt.Errorf("index %s: map[%d]: %w", name, i, err)
		}
		def.Maps = append(def.Maps, norm.NFC.String(text))
	}

	var err error
	if def.Reduce, err = render(b.reduce); err != nil {
		return nil, fmt.Errorf("index %s: reduce: %w", name, err)
	}
	if def.TransformResults, err = render(b.transform); err != nil {
		return nil, fmt.Errorf("index %s: transform results: %w", name, err)
	}

	if def.Stores, err = b.stores.merge("stores"); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if def.Indexes, err = b.indexes.merge("indexes"); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if def.SortOptions, err = b.sorts.merge("sort options"); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if def.Analyzers, err = b.analyzers.merge("analyzers"); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	for k, v := range def.Analyzers {
		def.Analyzers[k] = norm.NFC.String(v)
	}
	return def, nil
}

// BuildTransformer renders the transform source as a transformer definition.
func (b *Builder) BuildTransformer(name string) (*TransformerDefinition, error) {
	if b.transform == nil {
		return nil, fmt.Errorf("transformer %s: %w", name, ErrTransformRequired)
	}
	text, err := b.transform.ToText()
	if err != nil {
		return nil, fmt.Errorf("transformer %s: %w", name, err)
	}
	return &TransformerDefinition{Name: norm.NFC.String(name), TransformResults: norm.NFC.String(text)}, nil
}

func render(src Source) (string, error) {
	if src == nil {
		return "", nil
	}
	text, err := src.ToText()
	return norm.NFC.String(text), err
}

// compile-time check
var _ Source = (*linq.IndexSource)(nil)

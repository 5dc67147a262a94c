package linq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/idxc/internal/expr"
)

// Casing selects how property names are written.
type Casing int

const (
	// CasingCapitalize upper-cases the first letter of every property segment
	// (company.Name, group.Key). This is the server's naming convention.
	CasingCapitalize Casing = iota

	// CasingPreserve writes property segments as given (company.name).
	// Legacy; only reachable through an explicit option or config value.
	CasingPreserve
)

func (c Casing) String() string {
	switch c {
	case CasingPreserve:
		return "preserve"
	default:
		return "capitalize"
	}
}

// ParseCasing parses a config value. The empty string selects the default.
func ParseCasing(s string) (Casing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "capitalize":
		return CasingCapitalize, nil
	case "preserve":
		return CasingPreserve, nil
	default:
		return CasingCapitalize, fmt.Errorf("unknown casing %q (want capitalize or preserve)", s)
	}
}

// Serializer renders expression trees to query text using an operator
// template table.
//
// A Serializer holds no per-render state and is safe for concurrent use.
type Serializer struct {
	casing    Casing
	templates map[expr.Operator]compiledTemplate
}

// NewSerializer creates a Serializer. A nil table selects DefaultTemplates.
// Returns an error if a pattern has unbalanced brackets.
func NewSerializer(casing Casing, templates map[expr.Operator]Template) (*Serializer, error) {
	if templates == nil {
		templates = DefaultTemplates()
	}
	s := &Serializer{
		casing:    casing,
		templates: make(map[expr.Operator]compiledTemplate, len(templates)),
	}
	for op, t := range templates {
		ct, err := compileTemplate(op, t)
		if err != nil {
			return nil, err
		}
		s.templates[op] = ct
	}
	return s, nil
}

// Render converts n to query text. No partial text is returned on error.
func (s *Serializer) Render(n expr.Node) (string, error) {
	text, _, err := s.render(n)
	if err != nil {
		return "", err
	}
	return text, nil
}

// render returns the text of n and the precedence of its outermost form.
func (s *Serializer) render(n expr.Node) (string, Precedence, error) {
	switch node := n.(type) {
	case *expr.Path:
		if node == nil {
			return "", 0, fmt.Errorf("render: nil path")
		}
		return s.renderPath(node)
	case expr.Constant:
		if node.Value == nil {
			return "", 0, fmt.Errorf("render: constant without value")
		}
		return node.Value.Literal(), PrecPrimary, nil
	case *expr.Operation:
		if node == nil {
			return "", 0, fmt.Errorf("render: nil operation")
		}
		return s.renderOperation(node.Op, node.Args)
	case *expr.Lambda:
		return s.renderLambda(node)
	case *expr.Projection:
		return s.renderProjection(node)
	case expr.RawTemplate:
		return string(node), PrecPrimary, nil
	default:
		return "", 0, fmt.Errorf("render: unsupported node type %T", n)
	}
}

func (s *Serializer) renderPath(p *expr.Path) (string, Precedence, error) {
	switch p.Kind {
	case expr.PathRoot:
		if p.Parent != nil {
			return "", 0, fmt.Errorf("render: root %q has a parent", p.Name)
		}
		return p.Name, PrecPrimary, nil
	case expr.PathListElement:
		i, err := strconv.Atoi(p.Name)
		if err != nil {
			return "", 0, fmt.Errorf("render: list element index %q: %w", p.Name, err)
		}
		return s.renderOperation(expr.OpListElement, []expr.Node{p.Parent, expr.Num(int64(i))})
	default:
		if p.Parent == nil {
			return "", 0, fmt.Errorf("render: property %q has no parent", p.Name)
		}
		parent, _, err := s.renderPath(p.Parent)
		if err != nil {
			return "", 0, err
		}
		return parent + "." + s.memberName(p.Name), PrecPrimary, nil
	}
}

func (s *Serializer) memberName(name string) string {
	if s.casing == CasingPreserve {
		return name
	}
	return expr.Capitalize(name)
}

func (s *Serializer) renderLambda(l *expr.Lambda) (string, Precedence, error) {
	if l == nil || l.Param == nil || !l.Param.IsRoot() {
		return "", 0, fmt.Errorf("render: lambda parameter must be a root variable")
	}
	body, _, err := s.render(l.Body)
	if err != nil {
		return "", 0, err
	}
	return l.Param.Name + " => " + body, PrecLambda, nil
}

func (s *Serializer) renderProjection(p *expr.Projection) (string, Precedence, error) {
	if p == nil {
		return "", 0, fmt.Errorf("render: nil projection")
	}
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if f.Name == "" || strings.Contains(f.Name, ".") {
			return "", 0, NewInvalidFieldError(f.Name)
		}
		value, _, err := s.render(f.Expr)
		if err != nil {
			return "", 0, fmt.Errorf("field %s: %w", f.Name, err)
		}
		parts = append(parts, f.Name+" = "+value)
	}
	return "new {" + strings.Join(parts, ", ") + "}", PrecPrimary, nil
}

// renderOperation substitutes rendered operands into op's template. A bare
// operand is parenthesized when it binds looser than the template, or
// equally tight in a trailing position.
func (s *Serializer) renderOperation(op expr.Operator, args []expr.Node) (string, Precedence, error) {
	t, ok := s.templates[op]
	if !ok {
		return "", 0, NewUnsupportedOperatorError(op)
	}
	if len(args) != t.arity {
		return "", 0, fmt.Errorf("render: operator %s expects %d operands, got %d", op, t.arity, len(args))
	}

	var b strings.Builder
	for _, seg := range t.segments {
		if seg.index < 0 {
			b.WriteString(seg.text)
			continue
		}
		text, prec, err := s.render(args[seg.index])
		if err != nil {
			return "", 0, err
		}
		if seg.bare && (prec < t.Precedence || (seg.trailing && prec == t.Precedence)) {
			text = "(" + text + ")"
		}
		b.WriteString(text)
	}
	return b.String(), t.Precedence, nil
}

package linq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/idxc/internal/expr"
)

// Precedence orders how tightly a rendered form binds. Higher binds tighter.
type Precedence int

const (
	PrecLambda Precedence = iota + 1
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	// PrecPrimary covers member access, calls and method chains.
	PrecPrimary
)

// Template is the text pattern for one operator. Placeholders {0}, {1}, ...
// are replaced by the rendered operands.
type Template struct {
	Pattern    string
	Precedence Precedence
}

// DefaultTemplates returns a fresh copy of the built-in operator table.
func DefaultTemplates() map[expr.Operator]Template {
	return map[expr.Operator]Template{
		expr.OpEq:           {"{0} == {1}", PrecEquality},
		expr.OpNe:           {"{0} != {1}", PrecEquality},
		expr.OpLt:           {"{0} < {1}", PrecRelational},
		expr.OpGt:           {"{0} > {1}", PrecRelational},
		expr.OpLte:          {"{0} <= {1}", PrecRelational},
		expr.OpGte:          {"{0} >= {1}", PrecRelational},
		expr.OpAnd:          {"{0} && {1}", PrecAnd},
		expr.OpOr:           {"{0} || {1}", PrecOr},
		expr.OpNot:          {"!{0}", PrecUnary},
		expr.OpAdd:          {"{0} + {1}", PrecAdditive},
		expr.OpSub:          {"{0} - {1}", PrecAdditive},
		expr.OpMul:          {"{0} * {1}", PrecMultiplicative},
		expr.OpDiv:          {"{0} / {1}", PrecMultiplicative},
		expr.OpColSize:      {"{0}.Length", PrecPrimary},
		expr.OpStringLength: {"length({0})", PrecPrimary},
		expr.OpStartsWith:   {"{0}.StartsWith({1})", PrecPrimary},
		expr.OpEndsWith:     {"{0}.EndsWith({1})", PrecPrimary},
		expr.OpContains:     {"{0}.Contains({1})", PrecPrimary},
		expr.OpListElement:  {"{0}[{1}]", PrecPrimary},
		expr.OpSum:          {"{0}.Sum({1})", PrecPrimary},
		expr.OpLambda:       {"{0} => {1}", PrecLambda},
		expr.OpParams:       {"({0}, {1})", PrecPrimary},
		expr.OpGroupBy:      {"{0}.GroupBy({1})", PrecPrimary},
		expr.OpOrderBy:      {"{0}.OrderBy({1})", PrecPrimary},
		expr.OpOrderByDesc:  {"{0}.OrderByDescending({1})", PrecPrimary},
		expr.OpSelect:       {"{0}.Select({1})", PrecPrimary},
		expr.OpSelectMany:   {"{0}.SelectMany({1}, {2})", PrecPrimary},
		expr.OpWhere:        {"{0}.Where({1})", PrecPrimary},
	}
}

// segment is a literal run or a placeholder of a parsed pattern.
type segment struct {
	text  string
	index int // -1 for literal text

	// bare is true when the placeholder is not enclosed in brackets, so the
	// operand's own precedence matters.
	bare bool

	// trailing is true for a bare placeholder that is not the first segment;
	// it is the right operand of an infix or prefix form.
	trailing bool
}

// compiledTemplate is a Template parsed into segments.
type compiledTemplate struct {
	Template
	segments []segment
	arity    int
}

// compileTemplate parses a pattern. Brackets in literal text track nesting
// depth; placeholders at depth zero are bare.
func compileTemplate(op expr.Operator, t Template) (compiledTemplate, error) {
	ct := compiledTemplate{Template: t}
	depth := 0
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			ct.segments = append(ct.segments, segment{text: lit.String(), index: -1})
			lit.Reset()
		}
	}

	p := t.Pattern
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '{' {
			end := strings.IndexByte(p[i:], '}')
			if end > 1 {
				if idx, err := strconv.Atoi(p[i+1 : i+end]); err == nil && idx >= 0 {
					flush()
					ct.segments = append(ct.segments, segment{
						index:    idx,
						bare:     depth == 0,
						trailing: depth == 0 && len(ct.segments) > 0,
					})
					if idx+1 > ct.arity {
						ct.arity = idx + 1
					}
					i += end
					continue
				}
			}
		}
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
		if depth < 0 {
			return compiledTemplate{}, fmt.Errorf("template for %s: unbalanced brackets in %q", op, p)
		}
		lit.WriteByte(c)
	}
	flush()

	if depth != 0 {
		return compiledTemplate{}, fmt.Errorf("template for %s: unbalanced brackets in %q", op, p)
	}
	return ct, nil
}

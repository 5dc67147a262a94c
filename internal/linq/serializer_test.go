package linq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/expr"
)

func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	s, err := NewSerializer(CasingCapitalize, nil)
	require.NoError(t, err)
	return s
}

func TestRender_Leaves(t *testing.T) {
	s := newTestSerializer(t)
	company := expr.NewRoot("company")

	tests := []struct {
		name string
		node expr.Node
		want string
	}{
		{"root", company, "company"},
		{"property", company.Get("name"), "company.Name"},
		{"nested property", company.Get("address").Get("city"), "company.Address.City"},
		{"list element", company.Get("employees").At(0).Get("firstname"), "company.Employees[0].Firstname"},
		{"string", expr.Str("C"), `"C"`},
		{"string with escapes", expr.Str("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"int", expr.Num(42), "42"},
		{"negative int", expr.Num(-7), "-7"},
		{"float", expr.Dec(2.5), "2.5"},
		{"bool", expr.Truth(true), "true"},
		{"raw", expr.Template("docs.Companies"), "docs.Companies"},
		{"lambda", &expr.Lambda{Param: company, Body: company.Get("name")}, "company => company.Name"},
		{"empty projection", expr.New(), "new {}"},
		{"projection", expr.New().With("A", expr.Num(1)).WithPath(company.Get("name"), company.Get("name")), "new {A = 1, Name = company.Name}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Precedence(t *testing.T) {
	s := newTestSerializer(t)
	a, b, c := expr.NewRoot("a"), expr.NewRoot("b"), expr.NewRoot("c")

	tests := []struct {
		name string
		node expr.Node
		want string
	}{
		{"looser left operand", expr.Mul(expr.Add(a, b), c), "(a + b) * c"},
		{"tighter operand", expr.Add(expr.Mul(a, b), c), "a * b + c"},
		{"left associative", expr.Sub(expr.Sub(a, b), c), "a - b - c"},
		{"right operand same level", expr.Sub(a, expr.Sub(b, c)), "a - (b - c)"},
		{"division chain", expr.Div(a, expr.Mul(b, c)), "a / (b * c)"},
		{"and over or", expr.And(expr.Or(a, b), c), "(a || b) && c"},
		{"or over and", expr.Or(expr.And(a, b), c), "a && b || c"},
		{"not over and", expr.Not(expr.And(a, b)), "!(a && b)"},
		{"not over method", expr.Not(a.StartsWith("x")), `!a.StartsWith("x")`},
		{"method on sum", expr.StartsWith(expr.Add(a, b), expr.Str("x")), `(a + b).StartsWith("x")`},
		{"call argument never wrapped", expr.Length(expr.Add(a, b)), "length(a + b)"},
		{"comparison of sizes", a.Get("items").Size().Lt(expr.Num(10)), "a.Items.Length < 10"},
		{"equality of comparisons", expr.Eq(expr.Lt(a, b), expr.Truth(true)), "a < b == true"},
		{"index of sum", expr.NewOperation(expr.OpListElement, a, expr.Add(b, c)), "a[b + c]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	s := newTestSerializer(t)
	a := expr.NewRoot("a")

	tests := []struct {
		name string
		node expr.Node
		code ErrorCode
	}{
		{"unknown operator", expr.NewOperation("MODULO", a, expr.Num(2)), ErrCodeUnsupportedOperator},
		{"unknown operator nested", expr.Eq(expr.NewOperation("POW", a, a), a), ErrCodeUnsupportedOperator},
		{"dotted field name", expr.New().With("a.b", a), ErrCodeInvalidField},
		{"empty field name", expr.New().With("", a), ErrCodeInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Render(tt.node)
			require.Error(t, err)
			assert.Empty(t, got)

			var linqErr *Error
			require.ErrorAs(t, err, &linqErr)
			assert.Equal(t, tt.code, linqErr.Code)
		})
	}
}

func TestRender_MalformedTrees(t *testing.T) {
	s := newTestSerializer(t)
	a := expr.NewRoot("a")

	tests := []struct {
		name string
		node expr.Node
	}{
		{"nil node", nil},
		{"arity mismatch", expr.NewOperation(expr.OpEq, a)},
		{"lambda over member", &expr.Lambda{Param: a.Get("x"), Body: a}},
		{"constant without value", expr.Constant{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Render(tt.node)
			assert.Error(t, err)
		})
	}
}

func TestRender_CasingPreserve(t *testing.T) {
	s, err := NewSerializer(CasingPreserve, nil)
	require.NoError(t, err)

	got, err := s.Render(expr.NewRoot("group").Get("key").Get("name"))
	require.NoError(t, err)
	assert.Equal(t, "group.key.name", got)
}

func TestParseCasing(t *testing.T) {
	tests := []struct {
		in      string
		want    Casing
		wantErr bool
	}{
		{"", CasingCapitalize, false},
		{"capitalize", CasingCapitalize, false},
		{"Preserve", CasingPreserve, false},
		{" preserve ", CasingPreserve, false},
		{"camel", CasingCapitalize, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCasing(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseCasing(t, got.String()))
		})
	}
}

func mustParseCasing(t *testing.T, s string) Casing {
	t.Helper()
	c, err := ParseCasing(s)
	require.NoError(t, err)
	return c
}

func TestCompileTemplate(t *testing.T) {
	tests := []struct {
		pattern string
		arity   int
		wantErr bool
	}{
		{"{0} == {1}", 2, false},
		{"{0}.SelectMany({1}, {2})", 3, false},
		{"!{0}", 1, false},
		{"length({0})", 1, false},
		{"{0}.Where({1}", 0, true},
		{"{0})", 0, true},
		{"{x}", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			ct, err := compileTemplate("TEST", Template{Pattern: tt.pattern, Precedence: PrecPrimary})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.arity, ct.arity)
		})
	}
}

func TestDefaultTemplates_FreshCopy(t *testing.T) {
	a := DefaultTemplates()
	a[expr.OpEq] = Template{Pattern: "{0} = {1}"}

	b := DefaultTemplates()
	assert.Equal(t, "{0} == {1}", b[expr.OpEq].Pattern)
}

package expr

// Operator tags an Operation node.
type Operator string

const (
	OpEq           Operator = "EQ"
	OpNe           Operator = "NE"
	OpLt           Operator = "LT"
	OpGt           Operator = "GT"
	OpLte          Operator = "LTE"
	OpGte          Operator = "GTE"
	OpAnd          Operator = "AND"
	OpOr           Operator = "OR"
	OpNot          Operator = "NOT"
	OpAdd          Operator = "ADD"
	OpSub          Operator = "SUB"
	OpMul          Operator = "MUL"
	OpDiv          Operator = "DIV"
	OpColSize      Operator = "COL_SIZE"
	OpStringLength Operator = "STRING_LENGTH"
	OpStartsWith   Operator = "STARTS_WITH"
	OpEndsWith     Operator = "ENDS_WITH"
	OpContains     Operator = "CONTAINS"
	OpSum          Operator = "SUM"
	OpListElement  Operator = "LIST_ELEMENT"

	// OpLambda renders "{params} => {body}"; used for multi-parameter lambdas
	// whose head is an OpParams operation.
	OpLambda Operator = "LAMBDA"
	OpParams Operator = "PARAMS"

	OpGroupBy     Operator = "GROUP_BY"
	OpOrderBy     Operator = "ORDER_BY"
	OpOrderByDesc Operator = "ORDER_BY_DESC"
	OpSelect      Operator = "SELECT"
	OpSelectMany  Operator = "SELECT_MANY"
	OpWhere       Operator = "WHERE"
)

// OrderSpec is one ordering key for OrderBy.
type OrderSpec struct {
	Target     Node
	Descending bool
}

// Asc orders by n ascending.
func Asc(n Node) OrderSpec {
	return OrderSpec{Target: n}
}

// Desc orders by n descending.
func Desc(n Node) OrderSpec {
	return OrderSpec{Target: n, Descending: true}
}

// Eq builds a == b.
func Eq(a, b Node) *Operation { return NewOperation(OpEq, a, b) }

// Ne builds a != b.
func Ne(a, b Node) *Operation { return NewOperation(OpNe, a, b) }

// Lt builds a < b.
func Lt(a, b Node) *Operation { return NewOperation(OpLt, a, b) }

// Gt builds a > b.
func Gt(a, b Node) *Operation { return NewOperation(OpGt, a, b) }

// Lte builds a <= b.
func Lte(a, b Node) *Operation { return NewOperation(OpLte, a, b) }

// Gte builds a >= b.
func Gte(a, b Node) *Operation { return NewOperation(OpGte, a, b) }

// And builds a && b.
func And(a, b Node) *Operation { return NewOperation(OpAnd, a, b) }

// Or builds a || b.
func Or(a, b Node) *Operation { return NewOperation(OpOr, a, b) }

// Not builds !a.
func Not(a Node) *Operation { return NewOperation(OpNot, a) }

// Add builds a + b.
func Add(a, b Node) *Operation { return NewOperation(OpAdd, a, b) }

// Sub builds a - b.
func Sub(a, b Node) *Operation { return NewOperation(OpSub, a, b) }

// Mul builds a * b.
func Mul(a, b Node) *Operation { return NewOperation(OpMul, a, b) }

// Div builds a / b.
func Div(a, b Node) *Operation { return NewOperation(OpDiv, a, b) }

// Size is the element count of a collection.
func Size(a Node) *Operation { return NewOperation(OpColSize, a) }

// Length is the character length of a string.
func Length(a Node) *Operation { return NewOperation(OpStringLength, a) }

// StartsWith builds a.StartsWith(b).
func StartsWith(a, b Node) *Operation { return NewOperation(OpStartsWith, a, b) }

// EndsWith builds a.EndsWith(b).
func EndsWith(a, b Node) *Operation { return NewOperation(OpEndsWith, a, b) }

// Contains builds a.Contains(b).
func Contains(a, b Node) *Operation { return NewOperation(OpContains, a, b) }

// Fluent forms on paths.

func (p *Path) Eq(n Node) *Operation { return Eq(p, n) }
func (p *Path) Ne(n Node) *Operation { return Ne(p, n) }
func (p *Path) Lt(n Node) *Operation { return Lt(p, n) }
func (p *Path) Gt(n Node) *Operation { return Gt(p, n) }
func (p *Path) Lte(n Node) *Operation { return Lte(p, n) }
func (p *Path) Gte(n Node) *Operation { return Gte(p, n) }
func (p *Path) Add(n Node) *Operation { return Add(p, n) }
func (p *Path) Sub(n Node) *Operation { return Sub(p, n) }
func (p *Path) Mul(n Node) *Operation { return Mul(p, n) }
func (p *Path) Divide(n Node) *Operation { return Div(p, n) }
func (p *Path) Size() *Operation { return Size(p) }
func (p *Path) Length() *Operation { return Length(p) }
func (p *Path) StartsWith(s string) *Operation { return StartsWith(p, Str(s)) }
func (p *Path) EndsWith(s string) *Operation { return EndsWith(p, Str(s)) }
func (p *Path) Contains(n Node) *Operation { return Contains(p, n) }
func (p *Path) Asc() OrderSpec { return Asc(p) }
func (p *Path) Desc() OrderSpec { return Desc(p) }

// Fluent forms on operations, so results can be chained
// (c.employees.Size().Lt(Num(10)), g.MustSum(x).Divide(g.MustSum(x))).

func (o *Operation) Eq(n Node) *Operation { return Eq(o, n) }
func (o *Operation) Ne(n Node) *Operation { return Ne(o, n) }
func (o *Operation) Lt(n Node) *Operation { return Lt(o, n) }
func (o *Operation) Gt(n Node) *Operation { return Gt(o, n) }
func (o *Operation) Lte(n Node) *Operation { return Lte(o, n) }
func (o *Operation) Gte(n Node) *Operation { return Gte(o, n) }
func (o *Operation) And(n Node) *Operation { return And(o, n) }
func (o *Operation) Or(n Node) *Operation { return Or(o, n) }
func (o *Operation) Not() *Operation { return Not(o) }
func (o *Operation) Add(n Node) *Operation { return Add(o, n) }
func (o *Operation) Sub(n Node) *Operation { return Sub(o, n) }
func (o *Operation) Mul(n Node) *Operation { return Mul(o, n) }
func (o *Operation) Divide(n Node) *Operation { return Div(o, n) }
func (o *Operation) Asc() OrderSpec { return Asc(o) }
func (o *Operation) Desc() OrderSpec { return Desc(o) }

package query

import (
	"github.com/hauke96/sigolo/v2"
	"strings"
)

// Query is the result of parsing a query string. Expression and Ordering are nil when the query has no filter or no
// "order by" clause. The empty query string results in a query where both are nil.
type Query struct {
	Expression Expression
	Ordering   *Ordering
}

func NewQuery(expression Expression, ordering *Ordering) *Query {
	return &Query{
		Expression: expression,
		Ordering:   ordering,
	}
}

func (q *Query) IsEmpty() bool {
	return q.Expression == nil && q.Ordering == nil
}

// Equal returns true when both queries have the same structure and literal values.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}
	if !EqualExpressions(q.Expression, other.Expression) {
		return false
	}
	if q.Ordering == nil || other.Ordering == nil {
		return q.Ordering == nil && other.Ordering == nil
	}
	return q.Ordering.Equal(other.Ordering)
}

// String renders the query in its canonical form. Parsing this string again results in an equal query.
func (q *Query) String() string {
	var parts []string
	if q.Expression != nil {
		parts = append(parts, q.Expression.String())
	}
	if q.Ordering != nil {
		parts = append(parts, q.Ordering.String())
	}
	return strings.Join(parts, " ")
}

func (q *Query) Print() {
	sigolo.Debugf("Query:")
	if q.Expression != nil {
		q.Expression.Print(2)
	}
	if q.Ordering != nil {
		sigolo.Debugf("  %s", q.Ordering.String())
	}
}

// EqualExpressions compares two expression trees structurally. Two nil expressions are equal.
func EqualExpressions(a Expression, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch aExpression := a.(type) {
	case *LogicalExpression:
		bExpression, ok := b.(*LogicalExpression)
		return ok &&
			aExpression.Operator == bExpression.Operator &&
			EqualExpressions(aExpression.Left, bExpression.Left) &&
			EqualExpressions(aExpression.Right, bExpression.Right)
	case *ComparisonExpression:
		bExpression, ok := b.(*ComparisonExpression)
		return ok &&
			aExpression.Operator == bExpression.Operator &&
			aExpression.Name.Equal(bExpression.Name) &&
			equalValues(aExpression.Value, bExpression.Value)
	}
	return false
}

func equalValues(a Value, b Value) bool {
	_, aIsList := a.(List)
	_, bIsList := b.(List)
	if aIsList != bIsList {
		return false
	}

	aConsts := a.Consts()
	bConsts := b.Consts()
	if len(aConsts) != len(bConsts) {
		return false
	}
	for i := range aConsts {
		if aConsts[i] != bConsts[i] {
			return false
		}
	}
	return true
}

func (n Name) Equal(other Name) bool {
	if len(n.Parts) != len(other.Parts) {
		return false
	}
	for i := range n.Parts {
		if n.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

type Ordering struct {
	Keys []OrderingKey
}

func NewOrdering(keys ...OrderingKey) *Ordering {
	return &Ordering{Keys: keys}
}

func (o *Ordering) Equal(other *Ordering) bool {
	if len(o.Keys) != len(other.Keys) {
		return false
	}
	for i := range o.Keys {
		if !o.Keys[i].Name.Equal(other.Keys[i].Name) || o.Keys[i].Direction != other.Keys[i].Direction {
			return false
		}
	}
	return true
}

func (o *Ordering) String() string {
	keys := make([]string, len(o.Keys))
	for i, key := range o.Keys {
		keys[i] = key.String()
	}
	return "order by " + strings.Join(keys, ", ")
}

type OrderingKey struct {
	Name      Name
	Direction Direction
}

func NewOrderingKey(name Name, direction Direction) OrderingKey {
	return OrderingKey{
		Name:      name,
		Direction: direction,
	}
}

func (k OrderingKey) String() string {
	if k.Direction == DirectionNone {
		return k.Name.Value()
	}
	return k.Name.Value() + " " + k.Direction.String()
}

package query

import "fmt"

type ComparisonOperator int

const (
	CompInvalid ComparisonOperator = iota
	CompEqual
	CompNotEqual
	CompGreater
	CompGreaterEqual
	CompLess
	CompLessEqual
	CompContains
	CompNotContains
	CompIn
	CompNotIn
	CompStartsWith
	CompNotStartsWith
	CompEndsWith
	CompNotEndsWith
)

// AllComparisonOperators lists every valid comparison operator in declaration order.
var AllComparisonOperators = []ComparisonOperator{
	CompEqual,
	CompNotEqual,
	CompGreater,
	CompGreaterEqual,
	CompLess,
	CompLessEqual,
	CompContains,
	CompNotContains,
	CompIn,
	CompNotIn,
	CompStartsWith,
	CompNotStartsWith,
	CompEndsWith,
	CompNotEndsWith,
}

func (o ComparisonOperator) String() string {
	switch o {
	case CompEqual:
		return "="
	case CompNotEqual:
		return "!="
	case CompGreater:
		return ">"
	case CompGreaterEqual:
		return ">="
	case CompLess:
		return "<"
	case CompLessEqual:
		return "<="
	case CompContains:
		return "~"
	case CompNotContains:
		return "!~"
	case CompIn:
		return "in"
	case CompNotIn:
		return "not in"
	case CompStartsWith:
		return "startswith"
	case CompNotStartsWith:
		return "not startswith"
	case CompEndsWith:
		return "endswith"
	case CompNotEndsWith:
		return "not endswith"
	}
	return fmt.Sprintf("[!UNKNOWN ComparisonOperator %d]", o)
}

// IsNegated returns true for the operators that are the negation of another operator (e.g. "!=" or "not in").
func (o ComparisonOperator) IsNegated() bool {
	switch o {
	case CompNotEqual, CompNotContains, CompNotIn, CompNotStartsWith, CompNotEndsWith:
		return true
	}
	return false
}

// Positive returns the non-negated form of the operator, e.g. "=" for "!=". Non-negated operators are returned as
// they are.
func (o ComparisonOperator) Positive() ComparisonOperator {
	switch o {
	case CompNotEqual:
		return CompEqual
	case CompNotContains:
		return CompContains
	case CompNotIn:
		return CompIn
	case CompNotStartsWith:
		return CompStartsWith
	case CompNotEndsWith:
		return CompEndsWith
	}
	return o
}

// IsOrdering returns true for >, >=, < and <=. The = and != operators are considered "equality" but not ordering
// operators.
func (o ComparisonOperator) IsOrdering() bool {
	return o == CompGreater || o == CompGreaterEqual || o == CompLess || o == CompLessEqual
}

// IsListOperator returns true for "in" and "not in", which take a parenthesized list as value.
func (o ComparisonOperator) IsListOperator() bool {
	return o == CompIn || o == CompNotIn
}

type LogicalOperator int

const (
	LogicOpInvalid LogicalOperator = iota
	LogicOpAnd
	LogicOpOr
)

func (o LogicalOperator) String() string {
	switch o {
	case LogicOpAnd:
		return "and"
	case LogicOpOr:
		return "or"
	}
	return fmt.Sprintf("[!UNKNOWN LogicalOperator %d]", o)
}

type Direction int

const (
	// DirectionNone is used when no direction was given in the query. It sorts ascending.
	DirectionNone Direction = iota
	DirectionAsc
	DirectionDesc
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return ""
	case DirectionAsc:
		return "asc"
	case DirectionDesc:
		return "desc"
	}
	return fmt.Sprintf("[!UNKNOWN Direction %d]", d)
}

// IsDescending returns true only for DirectionDesc, DirectionNone defaults to ascending order.
func (d Direction) IsDescending() bool {
	return d == DirectionDesc
}

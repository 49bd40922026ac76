package compiler

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/parser"
	"searchdsl/predicate"
	"searchdsl/query"
	"searchdsl/schema"
)

// OrderKey is one key of the compiled ordering.
type OrderKey struct {
	Lookup     string
	Descending bool
}

func (k OrderKey) Direction() string {
	if k.Descending {
		return "desc"
	}
	return "asc"
}

func (k OrderKey) String() string {
	return k.Lookup + " " + k.Direction()
}

func (k OrderKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lookup    string `json:"lookup"`
		Direction string `json:"direction"`
	}{
		Lookup:    k.Lookup,
		Direction: k.Direction(),
	})
}

// Result is a validated and compiled query.
type Result struct {
	Query *query.Query `json:"-"`
	// Filter is an Always(true) node when the query has no filter expression.
	Filter predicate.Node `json:"filter"`
	Order  []OrderKey     `json:"order"`
}

// predicateOp maps the positive form of a comparison operator onto the predicate operator.
func predicateOp(operator query.ComparisonOperator) (predicate.Op, error) {
	switch operator.Positive() {
	case query.CompEqual:
		return predicate.OpEqual, nil
	case query.CompGreater:
		return predicate.OpGreater, nil
	case query.CompGreaterEqual:
		return predicate.OpGreaterEqual, nil
	case query.CompLess:
		return predicate.OpLess, nil
	case query.CompLessEqual:
		return predicate.OpLessEqual, nil
	case query.CompContains:
		return predicate.OpContains, nil
	case query.CompIn:
		return predicate.OpIn, nil
	case query.CompStartsWith:
		return predicate.OpPrefix, nil
	case query.CompEndsWith:
		return predicate.OpSuffix, nil
	}
	return predicate.OpInvalid, errors.Errorf("Unknown comparison operator %s", operator.String())
}

// CompileQueryString parses, validates and compiles the query. Errors are LexError, ParseError or SchemaError values
// (wrapped or not), so callers can use errors.As to find out what went wrong.
func CompileQueryString(queryString string, s *schema.Schema) (*Result, error) {
	q, err := parser.ParseQueryString(queryString)
	if err != nil {
		return nil, err
	}
	return Compile(q, s)
}

// Compile validates the query against the schema and compiles its filter and ordering. Without schema, nothing is
// validated and the dotted names are used as lookups.
func Compile(q *query.Query, s *schema.Schema) (*Result, error) {
	if s != nil {
		err := s.Validate(q)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Query:  q,
		Filter: predicate.NewAlways(true),
	}

	if q.Expression != nil {
		filter, err := CompileFilter(q.Expression, s)
		if err != nil {
			return nil, err
		}
		result.Filter = filter
	}

	order, err := CompileOrder(q.Ordering, s)
	if err != nil {
		return nil, err
	}
	result.Order = order

	sigolo.Debugf("Compiled filter: %s", result.Filter.String())
	return result, nil
}

// CompileFilter turns the expression into a predicate tree. Comparisons of custom fields are delegated to their
// builder. The schema may be nil, the dotted names are used as lookups in that case.
func CompileFilter(expression query.Expression, s *schema.Schema) (predicate.Node, error) {
	switch e := expression.(type) {
	case *query.LogicalExpression:
		left, err := CompileFilter(e.Left, s)
		if err != nil {
			return nil, err
		}
		right, err := CompileFilter(e.Right, s)
		if err != nil {
			return nil, err
		}

		switch e.Operator {
		case query.LogicOpAnd:
			return predicate.NewAnd(left, right), nil
		case query.LogicOpOr:
			return predicate.NewOr(left, right), nil
		}
		return nil, errors.Errorf("Unknown logical operator %s", e.Operator.String())
	case *query.ComparisonExpression:
		return compileComparison(e, s)
	}
	return nil, errors.Errorf("Unknown expression type %T", expression)
}

func compileComparison(comparison *query.ComparisonExpression, s *schema.Schema) (predicate.Node, error) {
	lookup := comparison.Name.Value()

	if s != nil {
		resolution, err := s.Resolve(comparison.Name)
		if err != nil {
			return nil, err
		}

		if resolution.Field.Builder != nil {
			return resolution.Field.Builder.BuildPredicate(append([]string{}, resolution.Path...), comparison.Operator, comparison.Value)
		}
		lookup = resolution.LookupKey()
	}

	op, err := predicateOp(comparison.Operator)
	if err != nil {
		return nil, err
	}

	var node predicate.Node
	if comparison.Operator.IsListOperator() {
		consts := comparison.Value.Consts()
		if len(consts) == 0 {
			// Nothing is in an empty list
			return predicate.NewAlways(comparison.Operator.IsNegated()), nil
		}

		values := make([]any, len(consts))
		for i, c := range consts {
			values[i] = c.Value
		}
		node = predicate.NewLeaf(lookup, op, values)
	} else {
		c, isConst := comparison.Value.(query.Const)
		if !isConst {
			return nil, errors.Errorf("Operator %s can't be used with list %s", comparison.Operator.String(), comparison.Value.String())
		}
		node = predicate.NewLeaf(lookup, op, c.Value)
	}

	if comparison.Operator.IsNegated() {
		node = predicate.NewNot(node)
	}
	return node, nil
}

// CompileOrder turns the ordering into order keys in the order of declaration. A nil ordering results in no keys.
func CompileOrder(ordering *query.Ordering, s *schema.Schema) ([]OrderKey, error) {
	if ordering == nil {
		return nil, nil
	}

	keys := make([]OrderKey, len(ordering.Keys))
	for i, key := range ordering.Keys {
		lookup := key.Name.Value()
		descending := key.Direction.IsDescending()
		if s != nil {
			resolution, err := s.Resolve(key.Name)
			if err != nil {
				return nil, err
			}
			lookup = resolution.LookupKey()

			if resolution.Field.Builder != nil {
				orderBuilder, canOrder := resolution.Field.Builder.(schema.OrderBuilder)
				if !canOrder {
					return nil, schema.NewSchemaError("Field %s can't be used for ordering", key.Name.Value())
				}
				lookup, descending, err = orderBuilder.BuildOrder(append([]string{}, resolution.Path...), descending)
				if err != nil {
					return nil, err
				}
			}
		}

		keys[i] = OrderKey{
			Lookup:     lookup,
			Descending: descending,
		}
	}

	return keys, nil
}

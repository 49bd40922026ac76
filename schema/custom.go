package schema

import (
	"github.com/pkg/errors"
	"searchdsl/predicate"
	"searchdsl/query"
	"strings"
	"time"
)

// NewAliasField creates a custom field that is searched under a different backend key, e.g. a field "author" of type
// str with the lookup "author.username".
func NewAliasField(name string, fieldType FieldType, lookup string) *FieldSpec {
	return &FieldSpec{
		Name:       name,
		Type:       fieldType,
		LookupName: lookup,
	}
}

// NewAgeField creates an integer field for the age in years that is computed from a date of birth stored under the
// given lookup. The now function defines the current time and is time.Now when nil.
func NewAgeField(name string, dateOfBirthLookup string, now func() time.Time) *FieldSpec {
	if now == nil {
		now = time.Now
	}
	return &FieldSpec{
		Name:       name,
		Type:       TypeInt,
		LookupName: dateOfBirthLookup,
		Builder: &ageBuilder{
			lookup: dateOfBirthLookup,
			now:    now,
		},
	}
}

type ageBuilder struct {
	lookup string
	now    func() time.Time
}

func (b *ageBuilder) BuildPredicate(path []string, operator query.ComparisonOperator, value query.Value) (predicate.Node, error) {
	lookup := strings.Join(append(append([]string{}, path...), b.lookup), ".")
	now := b.now()

	switch operator {
	case query.CompIn, query.CompNotIn:
		singleOperator := query.CompEqual
		if operator == query.CompNotIn {
			singleOperator = query.CompNotEqual
		}

		var nodes []predicate.Node
		for _, c := range value.Consts() {
			node, err := b.buildSingle(lookup, now, singleOperator, c)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}

		if operator == query.CompIn {
			return predicate.AnyOf(nodes...), nil
		}
		return predicate.AllOf(nodes...), nil
	}

	c, isConst := value.(query.Const)
	if !isConst {
		return nil, NewSchemaError("Age field %s can't be compared to a list using %s", lookup, operator.String())
	}
	return b.buildSingle(lookup, now, operator, c)
}

// BuildOrder orders by the date of birth in the opposite direction, since a higher age means an earlier date.
func (b *ageBuilder) BuildOrder(path []string, descending bool) (string, bool, error) {
	lookup := strings.Join(append(append([]string{}, path...), b.lookup), ".")
	return lookup, !descending, nil
}

// buildSingle translates a comparison of the age into a comparison of the date of birth. Someone is n years old when
// born after the date n+1 years ago and at or before the date n years ago.
func (b *ageBuilder) buildSingle(lookup string, now time.Time, operator query.ComparisonOperator, c query.Const) (predicate.Node, error) {
	years, isInt := c.Value.(int64)
	if !isInt {
		return nil, errors.Errorf("Age must be an integer number but was %s", c.String())
	}

	start := yearsAgo(now, int(years)+1)
	end := yearsAgo(now, int(years))

	switch operator {
	case query.CompEqual:
		return predicate.NewAnd(
			predicate.NewLeaf(lookup, predicate.OpGreater, start),
			predicate.NewLeaf(lookup, predicate.OpLessEqual, end),
		), nil
	case query.CompNotEqual:
		return predicate.NewOr(
			predicate.NewLeaf(lookup, predicate.OpLessEqual, start),
			predicate.NewLeaf(lookup, predicate.OpGreater, end),
		), nil
	case query.CompGreater:
		return predicate.NewLeaf(lookup, predicate.OpLess, start), nil
	case query.CompGreaterEqual:
		return predicate.NewLeaf(lookup, predicate.OpLess, end), nil
	case query.CompLess:
		return predicate.NewLeaf(lookup, predicate.OpGreater, end), nil
	case query.CompLessEqual:
		return predicate.NewLeaf(lookup, predicate.OpGreaterEqual, start), nil
	}

	return nil, NewSchemaError("Operator %s can't be used with age field %s", operator.String(), lookup)
}

// yearsAgo returns the time exactly the given number of years before the given time. The 29th of February becomes the
// 28th of February in years that are no leap years.
func yearsAgo(from time.Time, years int) time.Time {
	year := from.Year() - years
	month := from.Month()
	day := from.Day()

	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}

	return time.Date(year, month, day, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

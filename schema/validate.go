package schema

import (
	"searchdsl/query"
)

// Validate checks that all names of the query exist and that all values can be compared to their fields.
func (s *Schema) Validate(q *query.Query) error {
	if q == nil {
		return nil
	}

	if q.Expression != nil {
		err := s.ValidateExpression(q.Expression)
		if err != nil {
			return err
		}
	}

	if q.Ordering != nil {
		for _, key := range q.Ordering.Keys {
			_, err := s.Resolve(key.Name)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Schema) ValidateExpression(expression query.Expression) error {
	switch e := expression.(type) {
	case *query.LogicalExpression:
		err := s.ValidateExpression(e.Left)
		if err != nil {
			return err
		}
		return s.ValidateExpression(e.Right)
	case *query.ComparisonExpression:
		return s.validateComparison(e)
	}
	return NewSchemaError("Unknown expression type %T", expression)
}

func (s *Schema) validateComparison(comparison *query.ComparisonExpression) error {
	resolution, err := s.Resolve(comparison.Name)
	if err != nil {
		return err
	}

	fieldName := comparison.Name.Value()
	field := resolution.Field

	if field.IsRelation() {
		if c, isConst := comparison.Value.(query.Const); !isConst || !c.IsNull() {
			return NewSchemaError("Related model %s can be compared to None only, but not to %s", fieldName, valueTypeName(comparison.Value))
		}
		return nil
	}

	for _, c := range comparison.Value.Consts() {
		err = validateConst(fieldName, field, c)
		if err != nil {
			return err
		}
	}

	return nil
}

func validateConst(fieldName string, field *FieldSpec, c query.Const) error {
	if c.IsNull() {
		if !field.Nullable {
			return NewSchemaError("Field %s is not nullable, can't compare it to None", fieldName)
		}
		return nil
	}

	if !field.Type.accepts(c.Kind) {
		if field.Nullable {
			return NewSchemaError(`Field "%s" has "nullable %s" type. It can be compared to %s or None, but not to %s`, fieldName, field.Type.String(), field.Type.possibleValues(), c.String())
		}
		return NewSchemaError(`Field "%s" has "%s" type. It can be compared to %s, but not to %s`, fieldName, field.Type.String(), field.Type.possibleValues(), c.String())
	}

	switch field.Type {
	case TypeDate:
		_, err := ParseDate(c.StringValue())
		if err != nil {
			return NewSchemaError(`Field "%s" can be compared to dates in "YYYY-MM-DD" format, but not to %s`, fieldName, c.String())
		}
	case TypeDatetime:
		_, err := ParseDatetime(c.StringValue())
		if err != nil {
			return NewSchemaError(`Field "%s" can be compared to timestamps in "YYYY-MM-DD HH:MM" format, but not to %s`, fieldName, c.String())
		}
	}

	return nil
}

func valueTypeName(value query.Value) string {
	if c, isConst := value.(query.Const); isConst {
		return c.Kind.String()
	}
	return "list"
}

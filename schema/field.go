package schema

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"searchdsl/predicate"
	"searchdsl/query"
	"strings"
)

type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeInt
	TypeFloat
	TypeStr
	TypeBool
	TypeDate
	TypeDatetime
	TypeRelation
)

func (t FieldType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeDatetime:
		return "datetime"
	case TypeRelation:
		return "relation"
	}
	return fmt.Sprintf("[!UNKNOWN FieldType %d]", t)
}

func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(text []byte) error {
	fieldType, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = fieldType
	return nil
}

// ParseFieldType turns the textual type (e.g. "datetime") into a FieldType. Some common aliases like "string" or
// "integer" are accepted as well.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return TypeUnknown, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "decimal", "number":
		return TypeFloat, nil
	case "str", "string", "text":
		return TypeStr, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "date":
		return TypeDate, nil
	case "datetime", "timestamp":
		return TypeDatetime, nil
	case "relation":
		return TypeRelation, nil
	}
	return TypeUnknown, errors.Errorf("Unknown field type '%s'", s)
}

// possibleValues describes which literals can be compared to fields of this type.
func (t FieldType) possibleValues() string {
	switch t {
	case TypeInt:
		return "integer numbers"
	case TypeFloat:
		return "floating point numbers"
	case TypeStr:
		return "strings"
	case TypeBool:
		return "True or False"
	case TypeDate:
		return `dates in "YYYY-MM-DD" format`
	case TypeDatetime:
		return `timestamps in "YYYY-MM-DD HH:MM" format`
	}
	return "any value"
}

// accepts returns true when a literal of the given kind can be compared to a field of this type. The null literal is
// not handled here, since it depends on the nullability of the field.
func (t FieldType) accepts(kind query.ConstKind) bool {
	switch t {
	case TypeInt:
		return kind == query.ConstInt
	case TypeFloat:
		return kind == query.ConstInt || kind == query.ConstFloat
	case TypeStr, TypeDate, TypeDatetime:
		return kind == query.ConstString
	case TypeBool:
		return kind == query.ConstBool
	case TypeUnknown:
		return true
	}
	return false
}

// PredicateBuilder creates a custom predicate for a comparison instead of the generic "lookup op value" leaf. The
// path contains the lookup names of the relations leading to the field (e.g. ["author"] for "author.age").
type PredicateBuilder interface {
	BuildPredicate(path []string, operator query.ComparisonOperator, value query.Value) (predicate.Node, error)
}

// OrderBuilder is implemented by predicate builders of fields that can be used for ordering. It returns the lookup to
// order by and the direction, which may differ from the requested one when the stored value runs opposite to the
// field. Custom fields with a builder not implementing it can't be ordered by.
type OrderBuilder interface {
	BuildOrder(path []string, descending bool) (string, bool, error)
}

// SuggestionProvider lists values for a field that the user might want to search for. Implementations might query a
// database, which is why a context is passed.
type SuggestionProvider interface {
	// Suggestions returns at most limit values containing the search string, skipping the first offset values.
	Suggestions(ctx context.Context, search string, offset int, limit int) ([]string, error)
}

// FieldSpec describes one searchable field of an entity.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Nullable bool
	// Relation is the label of the related entity for fields of type TypeRelation.
	Relation string
	// Options is nil for fields without suggestions.
	Options SuggestionProvider
	// LookupName is the key used by backends. The Name is used when this is empty.
	LookupName string
	// Builder is nil for fields using the generic comparison.
	Builder PredicateBuilder
}

func NewField(name string, fieldType FieldType, nullable bool) *FieldSpec {
	return &FieldSpec{
		Name:     name,
		Type:     fieldType,
		Nullable: nullable,
	}
}

func NewRelationField(name string, relation string, nullable bool) *FieldSpec {
	return &FieldSpec{
		Name:     name,
		Type:     TypeRelation,
		Nullable: nullable,
		Relation: relation,
	}
}

func (f *FieldSpec) Lookup() string {
	if f.LookupName != "" {
		return f.LookupName
	}
	return f.Name
}

func (f *FieldSpec) IsRelation() bool {
	return f.Type == TypeRelation
}

func (f *FieldSpec) HasOptions() bool {
	return f.Options != nil
}

func (f *FieldSpec) String() string {
	nullable := ""
	if f.Nullable {
		nullable = "nullable "
	}
	if f.IsRelation() {
		return fmt.Sprintf("%s (%srelation to %s)", f.Name, nullable, f.Relation)
	}
	return fmt.Sprintf("%s (%s%s)", f.Name, nullable, f.Type.String())
}

// copyField returns a shallow copy so that the schema never shares mutable field specs with its configuration.
func copyField(f *FieldSpec) *FieldSpec {
	copied := *f
	return &copied
}

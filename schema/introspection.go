package schema

import (
	"bytes"
	"encoding/json"
	"github.com/pkg/errors"
)

// Introspection is the serializable description of a schema used by clients (e.g. for completion).
type Introspection struct {
	CurrentModel      string               `json:"current_model"`
	Models            map[string]*FieldMap `json:"models"`
	SuggestionsAPIURL string               `json:"suggestions_api_url,omitempty"`
}

type fieldIntrospection struct {
	Type     FieldType `json:"type"`
	Relation *string   `json:"relation"`
	Nullable bool      `json:"nullable"`
	Options  bool      `json:"options"`
}

// Introspect describes all entities of the schema. The suggestions URL is left out when empty.
func (s *Schema) Introspect(suggestionsURL string) (*Introspection, error) {
	models, err := s.Models()
	if err != nil {
		return nil, err
	}

	return &Introspection{
		CurrentModel:      s.root,
		Models:            models,
		SuggestionsAPIURL: suggestionsURL,
	}, nil
}

// MarshalJSON writes the fields as JSON object keeping the order of the fields.
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	buffer.WriteString("{")

	for i, field := range m.Fields() {
		if i > 0 {
			buffer.WriteString(",")
		}

		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to marshal name of field %s", field.Name)
		}

		description := fieldIntrospection{
			Type:     field.Type,
			Nullable: field.Nullable,
			Options:  field.HasOptions(),
		}
		if field.IsRelation() {
			relation := field.Relation
			description.Relation = &relation
		}

		value, err := json.Marshal(description)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to marshal field %s", field.Name)
		}

		buffer.Write(key)
		buffer.WriteString(":")
		buffer.Write(value)
	}

	buffer.WriteString("}")
	return buffer.Bytes(), nil
}

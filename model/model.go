package model

import (
	"bytes"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"os"
	"searchdsl/schema"
	"time"
)

const (
	CustomKindAlias = "alias"
	CustomKindAge   = "age"
)

// Model is the YAML description of the searchable entities of a backend, e.g.:
//
//	root: book
//	exclude: [permission]
//	entities:
//	  - label: book
//	    table: books
//	    fields:
//	      - {name: name, type: str, column: title, suggest: true}
//	      - {name: author, type: relation, relation: user, nullable: true, column: author_id}
//	    custom_fields:
//	      - {name: written_in_year, kind: alias, type: int, lookup: written.year}
type Model struct {
	Root         string    `yaml:"root"`
	Include      []string  `yaml:"include"`
	Exclude      []string  `yaml:"exclude"`
	HiddenFields []string  `yaml:"hidden_fields"`
	Entities     []*Entity `yaml:"entities"`
}

type Entity struct {
	Label        string         `yaml:"label"`
	Table        string         `yaml:"table"`
	Fields       []*Field       `yaml:"fields"`
	CustomFields []*CustomField `yaml:"custom_fields"`
}

type Field struct {
	Name     string           `yaml:"name"`
	Type     schema.FieldType `yaml:"type"`
	Nullable bool             `yaml:"nullable"`
	Relation string           `yaml:"relation"`
	Options  []string         `yaml:"options"`
	Lookup   string           `yaml:"lookup"`
	// Column is the SQL column of the field, the name is used when empty. For relations this is the foreign key
	// column.
	Column string `yaml:"column"`
	// Suggest enables suggestions from the distinct values of the column.
	Suggest bool `yaml:"suggest"`
}

type CustomField struct {
	Name   string           `yaml:"name"`
	Kind   string           `yaml:"kind"`
	Type   schema.FieldType `yaml:"type"`
	Lookup string           `yaml:"lookup"`
}

// Load reads and validates the model file. Unknown keys are rejected to catch typos.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read model file %s", path)
	}

	model, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load model file %s", path)
	}

	sigolo.Debugf("Loaded model with %d entities from %s", len(model.Entities), path)
	return model, nil
}

func Parse(data []byte) (*Model, error) {
	model := &Model{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(model)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse YAML")
	}

	err = model.validate()
	if err != nil {
		return nil, err
	}

	return model, nil
}

func (m *Model) validate() error {
	labels := map[string]bool{}
	for _, entity := range m.Entities {
		if entity.Label == "" {
			return errors.New("Entity without label")
		}
		if labels[entity.Label] {
			return errors.Errorf("Entity %s is defined multiple times", entity.Label)
		}
		labels[entity.Label] = true

		fieldNames := map[string]bool{}
		for _, field := range entity.Fields {
			if field.Name == "" {
				return errors.Errorf("Field without name in entity %s", entity.Label)
			}
			if fieldNames[field.Name] {
				return errors.Errorf("Field %s.%s is defined multiple times", entity.Label, field.Name)
			}
			fieldNames[field.Name] = true

			if field.Type != schema.TypeRelation && field.Relation != "" {
				return errors.Errorf("Field %s.%s has a relation but is of type %s", entity.Label, field.Name, field.Type.String())
			}
		}

		for _, customField := range entity.CustomFields {
			if customField.Name == "" {
				return errors.Errorf("Custom field without name in entity %s", entity.Label)
			}
			if customField.Lookup == "" {
				return errors.Errorf("Custom field %s.%s has no lookup", entity.Label, customField.Name)
			}
			if customField.Kind != CustomKindAlias && customField.Kind != CustomKindAge {
				return errors.Errorf("Custom field %s.%s has unknown kind '%s', expected '%s' or '%s'", entity.Label, customField.Name, customField.Kind, CustomKindAlias, CustomKindAge)
			}
		}
	}

	if m.Root != "" && !labels[m.Root] {
		return errors.Errorf("Root entity %s is not defined", m.Root)
	}

	return nil
}

// Entity returns the entity with the given label or nil.
func (m *Model) Entity(label string) *Entity {
	for _, entity := range m.Entities {
		if entity.Label == label {
			return entity
		}
	}
	return nil
}

// Catalog describes all entities of the model.
func (m *Model) Catalog() *schema.StaticCatalog {
	catalog := schema.NewStaticCatalog()

	for _, entity := range m.Entities {
		descriptor := &schema.EntityDescriptor{
			Label: entity.Label,
		}
		for _, field := range entity.Fields {
			descriptor.Fields = append(descriptor.Fields, schema.FieldDescriptor{
				Name:     field.Name,
				Type:     field.Type,
				Nullable: field.Nullable,
				Relation: field.Relation,
				Options:  field.Options,
				Lookup:   field.Lookup,
			})
		}
		catalog.Add(descriptor)
	}

	return catalog
}

// Config creates the schema configuration of the model. The providers are attached to the fields with their key, the
// now function is used by age fields (time.Now when nil).
func (m *Model) Config(providers map[schema.FieldKey]schema.SuggestionProvider, now func() time.Time) schema.Config {
	config := schema.Config{
		Include:             m.Include,
		Exclude:             m.Exclude,
		HiddenFields:        m.HiddenFields,
		CustomFields:        map[string][]*schema.FieldSpec{},
		SuggestionProviders: providers,
	}

	for _, entity := range m.Entities {
		for _, customField := range entity.CustomFields {
			var field *schema.FieldSpec
			switch customField.Kind {
			case CustomKindAge:
				field = schema.NewAgeField(customField.Name, customField.Lookup, now)
			default:
				field = schema.NewAliasField(customField.Name, customField.Type, customField.Lookup)
			}
			config.CustomFields[entity.Label] = append(config.CustomFields[entity.Label], field)
		}
	}

	return config
}

// Schema creates a schema for the given root entity or the root of the model when the label is empty.
func (m *Model) Schema(root string, providers map[schema.FieldKey]schema.SuggestionProvider) (*schema.Schema, error) {
	if root == "" {
		root = m.Root
	}
	if root == "" {
		return nil, errors.New("No root entity given and the model doesn't define one")
	}
	return schema.NewSchema(root, m.Catalog(), m.Config(providers, nil))
}

// SuggestedFields returns the keys of all fields with enabled value suggestions.
func (m *Model) SuggestedFields() []schema.FieldKey {
	var keys []schema.FieldKey
	for _, entity := range m.Entities {
		for _, field := range entity.Fields {
			if field.Suggest {
				keys = append(keys, schema.FieldKey{Entity: entity.Label, Field: field.Name})
			}
		}
	}
	return keys
}

// ColumnOf returns the column of the field, which is its name unless configured otherwise.
func (f *Field) ColumnOf() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

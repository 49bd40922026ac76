package schema

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/query"
	"sort"
	"strings"
	"sync"
)

// FieldMap contains the fields of one entity in a fixed order: custom fields first, then all other fields sorted by
// name.
type FieldMap struct {
	names  []string
	fields map[string]*FieldSpec
}

func newFieldMap() *FieldMap {
	return &FieldMap{
		fields: map[string]*FieldSpec{},
	}
}

// add adds the field unless a field with the same name already exists. Returns false in that case.
func (m *FieldMap) add(field *FieldSpec) bool {
	if _, exists := m.fields[field.Name]; exists {
		return false
	}
	m.names = append(m.names, field.Name)
	m.fields[field.Name] = field
	return true
}

// Get returns the field with the given name or nil if there's no such field.
func (m *FieldMap) Get(name string) *FieldSpec {
	return m.fields[name]
}

func (m *FieldMap) Names() []string {
	return append([]string{}, m.names...)
}

func (m *FieldMap) Fields() []*FieldSpec {
	fields := make([]*FieldSpec, len(m.names))
	for i, name := range m.names {
		fields[i] = m.fields[name]
	}
	return fields
}

func (m *FieldMap) Len() int {
	return len(m.names)
}

// Schema describes all entities and fields reachable from the root entity. The entities are introspected lazily on
// first use and exactly once, so a Schema can be shared between goroutines.
type Schema struct {
	root    string
	catalog Catalog
	config  Config

	once      sync.Once
	models    map[string]*FieldMap
	modelsErr error
}

// NewSchema creates a schema for the given root entity. The config is copied, so later changes to it have no effect
// on the schema.
func NewSchema(root string, catalog Catalog, config Config) (*Schema, error) {
	if catalog == nil {
		return nil, NewSchemaError("Schema must be initialized with a catalog")
	}
	if len(config.Include) > 0 && len(config.Exclude) > 0 {
		return nil, NewSchemaError("Either include or exclude can be specified, but not both")
	}

	config = copyConfig(config)
	if config.isExcluded(root) {
		return nil, NewSchemaError("%s can't be used as root entity because it's excluded from the schema", root)
	}

	_, err := catalog.Entity(root)
	if err != nil {
		return nil, NewSchemaError("Schema must be initialized with a known entity, but %s is unknown: %s", root, err.Error())
	}

	return &Schema{
		root:    root,
		catalog: catalog,
		config:  config,
	}, nil
}

func (s *Schema) Root() string {
	return s.root
}

// Models returns the field maps of all entities reachable from the root entity by their label. The result must not be
// modified.
func (s *Schema) Models() (map[string]*FieldMap, error) {
	s.once.Do(func() {
		sigolo.Debugf("Introspect schema for root entity %s", s.root)
		models := map[string]*FieldMap{}
		err := s.introspect(s.root, map[string]bool{}, models)
		if err != nil {
			s.modelsErr = err
			return
		}
		s.models = models
		sigolo.Debugf("Introspected %d entities for root entity %s", len(models), s.root)
	})
	return s.models, s.modelsErr
}

// introspect adds the field map of the given entity and recursively all related entities to the models. The visited
// set contains the entities on the current path. It's copied for each call, so branches don't affect each other.
func (s *Schema) introspect(label string, visited map[string]bool, models map[string]*FieldMap) error {
	if _, alreadyBuilt := models[label]; alreadyBuilt || visited[label] {
		return nil
	}

	visitedOnPath := make(map[string]bool, len(visited)+1)
	for visitedLabel := range visited {
		visitedOnPath[visitedLabel] = true
	}
	visitedOnPath[label] = true

	entity, err := s.catalog.Entity(label)
	if err != nil {
		return errors.Wrapf(err, "Unable to introspect entity %s", label)
	}

	fields := s.entityFields(label, entity)
	models[label] = fields
	sigolo.Tracef("Entity %s has fields: %s", label, strings.Join(fields.Names(), ", "))

	for _, field := range fields.Fields() {
		if !field.IsRelation() || visitedOnPath[field.Relation] {
			continue
		}
		err = s.introspect(field.Relation, visitedOnPath, models)
		if err != nil {
			return err
		}
	}

	return nil
}

// entityFields creates the field map of one entity: custom fields first in their configured order, then all fields
// of the entity sorted by name.
func (s *Schema) entityFields(label string, entity *EntityDescriptor) *FieldMap {
	fieldMap := newFieldMap()

	for _, customField := range s.config.CustomFields[label] {
		if !s.isSearchableRelation(customField.Type, customField.Relation) {
			sigolo.Tracef("Skip custom relation field %s.%s to %q", label, customField.Name, customField.Relation)
			continue
		}

		field := copyField(customField)
		if provider, ok := s.config.SuggestionProviders[FieldKey{Entity: label, Field: field.Name}]; ok && field.Options == nil {
			field.Options = provider
		}
		fieldMap.add(field)
	}

	descriptors := append([]FieldDescriptor{}, entity.Fields...)
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})

	for _, descriptor := range descriptors {
		if s.config.isHidden(descriptor.Name) {
			continue
		}
		if !s.isSearchableRelation(descriptor.Type, descriptor.Relation) {
			sigolo.Tracef("Skip relation field %s.%s to %q", label, descriptor.Name, descriptor.Relation)
			continue
		}

		field := &FieldSpec{
			Name:       descriptor.Name,
			Type:       descriptor.Type,
			Nullable:   descriptor.Nullable,
			Relation:   descriptor.Relation,
			LookupName: descriptor.Lookup,
		}
		if field.Type == TypeStr {
			if provider, ok := s.config.SuggestionProviders[FieldKey{Entity: label, Field: field.Name}]; ok {
				field.Options = provider
			} else if len(descriptor.Options) > 0 {
				field.Options = NewStaticOptions(descriptor.Options...)
			}
		}

		if !fieldMap.add(field) {
			sigolo.Tracef("Field %s.%s is replaced by a custom field", label, field.Name)
		}
	}

	return fieldMap
}

// isSearchableRelation returns false for relations without a fixed target and for relations to excluded entities.
// All non-relation types are searchable.
func (s *Schema) isSearchableRelation(fieldType FieldType, relation string) bool {
	if fieldType != TypeRelation {
		return true
	}
	return relation != "" && !s.config.isExcluded(relation)
}

// Resolution is the result of resolving a dotted name.
type Resolution struct {
	// Entity is the label of the entity owning Field.
	Entity string
	// Path contains the lookup names of all relations leading to Field.
	Path []string
	// Field is the field the last part of the name refers to. This might be a relation field.
	Field *FieldSpec
}

// LookupKey returns the backend key of the resolved field including the relation path, e.g. "author.name".
func (r *Resolution) LookupKey() string {
	return strings.Join(append(append([]string{}, r.Path...), r.Field.Lookup()), ".")
}

// Resolve walks along the parts of the name through the related entities.
func (s *Schema) Resolve(name query.Name) (*Resolution, error) {
	models, err := s.Models()
	if err != nil {
		return nil, err
	}
	if len(name.Parts) == 0 {
		return nil, NewSchemaError("Empty field name")
	}

	label := s.root
	var path []string
	for i, part := range name.Parts {
		fields := models[label]
		field := fields.Get(part)
		if field == nil {
			possibleChoices := fields.Names()
			sort.Strings(possibleChoices)
			return nil, NewSchemaError("Unknown field: %s. Possible choices are: %s", part, strings.Join(possibleChoices, ", "))
		}

		if i == len(name.Parts)-1 {
			return &Resolution{
				Entity: label,
				Path:   path,
				Field:  field,
			}, nil
		}

		if !field.IsRelation() {
			return nil, NewSchemaError(`Field "%s" has "%s" type and has no field %s`, strings.Join(name.Parts[:i+1], "."), field.Type.String(), name.Parts[i+1])
		}

		path = append(path, field.Lookup())
		label = field.Relation
	}

	// Not reachable, the loop always returns
	return nil, NewSchemaError("Unable to resolve %s", name.Value())
}

// ResolveName returns the field the name refers to. The result is nil (without error) when the name refers to a
// related entity as a whole, e.g. "author" instead of "author.name".
func (s *Schema) ResolveName(name query.Name) (*FieldSpec, error) {
	resolution, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	if resolution.Field.IsRelation() {
		return nil, nil
	}
	return resolution.Field, nil
}

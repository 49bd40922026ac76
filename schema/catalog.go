package schema

import (
	"sort"
	"sync"
)

// Catalog provides the descriptions of all entities a backend knows. The schema never looks into the backend itself,
// it only consumes this information.
type Catalog interface {
	// Entity returns the description of the entity with the given label or an error if there is no such entity.
	Entity(label string) (*EntityDescriptor, error)
}

type EntityDescriptor struct {
	Label  string
	Fields []FieldDescriptor
}

type FieldDescriptor struct {
	Name     string
	Type     FieldType
	Nullable bool
	// Relation is the label of the related entity. An empty relation on a field of TypeRelation means the relation
	// has no fixed target (e.g. a generic reference), such fields are not searchable.
	Relation string
	// Options are static choices offered as suggestions for string fields.
	Options []string
	// Lookup overrides the backend key of the field, the name is used when empty.
	Lookup string
}

// StaticCatalog is an in-memory catalog holding fixed entity descriptions. It's safe for concurrent use.
type StaticCatalog struct {
	mutex    sync.RWMutex
	entities map[string]*EntityDescriptor
}

func NewStaticCatalog(entities ...*EntityDescriptor) *StaticCatalog {
	catalog := &StaticCatalog{
		entities: map[string]*EntityDescriptor{},
	}
	for _, entity := range entities {
		catalog.Add(entity)
	}
	return catalog
}

// Add adds the entity or replaces an existing entity with the same label.
func (c *StaticCatalog) Add(entity *EntityDescriptor) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entities[entity.Label] = entity
}

func (c *StaticCatalog) Entity(label string) (*EntityDescriptor, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entity, ok := c.entities[label]
	if !ok {
		return nil, NewSchemaError("Unknown entity %s", label)
	}
	return entity, nil
}

// Labels returns the sorted labels of all entities.
func (c *StaticCatalog) Labels() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var labels []string
	for label := range c.entities {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

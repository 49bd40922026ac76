package sqlquery

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"searchdsl/model"
	"searchdsl/schema"
)

// Join describes a many-to-one relation: the foreign key Column of the owning table references TargetColumn of the
// table of the Target entity.
type Join struct {
	Target       string
	Column       string
	TargetColumn string
}

// Table maps the lookup names of one entity to SQL.
type Table struct {
	Name string
	// Columns maps lookup names of plain fields to columns.
	Columns map[string]string
	// Types contains the field type of each column lookup. Date and datetime values are normalized by it.
	Types map[string]schema.FieldType
	// Relations maps lookup names of relation fields to joins.
	Relations map[string]Join
}

// Mapping describes how the entities of a schema are stored in SQL tables.
type Mapping struct {
	Root   string
	Tables map[string]*Table
	// Placeholder defaults to sq.Question (e.g. for SQLite), use sq.Dollar for PostgreSQL.
	Placeholder sq.PlaceholderFormat
}

// NewMapping creates the mapping for all entities of the model that have a table.
func NewMapping(m *model.Model, root string) (*Mapping, error) {
	if root == "" {
		root = m.Root
	}

	mapping := &Mapping{
		Root:   root,
		Tables: map[string]*Table{},
	}

	for _, entity := range m.Entities {
		if entity.Table == "" {
			continue
		}

		table := &Table{
			Name:      entity.Table,
			Columns:   map[string]string{},
			Types:     map[string]schema.FieldType{},
			Relations: map[string]Join{},
		}
		for _, field := range entity.Fields {
			lookup := field.Lookup
			if lookup == "" {
				lookup = field.Name
			}

			if field.Type == schema.TypeRelation {
				table.Relations[lookup] = Join{
					Target:       field.Relation,
					Column:       field.ColumnOf(),
					TargetColumn: "id",
				}
			} else {
				table.Columns[lookup] = field.ColumnOf()
				table.Types[lookup] = field.Type
			}
		}
		mapping.Tables[entity.Label] = table
	}

	if _, ok := mapping.Tables[root]; !ok {
		return nil, errors.Errorf("Root entity %s has no table", root)
	}

	return mapping, nil
}

func (m *Mapping) placeholder() sq.PlaceholderFormat {
	if m.Placeholder == nil {
		return sq.Question
	}
	return m.Placeholder
}

package sqlquery

import (
	"context"
	"database/sql"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"searchdsl/model"
	"searchdsl/predicate"
	"searchdsl/schema"
)

// DistinctValues suggests the distinct non-NULL values of a column that contain the search string (ignoring case).
type DistinctValues struct {
	db          *sql.DB
	table       string
	column      string
	placeholder sq.PlaceholderFormat
}

func NewDistinctValues(db *sql.DB, table string, column string) *DistinctValues {
	return &DistinctValues{
		db:          db,
		table:       table,
		column:      column,
		placeholder: sq.Question,
	}
}

func (d *DistinctValues) Suggestions(ctx context.Context, search string, offset int, limit int) ([]string, error) {
	builder := sq.Select("DISTINCT "+d.column).
		From(d.table).
		Where(sq.NotEq{d.column: nil}).
		OrderBy(d.column).
		PlaceholderFormat(d.placeholder)
	if search != "" {
		builder = builder.Where(likeCondition(d.column, predicate.OpContains, search))
	}
	if limit >= 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to create suggestion query for %s.%s", d.table, d.column)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to query suggestions for %s.%s", d.table, d.column)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		err = rows.Scan(&value)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to read suggestion for %s.%s", d.table, d.column)
		}
		values = append(values, value)
	}

	return values, errors.Wrap(rows.Err(), "Error while reading suggestions")
}

// SuggestionProviders creates DistinctValues providers for all fields of the model with enabled suggestions.
func SuggestionProviders(db *sql.DB, m *model.Model) map[schema.FieldKey]schema.SuggestionProvider {
	providers := map[schema.FieldKey]schema.SuggestionProvider{}

	for _, key := range m.SuggestedFields() {
		entity := m.Entity(key.Entity)
		if entity == nil || entity.Table == "" {
			continue
		}
		for _, field := range entity.Fields {
			if field.Name == key.Field {
				providers[key] = NewDistinctValues(db, entity.Table, field.ColumnOf())
			}
		}
	}

	return providers
}

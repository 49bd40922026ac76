package sqlquery

import (
	"context"
	"database/sql"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/compiler"
)

// Row maps column names to values.
type Row map[string]any

// Execute runs the compiled query and returns at most limit rows (all rows for a limit less than 1).
func Execute(ctx context.Context, db *sql.DB, mapping *Mapping, result *compiler.Result, limit int) ([]Row, error) {
	builder, err := mapping.Select(result)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create SQL statement")
	}
	sigolo.Debugf("Execute SQL: %s %v", query, args)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to execute query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to get columns of result")
	}

	var resultRows []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		err = rows.Scan(pointers...)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to read row")
		}

		row := Row{}
		for i, column := range columns {
			if bytes, isBytes := values[i].([]byte); isBytes {
				row[column] = string(bytes)
			} else {
				row[column] = values[i]
			}
		}
		resultRows = append(resultRows, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, errors.Wrap(err, "Error while reading rows")
	}

	sigolo.Debugf("Query returned %d rows", len(resultRows))
	return resultRows, nil
}

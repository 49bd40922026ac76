package sqlquery

import (
	"fmt"
	sq "github.com/Masterminds/squirrel"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/compiler"
	"searchdsl/predicate"
	"searchdsl/schema"
	"strings"
	"time"
)

const rootAlias = "t0"

// not negates the condition. When a column is given, rows where the column is NULL match the negation as well, like
// in the in-memory filter where a missing value never equals anything.
type not struct {
	condition sq.Sqlizer
	column    string
}

func (n not) ToSql() (string, []any, error) {
	sql, args, err := n.condition.ToSql()
	if err != nil {
		return "", nil, err
	}
	if n.column == "" {
		return fmt.Sprintf("NOT (%s)", sql), args, nil
	}
	return fmt.Sprintf("(NOT (%s) OR %s IS NULL)", sql, n.column), args, nil
}

// translator turns lookups into qualified columns and collects the joins needed for that.
type translator struct {
	mapping *Mapping
	joins   []string
	aliases map[string]string
}

func newTranslator(mapping *Mapping) *translator {
	return &translator{
		mapping: mapping,
		aliases: map[string]string{},
	}
}

// Select creates the SELECT statement for the compiled query. Without columns, all columns of the root table are
// selected. Only many-to-one relations are joined, so every row of the root table appears at most once.
func (m *Mapping) Select(result *compiler.Result, columns ...string) (sq.SelectBuilder, error) {
	rootTable, ok := m.Tables[m.Root]
	if !ok {
		return sq.SelectBuilder{}, compiler.NewCompileError("", "No table for root entity %s", m.Root)
	}

	t := newTranslator(m)

	where, err := t.condition(result.Filter)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	var orderBy []string
	for _, key := range result.Order {
		column, _, err := t.column(key.Lookup)
		if err != nil {
			return sq.SelectBuilder{}, err
		}
		orderBy = append(orderBy, column+" "+strings.ToUpper(key.Direction()))
	}

	if len(columns) == 0 {
		columns = []string{rootAlias + ".*"}
	}

	builder := sq.Select(columns...).
		From(rootTable.Name + " AS " + rootAlias).
		PlaceholderFormat(m.placeholder())
	for _, join := range t.joins {
		builder = builder.LeftJoin(join)
	}

	return builder.Where(where).OrderBy(orderBy...), nil
}

// ToSQL returns the SQL statement and its arguments for the compiled query.
func (m *Mapping) ToSQL(result *compiler.Result) (string, []any, error) {
	builder, err := m.Select(result)
	if err != nil {
		return "", nil, err
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "Unable to create SQL statement")
	}

	sigolo.Debugf("SQL: %s %v", sql, args)
	return sql, args, nil
}

// column returns the qualified column of the lookup, e.g. "t1.username" for "author.username", and the type of its
// field. Relations on the way are joined.
func (t *translator) column(lookup string) (string, schema.FieldType, error) {
	parts := strings.Split(lookup, ".")

	table := t.mapping.Tables[t.mapping.Root]
	alias := rootAlias
	path := ""

	for _, part := range parts[:len(parts)-1] {
		join, ok := table.Relations[part]
		if !ok {
			return "", schema.TypeUnknown, compiler.NewCompileError(lookup, "Table %s has no relation %s", table.Name, part)
		}

		targetTable, ok := t.mapping.Tables[join.Target]
		if !ok {
			return "", schema.TypeUnknown, compiler.NewCompileError(lookup, "No table for entity %s", join.Target)
		}

		path += "." + part
		targetAlias, joined := t.aliases[path]
		if !joined {
			targetAlias = fmt.Sprintf("t%d", len(t.aliases)+1)
			t.aliases[path] = targetAlias
			t.joins = append(t.joins, fmt.Sprintf("%s AS %s ON %s.%s = %s.%s", targetTable.Name, targetAlias, alias, join.Column, targetAlias, join.TargetColumn))
		}

		table = targetTable
		alias = targetAlias
	}

	last := parts[len(parts)-1]
	if column, ok := table.Columns[last]; ok {
		return alias + "." + column, table.Types[last], nil
	}
	if join, ok := table.Relations[last]; ok {
		return alias + "." + join.Column, schema.TypeRelation, nil
	}
	return "", schema.TypeUnknown, compiler.NewCompileError(lookup, "Table %s has no column for %s", table.Name, last)
}

func (t *translator) condition(node predicate.Node) (sq.Sqlizer, error) {
	switch n := node.(type) {
	case *predicate.And:
		left, right, err := t.conditions(n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return sq.And{left, right}, nil
	case *predicate.Or:
		left, right, err := t.conditions(n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return sq.Or{left, right}, nil
	case *predicate.Not:
		return t.negation(n)
	case *predicate.Always:
		if n.Value {
			return sq.Expr("1=1"), nil
		}
		return sq.Expr("1=0"), nil
	case *predicate.Leaf:
		column, fieldType, err := t.column(n.Lookup)
		if err != nil {
			return nil, err
		}
		return leafCondition(column, fieldType, n)
	}
	return nil, errors.Errorf("Unknown predicate node %T", node)
}

func (t *translator) conditions(left predicate.Node, right predicate.Node) (sq.Sqlizer, sq.Sqlizer, error) {
	leftCondition, err := t.condition(left)
	if err != nil {
		return nil, nil, err
	}
	rightCondition, err := t.condition(right)
	if err != nil {
		return nil, nil, err
	}
	return leftCondition, rightCondition, nil
}

func (t *translator) negation(n *predicate.Not) (sq.Sqlizer, error) {
	leaf, isLeaf := n.Node.(*predicate.Leaf)
	if !isLeaf {
		condition, err := t.condition(n.Node)
		if err != nil {
			return nil, err
		}
		return not{condition: condition}, nil
	}

	column, fieldType, err := t.column(leaf.Lookup)
	if err != nil {
		return nil, err
	}

	if leaf.Op == predicate.OpEqual && leaf.Value == nil {
		return sq.NotEq{column: nil}, nil
	}

	condition, err := leafCondition(column, fieldType, leaf)
	if err != nil {
		return nil, err
	}
	return not{condition: condition, column: column}, nil
}

func leafCondition(column string, fieldType schema.FieldType, leaf *predicate.Leaf) (sq.Sqlizer, error) {
	if leaf.Op == predicate.OpContains || leaf.Op == predicate.OpPrefix || leaf.Op == predicate.OpSuffix {
		s, isString := leaf.Value.(string)
		if !isString {
			return nil, compiler.NewCompileError(leaf.Lookup, "Operation %s needs a string but got %v", leaf.Op.String(), leaf.Value)
		}
		return likeCondition(column, leaf.Op, s), nil
	}

	if leaf.Op == predicate.OpIn {
		values, isList := leaf.Value.([]any)
		if !isList {
			return nil, compiler.NewCompileError(leaf.Lookup, "Operation %s needs a list but got %v", leaf.Op.String(), leaf.Value)
		}
		sqlValues := make([]any, len(values))
		for i, value := range values {
			var err error
			sqlValues[i], err = sqlValue(leaf.Lookup, fieldType, value)
			if err != nil {
				return nil, err
			}
		}
		return inCondition(column, sqlValues), nil
	}

	value, err := sqlValue(leaf.Lookup, fieldType, leaf.Value)
	if err != nil {
		return nil, err
	}

	switch leaf.Op {
	case predicate.OpEqual:
		return sq.Eq{column: value}, nil
	case predicate.OpGreater:
		return sq.Gt{column: value}, nil
	case predicate.OpGreaterEqual:
		return sq.GtOrEq{column: value}, nil
	case predicate.OpLess:
		return sq.Lt{column: value}, nil
	case predicate.OpLessEqual:
		return sq.LtOrEq{column: value}, nil
	}

	return nil, compiler.NewCompileError(leaf.Lookup, "Unsupported operation %s", leaf.Op.String())
}

func likeCondition(column string, op predicate.Op, s string) sq.Sqlizer {
	pattern := escapeLike(s)
	switch op {
	case predicate.OpPrefix:
		return sq.Expr(column+` LIKE ? ESCAPE '\'`, pattern+"%")
	case predicate.OpSuffix:
		return sq.Expr(column+` LIKE ? ESCAPE '\'`, "%"+pattern)
	}
	return sq.Expr("LOWER("+column+`) LIKE LOWER(?) ESCAPE '\'`, "%"+pattern+"%")
}

// inCondition creates "column IN (...)". NULL never matches IN, so NULL list items become an "IS NULL" check.
func inCondition(column string, values []any) sq.Sqlizer {
	var nonNullValues []any
	containsNull := false
	for _, value := range values {
		if value == nil {
			containsNull = true
			continue
		}
		nonNullValues = append(nonNullValues, value)
	}

	if !containsNull {
		return sq.Eq{column: nonNullValues}
	}
	if len(nonNullValues) == 0 {
		return sq.Eq{column: nil}
	}
	return sq.Or{sq.Eq{column: nonNullValues}, sq.Eq{column: nil}}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// sqlValue brings values into the format stored in SQLite: times and datetime strings become "YYYY-MM-DD HH:MM:SS"
// in UTC, so that "2020-01-01 10:00" equals a stored "2020-01-01 10:00:00". Other values are used as they are.
func sqlValue(lookup string, fieldType schema.FieldType, value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(schema.DatetimeSecondsLayout), nil
	case string:
		switch fieldType {
		case schema.TypeDatetime:
			t, err := schema.ParseDatetime(v)
			if err != nil {
				return nil, compiler.NewCompileError(lookup, "Invalid datetime value %s", v)
			}
			return t.Format(schema.DatetimeSecondsLayout), nil
		case schema.TypeDate:
			t, err := schema.ParseDate(v)
			if err != nil {
				return nil, compiler.NewCompileError(lookup, "Invalid date value %s", v)
			}
			return t.Format(schema.DateLayout), nil
		}
	}
	return value, nil
}

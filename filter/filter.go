package filter

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"searchdsl/compiler"
	"searchdsl/predicate"
	"searchdsl/schema"
	"searchdsl/util"
	"sort"
	"strings"
	"time"
)

// Record is anything a predicate can be evaluated on. Value returns nil for unknown lookups and missing values.
type Record interface {
	Value(lookup string) any
}

// MapRecord is a record backed by a map from lookup keys to values.
type MapRecord map[string]any

func (r MapRecord) Value(lookup string) any {
	return r[lookup]
}

var fold = cases.Fold()

// Apply filters the records by the compiled filter, sorts them by the compiled order and returns at most limit records
// (all for a limit less than 1).
func Apply[R Record](records []R, result *compiler.Result, limit int) ([]R, error) {
	matching, err := Filter(records, result.Filter)
	if err != nil {
		return nil, err
	}

	Sort(matching, result.Order)

	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

// Filter returns the records the predicate applies to, keeping their order.
func Filter[R Record](records []R, node predicate.Node) ([]R, error) {
	var matching []R
	for _, record := range records {
		applies, err := Matches(node, record)
		if err != nil {
			return nil, err
		}
		if applies {
			matching = append(matching, record)
		}
	}

	sigolo.Debugf("%d of %d records match %s", len(matching), len(records), node.String())
	return matching, nil
}

// Matches evaluates the predicate on the record. Comparisons on missing values never apply, their negations do.
func Matches(node predicate.Node, record Record) (bool, error) {
	switch n := node.(type) {
	case *predicate.And:
		applies, err := Matches(n.Left, record)
		if err != nil || !applies {
			return false, err
		}
		return Matches(n.Right, record)
	case *predicate.Or:
		applies, err := Matches(n.Left, record)
		if err != nil || applies {
			return applies, err
		}
		return Matches(n.Right, record)
	case *predicate.Not:
		applies, err := Matches(n.Node, record)
		if err != nil {
			return false, err
		}
		return !applies, nil
	case *predicate.Always:
		return n.Value, nil
	case *predicate.Leaf:
		return matchesLeaf(n, record.Value(n.Lookup))
	}
	return false, errors.Errorf("Unknown predicate node %T", node)
}

func matchesLeaf(leaf *predicate.Leaf, value any) (bool, error) {
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Leaf %s on value %v", leaf.String(), value)
	}

	switch leaf.Op {
	case predicate.OpEqual:
		return equals(leaf.Lookup, value, leaf.Value)
	case predicate.OpGreater, predicate.OpGreaterEqual, predicate.OpLess, predicate.OpLessEqual:
		if value == nil || leaf.Value == nil {
			return false, nil
		}
		comparison, err := compare(leaf.Lookup, value, leaf.Value)
		if err != nil {
			return false, err
		}
		switch leaf.Op {
		case predicate.OpGreater:
			return comparison > 0, nil
		case predicate.OpGreaterEqual:
			return comparison >= 0, nil
		case predicate.OpLess:
			return comparison < 0, nil
		}
		return comparison <= 0, nil
	case predicate.OpContains, predicate.OpPrefix, predicate.OpSuffix:
		s, isString := value.(string)
		pattern, patternIsString := leaf.Value.(string)
		if !isString || !patternIsString {
			return false, nil
		}
		switch leaf.Op {
		case predicate.OpPrefix:
			return strings.HasPrefix(s, pattern), nil
		case predicate.OpSuffix:
			return strings.HasSuffix(s, pattern), nil
		}
		return strings.Contains(fold.String(s), fold.String(pattern)), nil
	case predicate.OpIn:
		items, isList := leaf.Value.([]any)
		if !isList {
			return false, errors.Errorf("Operation %s on %s needs a list but got %v", leaf.Op.String(), leaf.Lookup, leaf.Value)
		}
		for _, item := range items {
			applies, err := equals(leaf.Lookup, value, item)
			if err != nil || applies {
				return applies, err
			}
		}
		return false, nil
	}

	return false, errors.Errorf("Unsupported operation %s on %s", leaf.Op.String(), leaf.Lookup)
}

func equals(lookup string, value any, expected any) (bool, error) {
	if value == nil || expected == nil {
		return value == nil && expected == nil, nil
	}
	comparison, err := compare(lookup, value, expected)
	if err != nil {
		return false, err
	}
	return comparison == 0, nil
}

// compare returns a negative number when a is less than b, 0 when they are equal and a positive number otherwise.
// Strings are compared naturally, so "9" is less than "10".
func compare(lookup string, a any, b any) (int, error) {
	switch aValue := a.(type) {
	case int64, int, float64:
		bNumber, ok := toFloat(b)
		if !ok {
			break
		}
		if aInt, aIsInt := a.(int64); aIsInt {
			if bInt, bIsInt := b.(int64); bIsInt {
				return compareOrdered(aInt, bInt), nil
			}
		}
		aNumber, _ := toFloat(aValue)
		return compareOrdered(aNumber, bNumber), nil
	case string:
		bString, ok := b.(string)
		if !ok {
			break
		}
		if aValue == bString {
			return 0, nil
		}
		if util.NaturalLess(aValue, bString) {
			return -1, nil
		}
		return 1, nil
	case bool:
		bBool, ok := b.(bool)
		if !ok {
			break
		}
		if aValue == bBool {
			return 0, nil
		}
		if !aValue {
			return -1, nil
		}
		return 1, nil
	case time.Time:
		bTime, err := toTime(b)
		if err != nil {
			return 0, errors.Wrapf(err, "Unable to compare %s", lookup)
		}
		return aValue.Compare(bTime), nil
	}

	return 0, errors.Errorf("Unable to compare value %v (%T) of %s with %v (%T)", a, a, lookup, b, b)
}

func compareOrdered[T int64 | float64](a T, b T) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return schema.ParseDatetime(v)
	}
	return time.Time{}, errors.Errorf("Value %v (%T) is no time", value, value)
}

// Sort sorts the records stably by the order keys. Missing values come first in ascending order.
func Sort[R Record](records []R, keys []compiler.OrderKey) {
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			comparison := compareForSort(key.Lookup, records[i].Value(key.Lookup), records[j].Value(key.Lookup))
			if comparison == 0 {
				continue
			}
			if key.Descending {
				return comparison > 0
			}
			return comparison < 0
		}
		return false
	})
}

func compareForSort(lookup string, a any, b any) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		} else if a == nil {
			return -1
		}
		return 1
	}

	comparison, err := compare(lookup, a, b)
	if err != nil {
		// Values of different types are considered equal
		return 0
	}
	return comparison
}

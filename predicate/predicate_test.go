package predicate

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"searchdsl/util"
	"testing"
	"time"
)

func TestNode_String(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	node := NewOr(
		NewAnd(NewLeaf("age", OpGreaterEqual, int64(18)), NewNot(NewLeaf("city", OpEqual, "Paris"))),
		NewLeaf("id", OpIn, []any{int64(1), nil, "x"}),
	)

	// Act
	s := node.String()

	// Assert
	util.AssertEqual(t, `((age gte 18 AND NOT city eq "Paris") OR id in (1, NULL, "x"))`, s)
	node.Print(0)
}

func TestLeaf_StringWithTime(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	leaf := NewLeaf("date_joined", OpLess, time.Date(2000, 2, 28, 12, 30, 0, 0, time.UTC))

	// Act & Assert
	util.AssertEqual(t, "date_joined lt 2000-02-28T12:30:00Z", leaf.String())
}

func TestAllOfAndAnyOf(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	a := NewLeaf("a", OpEqual, int64(1))
	b := NewLeaf("b", OpEqual, int64(2))
	c := NewLeaf("c", OpEqual, int64(3))

	// Act & Assert
	util.AssertEqual(t, NewAlways(true), AllOf())
	util.AssertEqual(t, NewAlways(false), AnyOf())
	util.AssertEqual(t, Node(a), AllOf(a))
	util.AssertEqual(t, Node(NewAnd(NewAnd(a, b), c)), AllOf(a, b, c))
	util.AssertEqual(t, Node(NewOr(NewOr(a, b), c)), AnyOf(a, b, c))
}

func TestLookups(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	node := NewAnd(
		NewNot(NewLeaf("author.name", OpPrefix, "A")),
		NewOr(NewAlways(true), NewLeaf("title", OpContains, "go")),
	)

	// Act
	lookups := Lookups(node)

	// Assert
	util.AssertEqual(t, []string{"author.name", "title"}, lookups)
}

func TestNode_MarshalJSON(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	node := NewAnd(
		NewNot(NewLeaf("name", OpSuffix, "son")),
		NewOr(NewAlways(false), NewLeaf("id", OpIn, []any{int64(1), int64(2)})),
	)

	// Act
	data, err := json.Marshal(node)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, `{"and":[{"not":{"lookup":"name","op":"suffix","value":"son"}},{"or":[{"always":false},{"lookup":"id","op":"in","value":[1,2]}]}]}`, string(data))
}

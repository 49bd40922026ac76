package filter

import (
	"github.com/hauke96/sigolo/v2"
	"searchdsl/compiler"
	"searchdsl/predicate"
	"searchdsl/util"
	"testing"
	"time"
)

func testRecords() []MapRecord {
	return []MapRecord{
		{"id": int64(1), "name": "Alpha 10", "price": 9.5, "published": time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC), "is_published": true},
		{"id": int64(2), "name": "alpha 9", "price": int64(12), "author.name": "Tom"},
		{"id": int64(3), "name": "Beta", "published": time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), "is_published": false, "author.name": "Anna"},
	}
}

func ids(records []MapRecord) []int64 {
	var result []int64
	for _, record := range records {
		result = append(result, record["id"].(int64))
	}
	return result
}

func TestFilter_queries(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	tests := map[string][]int64{
		`id = 2`:                               {2},
		`id != 2`:                              {1, 3},
		`id > 1 and id <= 3`:                   {2, 3},
		`id < 2 or name = "Beta"`:              {1, 3},
		`name ~ "ALPHA"`:                       {1, 2},
		`name !~ "alpha"`:                      {3},
		`name startswith "Al"`:                 {1},
		`name endswith "9"`:                    {2},
		`name not startswith "Al"`:             {2, 3},
		`name > "Alpha 9"`:                     {2, 3},
		`name < "alpha"`:                       {1, 3},
		`name > "9 apples"`:                    {1, 2, 3},
		`price > 10`:                           {2},
		`price >= 9.5`:                         {1, 2},
		`price = None`:                         {3},
		`price != None`:                        {1, 2},
		`price < 100 or price = None`:          {1, 2, 3},
		`author.name = None`:                   {1},
		`author.name in ("Tom", "Anna")`:       {2, 3},
		`author.name not in ("Tom")`:           {1, 3},
		`author.name in ("Tom", None)`:         {1, 2},
		`is_published = True`:                  {1},
		`is_published != True`:                 {2, 3},
		`published > "2021-01-01"`:             {3},
		`published <= "2020-01-01 10:00"`:      {1},
		`published = "2020-01-01 10:00:00"`:    {1},
		`not_existing = None`:                  {1, 2, 3},
		`not_existing > 5`:                     nil,
		`id in (1, 3) and not_existing = None`: {1, 3},
	}

	for queryString, expectedIds := range tests {
		t.Run(queryString, func(t *testing.T) {
			// Arrange
			result, err := compiler.CompileQueryString(queryString, nil)
			util.AssertNil(t, err)

			// Act
			records, err := Filter(testRecords(), result.Filter)

			// Assert
			util.AssertNil(t, err)
			util.AssertEqual(t, expectedIds, ids(records))
		})
	}
}

func TestMatches_always(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act & Assert
	applies, err := Matches(predicate.NewAlways(true), MapRecord{})
	util.AssertNil(t, err)
	util.AssertTrue(t, applies)

	applies, err = Matches(predicate.NewNot(predicate.NewAlways(true)), MapRecord{})
	util.AssertNil(t, err)
	util.AssertFalse(t, applies)
}

func TestMatches_incomparableValues(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	node := predicate.NewLeaf("id", predicate.OpGreater, "abc")

	// Act
	_, err := Matches(node, MapRecord{"id": int64(1)})

	// Assert
	util.AssertError(t, "Unable to compare value 1 (int64) of id with abc (string)", err)
}

func TestMatches_invalidDatetime(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	node := predicate.NewLeaf("published", predicate.OpGreater, "yesterday")

	// Act
	_, err := Matches(node, MapRecord{"published": time.Now()})

	// Assert
	util.AssertNotNil(t, err)
}

func TestMatches_inWithoutList(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	node := predicate.NewLeaf("id", predicate.OpIn, int64(1))

	// Act
	_, err := Matches(node, MapRecord{"id": int64(1)})

	// Assert
	util.AssertNotNil(t, err)
}

func TestSort(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	tests := map[string][]int64{
		`order by id desc`:                      {3, 2, 1},
		`order by name`:                         {1, 3, 2},
		`order by price`:                        {3, 1, 2},
		`order by price desc`:                   {2, 1, 3},
		`order by author.name, id desc`:         {1, 3, 2},
		`order by is_published desc, name desc`: {1, 3, 2},
	}

	for queryString, expectedIds := range tests {
		t.Run(queryString, func(t *testing.T) {
			// Arrange
			result, err := compiler.CompileQueryString(queryString, nil)
			util.AssertNil(t, err)
			records := testRecords()

			// Act
			Sort(records, result.Order)

			// Assert
			util.AssertEqual(t, expectedIds, ids(records))
		})
	}
}

func TestApply(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	result, err := compiler.CompileQueryString(`id >= 2 or name ~ "alpha" order by id desc`, nil)
	util.AssertNil(t, err)

	// Act
	records, err := Apply(testRecords(), result, 2)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []int64{3, 2}, ids(records))
}

package schema

import (
	"context"
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"searchdsl/parser"
	"searchdsl/query"
	"searchdsl/util"
	"sync"
	"testing"
)

func testCatalog() *StaticCatalog {
	return NewStaticCatalog(
		&EntityDescriptor{
			Label: "book",
			Fields: []FieldDescriptor{
				{Name: "written", Type: TypeDate},
				{Name: "name", Type: TypeStr},
				{Name: "id", Type: TypeInt},
				{Name: "author", Type: TypeRelation, Relation: "user", Nullable: true},
				{Name: "content_type", Type: TypeRelation},
				{Name: "genre", Type: TypeStr, Options: []string{"Horror", "Drama", "Comedy"}},
				{Name: "is_published", Type: TypeBool, Nullable: true},
				{Name: "password", Type: TypeStr},
				{Name: "price", Type: TypeFloat, Nullable: true},
				{Name: "published", Type: TypeDatetime, Nullable: true},
			},
		},
		&EntityDescriptor{
			Label: "user",
			Fields: []FieldDescriptor{
				{Name: "id", Type: TypeInt},
				{Name: "username", Type: TypeStr},
				{Name: "password", Type: TypeStr},
				{Name: "date_of_birth", Type: TypeDate, Nullable: true},
				{Name: "groups", Type: TypeRelation, Relation: "group"},
			},
		},
		&EntityDescriptor{
			Label: "group",
			Fields: []FieldDescriptor{
				{Name: "id", Type: TypeInt},
				{Name: "name", Type: TypeStr},
				{Name: "users", Type: TypeRelation, Relation: "user"},
				{Name: "permissions", Type: TypeRelation, Relation: "permission"},
			},
		},
		&EntityDescriptor{
			Label: "permission",
			Fields: []FieldDescriptor{
				{Name: "codename", Type: TypeStr},
			},
		},
	)
}

func testSchema(t *testing.T) *Schema {
	schema, err := NewSchema("book", testCatalog(), Config{
		CustomFields: map[string][]*FieldSpec{
			"book": {NewAliasField("author_name", TypeStr, "author.username")},
		},
	})
	util.AssertNil(t, err)
	return schema
}

func parse(t *testing.T, queryString string) *query.Query {
	q, err := parser.ParseQueryString(queryString)
	util.AssertNil(t, err)
	return q
}

func TestNewSchema_includeAndExclude(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	schema, err := NewSchema("book", testCatalog(), Config{Include: []string{"book"}, Exclude: []string{"user"}})

	// Assert
	util.AssertNil(t, schema)
	util.AssertError(t, "Either include or exclude can be specified, but not both", err)
}

func TestNewSchema_excludedRoot(t *testing.T) {
	// Act
	_, errExcluded := NewSchema("book", testCatalog(), Config{Exclude: []string{"book"}})
	_, errNotIncluded := NewSchema("book", testCatalog(), Config{Include: []string{"user"}})

	// Assert
	util.AssertError(t, "book can't be used as root entity because it's excluded from the schema", errExcluded)
	util.AssertError(t, "book can't be used as root entity because it's excluded from the schema", errNotIncluded)
}

func TestNewSchema_unknownRoot(t *testing.T) {
	// Act
	_, err := NewSchema("car", testCatalog(), Config{})

	// Assert
	util.AssertError(t, "Schema must be initialized with a known entity, but car is unknown: Unknown entity car", err)
}

func TestSchema_Models(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	schema := testSchema(t)

	// Act
	models, err := schema.Models()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 4, len(models))
	util.AssertEqual(t, []string{"author_name", "author", "genre", "id", "is_published", "name", "price", "published", "written"}, models["book"].Names())
	util.AssertEqual(t, []string{"date_of_birth", "groups", "id", "username"}, models["user"].Names())
	util.AssertEqual(t, []string{"id", "name", "permissions", "users"}, models["group"].Names())
	util.AssertEqual(t, []string{"codename"}, models["permission"].Names())

	util.AssertTrue(t, models["book"].Get("genre").HasOptions())
	util.AssertFalse(t, models["book"].Get("name").HasOptions())
	util.AssertNil(t, models["book"].Get("password"))
	util.AssertNil(t, models["book"].Get("content_type"))
}

type countingCatalog struct {
	catalog Catalog
	mutex   sync.Mutex
	calls   map[string]int
}

func (c *countingCatalog) Entity(label string) (*EntityDescriptor, error) {
	c.mutex.Lock()
	c.calls[label]++
	c.mutex.Unlock()
	return c.catalog.Entity(label)
}

func TestSchema_Models_concurrentCallsDescribeEachEntityOnce(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	catalog := &countingCatalog{catalog: testCatalog(), calls: map[string]int{}}
	schema, err := NewSchema("book", catalog, Config{})
	util.AssertNil(t, err)
	catalog.calls = map[string]int{}

	const goroutines = 20
	results := make([]map[string]*FieldMap, goroutines)
	errs := make([]error, goroutines)
	start := make(chan struct{})
	var wg sync.WaitGroup

	// Act
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = schema.Models()
		}(i)
	}
	close(start)
	wg.Wait()

	// Assert
	for i := 0; i < goroutines; i++ {
		util.AssertNil(t, errs[i])
		util.AssertEqual(t, 4, len(results[i]))
		for label, fields := range results[0] {
			util.AssertTrue(t, results[i][label] == fields)
		}
	}
	util.AssertEqual(t, map[string]int{"book": 1, "user": 1, "group": 1, "permission": 1}, catalog.calls)
}

func TestSchema_Models_excludedRelations(t *testing.T) {
	// Arrange
	schema, err := NewSchema("book", testCatalog(), Config{Exclude: []string{"group"}})
	util.AssertNil(t, err)

	// Act
	models, err := schema.Models()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, len(models))
	util.AssertEqual(t, []string{"date_of_birth", "id", "username"}, models["user"].Names())
}

func TestSchema_Models_includedEntities(t *testing.T) {
	// Arrange
	schema, err := NewSchema("book", testCatalog(), Config{Include: []string{"book"}})
	util.AssertNil(t, err)

	// Act
	models, err := schema.Models()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(models))
	util.AssertNil(t, models["book"].Get("author"))
}

func TestSchema_Models_customFieldReplacesField(t *testing.T) {
	// Arrange
	schema, err := NewSchema("book", testCatalog(), Config{
		CustomFields: map[string][]*FieldSpec{
			"book": {NewAliasField("name", TypeStr, "title")},
		},
		HiddenFields: []string{},
	})
	util.AssertNil(t, err)

	// Act
	models, err := schema.Models()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []string{"name", "author", "genre", "id", "is_published", "password", "price", "published", "written"}, models["book"].Names())
	util.AssertEqual(t, "title", models["book"].Get("name").Lookup())
}

func TestSchema_Models_unknownRelationTarget(t *testing.T) {
	// Arrange
	catalog := NewStaticCatalog(&EntityDescriptor{
		Label:  "book",
		Fields: []FieldDescriptor{{Name: "shelf", Type: TypeRelation, Relation: "shelf"}},
	})
	schema, err := NewSchema("book", catalog, Config{})
	util.AssertNil(t, err)

	// Act
	_, err = schema.Models()

	// Assert
	util.AssertError(t, "Unable to introspect entity shelf: Unknown entity shelf", err)
}

func TestSchema_Resolve(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	schema := testSchema(t)

	// Act
	resolution, err := schema.Resolve(query.NewName("author", "groups", "name"))

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, "group", resolution.Entity)
	util.AssertEqual(t, []string{"author", "groups"}, resolution.Path)
	util.AssertEqual(t, "name", resolution.Field.Name)
	util.AssertEqual(t, "author.groups.name", resolution.LookupKey())
}

func TestSchema_Resolve_errors(t *testing.T) {
	// Arrange
	schema := testSchema(t)

	// Act
	_, errUnknown := schema.Resolve(query.NewName("foo"))
	_, errUnknownNested := schema.Resolve(query.NewName("author", "foo"))
	_, errNoRelation := schema.Resolve(query.NewName("author", "username", "foo"))
	_, errEmpty := schema.Resolve(query.NewName())

	// Assert
	util.AssertError(t, "Unknown field: foo. Possible choices are: author, author_name, genre, id, is_published, name, price, published, written", errUnknown)
	util.AssertError(t, "Unknown field: foo. Possible choices are: date_of_birth, groups, id, username", errUnknownNested)
	util.AssertError(t, `Field "author.username" has "str" type and has no field foo`, errNoRelation)
	util.AssertError(t, "Empty field name", errEmpty)
}

func TestSchema_ResolveName(t *testing.T) {
	// Arrange
	schema := testSchema(t)

	// Act
	relationField, errRelation := schema.ResolveName(query.NewName("author"))
	field, err := schema.ResolveName(query.NewName("author", "username"))

	// Assert
	util.AssertNil(t, errRelation)
	util.AssertNil(t, relationField)
	util.AssertNil(t, err)
	util.AssertEqual(t, "username", field.Name)
}

func TestSchema_Validate_validQueries(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	schema := testSchema(t)
	queries := []string{
		``,
		`name = "foo"`,
		`name ~ "foo" and id > 5`,
		`price = None or price >= 1 or price < 2.5`,
		`author = None`,
		`author != None`,
		`author.groups.name in ("admins", "users")`,
		`is_published = True`,
		`written = "2017-01-30"`,
		`published > "2017-01-30"`,
		`published > "2017-01-30 10:00"`,
		`published <= "2017-01-30 10:00:59"`,
		`author_name startswith "J"`,
		`id in (1, 2, 3) order by author.username desc, id`,
		`author.date_of_birth = None`,
	}

	for _, queryString := range queries {
		// Act
		err := schema.Validate(parse(t, queryString))

		// Assert
		if err != nil {
			sigolo.Errorf("Unexpected error for query %s: %s", queryString, err.Error())
			t.Fail()
		}
	}
}

func TestSchema_Validate_invalidQueries(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	schema := testSchema(t)
	queries := map[string]string{
		`foo = 1`:                         "Unknown field: foo. Possible choices are: author, author_name, genre, id, is_published, name, price, published, written",
		`id = 1.5`:                        `Field "id" has "int" type. It can be compared to integer numbers, but not to 1.5`,
		`id = None`:                       "Field id is not nullable, can't compare it to None",
		`id in (1, None)`:                 "Field id is not nullable, can't compare it to None",
		`price = "abc"`:                   `Field "price" has "nullable float" type. It can be compared to floating point numbers or None, but not to "abc"`,
		`is_published = 1`:                `Field "is_published" has "nullable bool" type. It can be compared to True or False or None, but not to 1`,
		`name = True`:                     `Field "name" has "str" type. It can be compared to strings, but not to True`,
		`author = 5`:                      "Related model author can be compared to None only, but not to int",
		`author in ("a")`:                 "Related model author can be compared to None only, but not to list",
		`written = "2017-13-01"`:          `Field "written" can be compared to dates in "YYYY-MM-DD" format, but not to "2017-13-01"`,
		`written = "2017-01-01 10:00"`:    `Field "written" can be compared to dates in "YYYY-MM-DD" format, but not to "2017-01-01 10:00"`,
		`published = "2017-01-01 1000"`:   `Field "published" can be compared to timestamps in "YYYY-MM-DD HH:MM" format, but not to "2017-01-01 1000"`,
		`published = "yesterday"`:         `Field "published" can be compared to timestamps in "YYYY-MM-DD HH:MM" format, but not to "yesterday"`,
		`author.username.foo = 1`:         `Field "author.username" has "str" type and has no field foo`,
		`name = "a" order by author.name`: "Unknown field: name. Possible choices are: date_of_birth, groups, id, username",
	}

	for queryString, expectedMessage := range queries {
		// Act
		err := schema.Validate(parse(t, queryString))

		// Assert
		util.AssertNotNil(t, err)
		if err != nil {
			util.AssertError(t, expectedMessage, err)
		}
	}
}

func TestSchema_Introspect(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	schema, err := NewSchema("user", testCatalog(), Config{Exclude: []string{"permission"}})
	util.AssertNil(t, err)

	// Act
	introspection, err := schema.Introspect("")
	util.AssertNil(t, err)
	data, err := json.Marshal(introspection)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, `{"current_model":"user","models":{`+
		`"group":{"id":{"type":"int","relation":null,"nullable":false,"options":false},"name":{"type":"str","relation":null,"nullable":false,"options":false},"users":{"type":"relation","relation":"user","nullable":false,"options":false}},`+
		`"user":{"date_of_birth":{"type":"date","relation":null,"nullable":true,"options":false},"groups":{"type":"relation","relation":"group","nullable":false,"options":false},"id":{"type":"int","relation":null,"nullable":false,"options":false},"username":{"type":"str","relation":null,"nullable":false,"options":false}}`+
		`}}`, string(data))
}

func TestSchema_Introspect_suggestionsURL(t *testing.T) {
	// Arrange
	schema := testSchema(t)

	// Act
	introspection, err := schema.Introspect("/suggestions")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, "book", introspection.CurrentModel)
	util.AssertEqual(t, "/suggestions", introspection.SuggestionsAPIURL)
	util.AssertEqual(t, 4, len(introspection.Models))
}

func TestStaticOptions_Suggestions(t *testing.T) {
	// Arrange
	options := NewStaticOptions("Drama", "comedy", "Horror", "Drama", "10 ft", "9 ft")

	// Act
	all, errAll := options.Suggestions(context.Background(), "", 0, -1)
	matching, errMatching := options.Suggestions(context.Background(), "O", 0, 10)
	paged, errPaged := options.Suggestions(context.Background(), "", 2, 2)

	// Assert
	util.AssertNil(t, errAll)
	util.AssertNil(t, errMatching)
	util.AssertNil(t, errPaged)
	util.AssertEqual(t, []string{"9 ft", "10 ft", "Drama", "Horror", "comedy"}, all)
	util.AssertEqual(t, []string{"Horror", "comedy"}, matching)
	util.AssertEqual(t, []string{"Drama", "Horror"}, paged)
}

func TestStaticOptions_Suggestions_canceledContext(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := NewStaticOptions("a").Suggestions(ctx, "", 0, 1)

	// Assert
	util.AssertError(t, "context canceled", err)
}

func TestParseFieldType(t *testing.T) {
	for text, expected := range map[string]FieldType{"int": TypeInt, "Integer": TypeInt, "string": TypeStr, "timestamp": TypeDatetime, "": TypeUnknown} {
		fieldType, err := ParseFieldType(text)
		util.AssertNil(t, err)
		util.AssertEqual(t, expected, fieldType)
	}

	_, err := ParseFieldType("money")
	util.AssertError(t, "Unknown field type 'money'", err)
}

func TestParseDatetime(t *testing.T) {
	// Act
	date, errDate := ParseDatetime("2020-02-29")
	minutes, errMinutes := ParseDatetime("2020-02-29 13:37")
	seconds, errSeconds := ParseDatetime("2020-02-29 13:37:42")
	_, errInvalid := ParseDatetime("2020-02-30")

	// Assert
	util.AssertNil(t, errDate)
	util.AssertNil(t, errMinutes)
	util.AssertNil(t, errSeconds)
	util.AssertNotNil(t, errInvalid)
	util.AssertEqual(t, "2020-02-29 00:00:00", date.Format(DatetimeSecondsLayout))
	util.AssertEqual(t, "2020-02-29 13:37:00", minutes.Format(DatetimeSecondsLayout))
	util.AssertEqual(t, "2020-02-29 13:37:42", seconds.Format(DatetimeSecondsLayout))
}

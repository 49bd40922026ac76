package suggest

import (
	"context"
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/schema"
	"searchdsl/util"
	"strings"
	"testing"
)

type failingProvider struct{}

func (p *failingProvider) Suggestions(ctx context.Context, search string, offset int, limit int) ([]string, error) {
	return nil, errors.New("database is gone")
}

type recordingProvider struct {
	offset int
	limit  int
}

func (p *recordingProvider) Suggestions(ctx context.Context, search string, offset int, limit int) ([]string, error) {
	p.offset = offset
	p.limit = limit
	return []string{strings.ToUpper(search)}, nil
}

func testSchema(t *testing.T, providers map[schema.FieldKey]schema.SuggestionProvider) *schema.Schema {
	catalog := schema.NewStaticCatalog(
		&schema.EntityDescriptor{
			Label: "book",
			Fields: []schema.FieldDescriptor{
				{Name: "genre", Type: schema.TypeStr, Options: []string{"e", "d", "c", "b", "a"}},
				{Name: "name", Type: schema.TypeStr},
				{Name: "author", Type: schema.TypeRelation, Relation: "user"},
			},
		},
		&schema.EntityDescriptor{
			Label: "user",
			Fields: []schema.FieldDescriptor{
				{Name: "username", Type: schema.TypeStr},
			},
		},
	)

	s, err := schema.NewSchema("book", catalog, schema.Config{SuggestionProviders: providers})
	util.AssertNil(t, err)
	return s
}

func TestSuggest_pages(t *testing.T) {
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Arrange
	s := testSchema(t, nil)

	// Act
	first, errFirst := Suggest(context.Background(), s, "genre", "", 1, 2)
	last, errLast := Suggest(context.Background(), s, "genre", "", 3, 2)

	// Assert
	util.AssertNil(t, errFirst)
	util.AssertNil(t, errLast)
	util.AssertEqual(t, &Page{Items: []string{"a", "b"}, Page: 1, HasNext: true}, first)
	util.AssertEqual(t, &Page{Items: []string{"e"}, Page: 3, HasNext: false}, last)
}

func TestSuggest_search(t *testing.T) {
	// Arrange
	s := testSchema(t, nil)

	// Act
	page, err := Suggest(context.Background(), s, "genre", "D", 1, 0)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []string{"d"}, page.Items)
	util.AssertFalse(t, page.HasNext)
}

func TestSuggest_noMatchOnFirstPage(t *testing.T) {
	// Arrange
	s := testSchema(t, nil)

	// Act
	page, err := Suggest(context.Background(), s, "genre", "xyz", 1, 10)
	data, _ := json.Marshal(page)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, `{"items":[],"page":1,"has_next":false}`, string(data))
}

func TestSuggest_pagePastTheEnd(t *testing.T) {
	// Arrange
	s := testSchema(t, nil)

	// Act
	page, err := Suggest(context.Background(), s, "genre", "", 2, 100)
	data, _ := json.Marshal(page)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, `{"items":[],"page":2,"has_next":false}`, string(data))
}

func TestSuggest_providerOfRelatedField(t *testing.T) {
	// Arrange
	provider := &recordingProvider{}
	s := testSchema(t, map[schema.FieldKey]schema.SuggestionProvider{
		{Entity: "user", Field: "username"}: provider,
	})

	// Act
	page, err := Suggest(context.Background(), s, "author.username", "jo", 3, 0)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []string{"JO"}, page.Items)
	util.AssertEqual(t, 200, provider.offset)
	util.AssertEqual(t, 101, provider.limit)
}

func TestSuggest_errors(t *testing.T) {
	// Arrange
	s := testSchema(t, map[schema.FieldKey]schema.SuggestionProvider{
		{Entity: "book", Field: "name"}: &failingProvider{},
	})
	ctx := context.Background()

	// Act
	_, errNoField := Suggest(ctx, s, "", "", 1, 10)
	_, errPage := Suggest(ctx, s, "genre", "", 0, 10)
	_, errUnknown := Suggest(ctx, s, "foo", "", 1, 10)
	_, errRelation := Suggest(ctx, s, "author", "", 1, 10)
	_, errNoOptions := Suggest(ctx, s, "author.username", "", 1, 10)
	_, errProvider := Suggest(ctx, s, "name", "", 1, 10)

	// Assert
	util.AssertError(t, "Field must be specified", errNoField)
	util.AssertError(t, "Page must be a positive number but was 0", errPage)
	util.AssertError(t, "Unknown field: foo. Possible choices are: author, genre, name", errUnknown)
	util.AssertError(t, "Field author is a relation and has no suggestions", errRelation)
	util.AssertError(t, "Field author.username doesn't support suggestions", errNoOptions)
	util.AssertError(t, "Unable to get suggestions for field name: database is gone", errProvider)
}

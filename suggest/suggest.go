package suggest

import (
	"context"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"searchdsl/query"
	"searchdsl/schema"
	"searchdsl/util"
	"strings"
)

const DefaultPageSize = 100

// Page is one page of suggestions for a field.
type Page struct {
	Items   []string `json:"items"`
	Page    int      `json:"page"`
	HasNext bool     `json:"has_next"`
}

// RequestError is returned for requests that can't be answered, like missing fields or invalid page numbers.
type RequestError struct {
	Message string `json:"message"`
	stack   util.Stack
}

func NewRequestError(format string, args ...any) *RequestError {
	return &RequestError{
		Message: fmt.Sprintf(format, args...),
		stack:   util.CurrentStack(),
	}
}

func (e *RequestError) Format(s fmt.State, verb rune) {
	util.FormatError(s, verb, e, e.stack)
}

func (e *RequestError) Error() string {
	return e.Message
}

// Suggest returns the given page (starting at 1) of suggested values for the field addressed by the dotted field path.
// Values must contain the search string. A page size of 0 or less falls back to DefaultPageSize.
func Suggest(ctx context.Context, s *schema.Schema, fieldPath string, search string, page int, pageSize int) (*Page, error) {
	if fieldPath == "" {
		return nil, NewRequestError("Field must be specified")
	}
	if page < 1 {
		return nil, NewRequestError("Page must be a positive number but was %d", page)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	resolution, err := s.Resolve(query.NewName(strings.Split(fieldPath, ".")...))
	if err != nil {
		return nil, err
	}
	field := resolution.Field
	if field.IsRelation() {
		return nil, NewRequestError("Field %s is a relation and has no suggestions", fieldPath)
	}
	if !field.HasOptions() {
		return nil, NewRequestError("Field %s doesn't support suggestions", fieldPath)
	}

	sigolo.Debugf("Get suggestions for field %s (search=%q, page=%d, pageSize=%d)", fieldPath, search, page, pageSize)

	// One more value than needed tells whether there's a next page
	values, err := field.Options.Suggestions(ctx, search, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to get suggestions for field %s", fieldPath)
	}

	result := &Page{
		Items:   values,
		Page:    page,
		HasNext: len(values) > pageSize,
	}
	if result.HasNext {
		result.Items = values[:pageSize]
	}
	if result.Items == nil {
		result.Items = []string{}
	}

	return result, nil
}

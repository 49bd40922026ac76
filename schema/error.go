package schema

import (
	"fmt"
	"searchdsl/util"
)

// SchemaError covers wrong schema configurations as well as queries that don't fit the schema, like unknown fields or
// values of the wrong type.
type SchemaError struct {
	Message string `json:"message"`
	stack   util.Stack
}

func NewSchemaError(format string, args ...any) *SchemaError {
	return &SchemaError{
		Message: fmt.Sprintf(format, args...),
		stack:   util.CurrentStack(),
	}
}

func (e *SchemaError) Format(s fmt.State, verb rune) {
	util.FormatError(s, verb, e, e.stack)
}

func (e *SchemaError) Error() string {
	return e.Message
}

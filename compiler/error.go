package compiler

import (
	"fmt"
	"searchdsl/util"
)

// CompileError is returned by backends that can't express a predicate, e.g. because a lookup has no column mapping or
// an operation is not supported for a certain value.
type CompileError struct {
	Message string `json:"message"`
	Lookup  string `json:"lookup"`
	stack   util.Stack
}

func NewCompileError(lookup string, format string, args ...any) *CompileError {
	return &CompileError{
		Message: fmt.Sprintf(format, args...),
		Lookup:  lookup,
		stack:   util.CurrentStack(),
	}
}

func (e *CompileError) Format(s fmt.State, verb rune) {
	util.FormatError(s, verb, e, e.stack)
}

func (e *CompileError) Error() string {
	if e.Lookup == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Lookup, e.Message)
}

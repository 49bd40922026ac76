package parser

import (
	"fmt"
	"searchdsl/util"
)

// positionPrefix creates the "Line 1, col 5: " prefix. Unknown positions (0) are left out.
func positionPrefix(line int, column int) string {
	if line <= 0 {
		return ""
	}
	if column <= 0 {
		return fmt.Sprintf("Line %d: ", line)
	}
	return fmt.Sprintf("Line %d, col %d: ", line, column)
}

// LexError is returned by the lexer for characters that cannot start or continue any token.
type LexError struct {
	Message string `json:"message"`
	Value   string `json:"value"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	stack   util.Stack
}

func LexErrorIllegalCharacter(char rune, line int, column int) *LexError {
	return &LexError{
		Message: fmt.Sprintf("Illegal character '%c'", char),
		Value:   string(char),
		Line:    line,
		Column:  column,
		stack:   util.CurrentStack(),
	}
}

func (e *LexError) Format(s fmt.State, verb rune) {
	util.FormatError(s, verb, e, e.stack)
}

func (e *LexError) Error() string {
	return positionPrefix(e.Line, e.Column) + e.Message
}

// ParseError is returned for grammar violations. The position is unknown (0) when the input ended unexpectedly.
type ParseError struct {
	Message         string `json:"message"`
	Value           string `json:"value"`
	Line            int    `json:"line"`
	Column          int    `json:"column"`
	ExpectedMessage string `json:"expected-message"`
	stack           util.Stack
}

// ParseErrorUnexpectedToken models the "Syntax error at 'foo'" kind of error for a token that doesn't fit the grammar
// at its position.
func ParseErrorUnexpectedToken(token *Token, expectedMessage string) *ParseError {
	fragment := token.lexeme
	if len([]rune(fragment)) > 20 {
		fragment = string([]rune(fragment)[:17]) + "..."
	}

	message := fmt.Sprintf("Syntax error at '%s'", fragment)
	if expectedMessage != "" {
		message += ", expected " + expectedMessage
	}

	return &ParseError{
		Message:         message,
		Value:           token.lexeme,
		Line:            token.line,
		Column:          token.column,
		ExpectedMessage: expectedMessage,
		stack:           util.CurrentStack(),
	}
}

func ParseErrorUnexpectedEnd(expectedMessage string) *ParseError {
	return &ParseError{
		Message:         "Unexpected end of input",
		ExpectedMessage: expectedMessage,
		stack:           util.CurrentStack(),
	}
}

func (e *ParseError) Format(s fmt.State, verb rune) {
	util.FormatError(s, verb, e, e.stack)
}

func (e *ParseError) Error() string {
	return positionPrefix(e.Line, e.Column) + e.Message
}

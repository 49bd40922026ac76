package parser

import (
	"fmt"
)

type TokenKind int

const (
	TokenKindUnknown TokenKind = iota

	TokenKindOpeningParenthesis
	TokenKindClosingParenthesis
	TokenKindComma

	TokenKindEqual
	TokenKindNotEqual
	TokenKindGreater
	TokenKindGreaterEqual
	TokenKindLess
	TokenKindLessEqual
	TokenKindContains
	TokenKindNotContains

	TokenKindIn
	TokenKindNot
	TokenKindStartsWith
	TokenKindEndsWith
	TokenKindAnd
	TokenKindOr
	TokenKindOrder
	TokenKindBy
	TokenKindAsc
	TokenKindDesc

	TokenKindTrue
	TokenKindFalse
	TokenKindNone
	TokenKindInt
	TokenKindFloat
	TokenKindString

	TokenKindName
)

// reservedWords maps each reserved word to its token kind. A word is only reserved when it is the whole identifier,
// so "inspect" or "True_story" are normal names.
var reservedWords = map[string]TokenKind{
	"in":         TokenKindIn,
	"not":        TokenKindNot,
	"startswith": TokenKindStartsWith,
	"endswith":   TokenKindEndsWith,
	"and":        TokenKindAnd,
	"or":         TokenKindOr,
	"order":      TokenKindOrder,
	"by":         TokenKindBy,
	"asc":        TokenKindAsc,
	"desc":       TokenKindDesc,
	"True":       TokenKindTrue,
	"False":      TokenKindFalse,
	"None":       TokenKindNone,
}

func (k TokenKind) String() string {
	switch k {
	case TokenKindUnknown:
		return "TokenKindUnknown"
	case TokenKindOpeningParenthesis:
		return "TokenKindOpeningParenthesis"
	case TokenKindClosingParenthesis:
		return "TokenKindClosingParenthesis"
	case TokenKindComma:
		return "TokenKindComma"
	case TokenKindEqual:
		return "TokenKindEqual"
	case TokenKindNotEqual:
		return "TokenKindNotEqual"
	case TokenKindGreater:
		return "TokenKindGreater"
	case TokenKindGreaterEqual:
		return "TokenKindGreaterEqual"
	case TokenKindLess:
		return "TokenKindLess"
	case TokenKindLessEqual:
		return "TokenKindLessEqual"
	case TokenKindContains:
		return "TokenKindContains"
	case TokenKindNotContains:
		return "TokenKindNotContains"
	case TokenKindIn:
		return "TokenKindIn"
	case TokenKindNot:
		return "TokenKindNot"
	case TokenKindStartsWith:
		return "TokenKindStartsWith"
	case TokenKindEndsWith:
		return "TokenKindEndsWith"
	case TokenKindAnd:
		return "TokenKindAnd"
	case TokenKindOr:
		return "TokenKindOr"
	case TokenKindOrder:
		return "TokenKindOrder"
	case TokenKindBy:
		return "TokenKindBy"
	case TokenKindAsc:
		return "TokenKindAsc"
	case TokenKindDesc:
		return "TokenKindDesc"
	case TokenKindTrue:
		return "TokenKindTrue"
	case TokenKindFalse:
		return "TokenKindFalse"
	case TokenKindNone:
		return "TokenKindNone"
	case TokenKindInt:
		return "TokenKindInt"
	case TokenKindFloat:
		return "TokenKindFloat"
	case TokenKindString:
		return "TokenKindString"
	case TokenKindName:
		return "TokenKindName"
	}
	return fmt.Sprintf("!! INVALID TOKEN KIND %d !!", k)
}

// Lexeme returns the fixed text of the token kind or a description for kinds with variable text (e.g. "name").
func (k TokenKind) Lexeme() string {
	switch k {
	case TokenKindUnknown:
		return "UNKNOWN"
	case TokenKindOpeningParenthesis:
		return "("
	case TokenKindClosingParenthesis:
		return ")"
	case TokenKindComma:
		return ","
	case TokenKindEqual:
		return "="
	case TokenKindNotEqual:
		return "!="
	case TokenKindGreater:
		return ">"
	case TokenKindGreaterEqual:
		return ">="
	case TokenKindLess:
		return "<"
	case TokenKindLessEqual:
		return "<="
	case TokenKindContains:
		return "~"
	case TokenKindNotContains:
		return "!~"
	case TokenKindIn:
		return "in"
	case TokenKindNot:
		return "not"
	case TokenKindStartsWith:
		return "startswith"
	case TokenKindEndsWith:
		return "endswith"
	case TokenKindAnd:
		return "and"
	case TokenKindOr:
		return "or"
	case TokenKindOrder:
		return "order"
	case TokenKindBy:
		return "by"
	case TokenKindAsc:
		return "asc"
	case TokenKindDesc:
		return "desc"
	case TokenKindTrue:
		return "True"
	case TokenKindFalse:
		return "False"
	case TokenKindNone:
		return "None"
	case TokenKindInt:
		return "integer"
	case TokenKindFloat:
		return "float"
	case TokenKindString:
		return "string"
	case TokenKindName:
		return "name"
	}
	return fmt.Sprintf("!! INVALID TOKEN KIND %d !!", k)
}

// IsLiteral returns true for all kinds that form a constant value (numbers, strings, booleans and None).
func (k TokenKind) IsLiteral() bool {
	switch k {
	case TokenKindTrue, TokenKindFalse, TokenKindNone, TokenKindInt, TokenKindFloat, TokenKindString:
		return true
	}
	return false
}

type Token struct {
	kind          TokenKind
	lexeme        string
	line          int // 1-based
	column        int // 1-based
	startPosition int // Rune index in the input.
}

func (t *Token) Kind() TokenKind {
	return t.kind
}

// Lexeme returns the raw source text of the token. String tokens still contain their quotes and escape sequences.
func (t *Token) Lexeme() string {
	return t.lexeme
}

func (t *Token) Line() int {
	return t.line
}

func (t *Token) Column() int {
	return t.column
}

func (t *Token) StartPosition() int {
	return t.startPosition
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%s) at %d:%d", t.kind.String(), t.lexeme, t.line, t.column)
}

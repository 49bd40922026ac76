package parser

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
)

type Lexer struct {
	input     []rune
	index     int // Position in input.
	line      int // Current line, starting at 1.
	lineStart int // Index of the first rune of the current line.
}

// Tokenize splits the given query text into tokens. Each call uses a fresh lexer, so this is safe to use concurrently.
func Tokenize(text string) ([]*Token, error) {
	lexer := newLexer(text)
	return lexer.read()
}

func newLexer(text string) *Lexer {
	return &Lexer{
		input:     []rune(text),
		index:     0,
		line:      1,
		lineStart: 0,
	}
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\u00a0'
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func isNameStartChar(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) || isDigit(r)
}

// IsNameSegment returns true when s can be used as one part of a dotted name. Reserved words are valid segments, they
// only can't be used as first segment.
func IsNameSegment(s string) bool {
	for i, r := range s {
		if i == 0 && !isNameStartChar(r) || !isNameChar(r) {
			return false
		}
	}
	return s != ""
}

func IsReservedWord(s string) bool {
	_, isReserved := reservedWords[s]
	return isReserved
}

// char returns the rune at the current location or the rune '-1' if there is no next char.
func (l *Lexer) char() rune {
	return l.charAt(l.index)
}

// nextChar returns the next rune, so the one after the rune char() returns, or the rune '-1' if there is no next char.
func (l *Lexer) nextChar() rune {
	return l.charAt(l.index + 1)
}

func (l *Lexer) charAt(index int) rune {
	if index >= len(l.input) {
		return -1
	}
	return l.input[index]
}

// column returns the 1-based column of the given index within the current line.
func (l *Lexer) column(index int) int {
	return index - l.lineStart + 1
}

func (l *Lexer) read() ([]*Token, error) {
	var tokens []*Token
	for {
		l.skipWhitespace()
		if l.index >= len(l.input) {
			break
		}

		token, err := l.nextToken()
		if err != nil {
			return nil, err
		}

		l.tracef("Found token kind=%s, line=%d, col=%d, lexeme=%q", token.kind.String(), token.line, token.column, token.lexeme)
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// skipWhitespace moves the index to the next rune that is neither whitespace nor a line terminator. Each line
// terminator starts a new line.
func (l *Lexer) skipWhitespace() {
	for ; l.index < len(l.input); l.index++ {
		char := l.char()
		if isLineTerminator(char) {
			l.line++
			l.lineStart = l.index + 1
		} else if !isWhitespace(char) {
			return
		}
	}
}

func (l *Lexer) nextToken() (*Token, error) {
	/*
		Approach:

		Look at the current character l.char() and create the token starting there. Each token creation has to take
		care of the index, so that we don't end up in an endless loop because the index wasn't incremented.
	*/
	char := l.char()

	// Single-char token
	switch char {
	case '(':
		return l.currentMultiCharToken(TokenKindOpeningParenthesis, 1), nil
	case ')':
		return l.currentMultiCharToken(TokenKindClosingParenthesis, 1), nil
	case ',':
		return l.currentMultiCharToken(TokenKindComma, 1), nil
	case '=':
		return l.currentMultiCharToken(TokenKindEqual, 1), nil
	case '~':
		return l.currentMultiCharToken(TokenKindContains, 1), nil
	}

	// Operators with one or two characters
	switch char {
	case '!':
		if l.nextChar() == '=' {
			return l.currentMultiCharToken(TokenKindNotEqual, 2), nil
		} else if l.nextChar() == '~' {
			return l.currentMultiCharToken(TokenKindNotContains, 2), nil
		}
		return nil, l.illegalCharacterError(l.index)
	case '>':
		if l.nextChar() == '=' {
			return l.currentMultiCharToken(TokenKindGreaterEqual, 2), nil
		}
		return l.currentMultiCharToken(TokenKindGreater, 1), nil
	case '<':
		if l.nextChar() == '=' {
			return l.currentMultiCharToken(TokenKindLessEqual, 2), nil
		}
		return l.currentMultiCharToken(TokenKindLess, 1), nil
	}

	if char == '"' {
		return l.currentString()
	}

	if isDigit(char) || char == '-' && isDigit(l.nextChar()) {
		return l.currentNumber(), nil
	}

	// Keywords and names (i.e. token consisting of multi-char words)
	if isNameStartChar(char) {
		return l.currentName(), nil
	}

	return nil, l.illegalCharacterError(l.index)
}

func (l *Lexer) illegalCharacterError(index int) *LexError {
	return LexErrorIllegalCharacter(l.charAt(index), l.line, l.column(index))
}

func (l *Lexer) currentMultiCharToken(tokenKind TokenKind, chars int) *Token {
	token := l.newToken(tokenKind, l.index, l.index+chars)
	l.index += chars
	return token
}

func (l *Lexer) newToken(tokenKind TokenKind, startIndex int, endIndex int) *Token {
	return &Token{
		kind:          tokenKind,
		lexeme:        string(l.input[startIndex:endIndex]),
		line:          l.line,
		column:        l.column(startIndex),
		startPosition: startIndex,
	}
}

// currentName returns the name (like "author.name") or reserved word (like "and") starting at the current index.
// Reserved words are only recognized when they form the whole first segment of a name.
func (l *Lexer) currentName() *Token {
	startIndex := l.index

	l.skipNameSegment()
	if kind, isReserved := reservedWords[string(l.input[startIndex:l.index])]; isReserved {
		return l.newToken(kind, startIndex, l.index)
	}

	// A dot is only part of the name when another segment follows directly. Otherwise, the dot is left for the next
	// call of nextToken(), which fails on it.
	for l.char() == '.' && isNameStartChar(l.nextChar()) {
		l.index++
		l.skipNameSegment()
	}

	return l.newToken(TokenKindName, startIndex, l.index)
}

func (l *Lexer) skipNameSegment() {
	for ; l.index < len(l.input) && isNameChar(l.char()); l.index++ {
	}
}

// currentNumber reads integers (like "-12") and floats with fraction and/or exponent (like "-0.5e+42").
func (l *Lexer) currentNumber() *Token {
	startIndex := l.index
	kind := TokenKindInt

	if l.char() == '-' {
		l.index++
	}
	l.skipDigits()

	if l.char() == '.' && isDigit(l.nextChar()) {
		kind = TokenKindFloat
		l.index++
		l.skipDigits()
	}

	if l.char() == 'e' || l.char() == 'E' {
		exponentDigitIndex := l.index + 1
		if l.charAt(exponentDigitIndex) == '+' || l.charAt(exponentDigitIndex) == '-' {
			exponentDigitIndex++
		}
		if isDigit(l.charAt(exponentDigitIndex)) {
			kind = TokenKindFloat
			l.index = exponentDigitIndex
			l.skipDigits()
		}
	}

	return l.newToken(kind, startIndex, l.index)
}

func (l *Lexer) skipDigits() {
	for ; l.index < len(l.input) && isDigit(l.char()); l.index++ {
	}
}

// currentString reads a double-quoted string including its escape sequences. The lexeme contains the raw text with
// quotes, the parser takes care of unescaping. Unterminated strings, line breaks and invalid escape sequences are
// reported at the opening quote.
func (l *Lexer) currentString() (*Token, error) {
	startIndex := l.index

	for l.index++; l.index < len(l.input); l.index++ {
		char := l.char()
		switch {
		case char == '"':
			l.index++
			return l.newToken(TokenKindString, startIndex, l.index), nil
		case isLineTerminator(char):
			return nil, l.illegalCharacterError(startIndex)
		case char == '\\':
			if !l.skipEscapeSequence() {
				return nil, l.illegalCharacterError(startIndex)
			}
		}
	}

	l.tracef("String starting at index %d not terminated", startIndex)
	return nil, l.illegalCharacterError(startIndex)
}

// skipEscapeSequence expects the index to be on the backslash. It moves the index to the last rune of the escape
// sequence and returns false when the sequence is not valid.
func (l *Lexer) skipEscapeSequence() bool {
	switch l.nextChar() {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		l.index++
		return true
	case 'u':
		for i := 2; i < 6; i++ {
			if !isHexDigit(l.charAt(l.index + i)) {
				return false
			}
		}
		l.index += 5
		return true
	}
	return false
}

func (l *Lexer) tracef(format string, args ...any) {
	if !sigolo.ShouldLogTrace() {
		return
	}
	formattedMessage := format
	if len(args) > 0 {
		formattedMessage = fmt.Sprintf(format, args...)
	}
	sigolo.Traceb(1, "[%d, %q] %s", l.index, l.char(), formattedMessage)
}

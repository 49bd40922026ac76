package parser

import (
	"errors"
	"github.com/hauke96/sigolo/v2"
	"searchdsl/util"
	"testing"
)

func tokenKinds(tokens []*Token) []TokenKind {
	var kinds []TokenKind
	for _, token := range tokens {
		kinds = append(kinds, token.kind)
	}
	return kinds
}

func tokenLexemes(tokens []*Token) []string {
	var lexemes []string
	for _, token := range tokens {
		lexemes = append(lexemes, token.lexeme)
	}
	return lexemes
}

func TestLexer_currentAndNextChar(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	l := newLexer("012345")

	// Act & Assert
	util.AssertEqual(t, '0', l.char())
	util.AssertEqual(t, '1', l.nextChar())

	l.index = 3
	util.AssertEqual(t, '3', l.char())
	util.AssertEqual(t, '4', l.nextChar())

	l.index = 5
	util.AssertEqual(t, '5', l.char())
	util.AssertEqual(t, rune(-1), l.nextChar())

	l.index = 6
	util.AssertEqual(t, rune(-1), l.char())
	util.AssertEqual(t, rune(-1), l.nextChar())
}

func TestLexer_emptyInput(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize(" \t\n ")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 0, len(tokens))
}

func TestLexer_punctuationAndOperators(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("( ) , = != > >= < <= ~ !~")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []TokenKind{
		TokenKindOpeningParenthesis,
		TokenKindClosingParenthesis,
		TokenKindComma,
		TokenKindEqual,
		TokenKindNotEqual,
		TokenKindGreater,
		TokenKindGreaterEqual,
		TokenKindLess,
		TokenKindLessEqual,
		TokenKindContains,
		TokenKindNotContains,
	}, tokenKinds(tokens))
}

func TestLexer_operatorsWithoutWhitespace(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("a>=1and(b!~\"x\")")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []string{"a", ">=", "1", "and", "(", "b", "!~", "\"x\"", ")"}, tokenLexemes(tokens))
}

func TestLexer_reservedWords(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("in not startswith endswith and or order by asc desc True False None")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []TokenKind{
		TokenKindIn,
		TokenKindNot,
		TokenKindStartsWith,
		TokenKindEndsWith,
		TokenKindAnd,
		TokenKindOr,
		TokenKindOrder,
		TokenKindBy,
		TokenKindAsc,
		TokenKindDesc,
		TokenKindTrue,
		TokenKindFalse,
		TokenKindNone,
	}, tokenKinds(tokens))
}

func TestLexer_namesContainingReservedWords(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("True_story not_None inspect orders _and a.in.or")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []TokenKind{TokenKindName, TokenKindName, TokenKindName, TokenKindName, TokenKindName, TokenKindName}, tokenKinds(tokens))
	util.AssertEqual(t, []string{"True_story", "not_None", "inspect", "orders", "_and", "a.in.or"}, tokenLexemes(tokens))
}

func TestLexer_dottedName(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("user.group.id")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(tokens))
	util.AssertEqual(t, TokenKindName, tokens[0].Kind())
	util.AssertEqual(t, "user.group.id", tokens[0].Lexeme())
}

func TestLexer_dottedNameWithSpacesFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("user . group . id")

	// Assert
	util.AssertNil(t, tokens)
	util.AssertError(t, "Line 1, col 6: Illegal character '.'", err)

	var lexError *LexError
	util.AssertTrue(t, errors.As(err, &lexError))
	util.AssertEqual(t, ".", lexError.Value)
	util.AssertEqual(t, 1, lexError.Line)
	util.AssertEqual(t, 6, lexError.Column)
}

func TestLexer_doubleDotFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("user..id")

	// Assert
	util.AssertError(t, "Line 1, col 5: Illegal character '.'", err)
}

func TestLexer_trailingDotFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("user. = 1")

	// Assert
	util.AssertError(t, "Line 1, col 5: Illegal character '.'", err)
}

func TestLexer_illegalCharacter(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("a = 1 ^ 2")

	// Assert
	util.AssertError(t, "Line 1, col 7: Illegal character '^'", err)
}

func TestLexer_singleExclamationMarkFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("a ! 1")

	// Assert
	util.AssertError(t, "Line 1, col 3: Illegal character '!'", err)
}

func TestLexer_numbers(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("0 42 -17 42.0 -0.5e+42 2E64 2.71e-0002 3e5")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []TokenKind{
		TokenKindInt,
		TokenKindInt,
		TokenKindInt,
		TokenKindFloat,
		TokenKindFloat,
		TokenKindFloat,
		TokenKindFloat,
		TokenKindFloat,
	}, tokenKinds(tokens))
	util.AssertEqual(t, []string{"0", "42", "-17", "42.0", "-0.5e+42", "2E64", "2.71e-0002", "3e5"}, tokenLexemes(tokens))
}

func TestLexer_minusWithoutDigitFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("a = -b")

	// Assert
	util.AssertError(t, "Line 1, col 5: Illegal character '-'", err)
}

func TestLexer_strings(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize(`"" "foo bar" "say \"hi\"" "a\\b\/c\b\f\n\r\t" "äö"`)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []TokenKind{TokenKindString, TokenKindString, TokenKindString, TokenKindString, TokenKindString}, tokenKinds(tokens))
	util.AssertEqual(t, []string{`""`, `"foo bar"`, `"say \"hi\""`, `"a\\b\/c\b\f\n\r\t"`, `"äö"`}, tokenLexemes(tokens))
}

func TestLexer_unterminatedStringFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize(`name = "abc`)

	// Assert
	util.AssertError(t, `Line 1, col 8: Illegal character '"'`, err)

	var lexError *LexError
	util.AssertTrue(t, errors.As(err, &lexError))
	util.AssertEqual(t, `"`, lexError.Value)
}

func TestLexer_lineBreakInStringFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("name = \"abc\ndef\"")

	// Assert
	util.AssertError(t, `Line 1, col 8: Illegal character '"'`, err)
}

func TestLexer_invalidEscapeSequenceFails(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, errInvalidChar := Tokenize(`name = "a\xb"`)
	_, errShortUnicode := Tokenize(`name = "\u12"`)

	// Assert
	util.AssertError(t, `Line 1, col 8: Illegal character '"'`, errInvalidChar)
	util.AssertError(t, `Line 1, col 8: Illegal character '"'`, errShortUnicode)
}

func TestLexer_lineAndColumn(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokens, err := Tokenize("a = 1\n  and\u2028b\u00a0=\t2")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 7, len(tokens))

	util.AssertEqual(t, 1, tokens[0].Line())
	util.AssertEqual(t, 1, tokens[0].Column())
	util.AssertEqual(t, 1, tokens[2].Line())
	util.AssertEqual(t, 5, tokens[2].Column())

	util.AssertEqual(t, TokenKindAnd, tokens[3].Kind())
	util.AssertEqual(t, 2, tokens[3].Line())
	util.AssertEqual(t, 3, tokens[3].Column())

	util.AssertEqual(t, "b", tokens[4].Lexeme())
	util.AssertEqual(t, 3, tokens[4].Line())
	util.AssertEqual(t, 1, tokens[4].Column())
	util.AssertEqual(t, 3, tokens[5].Column())
	util.AssertEqual(t, 5, tokens[6].Column())
}

func TestLexer_errorPositionOnLaterLine(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	_, err := Tokenize("a = 1\r\nb = $")

	// Assert
	// Both \r and \n are line terminators
	util.AssertError(t, "Line 3, col 5: Illegal character '$'", err)
}

func TestLexer_isRestartable(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)

	// Act
	tokensA, errA := Tokenize("a = 1 or b ~ \"c\"")
	tokensB, errB := Tokenize("a = 1 or b ~ \"c\"")

	// Assert
	util.AssertNil(t, errA)
	util.AssertNil(t, errB)
	util.AssertEqual(t, tokensA, tokensB)
}

func TestIsNameSegment(t *testing.T) {
	util.AssertTrue(t, IsNameSegment("name"))
	util.AssertTrue(t, IsNameSegment("_addr_street2"))
	util.AssertTrue(t, IsNameSegment("order"))
	util.AssertFalse(t, IsNameSegment(""))
	util.AssertFalse(t, IsNameSegment("2lanes"))
	util.AssertFalse(t, IsNameSegment("addr:street"))
	util.AssertFalse(t, IsNameSegment("a.b"))
	util.AssertFalse(t, IsNameSegment("straße"))
}

func TestIsReservedWord(t *testing.T) {
	util.AssertTrue(t, IsReservedWord("order"))
	util.AssertTrue(t, IsReservedWord("None"))
	util.AssertFalse(t, IsReservedWord("none"))
	util.AssertFalse(t, IsReservedWord("name"))
}

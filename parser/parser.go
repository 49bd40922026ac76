package parser

import (
	"github.com/hauke96/sigolo/v2"
	"math"
	"searchdsl/query"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

type Parser struct {
	token []*Token
	index int
}

// ParseQueryString tokenizes and parses the given query text. An empty (or whitespace-only) text results in an empty
// query without expression and ordering.
func ParseQueryString(queryString string) (*query.Query, error) {
	token, err := Tokenize(queryString)
	if err != nil {
		return nil, err
	}

	sigolo.Tracef("Found %d token", len(token))
	for _, t := range token {
		sigolo.Tracef("  kind=%s, line=%d, col=%d : %s", t.kind.String(), t.line, t.column, t.lexeme)
	}

	parser := Parser{
		token: token,
		index: 0,
	}
	return parser.parse()
}

func (p *Parser) moveToNextToken() *Token {
	p.index++
	sigolo.Traceb(1, "Moved to next token: %+v", p.currentToken())
	return p.currentToken()
}

func (p *Parser) peekNextToken() *Token {
	if p.index+1 >= len(p.token) {
		return nil
	}
	return p.token[p.index+1]
}

func (p *Parser) hasNextToken() bool {
	return p.peekNextToken() != nil
}

func (p *Parser) currentToken() *Token {
	if p.index >= len(p.token) {
		return nil
	}
	return p.token[p.index]
}

// currentTokenIs returns true if there is a current token and it is of one of the given kinds.
func (p *Parser) currentTokenIs(kinds ...TokenKind) bool {
	token := p.currentToken()
	if token == nil {
		return false
	}
	for _, kind := range kinds {
		if token.kind == kind {
			return true
		}
	}
	return false
}

// unexpected creates the error for the current token or the end of the token stream if there is no current token.
func (p *Parser) unexpected(expectedMessage string) *ParseError {
	token := p.currentToken()
	if token == nil {
		return ParseErrorUnexpectedEnd(expectedMessage)
	}
	return ParseErrorUnexpectedToken(token, expectedMessage)
}

// expectToken makes sure the current token is of the given kind, returns it and moves on to the next token.
func (p *Parser) expectToken(kind TokenKind) (*Token, error) {
	if !p.currentTokenIs(kind) {
		return nil, p.unexpected("'" + kind.Lexeme() + "'")
	}
	token := p.currentToken()
	p.moveToNextToken()
	return token, nil
}

func (p *Parser) parse() (*query.Query, error) {
	var expression query.Expression
	var ordering *query.Ordering
	var err error

	if p.currentToken() != nil && !p.currentTokenIs(TokenKindOrder) {
		expression, err = p.parseOrExpression()
		if err != nil {
			return nil, err
		}
	}

	if p.currentTokenIs(TokenKindOrder) {
		ordering, err = p.parseOrdering()
		if err != nil {
			return nil, err
		}
	}

	if p.currentToken() != nil {
		if ordering != nil {
			return nil, p.unexpected("',' or end of input")
		}
		return nil, p.unexpected("'and', 'or' or 'order by'")
	}

	return query.NewQuery(expression, ordering), nil
}

// parseOrExpression parses "a or b or c" into left-associative logical expressions. Since "and" binds stronger than
// "or", the operands are parsed by parseAndExpression.
func (p *Parser) parseOrExpression() (query.Expression, error) {
	expression, err := p.parseAndExpression()
	if err != nil {
		return nil, err
	}

	for p.currentTokenIs(TokenKindOr) {
		p.moveToNextToken()

		var secondExpression query.Expression
		secondExpression, err = p.parseAndExpression()
		if err != nil {
			return nil, err
		}

		expression = query.NewLogicalExpression(expression, query.LogicOpOr, secondExpression)
	}

	return expression, nil
}

func (p *Parser) parseAndExpression() (query.Expression, error) {
	expression, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}

	for p.currentTokenIs(TokenKindAnd) {
		p.moveToNextToken()

		var secondExpression query.Expression
		secondExpression, err = p.parsePrimaryExpression()
		if err != nil {
			return nil, err
		}

		expression = query.NewLogicalExpression(expression, query.LogicOpAnd, secondExpression)
	}

	return expression, nil
}

// parsePrimaryExpression parses either a parenthesized expression or a single comparison like "age >= 18".
func (p *Parser) parsePrimaryExpression() (query.Expression, error) {
	if !p.currentTokenIs(TokenKindOpeningParenthesis) {
		return p.parseComparison()
	}

	p.moveToNextToken()
	expression, err := p.parseOrExpression()
	if err != nil {
		return nil, err
	}

	_, err = p.expectToken(TokenKindClosingParenthesis)
	if err != nil {
		return nil, err
	}

	return expression, nil
}

func (p *Parser) parseComparison() (query.Expression, error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	operator, err := p.parseComparisonOperator()
	if err != nil {
		return nil, err
	}

	var value query.Value
	switch operator {
	case query.CompIn, query.CompNotIn:
		value, err = p.parseConstList()
	case query.CompEqual, query.CompNotEqual:
		value, err = p.parseConst("number, string, True, False or None", TokenKindInt, TokenKindFloat, TokenKindString, TokenKindTrue, TokenKindFalse, TokenKindNone)
	case query.CompGreater, query.CompGreaterEqual, query.CompLess, query.CompLessEqual:
		value, err = p.parseConst("number or string", TokenKindInt, TokenKindFloat, TokenKindString)
	case query.CompContains, query.CompNotContains, query.CompStartsWith, query.CompNotStartsWith, query.CompEndsWith, query.CompNotEndsWith:
		value, err = p.parseConst("string", TokenKindString)
	default:
		return nil, p.unexpected("comparison operator")
	}
	if err != nil {
		return nil, err
	}

	return query.NewComparisonExpression(name, operator, value), nil
}

func (p *Parser) parseName() (query.Name, error) {
	token := p.currentToken()
	if !p.currentTokenIs(TokenKindName) {
		return query.Name{}, p.unexpected("name")
	}
	p.moveToNextToken()
	return query.NewName(strings.Split(token.lexeme, ".")...), nil
}

func (p *Parser) parseComparisonOperator() (query.ComparisonOperator, error) {
	token := p.currentToken()
	if token == nil {
		return query.CompInvalid, ParseErrorUnexpectedEnd("comparison operator")
	}

	var operator query.ComparisonOperator
	switch token.kind {
	case TokenKindEqual:
		operator = query.CompEqual
	case TokenKindNotEqual:
		operator = query.CompNotEqual
	case TokenKindGreater:
		operator = query.CompGreater
	case TokenKindGreaterEqual:
		operator = query.CompGreaterEqual
	case TokenKindLess:
		operator = query.CompLess
	case TokenKindLessEqual:
		operator = query.CompLessEqual
	case TokenKindContains:
		operator = query.CompContains
	case TokenKindNotContains:
		operator = query.CompNotContains
	case TokenKindIn:
		operator = query.CompIn
	case TokenKindStartsWith:
		operator = query.CompStartsWith
	case TokenKindEndsWith:
		operator = query.CompEndsWith
	case TokenKindNot:
		// "not" only exists as first part of "not in", "not startswith" and "not endswith"
		token = p.moveToNextToken()
		if token == nil {
			return query.CompInvalid, ParseErrorUnexpectedEnd("'in', 'startswith' or 'endswith'")
		}
		switch token.kind {
		case TokenKindIn:
			operator = query.CompNotIn
		case TokenKindStartsWith:
			operator = query.CompNotStartsWith
		case TokenKindEndsWith:
			operator = query.CompNotEndsWith
		default:
			return query.CompInvalid, ParseErrorUnexpectedToken(token, "'in', 'startswith' or 'endswith'")
		}
	default:
		return query.CompInvalid, ParseErrorUnexpectedToken(token, "comparison operator")
	}

	p.moveToNextToken()
	return operator, nil
}

// parseConstList parses a non-empty list of constants in parentheses like '(1, "foo", None)'.
func (p *Parser) parseConstList() (query.List, error) {
	_, err := p.expectToken(TokenKindOpeningParenthesis)
	if err != nil {
		return query.List{}, err
	}

	var items []query.Const
	for {
		item, err := p.parseConst("number, string, True, False or None", TokenKindInt, TokenKindFloat, TokenKindString, TokenKindTrue, TokenKindFalse, TokenKindNone)
		if err != nil {
			return query.List{}, err
		}
		items = append(items, item)

		if !p.currentTokenIs(TokenKindComma) {
			break
		}
		p.moveToNextToken()
	}

	_, err = p.expectToken(TokenKindClosingParenthesis)
	if err != nil {
		return query.List{}, err
	}

	return query.NewList(items...), nil
}

// parseConst turns the current token into a constant. Only the given token kinds are accepted, the expected message
// describes them for the error.
func (p *Parser) parseConst(expectedMessage string, allowedKinds ...TokenKind) (query.Const, error) {
	token := p.currentToken()
	if !p.currentTokenIs(allowedKinds...) {
		return query.Const{}, p.unexpected(expectedMessage)
	}

	var value query.Const
	switch token.kind {
	case TokenKindTrue:
		value = query.BoolConst(true)
	case TokenKindFalse:
		value = query.BoolConst(false)
	case TokenKindNone:
		value = query.NullConst()
	case TokenKindInt:
		number, err := strconv.ParseInt(token.lexeme, 10, 64)
		if err != nil {
			return query.Const{}, ParseErrorUnexpectedToken(token, "integer within 64 bit range")
		}
		value = query.IntConst(number)
	case TokenKindFloat:
		number, err := strconv.ParseFloat(token.lexeme, 64)
		if err != nil || math.IsInf(number, 0) {
			return query.Const{}, ParseErrorUnexpectedToken(token, "float within 64 bit range")
		}
		value = query.FloatConst(number)
	case TokenKindString:
		value = query.StringConst(unescape(token.lexeme[1 : len(token.lexeme)-1]))
	default:
		return query.Const{}, p.unexpected(expectedMessage)
	}

	p.moveToNextToken()
	return value, nil
}

func (p *Parser) parseOrdering() (*query.Ordering, error) {
	_, err := p.expectToken(TokenKindOrder)
	if err != nil {
		return nil, err
	}
	_, err = p.expectToken(TokenKindBy)
	if err != nil {
		return nil, err
	}

	var keys []query.OrderingKey
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		direction := query.DirectionNone
		if p.currentTokenIs(TokenKindAsc) {
			direction = query.DirectionAsc
			p.moveToNextToken()
		} else if p.currentTokenIs(TokenKindDesc) {
			direction = query.DirectionDesc
			p.moveToNextToken()
		}

		keys = append(keys, query.NewOrderingKey(name, direction))

		if !p.currentTokenIs(TokenKindComma) {
			break
		}
		p.moveToNextToken()
	}

	return query.NewOrdering(keys...), nil
}

// unescape replaces all escape sequences of the string content (without quotes). The lexer already made sure that
// only valid escape sequences exist. Surrogate pairs like "\ud83d\ude00" are combined into one rune.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			sb.WriteRune(runes[i])
			continue
		}

		i++
		switch runes[i] {
		case 'b':
			sb.WriteRune('\b')
		case 'f':
			sb.WriteRune('\f')
		case 'n':
			sb.WriteRune('\n')
		case 'r':
			sb.WriteRune('\r')
		case 't':
			sb.WriteRune('\t')
		case 'u':
			r, ok := parseHexRune(runes, i+1)
			if !ok {
				sb.WriteRune('\\')
				sb.WriteRune('u')
				continue
			}
			i += 4

			if utf16.IsSurrogate(r) {
				// A high surrogate needs to be combined with a directly following "\uXXXX" low surrogate.
				if i+2 < len(runes) && runes[i+1] == '\\' && runes[i+2] == 'u' {
					low, ok := parseHexRune(runes, i+3)
					if combined := utf16.DecodeRune(r, low); ok && combined != utf8.RuneError {
						sb.WriteRune(combined)
						i += 6
						continue
					}
				}
				r = utf8.RuneError
			}
			sb.WriteRune(r)
		default:
			// \" and \\ and \/
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

// parseHexRune parses the four hex digits starting at the given index.
func parseHexRune(runes []rune, index int) (rune, bool) {
	if index+4 > len(runes) {
		return 0, false
	}
	value, err := strconv.ParseUint(string(runes[index:index+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(value), true
}

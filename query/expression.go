package query

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"strconv"
	"strings"
	"unicode"
)

// Name is a dotted path like "author.groups.name". All parts except the last one usually refer to relations.
type Name struct {
	Parts []string
}

func NewName(parts ...string) Name {
	copied := make([]string, len(parts))
	copy(copied, parts)
	return Name{Parts: copied}
}

// Value returns the dotted representation of the name.
func (n Name) Value() string {
	return strings.Join(n.Parts, ".")
}

func (n Name) String() string {
	return n.Value()
}

type ConstKind int

const (
	ConstNull ConstKind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstBool
)

func (k ConstKind) String() string {
	switch k {
	case ConstNull:
		return "null"
	case ConstInt:
		return "int"
	case ConstFloat:
		return "float"
	case ConstString:
		return "str"
	case ConstBool:
		return "bool"
	}
	return fmt.Sprintf("[!UNKNOWN ConstKind %d]", k)
}

// Value is the right-hand side of a comparison: either a single Const or a List of them.
type Value interface {
	// Consts returns the single constant or all list items.
	Consts() []Const
	String() string
}

// Const is a literal. The Go type of Value depends on the Kind: int64, float64, string, bool or nil.
type Const struct {
	Kind  ConstKind
	Value any
}

func IntConst(v int64) Const {
	return Const{Kind: ConstInt, Value: v}
}

func FloatConst(v float64) Const {
	return Const{Kind: ConstFloat, Value: v}
}

func StringConst(v string) Const {
	return Const{Kind: ConstString, Value: v}
}

func BoolConst(v bool) Const {
	return Const{Kind: ConstBool, Value: v}
}

func NullConst() Const {
	return Const{Kind: ConstNull, Value: nil}
}

func (c Const) Consts() []Const {
	return []Const{c}
}

func (c Const) IsNull() bool {
	return c.Kind == ConstNull
}

// StringValue returns the string value or "" if the constant is not a string.
func (c Const) StringValue() string {
	s, _ := c.Value.(string)
	return s
}

// String returns the literal the way it has to be written in a query.
func (c Const) String() string {
	switch c.Kind {
	case ConstNull:
		return "None"
	case ConstInt:
		return strconv.FormatInt(c.Value.(int64), 10)
	case ConstFloat:
		s := strconv.FormatFloat(c.Value.(float64), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			// Otherwise the literal would be read as integer again
			s += ".0"
		}
		return s
	case ConstString:
		return QuoteString(c.Value.(string))
	case ConstBool:
		if c.Value.(bool) {
			return "True"
		}
		return "False"
	}
	return fmt.Sprintf("[!UNKNOWN Const %v]", c.Value)
}

type List struct {
	Items []Const
}

func NewList(items ...Const) List {
	return List{Items: items}
}

func (l List) Consts() []Const {
	return l.Items
}

func (l List) String() string {
	items := make([]string, len(l.Items))
	for i, item := range l.Items {
		items[i] = item.String()
	}
	return "(" + strings.Join(items, ", ") + ")"
}

// QuoteString puts the string in double quotes and escapes it, so that the lexer reads the exact same string again.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteRune('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\u2028', '\u2029':
			// Line terminators are not allowed within string literals
			sb.WriteString(fmt.Sprintf(`\u%04x`, r))
		default:
			if unicode.IsControl(r) {
				sb.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteRune('"')
	return sb.String()
}

// Expression is either a LogicalExpression combining two expressions or a ComparisonExpression comparing a name to
// a value.
type Expression interface {
	String() string
	Print(indent int)
	isExpression()
}

type LogicalExpression struct {
	Left     Expression
	Operator LogicalOperator
	Right    Expression
}

func NewLogicalExpression(left Expression, operator LogicalOperator, right Expression) *LogicalExpression {
	return &LogicalExpression{
		Left:     left,
		Operator: operator,
		Right:    right,
	}
}

func (e *LogicalExpression) isExpression() {}

func (e *LogicalExpression) String() string {
	// Left-associative: the right child needs parentheses already for equal precedence.
	left := e.Left.String()
	if l, ok := e.Left.(*LogicalExpression); ok && precedence(l.Operator) < precedence(e.Operator) {
		left = "(" + left + ")"
	}
	right := e.Right.String()
	if r, ok := e.Right.(*LogicalExpression); ok && precedence(r.Operator) <= precedence(e.Operator) {
		right = "(" + right + ")"
	}
	return fmt.Sprintf("%s %s %s", left, e.Operator.String(), right)
}

func (e *LogicalExpression) Print(indent int) {
	sigolo.Debugf("%sLogicalExpression:", spacing(indent))
	e.Left.Print(indent + 2)
	sigolo.Debugf("%s%s", spacing(indent), strings.ToUpper(e.Operator.String()))
	e.Right.Print(indent + 2)
}

type ComparisonExpression struct {
	Name     Name
	Operator ComparisonOperator
	Value    Value
}

func NewComparisonExpression(name Name, operator ComparisonOperator, value Value) *ComparisonExpression {
	return &ComparisonExpression{
		Name:     name,
		Operator: operator,
		Value:    value,
	}
}

func (e *ComparisonExpression) isExpression() {}

func (e *ComparisonExpression) String() string {
	return fmt.Sprintf("%s %s %s", e.Name.Value(), e.Operator.String(), e.Value.String())
}

func (e *ComparisonExpression) Print(indent int) {
	sigolo.Debugf("%sComparisonExpression: %s", spacing(indent), e.String())
}

func precedence(o LogicalOperator) int {
	if o == LogicOpAnd {
		return 2
	}
	return 1
}

func spacing(indent int) string {
	return strings.Repeat(" ", indent)
}

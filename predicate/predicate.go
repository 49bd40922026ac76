package predicate

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"strings"
	"time"
)

// Op is the operation of a leaf predicate. Negated comparisons (like "!=") are expressed by wrapping a leaf into a
// Not node, so there are no negated operations here.
type Op int

const (
	OpInvalid Op = iota
	OpEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpContains // Case-insensitive substring match.
	OpIn
	OpPrefix
	OpSuffix
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpGreater:
		return "gt"
	case OpGreaterEqual:
		return "gte"
	case OpLess:
		return "lt"
	case OpLessEqual:
		return "lte"
	case OpContains:
		return "icontains"
	case OpIn:
		return "in"
	case OpPrefix:
		return "prefix"
	case OpSuffix:
		return "suffix"
	}
	return fmt.Sprintf("[!UNKNOWN Op %d]", o)
}

// Node is one node of a backend-agnostic predicate tree. The set of implementations is closed: *And, *Or, *Not,
// *Leaf and *Always.
type Node interface {
	String() string
	Print(indent int)
	isNode()
}

type And struct {
	Left  Node
	Right Node
}

func NewAnd(left Node, right Node) *And {
	return &And{Left: left, Right: right}
}

func (n *And) isNode() {}

func (n *And) String() string {
	return fmt.Sprintf("(%s AND %s)", n.Left.String(), n.Right.String())
}

func (n *And) Print(indent int) {
	sigolo.Debugf("%sAND", spacing(indent))
	n.Left.Print(indent + 2)
	n.Right.Print(indent + 2)
}

type Or struct {
	Left  Node
	Right Node
}

func NewOr(left Node, right Node) *Or {
	return &Or{Left: left, Right: right}
}

func (n *Or) isNode() {}

func (n *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", n.Left.String(), n.Right.String())
}

func (n *Or) Print(indent int) {
	sigolo.Debugf("%sOR", spacing(indent))
	n.Left.Print(indent + 2)
	n.Right.Print(indent + 2)
}

type Not struct {
	Node Node
}

func NewNot(node Node) *Not {
	return &Not{Node: node}
}

func (n *Not) isNode() {}

func (n *Not) String() string {
	return fmt.Sprintf("NOT %s", n.Node.String())
}

func (n *Not) Print(indent int) {
	sigolo.Debugf("%sNOT", spacing(indent))
	n.Node.Print(indent + 2)
}

// Leaf compares the value addressed by the lookup key (e.g. "author.name") with the given value. The value is an
// int64, float64, string, bool, time.Time or nil. For OpIn it's a []any of these.
type Leaf struct {
	Lookup string
	Op     Op
	Value  any
}

func NewLeaf(lookup string, op Op, value any) *Leaf {
	return &Leaf{Lookup: lookup, Op: op, Value: value}
}

func (n *Leaf) isNode() {}

func (n *Leaf) String() string {
	return fmt.Sprintf("%s %s %s", n.Lookup, n.Op.String(), formatValue(n.Value))
}

func (n *Leaf) Print(indent int) {
	sigolo.Debugf("%s%s", spacing(indent), n.String())
}

// Always is a constant predicate. It's the result of empty "in" lists, which match nothing, and empty "not in" lists,
// which match everything.
type Always struct {
	Value bool
}

func NewAlways(value bool) *Always {
	return &Always{Value: value}
}

func (n *Always) isNode() {}

func (n *Always) String() string {
	if n.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (n *Always) Print(indent int) {
	sigolo.Debugf("%s%s", spacing(indent), n.String())
}

// AllOf combines the nodes with AND from left to right. No nodes result in an Always(true) node.
func AllOf(nodes ...Node) Node {
	if len(nodes) == 0 {
		return NewAlways(true)
	}
	result := nodes[0]
	for _, node := range nodes[1:] {
		result = NewAnd(result, node)
	}
	return result
}

// AnyOf combines the nodes with OR from left to right. No nodes result in an Always(false) node.
func AnyOf(nodes ...Node) Node {
	if len(nodes) == 0 {
		return NewAlways(false)
	}
	result := nodes[0]
	for _, node := range nodes[1:] {
		result = NewOr(result, node)
	}
	return result
}

// Lookups returns all lookup keys of the leaves in the order they appear in the tree.
func Lookups(node Node) []string {
	var lookups []string
	Walk(node, func(n Node) {
		if leaf, ok := n.(*Leaf); ok {
			lookups = append(lookups, leaf.Lookup)
		}
	})
	return lookups
}

// Walk visits the node and all its children in depth-first pre-order.
func Walk(node Node, visit func(Node)) {
	visit(node)
	switch n := node.(type) {
	case *And:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Or:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Not:
		Walk(n.Node, visit)
	case *Leaf, *Always:
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = formatValue(item)
		}
		return "(" + strings.Join(items, ", ") + ")"
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", value)
}

func spacing(indent int) string {
	return strings.Repeat(" ", indent)
}

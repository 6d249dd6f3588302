// Package formula builds expression trees from formula text, evaluates them,
// and defines the standard in-sheet error values.
package formula

import (
	"fmt"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
)

// Node is a formula tree node. The set of node types is closed: only the
// types in this file implement it.
type Node interface {
	node()
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value float64
}

// StringNode is a text literal.
type StringNode struct {
	Value string
}

// BoolNode is TRUE or FALSE.
type BoolNode struct {
	Value bool
}

// ErrorNode is an error literal such as #N/A.
type ErrorNode struct {
	Value ErrorValue
}

// CellNode references a single cell. Sheet is empty for the formula's own sheet.
type CellNode struct {
	Sheet string
	Pos   address.Position
}

// RangeNode references a rectangle of cells.
type RangeNode struct {
	Sheet string
	Range address.Range
}

// NameNode references a defined name.
type NameNode struct {
	Sheet string
	Name  string
}

// UnaryNode is a prefix operator: "-" or "+".
type UnaryNode struct {
	Op      string
	Operand Node
}

// PostfixNode is a postfix operator: "%".
type PostfixNode struct {
	Op      string
	Operand Node
}

// BinaryNode is an infix operator. Op is one of + - * / ^ & = <> < > <= >=
// or " " for range intersection.
type BinaryNode struct {
	Op          string
	Left, Right Node
}

// FunctionNode is a function call.
type FunctionNode struct {
	Name string
	Args []Node
}

// UnionNode joins references with the "," operator.
type UnionNode struct {
	Items []Node
}

func (*NumberNode) node()   {}
func (*StringNode) node()   {}
func (*BoolNode) node()     {}
func (*ErrorNode) node()    {}
func (*CellNode) node()     {}
func (*RangeNode) node()    {}
func (*NameNode) node()     {}
func (*UnaryNode) node()    {}
func (*PostfixNode) node()  {}
func (*BinaryNode) node()   {}
func (*FunctionNode) node() {}
func (*UnionNode) node()    {}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *NumberNode, *StringNode, *BoolNode, *ErrorNode,
		*CellNode, *RangeNode, *NameNode:
		return nil
	case *UnaryNode:
		return []Node{n.Operand}
	case *PostfixNode:
		return []Node{n.Operand}
	case *BinaryNode:
		return []Node{n.Left, n.Right}
	case *FunctionNode:
		return n.Args
	case *UnionNode:
		return n.Items
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("formula: unknown node type %T", n))
	}
}

// Walk visits n and its descendants depth-first, stopping a branch when fn
// returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

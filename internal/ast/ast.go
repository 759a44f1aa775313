// Package ast defines the node set the parser produces and the analyzer
// consumes. The node-kind set is closed; an unrecognized node is a
// programmer bug, not an input error.
//
// The walk over this tree is done with type switches in the analyzer
// rather than a Visitor interface: a class hierarchy of visitors is an
// artifact of languages without sum types, and Go's type switch gives
// the same exhaustive-dispatch shape without it.
package ast

// Pos is a source location used for diagnostics.
type Pos struct {
	Line   int
	Column int
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() Pos
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a Node that has only side effects on scope/control flow.
type Statement interface {
	Node
	stmtNode()
}

// Program is the root node produced by the parser for one source file.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) Pos() Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Pos{}
}

// Base embeds a Pos for every concrete node, avoiding a Pos field
// repeated by hand on every struct below. Exported so collaborator
// packages (the parser) can construct node literals directly.
type Base struct{ P Pos }

func (b Base) Pos() Pos { return b.P }

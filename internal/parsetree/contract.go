// Package parsetree is the boundary between the (out-of-scope)
// grammar/parser and the lowering pass: it declares the tree shape
// lowering consumes and the two small parsing utilities (numeric
// literals, line-number assignment) that the grammar's tokeniser pass
// is assumed to have already run.
package parsetree

// NodeKind enumerates the syntactic categories spec.md §6 requires the
// adapter to recognise. It exists as the generic vocabulary of the
// enter/exit contract below; the concrete AST in ast.go is the typed
// realisation lowering actually walks (as DESIGN.md's parsetree entry
// records: a statically typed Accept/visitor double-dispatch gives every
// expression node a result id the instant its Accept call returns,
// which is a strictly-typed form of the spec's nodeToInstruction
// binding — no ctx-keyed side map needed when the node itself *is* the
// key and the visitor method's return value *is* the binding).
type NodeKind int

const (
	KindLiteral NodeKind = iota
	KindBinary
	KindUnary
	KindLogical
	KindVariableRef
	KindArrayIndex
	KindUDFCall
	KindFuncCall
	KindLet
	KindPrint
	KindWrite
	KindIfThenBegin
	KindElseBegin
	KindEndIf
	KindIfInline
	KindWhile
	KindWend
	KindFor
	KindNext
	KindGosub
	KindReturn
	KindGoto
	KindDefFn
	KindDim
	KindDefType
	KindOpen
	KindClose
	KindField
	KindGet
	KindPut
)

// Ctx is the minimal surface the adapter needs from a parser-generated
// context node: enough to build a SourceLoc and a caret-pointed error
// excerpt.
type Ctx interface {
	Text() string
	Line() int
	Column() int
}

// Visitor is the generic enter/exit contract of spec.md §6. A real
// ANTLR-style parser walks its tree and calls Enter/Exit on the
// registered listener for every node; ast.go's Expr/Stmt.Accept
// methods are how this module's own fixtures and tests drive that
// same contract without depending on a concrete parser-generator
// runtime.
type Visitor interface {
	Enter(kind NodeKind, ctx Ctx)
	Exit(kind NodeKind, ctx Ctx)
}

// Tree is produced by the external parser; Walk drives Enter/Exit
// calls over it in tree order.
type Tree interface {
	Walk(v Visitor)
}

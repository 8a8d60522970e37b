// Package cast models the typed C syntax tree handed to the lifter by
// the external front end. The lifter never parses C text; it consumes
// this tree, which the front end ships as JSON (see json.go).
package cast

import "fmt"

// NodeKind identifies the concrete type of a syntax tree node. It is
// also the "kind" discriminator of the JSON exchange format.
type NodeKind string

const (
	TRANSLATION_UNIT NodeKind = "translation_unit"
	FUNCTION_DEF     NodeKind = "function_def"
	PARAM            NodeKind = "param"
	DECLARATION      NodeKind = "declaration"

	ASSIGNMENT_STMT NodeKind = "assignment"
	CALL_STMT       NodeKind = "call"
	RETURN_STMT     NodeKind = "return"
	IF_STMT         NodeKind = "if"
	FOR_STMT        NodeKind = "for"
	WHILE_STMT      NodeKind = "while"
	COMPOUND_STMT   NodeKind = "compound"
	SWITCH_STMT     NodeKind = "switch"
	SWITCH_CASE     NodeKind = "case"
	BREAK_STMT      NodeKind = "break"
	CONTINUE_STMT   NodeKind = "continue"
	BAD_STMT        NodeKind = "bad_stmt"

	CONSTANT_EXPR NodeKind = "constant"
	IDENT_EXPR    NodeKind = "identifier"
	BINARY_EXPR   NodeKind = "binary_op"
	UNARY_EXPR    NodeKind = "unary_op"
	CAST_EXPR     NodeKind = "cast"
	CALL_EXPR     NodeKind = "call_expr"
	INDEX_EXPR    NodeKind = "array_ref"
	FIELD_EXPR    NodeKind = "field_ref"
	DEREF_EXPR    NodeKind = "dereference"
	ADDROF_EXPR   NodeKind = "address_of"
	BAD_EXPR      NodeKind = "bad_expr"
)

// Position is an optional source coordinate attached by the front end.
// The zero value means "no coordinate".
type Position struct {
	File   string
	Line   int
	Column int
}

// Coord renders the position as the opaque "file:line:col" string the
// IR carries, or "" for the zero position.
func (p Position) Coord() string {
	if p == (Position{}) {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

type Node interface {
	NodePos() Position
	NodeKind() NodeKind
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	isStmt()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	isExpr()
}

func (*Declaration) isStmt()  {}
func (*Assignment) isStmt()   {}
func (*CallStmt) isStmt()     {}
func (*ReturnStmt) isStmt()   {}
func (*IfStmt) isStmt()       {}
func (*ForStmt) isStmt()      {}
func (*WhileStmt) isStmt()    {}
func (*Compound) isStmt()     {}
func (*SwitchStmt) isStmt()   {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*BadStmt) isStmt()      {}

func (*ConstantExpr) isExpr() {}
func (*IdentExpr) isExpr()    {}
func (*BinaryExpr) isExpr()   {}
func (*UnaryExpr) isExpr()    {}
func (*CastExpr) isExpr()     {}
func (*CallExpr) isExpr()     {}
func (*IndexExpr) isExpr()    {}
func (*FieldExpr) isExpr()    {}
func (*DerefExpr) isExpr()    {}
func (*AddrOfExpr) isExpr()   {}
func (*BadExpr) isExpr()      {}

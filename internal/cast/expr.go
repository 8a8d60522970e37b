package cast

// ConstantExpr is a literal tagged with its front-end kind ("int",
// "string", ...). The literal text is preserved verbatim.
type ConstantExpr struct {
	Kind  string
	Value string
	Pos   Position
}

func (c *ConstantExpr) NodePos() Position { return c.Pos }
func (*ConstantExpr) NodeKind() NodeKind  { return CONSTANT_EXPR }

type IdentExpr struct {
	Name string
	Pos  Position
}

func (i *IdentExpr) NodePos() Position { return i.Pos }
func (*IdentExpr) NodeKind() NodeKind  { return IDENT_EXPR }

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

func (b *BinaryExpr) NodePos() Position { return b.Pos }
func (*BinaryExpr) NodeKind() NodeKind  { return BINARY_EXPR }

type UnaryExpr struct {
	Op      string
	Operand Expr
	Pos     Position
}

func (u *UnaryExpr) NodePos() Position { return u.Pos }
func (*UnaryExpr) NodeKind() NodeKind  { return UNARY_EXPR }

type CastExpr struct {
	Type    string
	Operand Expr
	Pos     Position
}

func (c *CastExpr) NodePos() Position { return c.Pos }
func (*CastExpr) NodeKind() NodeKind  { return CAST_EXPR }

// CallExpr is a call in expression position. Fun is usually an
// IdentExpr, but the front end may hand over wrapped call forms; the
// lowerer unwraps them to find the callee name.
type CallExpr struct {
	Fun  Expr
	Args []Expr
	Pos  Position
}

func (c *CallExpr) NodePos() Position { return c.Pos }
func (*CallExpr) NodeKind() NodeKind  { return CALL_EXPR }

type IndexExpr struct {
	Array Expr
	Index Expr
	Pos   Position
}

func (i *IndexExpr) NodePos() Position { return i.Pos }
func (*IndexExpr) NodeKind() NodeKind  { return INDEX_EXPR }

// FieldExpr is a struct or union member access. Arrow records whether
// the source used `->` rather than `.`.
type FieldExpr struct {
	X     Expr
	Field string
	Arrow bool
	Pos   Position
}

func (f *FieldExpr) NodePos() Position { return f.Pos }
func (*FieldExpr) NodeKind() NodeKind  { return FIELD_EXPR }

type DerefExpr struct {
	Operand Expr
	Pos     Position
}

func (d *DerefExpr) NodePos() Position { return d.Pos }
func (*DerefExpr) NodeKind() NodeKind  { return DEREF_EXPR }

type AddrOfExpr struct {
	Operand Expr
	Pos     Position
}

func (a *AddrOfExpr) NodePos() Position { return a.Pos }
func (*AddrOfExpr) NodeKind() NodeKind  { return ADDROF_EXPR }

// BadExpr stands in for an expression kind the exchange decoder did
// not recognize. Kind preserves the original tag so the lowerer can
// embed it in the placeholder variable name.
type BadExpr struct {
	Kind string
	Pos  Position
}

func (b *BadExpr) NodePos() Position { return b.Pos }
func (*BadExpr) NodeKind() NodeKind  { return BAD_EXPR }

package ir

// Expressions form an immutable DAG of value nodes. Variables are
// referenced by name, never by shared node identity, so an expression
// tree can be serialized and compared structurally.

// Node is implemented by every IR node.
type Node interface {
	// Kind returns the node's tag, used by both serialization forms.
	Kind() string
	// NodeCoord returns the optional "file:line:col" coordinate, or "".
	NodeCoord() string
}

// Expression is the closed set of expression variants.
type Expression interface {
	Node
	isExpression()
}

func (*Constant) isExpression()     {}
func (*Variable) isExpression()     {}
func (*BinaryOp) isExpression()     {}
func (*UnaryOp) isExpression()      {}
func (*Cast) isExpression()         {}
func (*FunctionCall) isExpression() {}
func (*ArrayRef) isExpression()     {}
func (*StructRef) isExpression()    {}
func (*Dereference) isExpression()  {}
func (*AddressOf) isExpression()    {}
func (*Load) isExpression()         {}

// Constant is a literal tagged with its kind. The literal text is
// preserved verbatim; a value that failed to parse under its declared
// kind has already been re-tagged string-like by the lowerer.
type Constant struct {
	ConstType string
	Value     string
	Coord     string
}

func (c *Constant) Kind() string      { return "constant" }
func (c *Constant) NodeCoord() string { return c.Coord }

// Variable references a source variable by name.
type Variable struct {
	Name  string
	Coord string
}

func (v *Variable) Kind() string      { return "variable" }
func (v *Variable) NodeCoord() string { return v.Coord }

// BinaryOp applies the literal source operator symbol to two operands.
type BinaryOp struct {
	Op    string
	Left  Expression
	Right Expression
	Coord string
}

func (b *BinaryOp) Kind() string      { return "binary_op" }
func (b *BinaryOp) NodeCoord() string { return b.Coord }

// UnaryOp applies an arithmetic or logical unary operator. Pointer
// dereference and address-of are not UnaryOps; they have dedicated
// nodes below.
type UnaryOp struct {
	Op      string
	Operand Expression
	Coord   string
}

func (u *UnaryOp) Kind() string      { return "unary_op" }
func (u *UnaryOp) NodeCoord() string { return u.Coord }

type Cast struct {
	TargetType string
	Operand    Expression
	Coord      string
}

func (c *Cast) Kind() string      { return "cast" }
func (c *Cast) NodeCoord() string { return c.Coord }

// FunctionCall is a call in expression position. FunctionName is the
// resolved callee, or the "unknown_func" sentinel when no plain
// identifier could be found.
type FunctionCall struct {
	FunctionName string
	Args         []Expression
	Coord        string
}

func (f *FunctionCall) Kind() string      { return "function_call" }
func (f *FunctionCall) NodeCoord() string { return f.Coord }

type ArrayRef struct {
	Array Expression
	Index Expression
	Coord string
}

func (a *ArrayRef) Kind() string      { return "array_ref" }
func (a *ArrayRef) NodeCoord() string { return a.Coord }

// StructRef is a struct or union member access. IsArrow records
// whether the source used pointer (`->`) or value (`.`) access.
type StructRef struct {
	Struct  Expression
	Field   string
	IsArrow bool
	Coord   string
}

func (s *StructRef) Kind() string      { return "struct_ref" }
func (s *StructRef) NodeCoord() string { return s.Coord }

// Dereference is `*expr`.
type Dereference struct {
	Operand Expression
	Coord   string
}

func (d *Dereference) Kind() string      { return "dereference" }
func (d *Dereference) NodeCoord() string { return d.Coord }

// AddressOf is `&expr`.
type AddressOf struct {
	Operand Expression
	Coord   string
}

func (a *AddressOf) Kind() string      { return "address_of" }
func (a *AddressOf) NodeCoord() string { return a.Coord }

// Load reads through an address; reserved for analyses that make
// memory reads explicit.
type Load struct {
	Address Expression
	Coord   string
}

func (l *Load) Kind() string      { return "load" }
func (l *Load) NodeCoord() string { return l.Coord }

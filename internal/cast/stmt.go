package cast

// TranslationUnit is one parsed C source file: its recorded includes
// and its top-level declarations in source order.
type TranslationUnit struct {
	Name     string
	Includes []string
	Decls    []ExtDecl
	Pos      Position
}

func (u *TranslationUnit) NodePos() Position { return u.Pos }
func (*TranslationUnit) NodeKind() NodeKind  { return TRANSLATION_UNIT }

// ExtDecl is a top-level declaration: a function definition or a
// global variable declaration.
type ExtDecl interface {
	Node
	isExtDecl()
}

func (*FunctionDef) isExtDecl() {}
func (*Declaration) isExtDecl() {}

// FunctionDef is a function definition with its body.
type FunctionDef struct {
	Name   string
	Params []*Param
	Body   *Compound
	Pos    Position
}

func (f *FunctionDef) NodePos() Position { return f.Pos }
func (*FunctionDef) NodeKind() NodeKind  { return FUNCTION_DEF }

type Param struct {
	Name string
	Type string
	Pos  Position
}

func (p *Param) NodePos() Position { return p.Pos }
func (*Param) NodeKind() NodeKind  { return PARAM }

// Declaration declares a variable, optionally with an initializer.
// It appears both at top level (globals) and inside function bodies.
type Declaration struct {
	Name string
	Type string
	Init Expr // nil when the declaration has no initializer
	Pos  Position
}

func (d *Declaration) NodePos() Position { return d.Pos }
func (*Declaration) NodeKind() NodeKind  { return DECLARATION }

// Assignment is a statement of the form `lvalue = rvalue`.
type Assignment struct {
	Lvalue Expr
	Rvalue Expr
	Pos    Position
}

func (a *Assignment) NodePos() Position { return a.Pos }
func (*Assignment) NodeKind() NodeKind  { return ASSIGNMENT_STMT }

// CallStmt is a bare call in statement position, discarding the result.
type CallStmt struct {
	Call *CallExpr
	Pos  Position
}

func (c *CallStmt) NodePos() Position { return c.Pos }
func (*CallStmt) NodeKind() NodeKind  { return CALL_STMT }

type ReturnStmt struct {
	Value Expr // nil for a bare return
	Pos   Position
}

func (r *ReturnStmt) NodePos() Position { return r.Pos }
func (*ReturnStmt) NodeKind() NodeKind  { return RETURN_STMT }

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else branch; an IfStmt for else-if
	Pos  Position
}

func (i *IfStmt) NodePos() Position { return i.Pos }
func (*IfStmt) NodeKind() NodeKind  { return IF_STMT }

type ForStmt struct {
	Init Stmt // nil when omitted; Declaration or Assignment
	Cond Expr // nil means loop forever
	Post Stmt // nil when omitted
	Body Stmt
	Pos  Position
}

func (f *ForStmt) NodePos() Position { return f.Pos }
func (*ForStmt) NodeKind() NodeKind  { return FOR_STMT }

type WhileStmt struct {
	Cond Expr
	Body Stmt
	Pos  Position
}

func (w *WhileStmt) NodePos() Position { return w.Pos }
func (*WhileStmt) NodeKind() NodeKind  { return WHILE_STMT }

type Compound struct {
	Items []Stmt
	Pos   Position
}

func (c *Compound) NodePos() Position { return c.Pos }
func (*Compound) NodeKind() NodeKind  { return COMPOUND_STMT }

type SwitchStmt struct {
	Cond  Expr
	Cases []*SwitchCase
	Pos   Position
}

func (s *SwitchStmt) NodePos() Position { return s.Pos }
func (*SwitchStmt) NodeKind() NodeKind  { return SWITCH_STMT }

// SwitchCase is one arm of a switch. Several labels sharing one body
// appear as multiple Values. The default arm has IsDefault set and no
// Values.
type SwitchCase struct {
	Values    []Expr
	IsDefault bool
	Body      []Stmt
	Pos       Position
}

func (s *SwitchCase) NodePos() Position { return s.Pos }
func (*SwitchCase) NodeKind() NodeKind  { return SWITCH_CASE }

type BreakStmt struct {
	Pos Position
}

func (b *BreakStmt) NodePos() Position { return b.Pos }
func (*BreakStmt) NodeKind() NodeKind  { return BREAK_STMT }

type ContinueStmt struct {
	Pos Position
}

func (c *ContinueStmt) NodePos() Position { return c.Pos }
func (*ContinueStmt) NodeKind() NodeKind  { return CONTINUE_STMT }

// BadStmt stands in for a statement kind the exchange decoder did not
// recognize. Kind preserves the original tag for diagnostics.
type BadStmt struct {
	Kind string
	Pos  Position
}

func (b *BadStmt) NodePos() Position { return b.Pos }
func (*BadStmt) NodeKind() NodeKind  { return BAD_STMT }

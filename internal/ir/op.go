package ir

// Operation is the closed set of operation variants carried by a
// basic block. Sequence order is execution order.
type Operation interface {
	Node
	isOperation()
}

func (*Assign) isOperation()     {}
func (*Call) isOperation()       {}
func (*Store) isOperation()      {}
func (*SemanticOp) isOperation() {}

// RefReturnKind classifies what a call returns from the managed
// runtime's point of view.
type RefReturnKind string

const (
	RefNew      RefReturnKind = "new_ref"
	RefBorrowed RefReturnKind = "borrowed_ref"
	RefNone     RefReturnKind = "none"
)

// ValidRefReturnKind reports whether k is one of the known kinds.
func ValidRefReturnKind(k RefReturnKind) bool {
	switch k {
	case RefNew, RefBorrowed, RefNone:
		return true
	}
	return false
}

// RefSemantics is the externally supplied ownership annotation for a
// called function: what its return value owns, which argument
// references it steals, and the opaque value it returns on error.
type RefSemantics struct {
	ReturnRefType RefReturnKind `json:"return_ref_type,omitempty"`
	ArgRefSteal   map[int]bool  `json:"arg_ref_steal,omitempty"`
	ErrorReturn   interface{}   `json:"error_return,omitempty"`
}

// Clone returns a deep copy so an attached annotation cannot alias
// knowledge base state that may later be updated.
func (r *RefSemantics) Clone() *RefSemantics {
	if r == nil {
		return nil
	}
	out := &RefSemantics{ReturnRefType: r.ReturnRefType, ErrorReturn: r.ErrorReturn}
	if r.ArgRefSteal != nil {
		out.ArgRefSteal = make(map[int]bool, len(r.ArgRefSteal))
		for k, v := range r.ArgRefSteal {
			out.ArgRefSteal[k] = v
		}
	}
	return out
}

// Assign binds the value of an expression to a named variable.
type Assign struct {
	Target *Variable
	Value  Expression
	Coord  string
}

func (a *Assign) Kind() string      { return "assign" }
func (a *Assign) NodeCoord() string { return a.Coord }

// Call invokes a function in statement position. DestVar is empty when
// the result is discarded. Semantics carries the knowledge base record
// resolved at lowering time, or nil when the callee is unknown to the
// knowledge base.
type Call struct {
	DestVar      string
	FunctionName string
	Args         []Expression
	Semantics    *RefSemantics
	Coord        string
}

func (c *Call) Kind() string      { return "call" }
func (c *Call) NodeCoord() string { return c.Coord }

// Store writes a value through an address.
type Store struct {
	Address Expression
	Value   Expression
	Coord   string
}

func (s *Store) Kind() string      { return "store" }
func (s *Store) NodeCoord() string { return s.Coord }

// SemanticOp is an analysis-inserted operation with free-form
// attributes, for passes that rewrite the IR downstream.
type SemanticOp struct {
	OpType     string
	Attributes map[string]interface{}
	Coord      string
}

func (s *SemanticOp) Kind() string      { return "semantic_op" }
func (s *SemanticOp) NodeCoord() string { return s.Coord }

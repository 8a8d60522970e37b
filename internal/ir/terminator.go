package ir

// Terminator is the closed set of block-ending variants. Targets are
// block names resolved within the owning function.
type Terminator interface {
	Node
	isTerminator()
	// Successors returns the names of the blocks this terminator can
	// transfer control to, in declaration order.
	Successors() []string
}

func (*Return) isTerminator()      {}
func (*BranchIf) isTerminator()    {}
func (*Jump) isTerminator()        {}
func (*Switch) isTerminator()      {}
func (*Unreachable) isTerminator() {}

// Return ends the function, optionally yielding a value.
type Return struct {
	Value Expression
	Coord string
}

func (r *Return) Kind() string         { return "return" }
func (r *Return) NodeCoord() string    { return r.Coord }
func (r *Return) Successors() []string { return nil }

type BranchIf struct {
	Condition   Expression
	TrueTarget  string
	FalseTarget string
	Coord       string
}

func (b *BranchIf) Kind() string      { return "branch_if" }
func (b *BranchIf) NodeCoord() string { return b.Coord }
func (b *BranchIf) Successors() []string {
	return []string{b.TrueTarget, b.FalseTarget}
}

type Jump struct {
	Target string
	Coord  string
}

func (j *Jump) Kind() string         { return "jump" }
func (j *Jump) NodeCoord() string    { return j.Coord }
func (j *Jump) Successors() []string { return []string{j.Target} }

// SwitchCase maps one case label value to its target block. Several
// labels sharing a body share the target name.
type SwitchCase struct {
	Value  string `json:"value"`
	Target string `json:"target"`
}

// Switch dispatches on a scrutinee evaluated once. DefaultTarget is
// always present; the lowerer synthesizes a fallthrough target when
// the source omits default.
type Switch struct {
	Expr          Expression
	Cases         []SwitchCase
	DefaultTarget string
	Coord         string
}

func (s *Switch) Kind() string      { return "switch" }
func (s *Switch) NodeCoord() string { return s.Coord }
func (s *Switch) Successors() []string {
	out := make([]string, 0, len(s.Cases)+1)
	for _, c := range s.Cases {
		out = append(out, c.Target)
	}
	if s.DefaultTarget != "" {
		out = append(out, s.DefaultTarget)
	}
	return out
}

// Unreachable marks a block that control flow can never leave
// normally.
type Unreachable struct {
	Coord string
}

func (u *Unreachable) Kind() string         { return "unreachable" }
func (u *Unreachable) NodeCoord() string    { return u.Coord }
func (u *Unreachable) Successors() []string { return nil }

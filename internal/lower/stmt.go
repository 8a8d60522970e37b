package lower

import (
	"fmt"

	"lisa/internal/cast"
	"lisa/internal/errors"
	"lisa/internal/ir"
)

// SemanticSource is the read contract to the knowledge base. Absence
// of a record means "no information", never an error.
type SemanticSource interface {
	Lookup(name string) (*ir.RefSemantics, bool)
}

// pass carries the per-function lowering state: the flat variable
// scope, the block currently being appended to, and a block-id
// counter local to this pass. Nothing here is shared across
// functions, so independent functions can lower concurrently.
type pass struct {
	fn    *ir.Function
	scope map[string]string
	cur   *ir.BasicBlock
	id    int
	db    SemanticSource
	diags *errors.Diagnostics

	breakTargets    []string
	continueTargets []string
}

// Function lowers one function definition into IR. Recoverable
// problems accumulate in diags; a fatal condition aborts this
// function and returns a *errors.LiftError.
func Function(def *cast.FunctionDef, db SemanticSource, diags *errors.Diagnostics) (*ir.Function, error) {
	if def == nil || def.Name == "" {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "function definition has no name")
	}
	if def.Body == nil {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, def.Pos.Coord(),
			"function %q has no body", def.Name)
	}

	fn := ir.NewFunction(def.Name, def.Pos.Coord())
	p := &pass{fn: fn, scope: map[string]string{}, db: db, diags: diags}

	for _, param := range def.Params {
		if param == nil || param.Name == "" {
			continue
		}
		fn.Params = append(fn.Params, &ir.Param{
			Name:      param.Name,
			ParamType: param.Type,
			Coord:     param.Pos.Coord(),
		})
		p.scope[param.Name] = param.Type
	}

	p.cur = p.newBlockNamed(fn.EntryPoint, def.Pos.Coord())
	if err := p.stmts(def.Body.Items); err != nil {
		return nil, err
	}

	// Falling off the end of the function returns without a value.
	if !p.cur.Terminated() {
		if err := p.terminate(&ir.Return{}, ""); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

// newBlock creates, registers and returns a fresh block with a
// pass-unique name derived from prefix.
func (p *pass) newBlock(prefix, coord string) *ir.BasicBlock {
	p.id++
	return p.newBlockNamed(fmt.Sprintf("%s_%d", prefix, p.id), coord)
}

func (p *pass) newBlockNamed(name, coord string) *ir.BasicBlock {
	blk := ir.NewBasicBlock(name, coord)
	p.fn.AddBlock(blk)
	return blk
}

// emit appends an operation to the current block. Hitting a frozen
// block here is an internal invariant violation, always fatal.
func (p *pass) emit(op ir.Operation, coord string) error {
	if err := p.cur.AddOperation(op); err != nil {
		return errors.Fatalf(errors.ErrorDuplicateTerminator, coord,
			"operation appended to closed block %q", p.cur.Name)
	}
	return nil
}

func (p *pass) terminate(t ir.Terminator, coord string) error {
	if err := p.cur.SetTerminator(t); err != nil {
		return errors.Fatalf(errors.ErrorDuplicateTerminator, coord,
			"block %q received a second terminator", p.cur.Name)
	}
	return nil
}

// stmts lowers a statement sequence into the current block chain.
// Statements after the current block terminates are unreachable:
// they are reported once and skipped, never appended to the closed
// block.
func (p *pass) stmts(items []cast.Stmt) error {
	for _, s := range items {
		if s == nil {
			continue
		}
		if p.cur.Terminated() {
			p.diags.Warnf(errors.WarningUnreachableCode, s.NodePos().Coord(),
				"unreachable code after terminator in block %q", p.cur.Name)
			return nil
		}
		if err := p.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// bodyItems flattens a statement into the list it represents so
// branch and loop bodies accept both compound and single statements.
func bodyItems(s cast.Stmt) []cast.Stmt {
	if s == nil {
		return nil
	}
	if comp, ok := s.(*cast.Compound); ok {
		return comp.Items
	}
	return []cast.Stmt{s}
}

func (p *pass) stmt(s cast.Stmt) error {
	switch x := s.(type) {
	case *cast.Declaration:
		return p.declaration(x)
	case *cast.Assignment:
		return p.assignment(x)
	case *cast.CallStmt:
		return p.callStmt(x)
	case *cast.ReturnStmt:
		var value ir.Expression
		if x.Value != nil {
			value = Expr(x.Value, p.diags)
		}
		return p.terminate(&ir.Return{Value: value, Coord: x.Pos.Coord()}, x.Pos.Coord())
	case *cast.IfStmt:
		return p.ifStmt(x)
	case *cast.ForStmt:
		return p.loop(x.Init, x.Cond, x.Post, x.Body, x.Pos.Coord())
	case *cast.WhileStmt:
		return p.loop(nil, x.Cond, nil, x.Body, x.Pos.Coord())
	case *cast.Compound:
		// Introduces no new block by itself; scope is flat.
		return p.stmts(x.Items)
	case *cast.SwitchStmt:
		return p.switchStmt(x)
	case *cast.BreakStmt:
		if len(p.breakTargets) == 0 {
			p.diags.Errorf(errors.ErrorUnsupportedConstruct, x.Pos.Coord(),
				"break outside of loop or switch")
			return nil
		}
		target := p.breakTargets[len(p.breakTargets)-1]
		return p.terminate(&ir.Jump{Target: target, Coord: x.Pos.Coord()}, x.Pos.Coord())
	case *cast.ContinueStmt:
		if len(p.continueTargets) == 0 {
			p.diags.Errorf(errors.ErrorUnsupportedConstruct, x.Pos.Coord(),
				"continue outside of loop")
			return nil
		}
		target := p.continueTargets[len(p.continueTargets)-1]
		return p.terminate(&ir.Jump{Target: target, Coord: x.Pos.Coord()}, x.Pos.Coord())
	case *cast.BadStmt:
		p.diags.Errorf(errors.ErrorUnsupportedConstruct, x.Pos.Coord(),
			"unsupported statement kind %q, skipped", x.Kind)
		return nil
	default:
		p.diags.Errorf(errors.ErrorUnsupportedConstruct, s.NodePos().Coord(),
			"unsupported statement kind %q, skipped", s.NodeKind())
		return nil
	}
}

func (p *pass) declaration(d *cast.Declaration) error {
	if d.Name == "" {
		return errors.Fatalf(errors.ErrorMalformedSyntaxTree, d.Pos.Coord(), "declaration has no name")
	}
	// Flat per-function scope: a redeclaration overwrites, there is
	// no lexical shadowing.
	p.scope[d.Name] = d.Type
	p.fn.AddLocalVar(d.Name, d.Type)

	if d.Init == nil {
		return nil
	}
	return p.emit(&ir.Assign{
		Target: &ir.Variable{Name: d.Name},
		Value:  Expr(d.Init, p.diags),
		Coord:  d.Pos.Coord(),
	}, d.Pos.Coord())
}

func (p *pass) assignment(a *cast.Assignment) error {
	coord := a.Pos.Coord()
	value := Expr(a.Rvalue, p.diags)

	switch target := Expr(a.Lvalue, p.diags).(type) {
	case *ir.Variable:
		return p.emit(&ir.Assign{Target: target, Value: value, Coord: coord}, coord)
	case *ir.Dereference:
		// `*p = v` writes through the pointer.
		return p.emit(&ir.Store{Address: target.Operand, Value: value, Coord: coord}, coord)
	default:
		p.diags.Errorf(errors.ErrorUnsupportedConstruct, coord,
			"assignment to %s lvalue is not supported", target.Kind())
		return nil
	}
}

// callStmt lowers a bare call and attaches the knowledge base record
// for the callee when one exists. An unknown callee gets no
// annotation at all, not a default one.
func (p *pass) callStmt(c *cast.CallStmt) error {
	if c.Call == nil {
		return errors.Fatalf(errors.ErrorMalformedSyntaxTree, c.Pos.Coord(), "call statement has no call")
	}
	coord := c.Pos.Coord()
	call := &ir.Call{
		FunctionName: CalleeName(c.Call.Fun, coord, p.diags),
		Args:         lowerArgs(c.Call.Args, p.diags),
		Coord:        coord,
	}
	if p.db != nil {
		if info, known := p.db.Lookup(call.FunctionName); known {
			call.Semantics = info.Clone()
		}
	}
	return p.emit(call, coord)
}

// ifStmt lowers the branching construct: the condition terminates the
// current block with a conditional branch, the arms lower into fresh
// blocks, and a merge block restores convergence. When there is no
// else branch the false edge goes straight to merge. The merge block
// is registered even when both arms return; reachability is a
// downstream question.
func (p *pass) ifStmt(s *cast.IfStmt) error {
	if s.Cond == nil {
		return errors.Fatalf(errors.ErrorMalformedSyntaxTree, s.Pos.Coord(), "if statement has no condition")
	}
	coord := s.Pos.Coord()
	cond := Expr(s.Cond, p.diags)

	then := p.newBlock("then", coord)
	var elseBlk *ir.BasicBlock
	if s.Else != nil {
		elseBlk = p.newBlock("else", coord)
	}
	merge := p.newBlock("merge", coord)

	falseTarget := merge.Name
	if elseBlk != nil {
		falseTarget = elseBlk.Name
	}
	if err := p.terminate(&ir.BranchIf{
		Condition:   cond,
		TrueTarget:  then.Name,
		FalseTarget: falseTarget,
		Coord:       coord,
	}, coord); err != nil {
		return err
	}

	p.cur = then
	if err := p.stmts(bodyItems(s.Then)); err != nil {
		return err
	}
	if !p.cur.Terminated() {
		if err := p.terminate(&ir.Jump{Target: merge.Name}, coord); err != nil {
			return err
		}
	}

	if elseBlk != nil {
		p.cur = elseBlk
		if err := p.stmts(bodyItems(s.Else)); err != nil {
			return err
		}
		if !p.cur.Terminated() {
			if err := p.terminate(&ir.Jump{Target: merge.Name}, coord); err != nil {
				return err
			}
		}
	}

	p.cur = merge
	return nil
}

// loop lowers for and while loops into the header/body/latch/exit
// shape. The for-init folds into the current block, the header
// branches on the condition, the latch runs the post statement and
// jumps back to the header. break targets the exit, continue the
// latch; a body without its own terminator falls through to the
// latch.
func (p *pass) loop(init cast.Stmt, cond cast.Expr, post cast.Stmt, body cast.Stmt, coord string) error {
	if init != nil {
		if err := p.stmt(init); err != nil {
			return err
		}
	}

	header := p.newBlock("header", coord)
	bodyBlk := p.newBlock("body", coord)
	latch := p.newBlock("latch", coord)
	exit := p.newBlock("exit", coord)

	if err := p.terminate(&ir.Jump{Target: header.Name, Coord: coord}, coord); err != nil {
		return err
	}

	p.cur = header
	var condition ir.Expression
	if cond != nil {
		condition = Expr(cond, p.diags)
	} else {
		// `for (;;)` loops until something inside breaks.
		condition = &ir.Constant{ConstType: "int", Value: "1"}
	}
	if err := p.terminate(&ir.BranchIf{
		Condition:   condition,
		TrueTarget:  bodyBlk.Name,
		FalseTarget: exit.Name,
		Coord:       coord,
	}, coord); err != nil {
		return err
	}

	p.cur = bodyBlk
	p.breakTargets = append(p.breakTargets, exit.Name)
	p.continueTargets = append(p.continueTargets, latch.Name)
	err := p.stmts(bodyItems(body))
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]
	if err != nil {
		return err
	}
	if !p.cur.Terminated() {
		if err := p.terminate(&ir.Jump{Target: latch.Name}, coord); err != nil {
			return err
		}
	}

	p.cur = latch
	if post != nil {
		if err := p.stmt(post); err != nil {
			return err
		}
	}
	if !p.cur.Terminated() {
		if err := p.terminate(&ir.Jump{Target: header.Name, Coord: coord}, coord); err != nil {
			return err
		}
	}

	p.cur = exit
	return nil
}

// switchStmt lowers the scrutinee once and dispatches on constant
// case labels. Labels sharing a body share one target block; an arm
// that ends without a terminator falls through to the next arm, the
// last arm to merge. A source without a default arm gets the merge
// block as its default target.
func (p *pass) switchStmt(s *cast.SwitchStmt) error {
	if s.Cond == nil {
		return errors.Fatalf(errors.ErrorMalformedSyntaxTree, s.Pos.Coord(), "switch statement has no scrutinee")
	}
	coord := s.Pos.Coord()
	scrutinee := Expr(s.Cond, p.diags)

	// Allocate every arm block up front so fallthrough edges can
	// name their successor before its body is lowered.
	armBlocks := make([]*ir.BasicBlock, len(s.Cases))
	defaultTarget := ""
	for i, arm := range s.Cases {
		prefix := "case"
		if arm.IsDefault {
			prefix = "default"
		}
		armBlocks[i] = p.newBlock(prefix, arm.Pos.Coord())
		if arm.IsDefault {
			defaultTarget = armBlocks[i].Name
		}
	}
	merge := p.newBlock("merge", coord)
	if defaultTarget == "" {
		defaultTarget = merge.Name
	}

	term := &ir.Switch{Expr: scrutinee, DefaultTarget: defaultTarget, Coord: coord}
	for i, arm := range s.Cases {
		for _, label := range arm.Values {
			value, ok := Expr(label, p.diags).(*ir.Constant)
			if !ok {
				p.diags.Errorf(errors.ErrorUnsupportedConstruct, arm.Pos.Coord(),
					"switch case label is not a constant, skipped")
				continue
			}
			term.Cases = append(term.Cases, ir.SwitchCase{Value: value.Value, Target: armBlocks[i].Name})
		}
	}
	if err := p.terminate(term, coord); err != nil {
		return err
	}

	p.breakTargets = append(p.breakTargets, merge.Name)
	for i, arm := range s.Cases {
		p.cur = armBlocks[i]
		if err := p.stmts(arm.Body); err != nil {
			p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
			return err
		}
		if !p.cur.Terminated() {
			next := merge.Name
			if i+1 < len(armBlocks) {
				next = armBlocks[i+1].Name
			}
			if err := p.terminate(&ir.Jump{Target: next}, arm.Pos.Coord()); err != nil {
				p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
				return err
			}
		}
	}
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]

	p.cur = merge
	return nil
}

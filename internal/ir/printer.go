package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Printer renders IR trees as S-expressions. Expressions print
// inline; blocks, functions and the module get one node per line so
// the output stays readable for large units.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new S-expression printer.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// PrintModule returns the S-expression rendering of a module.
func PrintModule(m *Module) string {
	p := NewPrinter()
	p.printModule(m)
	return p.output.String()
}

// PrintExpr returns the inline S-expression for a single expression.
func PrintExpr(e Expression) string {
	return sexpExpr(e)
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) write(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
}

// sexpAtom renders a scalar. Strings are quoted, everything else
// prints bare.
func sexpAtom(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func sexpCoord(coord string) string {
	if coord == "" {
		return ""
	}
	return fmt.Sprintf(" (coord %s)", sexpAtom(coord))
}

func sexpExprList(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, sexpExpr(e))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func sexpExpr(e Expression) string {
	switch x := e.(type) {
	case *Constant:
		return fmt.Sprintf("(constant (const_type %s) (value %s)%s)",
			sexpAtom(x.ConstType), sexpAtom(x.Value), sexpCoord(x.Coord))
	case *Variable:
		return fmt.Sprintf("(variable (name %s)%s)", sexpAtom(x.Name), sexpCoord(x.Coord))
	case *BinaryOp:
		return fmt.Sprintf("(binary_op (op %s) (left %s) (right %s)%s)",
			sexpAtom(x.Op), sexpExpr(x.Left), sexpExpr(x.Right), sexpCoord(x.Coord))
	case *UnaryOp:
		return fmt.Sprintf("(unary_op (op %s) (operand %s)%s)",
			sexpAtom(x.Op), sexpExpr(x.Operand), sexpCoord(x.Coord))
	case *Cast:
		return fmt.Sprintf("(cast (target_type %s) (expr %s)%s)",
			sexpAtom(x.TargetType), sexpExpr(x.Operand), sexpCoord(x.Coord))
	case *FunctionCall:
		return fmt.Sprintf("(function_call (function_name %s) (args %s)%s)",
			sexpAtom(x.FunctionName), sexpExprList(x.Args), sexpCoord(x.Coord))
	case *ArrayRef:
		return fmt.Sprintf("(array_ref (array %s) (index %s)%s)",
			sexpExpr(x.Array), sexpExpr(x.Index), sexpCoord(x.Coord))
	case *StructRef:
		return fmt.Sprintf("(struct_ref (struct %s) (field %s) (is_arrow %s)%s)",
			sexpExpr(x.Struct), sexpAtom(x.Field), sexpAtom(x.IsArrow), sexpCoord(x.Coord))
	case *Dereference:
		return fmt.Sprintf("(dereference (expr %s)%s)", sexpExpr(x.Operand), sexpCoord(x.Coord))
	case *AddressOf:
		return fmt.Sprintf("(address_of (expr %s)%s)", sexpExpr(x.Operand), sexpCoord(x.Coord))
	case *Load:
		return fmt.Sprintf("(load (address %s)%s)", sexpExpr(x.Address), sexpCoord(x.Coord))
	default:
		return fmt.Sprintf("(unknown %q)", fmt.Sprintf("%T", e))
	}
}

func sexpSemantics(s *RefSemantics) string {
	var b strings.Builder
	b.WriteString("(semantics")
	if s.ReturnRefType != "" {
		fmt.Fprintf(&b, " (return_ref_type %s)", sexpAtom(string(s.ReturnRefType)))
	}
	if len(s.ArgRefSteal) > 0 {
		indexes := make([]int, 0, len(s.ArgRefSteal))
		for i := range s.ArgRefSteal {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		b.WriteString(" (arg_ref_steal")
		for _, i := range indexes {
			fmt.Fprintf(&b, " (%d %s)", i, sexpAtom(s.ArgRefSteal[i]))
		}
		b.WriteString(")")
	}
	if s.ErrorReturn != nil {
		fmt.Fprintf(&b, " (error_return %s)", sexpAtom(s.ErrorReturn))
	}
	b.WriteString(")")
	return b.String()
}

func sexpOp(op Operation) string {
	switch x := op.(type) {
	case *Assign:
		return fmt.Sprintf("(assign (target %s) (value %s)%s)",
			sexpExpr(x.Target), sexpExpr(x.Value), sexpCoord(x.Coord))
	case *Call:
		var b strings.Builder
		b.WriteString("(call")
		if x.DestVar != "" {
			fmt.Fprintf(&b, " (dest_var %s)", sexpAtom(x.DestVar))
		}
		fmt.Fprintf(&b, " (function_name %s) (args %s)", sexpAtom(x.FunctionName), sexpExprList(x.Args))
		if x.Semantics != nil {
			b.WriteString(" " + sexpSemantics(x.Semantics))
		}
		b.WriteString(sexpCoord(x.Coord))
		b.WriteString(")")
		return b.String()
	case *Store:
		return fmt.Sprintf("(store (address %s) (value %s)%s)",
			sexpExpr(x.Address), sexpExpr(x.Value), sexpCoord(x.Coord))
	case *SemanticOp:
		var b strings.Builder
		fmt.Fprintf(&b, "(semantic_op (op_type %s)", sexpAtom(x.OpType))
		if len(x.Attributes) > 0 {
			names := make([]string, 0, len(x.Attributes))
			for name := range x.Attributes {
				names = append(names, name)
			}
			sort.Strings(names)
			b.WriteString(" (attributes")
			for _, name := range names {
				fmt.Fprintf(&b, " (%s %s)", name, sexpAtom(x.Attributes[name]))
			}
			b.WriteString(")")
		}
		b.WriteString(sexpCoord(x.Coord))
		b.WriteString(")")
		return b.String()
	default:
		return fmt.Sprintf("(unknown %q)", fmt.Sprintf("%T", op))
	}
}

func sexpTerm(t Terminator) string {
	switch x := t.(type) {
	case *Return:
		if x.Value == nil {
			return fmt.Sprintf("(return%s)", sexpCoord(x.Coord))
		}
		return fmt.Sprintf("(return (value %s)%s)", sexpExpr(x.Value), sexpCoord(x.Coord))
	case *BranchIf:
		return fmt.Sprintf("(branch_if (condition %s) (true_target %s) (false_target %s)%s)",
			sexpExpr(x.Condition), sexpAtom(x.TrueTarget), sexpAtom(x.FalseTarget), sexpCoord(x.Coord))
	case *Jump:
		return fmt.Sprintf("(jump (target %s)%s)", sexpAtom(x.Target), sexpCoord(x.Coord))
	case *Switch:
		var b strings.Builder
		fmt.Fprintf(&b, "(switch (expr %s) (cases", sexpExpr(x.Expr))
		for _, c := range x.Cases {
			fmt.Fprintf(&b, " (%s %s)", sexpAtom(c.Value), sexpAtom(c.Target))
		}
		b.WriteString(")")
		if x.DefaultTarget != "" {
			fmt.Fprintf(&b, " (default_target %s)", sexpAtom(x.DefaultTarget))
		}
		b.WriteString(sexpCoord(x.Coord))
		b.WriteString(")")
		return b.String()
	case *Unreachable:
		return fmt.Sprintf("(unreachable%s)", sexpCoord(x.Coord))
	default:
		return fmt.Sprintf("(unknown %q)", fmt.Sprintf("%T", t))
	}
}

func (p *Printer) printBlock(b *BasicBlock) {
	p.writeIndent()
	p.write("(basic_block (name %s)", sexpAtom(b.Name))
	if len(b.Operations) > 0 {
		p.write("\n")
		p.indent++
		p.writeIndent()
		p.write("(operations")
		p.indent++
		for _, op := range b.Operations {
			p.write("\n")
			p.writeIndent()
			p.write("%s", sexpOp(op))
		}
		p.indent--
		p.write(")")
		p.indent--
	}
	if b.Terminator != nil {
		p.write("\n")
		p.indent++
		p.writeIndent()
		p.write("(terminator %s)", sexpTerm(b.Terminator))
		p.indent--
	}
	p.write("%s)", sexpCoord(b.Coord))
}

func (p *Printer) printFunction(f *Function) {
	p.writeIndent()
	p.write("(func_def (name %s)", sexpAtom(f.Name))
	if len(f.Params) > 0 {
		p.write(" (params")
		for _, param := range f.Params {
			p.write(" (param (name %s) (param_type %s)%s)",
				sexpAtom(param.Name), sexpAtom(param.ParamType), sexpCoord(param.Coord))
		}
		p.write(")")
	}
	p.write(" (entry_point %s)", sexpAtom(f.EntryPoint))
	if f.Blocks.Len() > 0 {
		p.write("\n")
		p.indent++
		p.writeLine("(blocks")
		p.indent++
		for i, name := range f.Blocks.Keys() {
			blk, _ := f.Blocks.Get(name)
			p.printBlock(blk)
			if i < f.Blocks.Len()-1 {
				p.write("\n")
			}
		}
		p.indent--
		p.write(")")
		p.indent--
	}
	if f.LocalVars.Len() > 0 {
		p.write("\n")
		p.indent++
		p.writeIndent()
		p.write("(local_vars")
		for _, name := range f.LocalVars.Keys() {
			typ, _ := f.LocalVars.Get(name)
			p.write(" (%s %s)", sexpAtom(name), sexpAtom(typ))
		}
		p.write(")")
		p.indent--
	}
	p.write("%s)", sexpCoord(f.Coord))
}

func (p *Printer) printModule(m *Module) {
	p.write("(module (name %s)", sexpAtom(m.Name))
	if m.Functions.Len() > 0 {
		p.write("\n")
		p.indent++
		p.writeLine("(functions")
		p.indent++
		for i, name := range m.Functions.Keys() {
			fn, _ := m.Functions.Get(name)
			p.printFunction(fn)
			if i < m.Functions.Len()-1 {
				p.write("\n")
			}
		}
		p.indent--
		p.write(")")
		p.indent--
	}
	if m.GlobalVars.Len() > 0 {
		p.write("\n")
		p.indent++
		p.writeIndent()
		p.write("(global_vars")
		for _, name := range m.GlobalVars.Keys() {
			typ, _ := m.GlobalVars.Get(name)
			p.write(" (%s %s)", sexpAtom(name), sexpAtom(typ))
		}
		p.write(")")
		p.indent--
	}
	if len(m.Includes) > 0 {
		p.write("\n")
		p.indent++
		p.writeIndent()
		p.write("(includes")
		for _, inc := range m.Includes {
			p.write(" %s", sexpAtom(inc))
		}
		p.write(")")
		p.indent--
	}
	p.write("%s)\n", sexpCoord(m.Coord))
}

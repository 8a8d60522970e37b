// Package lower turns source syntax trees into control-flow-graph IR.
// Expression lowering is a pure mapping; statement lowering builds
// basic blocks and threads control flow through them.
package lower

import (
	"fmt"
	"strconv"

	"lisa/internal/cast"
	"lisa/internal/errors"
	"lisa/internal/ir"
)

// UnknownCalleeName is the sentinel recorded when a call target
// cannot be resolved to a plain identifier.
const UnknownCalleeName = "unknown_func"

const placeholderPrefix = "placeholder_"

// Expr lowers one source expression to exactly one IR expression
// node. It never mutates blocks or scope; recoverable problems
// degrade to placeholder nodes and land in diags.
func Expr(e cast.Expr, diags *errors.Diagnostics) ir.Expression {
	if e == nil {
		diags.Errorf(errors.ErrorUnsupportedConstruct, "", "missing expression, using placeholder")
		return &ir.Variable{Name: placeholderPrefix + "nil"}
	}
	coord := e.NodePos().Coord()

	switch x := e.(type) {
	case *cast.ConstantExpr:
		return lowerConstant(x, coord)

	case *cast.IdentExpr:
		return &ir.Variable{Name: x.Name, Coord: coord}

	case *cast.BinaryExpr:
		return &ir.BinaryOp{
			Op:    x.Op,
			Left:  Expr(x.Left, diags),
			Right: Expr(x.Right, diags),
			Coord: coord,
		}

	case *cast.UnaryExpr:
		return &ir.UnaryOp{Op: x.Op, Operand: Expr(x.Operand, diags), Coord: coord}

	case *cast.CastExpr:
		return &ir.Cast{TargetType: x.Type, Operand: Expr(x.Operand, diags), Coord: coord}

	case *cast.CallExpr:
		return &ir.FunctionCall{
			FunctionName: CalleeName(x.Fun, coord, diags),
			Args:         lowerArgs(x.Args, diags),
			Coord:        coord,
		}

	case *cast.IndexExpr:
		return &ir.ArrayRef{
			Array: Expr(x.Array, diags),
			Index: Expr(x.Index, diags),
			Coord: coord,
		}

	case *cast.FieldExpr:
		return &ir.StructRef{
			Struct:  Expr(x.X, diags),
			Field:   x.Field,
			IsArrow: x.Arrow,
			Coord:   coord,
		}

	case *cast.DerefExpr:
		return &ir.Dereference{Operand: Expr(x.Operand, diags), Coord: coord}

	case *cast.AddrOfExpr:
		return &ir.AddressOf{Operand: Expr(x.Operand, diags), Coord: coord}

	case *cast.BadExpr:
		diags.Errorf(errors.ErrorUnsupportedConstruct, coord,
			"unsupported expression kind %q, using placeholder", x.Kind)
		return &ir.Variable{Name: placeholderPrefix + x.Kind, Coord: coord}

	default:
		kind := string(e.NodeKind())
		diags.Errorf(errors.ErrorUnsupportedConstruct, coord,
			"unsupported expression kind %q, using placeholder", kind)
		return &ir.Variable{Name: placeholderPrefix + kind, Coord: coord}
	}
}

// lowerConstant keeps the literal text verbatim. An integer literal
// that does not actually parse as an integer is re-tagged as a
// string-like constant instead of failing the lowering.
func lowerConstant(c *cast.ConstantExpr, coord string) *ir.Constant {
	kind := c.Kind
	if kind == "" {
		kind = "int"
	}
	if kind == "int" {
		if _, err := strconv.ParseInt(c.Value, 10, 64); err != nil {
			kind = "char*"
		}
	}
	return &ir.Constant{ConstType: kind, Value: c.Value, Coord: coord}
}

func lowerArgs(args []cast.Expr, diags *errors.Diagnostics) []ir.Expression {
	out := make([]ir.Expression, 0, len(args))
	for _, arg := range args {
		out = append(out, Expr(arg, diags))
	}
	return out
}

// CalleeName resolves a call target by recursing through wrapping
// call forms until a plain identifier is found. Anything else yields
// the unknown-callee sentinel plus a diagnostic.
func CalleeName(fun cast.Expr, coord string, diags *errors.Diagnostics) string {
	switch x := fun.(type) {
	case *cast.IdentExpr:
		return x.Name
	case *cast.CallExpr:
		return CalleeName(x.Fun, coord, diags)
	default:
		detail := "missing call target"
		if fun != nil {
			detail = fmt.Sprintf("call target of kind %q", fun.NodeKind())
		}
		diags.Errorf(errors.ErrorUnknownCallee, coord,
			"%s cannot be resolved to a function name", detail)
		return UnknownCalleeName
	}
}

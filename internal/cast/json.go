package cast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"lisa/internal/errors"
)

// The front end ships the syntax tree as JSON: one object per node
// with a "kind" discriminator and an optional "coord" object. The
// decoder is tolerant about unknown kinds (they become Bad* nodes for
// the lowerer to diagnose) but strict about structure: a node that is
// not an object, or a missing discriminator, is a malformed tree.

type rawCoord struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"col"`
}

type rawNode struct {
	Kind  string    `json:"kind"`
	Coord *rawCoord `json:"coord"`

	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Includes []string `json:"includes"`

	Decls  []json.RawMessage `json:"decls"`
	Params []json.RawMessage `json:"params"`
	Body   json.RawMessage   `json:"body"`
	Items  []json.RawMessage `json:"items"`

	Init   json.RawMessage `json:"init"`
	Lvalue json.RawMessage `json:"lvalue"`
	Rvalue json.RawMessage `json:"rvalue"`
	Value  json.RawMessage `json:"value"`
	Cond   json.RawMessage `json:"cond"`
	Then   json.RawMessage `json:"then"`
	Else   json.RawMessage `json:"else"`
	Post   json.RawMessage `json:"post"`

	Cases     []json.RawMessage `json:"cases"`
	Values    []json.RawMessage `json:"values"`
	IsDefault bool              `json:"is_default"`

	ConstType string          `json:"const_type"`
	Op        string          `json:"op"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	Operand   json.RawMessage `json:"operand"`
	Fun       json.RawMessage `json:"fun"`
	Args      []json.RawMessage `json:"args"`
	Array     json.RawMessage `json:"array"`
	Index     json.RawMessage `json:"index"`
	Base      json.RawMessage `json:"base"`
	Field     string          `json:"field"`
	IsArrow   bool            `json:"is_arrow"`
}

func (r *rawNode) pos() Position {
	if r.Coord == nil {
		return Position{}
	}
	return Position{File: r.Coord.File, Line: r.Coord.Line, Column: r.Coord.Column}
}

// DecodeFile reads and decodes a syntax tree exchange file.
func DecodeFile(path string) (*TranslationUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Fatalf(errors.ErrorInputNotFound, "", "source unit not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a syntax tree exchange stream.
func Decode(r io.Reader) (*TranslationUnit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read syntax tree: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a syntax tree from raw JSON.
func DecodeBytes(data []byte) (*TranslationUnit, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	if NodeKind(raw.Kind) != TRANSLATION_UNIT {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(),
			"expected a translation_unit at top level, got %q", raw.Kind)
	}

	unit := &TranslationUnit{
		Name:     raw.Name,
		Includes: raw.Includes,
		Pos:      raw.pos(),
	}
	for _, d := range raw.Decls {
		decl, err := decodeExtDecl(d)
		if err != nil {
			return nil, err
		}
		unit.Decls = append(unit.Decls, decl)
	}
	return unit, nil
}

func decodeRaw(data []byte) (*rawNode, error) {
	var raw rawNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "invalid node object: %v", err)
	}
	if raw.Kind == "" {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "node is missing its kind discriminator")
	}
	return &raw, nil
}

func decodeExtDecl(data []byte) (ExtDecl, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	switch NodeKind(raw.Kind) {
	case FUNCTION_DEF:
		return decodeFunctionDef(raw)
	case DECLARATION:
		return decodeDeclaration(raw)
	default:
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(),
			"unexpected top-level node kind %q", raw.Kind)
	}
}

func decodeFunctionDef(raw *rawNode) (*FunctionDef, error) {
	if raw.Name == "" {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(), "function definition without a name")
	}
	fn := &FunctionDef{Name: raw.Name, Pos: raw.pos()}
	for _, p := range raw.Params {
		pr, err := decodeRaw(p)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &Param{Name: pr.Name, Type: pr.Type, Pos: pr.pos()})
	}
	if raw.Body != nil {
		body, err := decodeStmt(raw.Body)
		if err != nil {
			return nil, err
		}
		comp, ok := body.(*Compound)
		if !ok {
			comp = &Compound{Items: []Stmt{body}, Pos: body.NodePos()}
		}
		fn.Body = comp
	}
	return fn, nil
}

func decodeDeclaration(raw *rawNode) (*Declaration, error) {
	if raw.Name == "" {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(), "declaration without a name")
	}
	decl := &Declaration{Name: raw.Name, Type: raw.Type, Pos: raw.pos()}
	if raw.Init != nil {
		init, err := decodeExpr(raw.Init)
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

func decodeStmt(data []byte) (Stmt, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	switch NodeKind(raw.Kind) {
	case DECLARATION:
		return decodeDeclaration(raw)

	case ASSIGNMENT_STMT:
		lv, err := decodeExpr(raw.Lvalue)
		if err != nil {
			return nil, err
		}
		rv, err := decodeExpr(raw.Rvalue)
		if err != nil {
			return nil, err
		}
		return &Assignment{Lvalue: lv, Rvalue: rv, Pos: raw.pos()}, nil

	case CALL_STMT:
		call, err := decodeCallExpr(raw)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Call: call, Pos: raw.pos()}, nil

	case RETURN_STMT:
		stmt := &ReturnStmt{Pos: raw.pos()}
		if raw.Value != nil {
			v, err := decodeExpr(raw.Value)
			if err != nil {
				return nil, err
			}
			stmt.Value = v
		}
		return stmt, nil

	case IF_STMT:
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		stmt := &IfStmt{Cond: cond, Pos: raw.pos()}
		if raw.Then != nil {
			if stmt.Then, err = decodeStmt(raw.Then); err != nil {
				return nil, err
			}
		}
		if raw.Else != nil {
			if stmt.Else, err = decodeStmt(raw.Else); err != nil {
				return nil, err
			}
		}
		return stmt, nil

	case FOR_STMT:
		stmt := &ForStmt{Pos: raw.pos()}
		var err error
		if raw.Init != nil {
			if stmt.Init, err = decodeStmt(raw.Init); err != nil {
				return nil, err
			}
		}
		if raw.Cond != nil {
			if stmt.Cond, err = decodeExpr(raw.Cond); err != nil {
				return nil, err
			}
		}
		if raw.Post != nil {
			if stmt.Post, err = decodeStmt(raw.Post); err != nil {
				return nil, err
			}
		}
		if raw.Body != nil {
			if stmt.Body, err = decodeStmt(raw.Body); err != nil {
				return nil, err
			}
		}
		return stmt, nil

	case WHILE_STMT:
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		stmt := &WhileStmt{Cond: cond, Pos: raw.pos()}
		if raw.Body != nil {
			if stmt.Body, err = decodeStmt(raw.Body); err != nil {
				return nil, err
			}
		}
		return stmt, nil

	case COMPOUND_STMT:
		comp := &Compound{Pos: raw.pos()}
		for _, item := range raw.Items {
			s, err := decodeStmt(item)
			if err != nil {
				return nil, err
			}
			comp.Items = append(comp.Items, s)
		}
		return comp, nil

	case SWITCH_STMT:
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		stmt := &SwitchStmt{Cond: cond, Pos: raw.pos()}
		for _, c := range raw.Cases {
			sc, err := decodeSwitchCase(c)
			if err != nil {
				return nil, err
			}
			stmt.Cases = append(stmt.Cases, sc)
		}
		return stmt, nil

	case BREAK_STMT:
		return &BreakStmt{Pos: raw.pos()}, nil

	case CONTINUE_STMT:
		return &ContinueStmt{Pos: raw.pos()}, nil

	default:
		return &BadStmt{Kind: raw.Kind, Pos: raw.pos()}, nil
	}
}

func decodeSwitchCase(data []byte) (*SwitchCase, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	if NodeKind(raw.Kind) != SWITCH_CASE {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(),
			"expected a case node inside switch, got %q", raw.Kind)
	}
	sc := &SwitchCase{IsDefault: raw.IsDefault, Pos: raw.pos()}
	for _, v := range raw.Values {
		val, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		sc.Values = append(sc.Values, val)
	}
	// Case bodies are statement lists, unlike the single-statement
	// bodies of loops and branches.
	if len(raw.Body) > 0 {
		var items []json.RawMessage
		if err := json.Unmarshal(raw.Body, &items); err != nil {
			return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, raw.pos().Coord(),
				"case body must be a statement list: %v", err)
		}
		for _, item := range items {
			s, err := decodeStmt(item)
			if err != nil {
				return nil, err
			}
			sc.Body = append(sc.Body, s)
		}
	}
	return sc, nil
}

func decodeExpr(data []byte) (Expr, error) {
	if data == nil {
		return nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "missing required expression")
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	switch NodeKind(raw.Kind) {
	case CONSTANT_EXPR:
		return &ConstantExpr{Kind: raw.ConstType, Value: rawLiteral(raw.Value), Pos: raw.pos()}, nil

	case IDENT_EXPR:
		return &IdentExpr{Name: raw.Name, Pos: raw.pos()}, nil

	case BINARY_EXPR:
		left, err := decodeExpr(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(raw.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: raw.Op, Left: left, Right: right, Pos: raw.pos()}, nil

	case UNARY_EXPR:
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: raw.Op, Operand: operand, Pos: raw.pos()}, nil

	case CAST_EXPR:
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &CastExpr{Type: raw.Type, Operand: operand, Pos: raw.pos()}, nil

	case CALL_EXPR:
		return decodeCallExpr(raw)

	case INDEX_EXPR:
		arr, err := decodeExpr(raw.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(raw.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{Array: arr, Index: idx, Pos: raw.pos()}, nil

	case FIELD_EXPR:
		base, err := decodeExpr(raw.Base)
		if err != nil {
			return nil, err
		}
		return &FieldExpr{X: base, Field: raw.Field, Arrow: raw.IsArrow, Pos: raw.pos()}, nil

	case DEREF_EXPR:
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &DerefExpr{Operand: operand, Pos: raw.pos()}, nil

	case ADDROF_EXPR:
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &AddrOfExpr{Operand: operand, Pos: raw.pos()}, nil

	default:
		return &BadExpr{Kind: raw.Kind, Pos: raw.pos()}, nil
	}
}

func decodeCallExpr(raw *rawNode) (*CallExpr, error) {
	call := &CallExpr{Pos: raw.pos()}
	if raw.Fun != nil {
		fun, err := decodeExpr(raw.Fun)
		if err != nil {
			return nil, err
		}
		call.Fun = fun
	} else if raw.Name != "" {
		// Front ends that pre-resolve the callee send just a name.
		call.Fun = &IdentExpr{Name: raw.Name, Pos: raw.pos()}
	}
	for _, a := range raw.Args {
		arg, err := decodeExpr(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// rawLiteral returns the literal text of a JSON scalar: quoted strings
// are unquoted, everything else keeps its verbatim spelling.
func rawLiteral(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
	}
	return string(bytes.TrimSpace(data))
}

package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonical tree encoding: one JSON object per node tagged with
// "kind", absent or optional fields omitted, ordered lists and
// name-keyed maps preserved in insertion order. All encoding and
// decoding is centralized here so the node types stay plain data.

// MarshalModule renders the canonical tree encoding, indented.
func MarshalModule(m *Module) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalModule decodes the canonical tree encoding.
func UnmarshalModule(data []byte) (*Module, error) {
	m := &Module{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) MarshalJSON() ([]byte, error)     { return moduleJSON(m) }
func (f *Function) MarshalJSON() ([]byte, error)   { return funcJSON(f) }
func (b *BasicBlock) MarshalJSON() ([]byte, error) { return blockJSON(b) }

func (m *Module) UnmarshalJSON(data []byte) error {
	decoded, err := decodeModuleJSON(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func (f *Function) UnmarshalJSON(data []byte) error {
	decoded, err := decodeFuncJSON(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func (b *BasicBlock) UnmarshalJSON(data []byte) error {
	decoded, err := decodeBlockJSON(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// --- encoding ---

func exprListJSON(exprs []Expression) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(exprs))
	for _, e := range exprs {
		raw, err := exprJSON(e)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func exprJSON(e Expression) (json.RawMessage, error) {
	switch x := e.(type) {
	case *Constant:
		return json.Marshal(struct {
			Kind      string `json:"kind"`
			ConstType string `json:"const_type"`
			Value     string `json:"value"`
			Coord     string `json:"coord,omitempty"`
		}{x.Kind(), x.ConstType, x.Value, x.Coord})

	case *Variable:
		return json.Marshal(struct {
			Kind  string `json:"kind"`
			Name  string `json:"name"`
			Coord string `json:"coord,omitempty"`
		}{x.Kind(), x.Name, x.Coord})

	case *BinaryOp:
		left, err := exprJSON(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprJSON(x.Right)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind  string          `json:"kind"`
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Coord string          `json:"coord,omitempty"`
		}{x.Kind(), x.Op, left, right, x.Coord})

	case *UnaryOp:
		operand, err := exprJSON(x.Operand)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind    string          `json:"kind"`
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
			Coord   string          `json:"coord,omitempty"`
		}{x.Kind(), x.Op, operand, x.Coord})

	case *Cast:
		operand, err := exprJSON(x.Operand)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind       string          `json:"kind"`
			TargetType string          `json:"target_type"`
			Expr       json.RawMessage `json:"expr"`
			Coord      string          `json:"coord,omitempty"`
		}{x.Kind(), x.TargetType, operand, x.Coord})

	case *FunctionCall:
		args, err := exprListJSON(x.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind         string            `json:"kind"`
			FunctionName string            `json:"function_name"`
			Args         []json.RawMessage `json:"args"`
			Coord        string            `json:"coord,omitempty"`
		}{x.Kind(), x.FunctionName, args, x.Coord})

	case *ArrayRef:
		arr, err := exprJSON(x.Array)
		if err != nil {
			return nil, err
		}
		idx, err := exprJSON(x.Index)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind  string          `json:"kind"`
			Array json.RawMessage `json:"array"`
			Index json.RawMessage `json:"index"`
			Coord string          `json:"coord,omitempty"`
		}{x.Kind(), arr, idx, x.Coord})

	case *StructRef:
		base, err := exprJSON(x.Struct)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind    string          `json:"kind"`
			Struct  json.RawMessage `json:"struct"`
			Field   string          `json:"field"`
			IsArrow bool            `json:"is_arrow"`
			Coord   string          `json:"coord,omitempty"`
		}{x.Kind(), base, x.Field, x.IsArrow, x.Coord})

	case *Dereference:
		operand, err := exprJSON(x.Operand)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind  string          `json:"kind"`
			Expr  json.RawMessage `json:"expr"`
			Coord string          `json:"coord,omitempty"`
		}{x.Kind(), operand, x.Coord})

	case *AddressOf:
		operand, err := exprJSON(x.Operand)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind  string          `json:"kind"`
			Expr  json.RawMessage `json:"expr"`
			Coord string          `json:"coord,omitempty"`
		}{x.Kind(), operand, x.Coord})

	case *Load:
		addr, err := exprJSON(x.Address)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind    string          `json:"kind"`
			Address json.RawMessage `json:"address"`
			Coord   string          `json:"coord,omitempty"`
		}{x.Kind(), addr, x.Coord})

	default:
		return nil, fmt.Errorf("unencodable expression %T", e)
	}
}

func opJSON(op Operation) (json.RawMessage, error) {
	switch x := op.(type) {
	case *Assign:
		target, err := exprJSON(x.Target)
		if err != nil {
			return nil, err
		}
		value, err := exprJSON(x.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind   string          `json:"kind"`
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
			Coord  string          `json:"coord,omitempty"`
		}{x.Kind(), target, value, x.Coord})

	case *Call:
		args, err := exprListJSON(x.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind         string            `json:"kind"`
			DestVar      string            `json:"dest_var,omitempty"`
			FunctionName string            `json:"function_name"`
			Args         []json.RawMessage `json:"args"`
			Semantics    *RefSemantics     `json:"semantics,omitempty"`
			Coord        string            `json:"coord,omitempty"`
		}{x.Kind(), x.DestVar, x.FunctionName, args, x.Semantics, x.Coord})

	case *Store:
		addr, err := exprJSON(x.Address)
		if err != nil {
			return nil, err
		}
		value, err := exprJSON(x.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind    string          `json:"kind"`
			Address json.RawMessage `json:"address"`
			Value   json.RawMessage `json:"value"`
			Coord   string          `json:"coord,omitempty"`
		}{x.Kind(), addr, value, x.Coord})

	case *SemanticOp:
		return json.Marshal(struct {
			Kind       string                 `json:"kind"`
			OpType     string                 `json:"op_type"`
			Attributes map[string]interface{} `json:"attributes,omitempty"`
			Coord      string                 `json:"coord,omitempty"`
		}{x.Kind(), x.OpType, x.Attributes, x.Coord})

	default:
		return nil, fmt.Errorf("unencodable operation %T", op)
	}
}

func termJSON(t Terminator) (json.RawMessage, error) {
	switch x := t.(type) {
	case *Return:
		var value json.RawMessage
		if x.Value != nil {
			raw, err := exprJSON(x.Value)
			if err != nil {
				return nil, err
			}
			value = raw
		}
		return json.Marshal(struct {
			Kind  string          `json:"kind"`
			Value json.RawMessage `json:"value,omitempty"`
			Coord string          `json:"coord,omitempty"`
		}{x.Kind(), value, x.Coord})

	case *BranchIf:
		cond, err := exprJSON(x.Condition)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind        string          `json:"kind"`
			Condition   json.RawMessage `json:"condition"`
			TrueTarget  string          `json:"true_target"`
			FalseTarget string          `json:"false_target"`
			Coord       string          `json:"coord,omitempty"`
		}{x.Kind(), cond, x.TrueTarget, x.FalseTarget, x.Coord})

	case *Jump:
		return json.Marshal(struct {
			Kind   string `json:"kind"`
			Target string `json:"target"`
			Coord  string `json:"coord,omitempty"`
		}{x.Kind(), x.Target, x.Coord})

	case *Switch:
		expr, err := exprJSON(x.Expr)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Kind          string          `json:"kind"`
			Expr          json.RawMessage `json:"expr"`
			Cases         []SwitchCase    `json:"cases"`
			DefaultTarget string          `json:"default_target"`
			Coord         string          `json:"coord,omitempty"`
		}{x.Kind(), expr, x.Cases, x.DefaultTarget, x.Coord})

	case *Unreachable:
		return json.Marshal(struct {
			Kind  string `json:"kind"`
			Coord string `json:"coord,omitempty"`
		}{x.Kind(), x.Coord})

	default:
		return nil, fmt.Errorf("unencodable terminator %T", t)
	}
}

func blockJSON(b *BasicBlock) (json.RawMessage, error) {
	ops := make([]json.RawMessage, 0, len(b.Operations))
	for _, op := range b.Operations {
		raw, err := opJSON(op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, raw)
	}
	var term json.RawMessage
	if b.Terminator != nil {
		raw, err := termJSON(b.Terminator)
		if err != nil {
			return nil, err
		}
		term = raw
	}
	return json.Marshal(struct {
		Kind       string            `json:"kind"`
		Name       string            `json:"name"`
		Operations []json.RawMessage `json:"operations"`
		Terminator json.RawMessage   `json:"terminator,omitempty"`
		Coord      string            `json:"coord,omitempty"`
	}{b.Kind(), b.Name, ops, term, b.Coord})
}

func paramJSON(p *Param) (json.RawMessage, error) {
	return json.Marshal(struct {
		Kind      string `json:"kind"`
		Name      string `json:"name"`
		ParamType string `json:"param_type"`
		Coord     string `json:"coord,omitempty"`
	}{p.Kind(), p.Name, p.ParamType, p.Coord})
}

// orderedObjectJSON renders a name-keyed map as a JSON object in
// insertion order. Go maps cannot carry order, so the object is built
// by hand.
func orderedObjectJSON(keys []string, value func(key string) (json.RawMessage, error)) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		raw, err := value(key)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func funcJSON(f *Function) (json.RawMessage, error) {
	params := make([]json.RawMessage, 0, len(f.Params))
	for _, p := range f.Params {
		raw, err := paramJSON(p)
		if err != nil {
			return nil, err
		}
		params = append(params, raw)
	}
	blocks, err := orderedObjectJSON(f.Blocks.Keys(), func(key string) (json.RawMessage, error) {
		blk, _ := f.Blocks.Get(key)
		return blockJSON(blk)
	})
	if err != nil {
		return nil, err
	}
	locals, err := orderedObjectJSON(f.LocalVars.Keys(), func(key string) (json.RawMessage, error) {
		typ, _ := f.LocalVars.Get(key)
		return json.Marshal(typ)
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Kind       string            `json:"kind"`
		Name       string            `json:"name"`
		Params     []json.RawMessage `json:"params"`
		EntryPoint string            `json:"entry_point"`
		Blocks     json.RawMessage   `json:"blocks"`
		LocalVars  json.RawMessage   `json:"local_vars"`
		Coord      string            `json:"coord,omitempty"`
	}{f.Kind(), f.Name, params, f.EntryPoint, blocks, locals, f.Coord})
}

func moduleJSON(m *Module) (json.RawMessage, error) {
	functions, err := orderedObjectJSON(m.Functions.Keys(), func(key string) (json.RawMessage, error) {
		fn, _ := m.Functions.Get(key)
		return funcJSON(fn)
	})
	if err != nil {
		return nil, err
	}
	globals, err := orderedObjectJSON(m.GlobalVars.Keys(), func(key string) (json.RawMessage, error) {
		typ, _ := m.GlobalVars.Get(key)
		return json.Marshal(typ)
	})
	if err != nil {
		return nil, err
	}
	includes := m.Includes
	if includes == nil {
		includes = []string{}
	}
	return json.Marshal(struct {
		Kind       string          `json:"kind"`
		Name       string          `json:"name"`
		Functions  json.RawMessage `json:"functions"`
		GlobalVars json.RawMessage `json:"global_vars"`
		Includes   []string        `json:"includes"`
		Coord      string          `json:"coord,omitempty"`
	}{m.Kind(), m.Name, functions, globals, includes, m.Coord})
}

// --- decoding ---

type irEnv struct {
	Kind  string `json:"kind"`
	Coord string `json:"coord"`

	ConstType string          `json:"const_type"`
	Value     json.RawMessage `json:"value"`
	Name      string          `json:"name"`
	Op        string          `json:"op"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	Operand   json.RawMessage `json:"operand"`
	Expr      json.RawMessage `json:"expr"`

	TargetType   string            `json:"target_type"`
	FunctionName string            `json:"function_name"`
	Args         []json.RawMessage `json:"args"`
	Array        json.RawMessage   `json:"array"`
	Index        json.RawMessage   `json:"index"`
	Struct       json.RawMessage   `json:"struct"`
	Field        string            `json:"field"`
	IsArrow      bool              `json:"is_arrow"`
	Address      json.RawMessage   `json:"address"`

	Target     json.RawMessage        `json:"target"`
	DestVar    string                 `json:"dest_var"`
	Semantics  *RefSemantics          `json:"semantics"`
	OpType     string                 `json:"op_type"`
	Attributes map[string]interface{} `json:"attributes"`

	Condition     json.RawMessage `json:"condition"`
	TrueTarget    string          `json:"true_target"`
	FalseTarget   string          `json:"false_target"`
	Cases         []SwitchCase    `json:"cases"`
	DefaultTarget string          `json:"default_target"`

	Operations []json.RawMessage `json:"operations"`
	Terminator json.RawMessage   `json:"terminator"`

	Params     []json.RawMessage `json:"params"`
	EntryPoint string            `json:"entry_point"`
	Blocks     json.RawMessage   `json:"blocks"`
	LocalVars  json.RawMessage   `json:"local_vars"`

	Functions  json.RawMessage `json:"functions"`
	GlobalVars json.RawMessage `json:"global_vars"`
	Includes   []string        `json:"includes"`

	ParamType string `json:"param_type"`
}

func decodeEnv(data []byte) (*irEnv, error) {
	var env irEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("IR node is missing its kind tag")
	}
	return &env, nil
}

func decodeExprList(raws []json.RawMessage) ([]Expression, error) {
	if raws == nil {
		return nil, nil
	}
	out := make([]Expression, 0, len(raws))
	for _, raw := range raws {
		e, err := decodeExprJSON(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeExprJSON(data []byte) (Expression, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case "constant":
		var value string
		if env.Value != nil {
			if err := json.Unmarshal(env.Value, &value); err != nil {
				return nil, fmt.Errorf("constant value: %w", err)
			}
		}
		return &Constant{ConstType: env.ConstType, Value: value, Coord: env.Coord}, nil

	case "variable":
		return &Variable{Name: env.Name, Coord: env.Coord}, nil

	case "binary_op":
		left, err := decodeExprJSON(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExprJSON(env.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: env.Op, Left: left, Right: right, Coord: env.Coord}, nil

	case "unary_op":
		operand, err := decodeExprJSON(env.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: env.Op, Operand: operand, Coord: env.Coord}, nil

	case "cast":
		operand, err := decodeExprJSON(env.Expr)
		if err != nil {
			return nil, err
		}
		return &Cast{TargetType: env.TargetType, Operand: operand, Coord: env.Coord}, nil

	case "function_call":
		args, err := decodeExprList(env.Args)
		if err != nil {
			return nil, err
		}
		return &FunctionCall{FunctionName: env.FunctionName, Args: args, Coord: env.Coord}, nil

	case "array_ref":
		arr, err := decodeExprJSON(env.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExprJSON(env.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayRef{Array: arr, Index: idx, Coord: env.Coord}, nil

	case "struct_ref":
		base, err := decodeExprJSON(env.Struct)
		if err != nil {
			return nil, err
		}
		return &StructRef{Struct: base, Field: env.Field, IsArrow: env.IsArrow, Coord: env.Coord}, nil

	case "dereference":
		operand, err := decodeExprJSON(env.Expr)
		if err != nil {
			return nil, err
		}
		return &Dereference{Operand: operand, Coord: env.Coord}, nil

	case "address_of":
		operand, err := decodeExprJSON(env.Expr)
		if err != nil {
			return nil, err
		}
		return &AddressOf{Operand: operand, Coord: env.Coord}, nil

	case "load":
		addr, err := decodeExprJSON(env.Address)
		if err != nil {
			return nil, err
		}
		return &Load{Address: addr, Coord: env.Coord}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", env.Kind)
	}
}

func decodeOpJSON(data []byte) (Operation, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case "assign":
		target, err := decodeExprJSON(env.Target)
		if err != nil {
			return nil, err
		}
		variable, ok := target.(*Variable)
		if !ok {
			return nil, fmt.Errorf("assign target must be a variable, got %q", target.Kind())
		}
		value, err := decodeExprJSON(env.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{Target: variable, Value: value, Coord: env.Coord}, nil

	case "call":
		args, err := decodeExprList(env.Args)
		if err != nil {
			return nil, err
		}
		return &Call{
			DestVar:      env.DestVar,
			FunctionName: env.FunctionName,
			Args:         args,
			Semantics:    env.Semantics,
			Coord:        env.Coord,
		}, nil

	case "store":
		addr, err := decodeExprJSON(env.Address)
		if err != nil {
			return nil, err
		}
		value, err := decodeExprJSON(env.Value)
		if err != nil {
			return nil, err
		}
		return &Store{Address: addr, Value: value, Coord: env.Coord}, nil

	case "semantic_op":
		return &SemanticOp{OpType: env.OpType, Attributes: env.Attributes, Coord: env.Coord}, nil

	default:
		return nil, fmt.Errorf("unknown operation kind %q", env.Kind)
	}
}

func decodeTermJSON(data []byte) (Terminator, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case "return":
		ret := &Return{Coord: env.Coord}
		if env.Value != nil {
			value, err := decodeExprJSON(env.Value)
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		return ret, nil

	case "branch_if":
		cond, err := decodeExprJSON(env.Condition)
		if err != nil {
			return nil, err
		}
		return &BranchIf{
			Condition:   cond,
			TrueTarget:  env.TrueTarget,
			FalseTarget: env.FalseTarget,
			Coord:       env.Coord,
		}, nil

	case "jump":
		var target string
		if err := json.Unmarshal(env.Target, &target); err != nil {
			return nil, fmt.Errorf("jump target: %w", err)
		}
		return &Jump{Target: target, Coord: env.Coord}, nil

	case "switch":
		expr, err := decodeExprJSON(env.Expr)
		if err != nil {
			return nil, err
		}
		return &Switch{
			Expr:          expr,
			Cases:         env.Cases,
			DefaultTarget: env.DefaultTarget,
			Coord:         env.Coord,
		}, nil

	case "unreachable":
		return &Unreachable{Coord: env.Coord}, nil

	default:
		return nil, fmt.Errorf("unknown terminator kind %q", env.Kind)
	}
}

func decodeBlockJSON(data []byte) (*BasicBlock, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	if env.Kind != "basic_block" {
		return nil, fmt.Errorf("expected basic_block, got %q", env.Kind)
	}
	blk := NewBasicBlock(env.Name, env.Coord)
	for _, raw := range env.Operations {
		op, err := decodeOpJSON(raw)
		if err != nil {
			return nil, err
		}
		if err := blk.AddOperation(op); err != nil {
			return nil, err
		}
	}
	if env.Terminator != nil {
		term, err := decodeTermJSON(env.Terminator)
		if err != nil {
			return nil, err
		}
		if err := blk.SetTerminator(term); err != nil {
			return nil, err
		}
	}
	return blk, nil
}

// decodeOrderedObject walks a JSON object with the token decoder so
// key order survives the trip through Go.
func decodeOrderedObject(data []byte, each func(key string, raw json.RawMessage) error) error {
	if data == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := each(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

func decodeFuncJSON(data []byte) (*Function, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	if env.Kind != "func_def" {
		return nil, fmt.Errorf("expected func_def, got %q", env.Kind)
	}
	fn := NewFunction(env.Name, env.Coord)
	if env.EntryPoint != "" {
		fn.EntryPoint = env.EntryPoint
	}
	for _, raw := range env.Params {
		penv, err := decodeEnv(raw)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &Param{Name: penv.Name, ParamType: penv.ParamType, Coord: penv.Coord})
	}
	err = decodeOrderedObject(env.Blocks, func(key string, raw json.RawMessage) error {
		blk, err := decodeBlockJSON(raw)
		if err != nil {
			return err
		}
		fn.AddBlock(blk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = decodeOrderedObject(env.LocalVars, func(key string, raw json.RawMessage) error {
		var typ string
		if err := json.Unmarshal(raw, &typ); err != nil {
			return err
		}
		fn.AddLocalVar(key, typ)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func decodeModuleJSON(data []byte) (*Module, error) {
	env, err := decodeEnv(data)
	if err != nil {
		return nil, err
	}
	if env.Kind != "module" {
		return nil, fmt.Errorf("expected module, got %q", env.Kind)
	}
	m := NewModule(env.Name, env.Coord)
	err = decodeOrderedObject(env.Functions, func(key string, raw json.RawMessage) error {
		fn, err := decodeFuncJSON(raw)
		if err != nil {
			return err
		}
		m.AddFunction(fn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = decodeOrderedObject(env.GlobalVars, func(key string, raw json.RawMessage) error {
		var typ string
		if err := json.Unmarshal(raw, &typ); err != nil {
			return err
		}
		m.AddGlobalVar(key, typ)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, inc := range env.Includes {
		m.AddInclude(inc)
	}
	return m, nil
}

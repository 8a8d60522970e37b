package ir

import (
	"errors"
	"strings"
	"testing"
)

func TestBlockFreezesAfterTerminator(t *testing.T) {
	blk := NewBasicBlock("entry", "")
	if blk.Terminated() {
		t.Fatal("fresh block should not be terminated")
	}
	if err := blk.AddOperation(&Assign{Target: &Variable{Name: "x"}, Value: &Constant{ConstType: "int", Value: "1"}}); err != nil {
		t.Fatalf("AddOperation on open block: %v", err)
	}
	if err := blk.SetTerminator(&Return{}); err != nil {
		t.Fatalf("SetTerminator on open block: %v", err)
	}
	if !blk.Terminated() {
		t.Fatal("block should be terminated")
	}

	err := blk.SetTerminator(&Jump{Target: "exit"})
	if !errors.Is(err, ErrBlockTerminated) {
		t.Errorf("second SetTerminator = %v, expected ErrBlockTerminated", err)
	}
	err = blk.AddOperation(&Call{FunctionName: "puts"})
	if !errors.Is(err, ErrBlockTerminated) {
		t.Errorf("AddOperation after terminator = %v, expected ErrBlockTerminated", err)
	}
	if len(blk.Operations) != 1 {
		t.Errorf("frozen block mutated: %d operations", len(blk.Operations))
	}
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap[string]()
	m.Set("zeta", "int")
	m.Set("alpha", "char*")
	m.Set("mid", "void*")
	m.Set("zeta", "long") // overwrite keeps position

	keys := m.Keys()
	expected := []string{"zeta", "alpha", "mid"}
	if len(keys) != len(expected) {
		t.Fatalf("Keys() = %v, expected %v", keys, expected)
	}
	for i, k := range expected {
		if keys[i] != k {
			t.Errorf("Keys()[%d] = %s, expected %s", i, keys[i], k)
		}
	}
	if v, ok := m.Get("zeta"); !ok || v != "long" {
		t.Errorf("Get(zeta) = %q, %v; expected long, true", v, ok)
	}
}

func TestTerminatorSuccessors(t *testing.T) {
	testCases := []struct {
		name     string
		term     Terminator
		expected []string
	}{
		{"return", &Return{}, nil},
		{"jump", &Jump{Target: "exit"}, []string{"exit"}},
		{"branch_if", &BranchIf{Condition: &Variable{Name: "c"}, TrueTarget: "then_1", FalseTarget: "else_2"}, []string{"then_1", "else_2"}},
		{"switch", &Switch{
			Expr:          &Variable{Name: "x"},
			Cases:         []SwitchCase{{Value: "1", Target: "case_1"}, {Value: "2", Target: "case_2"}},
			DefaultTarget: "default_3",
		}, []string{"case_1", "case_2", "default_3"}},
		{"unreachable", &Unreachable{}, nil},
	}

	for _, tc := range testCases {
		got := tc.term.Successors()
		if len(got) != len(tc.expected) {
			t.Errorf("%s: Successors() = %v, expected %v", tc.name, got, tc.expected)
			continue
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("%s: Successors()[%d] = %s, expected %s", tc.name, i, got[i], tc.expected[i])
			}
		}
	}
}

func buildSampleModule(t *testing.T) *Module {
	t.Helper()

	fn := NewFunction("main", "main.c:1:1")
	fn.Params = append(fn.Params, &Param{Name: "argc", ParamType: "int"})
	fn.AddLocalVar("x", "int")
	fn.AddLocalVar("p", "char*")

	entry := NewBasicBlock("entry", "main.c:2:1")
	if err := entry.AddOperation(&Assign{
		Target: &Variable{Name: "x"},
		Value:  &BinaryOp{Op: "+", Left: &Variable{Name: "argc"}, Right: &Constant{ConstType: "int", Value: "1"}},
		Coord:  "main.c:2:5",
	}); err != nil {
		t.Fatal(err)
	}
	if err := entry.AddOperation(&Call{
		DestVar:      "p",
		FunctionName: "strdup",
		Args:         []Expression{&Constant{ConstType: "char*", Value: "hello"}},
		Semantics:    &RefSemantics{ReturnRefType: RefNew},
	}); err != nil {
		t.Fatal(err)
	}
	if err := entry.SetTerminator(&BranchIf{
		Condition:   &Variable{Name: "x"},
		TrueTarget:  "then_1",
		FalseTarget: "merge_2",
	}); err != nil {
		t.Fatal(err)
	}
	fn.AddBlock(entry)

	then := NewBasicBlock("then_1", "")
	if err := then.AddOperation(&Store{
		Address: &Dereference{Operand: &Variable{Name: "p"}},
		Value:   &Constant{ConstType: "int", Value: "0"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := then.SetTerminator(&Jump{Target: "merge_2"}); err != nil {
		t.Fatal(err)
	}
	fn.AddBlock(then)

	merge := NewBasicBlock("merge_2", "")
	if err := merge.SetTerminator(&Return{Value: &Variable{Name: "x"}}); err != nil {
		t.Fatal(err)
	}
	fn.AddBlock(merge)

	m := NewModule("sample", "")
	m.AddFunction(fn)
	m.AddGlobalVar("counter", "int")
	m.AddInclude("stdio.h")
	m.AddInclude("stdio.h") // dedup
	return m
}

func TestFunctionValidate(t *testing.T) {
	m := buildSampleModule(t)
	if err := m.Validate(); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}

	fn, _ := m.Functions.Get("main")
	blk, _ := fn.Block("then_1")
	blk.Terminator = &Jump{Target: "nowhere"}
	if err := m.Validate(); err == nil {
		t.Error("dangling jump target not rejected")
	}

	blk.Terminator = nil
	if err := m.Validate(); err == nil {
		t.Error("reachable unterminated block not rejected")
	}
}

func TestModuleJSONRoundTrip(t *testing.T) {
	m := buildSampleModule(t)

	first, err := MarshalModule(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := UnmarshalModule(first)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := MarshalModule(decoded)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("round trip not stable:\nfirst:\n%s\nsecond:\n%s", first, second)
	}

	fn, ok := decoded.Functions.Get("main")
	if !ok {
		t.Fatal("function main lost in round trip")
	}
	if fn.EntryPoint != "entry" {
		t.Errorf("entry_point = %s, expected entry", fn.EntryPoint)
	}
	if got := fn.LocalVars.Keys(); len(got) != 2 || got[0] != "x" || got[1] != "p" {
		t.Errorf("local_vars order lost: %v", got)
	}
	entry, _ := fn.Block("entry")
	call, ok := entry.Operations[1].(*Call)
	if !ok {
		t.Fatalf("operation 1 decoded as %T, expected *Call", entry.Operations[1])
	}
	if call.Semantics == nil || call.Semantics.ReturnRefType != RefNew {
		t.Errorf("call semantics lost: %+v", call.Semantics)
	}
	if len(decoded.Includes) != 1 || decoded.Includes[0] != "stdio.h" {
		t.Errorf("includes = %v", decoded.Includes)
	}
}

func TestJSONOmitsAbsentFields(t *testing.T) {
	blk := NewBasicBlock("entry", "")
	if err := blk.AddOperation(&Call{FunctionName: "free", Args: []Expression{&Variable{Name: "p"}}}); err != nil {
		t.Fatal(err)
	}
	if err := blk.SetTerminator(&Return{}); err != nil {
		t.Fatal(err)
	}
	data, err := blk.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	for _, absent := range []string{"coord", "dest_var", "semantics", "\"value\""} {
		if strings.Contains(string(data), absent) {
			t.Errorf("encoding should omit %s: %s", absent, data)
		}
	}
}

func TestDecodeRejectsUnknownKinds(t *testing.T) {
	if _, err := decodeExprJSON([]byte(`{"kind":"mystery"}`)); err == nil {
		t.Error("unknown expression kind accepted")
	}
	if _, err := decodeTermJSON([]byte(`{"name":"entry"}`)); err == nil {
		t.Error("node without kind tag accepted")
	}
	if _, err := UnmarshalModule([]byte(`{"kind":"func_def","name":"f"}`)); err == nil {
		t.Error("non-module root accepted")
	}
}

func TestPrintModuleSexp(t *testing.T) {
	m := buildSampleModule(t)
	out := PrintModule(m)

	for _, want := range []string{
		`(module (name "sample")`,
		`(func_def (name "main")`,
		`(param (name "argc") (param_type "int"))`,
		`(entry_point "entry")`,
		`(basic_block (name "entry")`,
		`(binary_op (op "+")`,
		`(call (dest_var "p") (function_name "strdup")`,
		`(semantics (return_ref_type "new_ref"))`,
		`(branch_if (condition (variable (name "x"))) (true_target "then_1") (false_target "merge_2"))`,
		`(store (address (dereference (expr (variable (name "p")))))`,
		`(global_vars ("counter" "int"))`,
		`(includes "stdio.h")`,
		`(coord "main.c:2:5")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sexp output missing %s\n%s", want, out)
		}
	}
}

func TestPrintExprCoordLast(t *testing.T) {
	e := &Constant{ConstType: "int", Value: "42", Coord: "a.c:3:9"}
	got := PrintExpr(e)
	expected := `(constant (const_type "int") (value "42") (coord "a.c:3:9"))`
	if got != expected {
		t.Errorf("PrintExpr = %s, expected %s", got, expected)
	}
}

package sexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lisa/internal/ir"
)

func TestParseSimpleNode(t *testing.T) {
	node, err := Parse("test", `(constant (const_type "int") (value "42") (coord "a.c:3:9"))`)
	require.NoError(t, err)

	head, ok := node.Head()
	require.True(t, ok)
	assert.Equal(t, "constant", head)

	values, ok := node.Field("const_type")
	require.True(t, ok)
	require.Len(t, values, 1)
	text, _ := values[0].Text()
	assert.Equal(t, "int", text)

	coord, ok := node.Field("coord")
	require.True(t, ok)
	text, _ = coord[0].Text()
	assert.Equal(t, "a.c:3:9", text)
}

func TestParseNestedAndEscaped(t *testing.T) {
	node, err := Parse("test", `(assign (target (variable (name "x"))) (value (constant (const_type "char*") (value "a \"quoted\" string"))))`)
	require.NoError(t, err)

	target, ok := node.Field("target")
	require.True(t, ok)
	head, _ := target[0].Head()
	assert.Equal(t, "variable", head)

	value, ok := node.Field("value")
	require.True(t, ok)
	constant := value[0]
	inner, ok := constant.Field("value")
	require.True(t, ok)
	text, _ := inner[0].Text()
	assert.Equal(t, `a "quoted" string`, text)
}

func TestParseRejectsUnbalanced(t *testing.T) {
	_, err := Parse("test", `(module (name "m")`)
	assert.Error(t, err)

	_, err = Parse("test", ``)
	assert.Error(t, err)
}

func TestPrinterOutputParses(t *testing.T) {
	fn := ir.NewFunction("main", "main.c:1:1")
	fn.AddLocalVar("x", "int")
	entry := ir.NewBasicBlock("entry", "")
	require.NoError(t, entry.AddOperation(&ir.Call{
		DestVar:      "x",
		FunctionName: "getpid",
		Semantics:    &ir.RefSemantics{ReturnRefType: ir.RefNone, ArgRefSteal: map[int]bool{0: true}},
	}))
	require.NoError(t, entry.SetTerminator(&ir.Return{Value: &ir.Variable{Name: "x"}}))
	fn.AddBlock(entry)

	m := ir.NewModule("sample", "")
	m.AddFunction(fn)
	m.AddInclude("unistd.h")

	node, err := Parse("sample", ir.PrintModule(m))
	require.NoError(t, err)

	head, ok := node.Head()
	require.True(t, ok)
	assert.Equal(t, "module", head)

	functions, ok := node.Field("functions")
	require.True(t, ok)
	require.Len(t, functions, 1)
	head, _ = functions[0].Head()
	assert.Equal(t, "func_def", head)
}

package lift

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lisa/internal/cast"
	"lisa/internal/errors"
	"lisa/internal/ir"
	"lisa/internal/semdb"
)

const sampleUnit = `{
  "kind": "translation_unit",
  "name": "ext/mod.c",
  "includes": ["Python.h", "stdlib.h"],
  "decls": [
    {"kind": "declaration", "name": "module_state", "type": "int"},
    {
      "kind": "function_def",
      "name": "make_number",
      "coord": {"file": "ext/mod.c", "line": 4, "col": 1},
      "params": [{"kind": "param", "name": "v", "type": "long"}],
      "body": {
        "kind": "compound",
        "items": [
          {
            "kind": "if",
            "cond": {"kind": "binary_op", "op": "<", "left": {"kind": "identifier", "name": "v"}, "right": {"kind": "constant", "const_type": "int", "value": "0"}},
            "then": {"kind": "compound", "items": [
              {"kind": "return", "value": {"kind": "constant", "const_type": "int", "value": "0"}}
            ]}
          },
          {"kind": "call", "fun": {"kind": "identifier", "name": "PyLong_FromLong"}, "args": [{"kind": "identifier", "name": "v"}]},
          {"kind": "return", "value": {"kind": "identifier", "name": "v"}}
        ]
      }
    }
  ]
}`

func writeUnit(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unit.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testDB(t *testing.T) *semdb.Database {
	t.Helper()
	db := semdb.Open(filepath.Join(t.TempDir(), "semantic_db.json"))
	require.NoError(t, db.UpdateFunction("PyLong_FromLong", &ir.RefSemantics{
		ReturnRefType: ir.RefNew,
		ErrorReturn:   "NULL",
	}))
	return db
}

func TestLiftFile(t *testing.T) {
	path := writeUnit(t, sampleUnit)
	lifter := New(testDB(t), Options{})

	module, diags, err := lifter.LiftFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, diags.Len())

	assert.Equal(t, "ext_mod_c", module.Name)
	assert.Equal(t, []string{"Python.h", "stdlib.h"}, module.Includes)
	typ, ok := module.GlobalVars.Get("module_state")
	require.True(t, ok)
	assert.Equal(t, "int", typ)

	fn, ok := module.Functions.Get("make_number")
	require.True(t, ok)
	require.NoError(t, fn.Validate())
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "long", fn.Params[0].ParamType)
	assert.Equal(t, "ext/mod.c:4:1", fn.Coord)

	// The bare call picked up its knowledge base record on the way.
	merge, ok := fn.Block("merge_2")
	require.True(t, ok)
	call := merge.Operations[0].(*ir.Call)
	assert.Equal(t, "PyLong_FromLong", call.FunctionName)
	require.NotNil(t, call.Semantics)
	assert.Equal(t, ir.RefNew, call.Semantics.ReturnRefType)
}

func TestLiftFileMissingInput(t *testing.T) {
	lifter := New(nil, Options{})
	_, _, err := lifter.LiftFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	var lerr *errors.LiftError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, errors.ErrorInputNotFound, lerr.Code)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "src_ext_mod_c", ModuleName("src/ext/mod.c"))
	assert.Equal(t, "c:_src_mod_c", ModuleName(`c:\src\mod.c`))
}

func badFunctionUnit() *cast.TranslationUnit {
	return &cast.TranslationUnit{
		Name: "bad.c",
		Decls: []cast.ExtDecl{
			&cast.FunctionDef{Name: "broken"}, // no body: fatal to this function
			&cast.FunctionDef{Name: "fine", Body: &cast.Compound{Items: []cast.Stmt{
				&cast.ReturnStmt{},
			}}},
		},
	}
}

func TestOnErrorContinueDropsOnlyFailedFunction(t *testing.T) {
	lifter := New(nil, Options{OnError: OnErrorContinue})
	module, diags, err := lifter.LiftUnit(badFunctionUnit())
	require.NoError(t, err)

	assert.False(t, module.Functions.Has("broken"))
	assert.True(t, module.Functions.Has("fine"))

	require.GreaterOrEqual(t, diags.Len(), 1)
	assert.Equal(t, errors.ErrorMalformedSyntaxTree, diags.Items()[0].Code)
	assert.Equal(t, errors.LevelError, diags.Items()[0].Level)
}

func TestOnErrorAbortFailsWholeLift(t *testing.T) {
	lifter := New(nil, Options{OnError: OnErrorAbort})
	_, _, err := lifter.LiftUnit(badFunctionUnit())
	require.Error(t, err)
	var lerr *errors.LiftError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, errors.ErrorMalformedSyntaxTree, lerr.Code)
}

func TestParallelMatchesSequential(t *testing.T) {
	makeUnit := func() *cast.TranslationUnit {
		unit := &cast.TranslationUnit{Name: "many.c"}
		names := []string{"alpha", "beta", "gamma", "delta"}
		for _, name := range names {
			unit.Decls = append(unit.Decls, &cast.FunctionDef{
				Name: name,
				Body: &cast.Compound{Items: []cast.Stmt{
					&cast.IfStmt{
						Cond: &cast.IdentExpr{Name: "flag"},
						Then: &cast.ReturnStmt{Value: &cast.ConstantExpr{Kind: "int", Value: "1"}},
					},
					&cast.ReturnStmt{Value: &cast.ConstantExpr{Kind: "int", Value: "0"}},
				}},
			})
		}
		return unit
	}

	seq, seqDiags, err := New(nil, Options{Parallel: false}).LiftUnit(makeUnit())
	require.NoError(t, err)
	par, parDiags, err := New(nil, Options{Parallel: true}).LiftUnit(makeUnit())
	require.NoError(t, err)

	seqJSON, err := ir.MarshalModule(seq)
	require.NoError(t, err)
	parJSON, err := ir.MarshalModule(par)
	require.NoError(t, err)
	assert.Equal(t, string(seqJSON), string(parJSON))
	assert.Equal(t, seqDiags.Len(), parDiags.Len())
}

func TestLiftedModuleRoundTrips(t *testing.T) {
	path := writeUnit(t, sampleUnit)
	module, _, err := New(testDB(t), Options{}).LiftFile(path)
	require.NoError(t, err)

	encoded, err := ir.MarshalModule(module)
	require.NoError(t, err)
	decoded, err := ir.UnmarshalModule(encoded)
	require.NoError(t, err)
	again, err := ir.MarshalModule(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), string(again))
}

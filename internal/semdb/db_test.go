package semdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lisa/internal/ir"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "semantic_db.json")
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	db := Open(tempDBPath(t))
	assert.Equal(t, 0, db.Len())
	_, known := db.Lookup("PyLong_FromLong")
	assert.False(t, known, "empty database should not know any function")
}

func TestUpdateFunctionAndLookup(t *testing.T) {
	db := Open(tempDBPath(t))

	err := db.UpdateFunction("PyLong_FromLong", &ir.RefSemantics{
		ReturnRefType: ir.RefNew,
		ErrorReturn:   "NULL",
	})
	require.NoError(t, err)

	info, known := db.Lookup("PyLong_FromLong")
	require.True(t, known)
	assert.Equal(t, ir.RefNew, info.ReturnRefType)
	assert.Equal(t, "NULL", info.ErrorReturn)

	// Unknown stays distinguishable from empty semantics.
	_, known = db.Lookup("my_local_helper")
	assert.False(t, known)
}

func TestUpdateFunctionRejectsInvalidKeepsPrior(t *testing.T) {
	db := Open(tempDBPath(t))
	require.NoError(t, db.UpdateFunction("PyList_SetItem", &ir.RefSemantics{
		ReturnRefType: ir.RefNone,
		ArgRefSteal:   map[int]bool{2: true},
	}))

	err := db.UpdateFunction("PyList_SetItem", &ir.RefSemantics{ReturnRefType: "stolen_ref"})
	assert.Error(t, err)

	info, known := db.Lookup("PyList_SetItem")
	require.True(t, known, "prior record must survive a rejected update")
	assert.Equal(t, ir.RefNone, info.ReturnRefType)
	assert.True(t, info.ArgRefSteal[2])
}

func TestLookupReturnsCopy(t *testing.T) {
	db := Open(tempDBPath(t))
	require.NoError(t, db.UpdateFunction("PyTuple_SetItem", &ir.RefSemantics{
		ArgRefSteal: map[int]bool{2: true},
	}))

	info, _ := db.Lookup("PyTuple_SetItem")
	info.ArgRefSteal[0] = true

	again, _ := db.Lookup("PyTuple_SetItem")
	_, mutated := again.ArgRefSteal[0]
	assert.False(t, mutated, "caller mutation must not leak into the database")
}

func TestBulkUpdateSkipsMalformedEntries(t *testing.T) {
	db := Open(tempDBPath(t))
	applied := db.BulkUpdate([]Entry{
		{FuncName: "PyDict_GetItem", Info: &ir.RefSemantics{ReturnRefType: ir.RefBorrowed, ErrorReturn: "NULL"}},
		{FuncName: "", Info: &ir.RefSemantics{ReturnRefType: ir.RefNew}},
		{FuncName: "broken", Info: nil},
		{FuncName: "also_broken", Info: &ir.RefSemantics{ReturnRefType: "maybe_ref"}},
	})
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, db.Len())
	assert.True(t, db.Has("PyDict_GetItem"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := tempDBPath(t)

	db := Open(path)
	require.NoError(t, db.UpdateFunction("malloc", &ir.RefSemantics{ReturnRefType: ir.RefNew, ErrorReturn: "NULL"}))
	require.NoError(t, db.UpdateFunction("free", &ir.RefSemantics{ReturnRefType: ir.RefNone, ArgRefSteal: map[int]bool{0: true}}))

	reopened := Open(path)
	assert.Equal(t, 2, reopened.Len())
	info, known := reopened.Lookup("free")
	require.True(t, known)
	assert.True(t, info.ArgRefSteal[0])
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := tempDBPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	db := Open(path)
	assert.Equal(t, 0, db.Len())
}

func TestFunctionsByRefType(t *testing.T) {
	db := Open(tempDBPath(t))
	require.NoError(t, db.UpdateFunction("PyLong_FromLong", &ir.RefSemantics{ReturnRefType: ir.RefNew}))
	require.NoError(t, db.UpdateFunction("PyUnicode_FromString", &ir.RefSemantics{ReturnRefType: ir.RefNew}))
	require.NoError(t, db.UpdateFunction("PyDict_GetItem", &ir.RefSemantics{ReturnRefType: ir.RefBorrowed}))

	names, err := db.FunctionsByRefType(ir.RefNew)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"PyLong_FromLong", "PyUnicode_FromString"}, names)

	_, err = db.FunctionsByRefType("weak_ref")
	assert.Error(t, err)
}

func TestMergeOverwritesOnCollision(t *testing.T) {
	a := Open(tempDBPath(t))
	require.NoError(t, a.UpdateFunction("f", &ir.RefSemantics{ReturnRefType: ir.RefNone}))

	b := Open(tempDBPath(t))
	require.NoError(t, b.UpdateFunction("f", &ir.RefSemantics{ReturnRefType: ir.RefNew}))
	require.NoError(t, b.UpdateFunction("g", &ir.RefSemantics{ReturnRefType: ir.RefBorrowed}))

	a.Merge(b)
	assert.Equal(t, 2, a.Len())
	info, _ := a.Lookup("f")
	assert.Equal(t, ir.RefNew, info.ReturnRefType)
}

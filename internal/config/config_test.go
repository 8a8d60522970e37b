package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lisa.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
on-error = "abort"
parallel = true
semantic-db = "db/semantics.json"
format = "sexp"
output = "out.sexp"
verbose = true
`))
	require.NoError(t, err)
	assert.Equal(t, "abort", cfg.OnError)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, "db/semantics.json", cfg.SemanticDB)
	assert.Equal(t, FormatSexp, cfg.Format)
	assert.Equal(t, "out.sexp", cfg.Output)
	assert.True(t, cfg.Verbose)
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, `parallel = true`))
	require.NoError(t, err)
	assert.Equal(t, "continue", cfg.OnError)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestLoadRejectsBadEnums(t *testing.T) {
	_, err := Load(writeConfig(t, `on-error = "retry"`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `format = "xml"`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

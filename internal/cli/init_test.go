package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/config"
)

func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idxc.toml")

	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idxc.toml")
	_, err := execute(t, "init", path)
	require.NoError(t, err)

	out, err := execute(t, "init", path)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeConfigExists)

	_, err = execute(t, "init", path, "--force")
	assert.NoError(t, err)
}

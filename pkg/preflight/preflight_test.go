package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

func TestCheckSourceAccessible(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckSourceAccessible(dir))

	assert.Error(t, CheckSourceAccessible(filepath.Join(dir, "absent")))

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, CheckSourceAccessible(file))
}

func TestEnsureTargetWritableCreatesMissingDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "deeply", "nested", "mirror")
	require.NoError(t, EnsureTargetWritable(target))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The write probe cleaned up after itself.
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, util.IsTempFile(e.Name()), "probe file %s left behind", e.Name())
	}
}

func TestEnsureTargetWritableExistingDir(t *testing.T) {
	assert.NoError(t, EnsureTargetWritable(t.TempDir()))
}

func TestEnsureTargetWritableRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, EnsureTargetWritable(file))
}

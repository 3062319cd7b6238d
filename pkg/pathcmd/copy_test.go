package pathcmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulschiretz/pgl-mirror/pkg/fsmodel"
	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
	"github.com/paulschiretz/pgl-mirror/pkg/pool"
	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

func newTestEnv(m metrics.Metrics, dryRun bool) *Env {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEnv(log, m, pool.NewBufferPool(4), dryRun)
}

// sourceFile writes content under srcRoot at relDir/name and returns the
// matching scanned File value.
func sourceFile(t *testing.T, srcRoot, relDir, name, content string) fsmodel.File {
	t.Helper()
	dir := filepath.Join(srcRoot, filepath.FromSlash(relDir))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f := fsmodel.NewFile(fsmodel.NewFolder(dir), name)
	f.RelPath = filepath.FromSlash(relDir)
	info, err := os.Stat(path)
	require.NoError(t, err)
	meta := fsmodel.NewMetadata(info.Size(), info.ModTime())
	f.Meta = &meta
	return f
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// noLeftoverTemps fails the test if any temporary commit file survived.
func noLeftoverTemps(t *testing.T, root string) {
	t.Helper()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && util.IsTempFile(d.Name()) {
			t.Errorf("leftover temporary file: %s", path)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestCopyCreatesFile(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "sub/deep", "a.txt", "hello")

	m := &metrics.SyncMetrics{}
	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), false, false), newTestEnv(m, false))

	require.True(t, res.OK, "copy failed: %v", res.Err)
	dstPath := filepath.Join(dstRoot, "sub", "deep", "a.txt")
	assert.Equal(t, "hello", readFile(t, dstPath))
	noLeftoverTemps(t, dstRoot)
	assert.Equal(t, int64(1), m.FilesCreated.Load())
	assert.Equal(t, int64(len("hello")), m.BytesWritten.Load())

	// The committed file carries the source's modification time so the
	// next diff sees both sides as identical.
	srcInfo, err := os.Stat(file.FullPath())
	require.NoError(t, err)
	dstInfo, err := os.Stat(dstPath)
	require.NoError(t, err)
	assert.True(t, dstInfo.ModTime().Equal(srcInfo.ModTime()))
}

func TestCopySourceMissing(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "", "gone.txt", "x")
	require.NoError(t, os.Remove(file.FullPath()))

	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), false, false), newTestEnv(&metrics.NoopMetrics{}, false))

	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrSourceMissing)

	// Failing before target I/O means no partial destination appears.
	_, err := os.Stat(filepath.Join(dstRoot, "gone.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	noLeftoverTemps(t, dstRoot)
}

func TestCopySkipsExistingWithoutOverwrite(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "", "a.txt", "new content")
	require.NoError(t, os.WriteFile(filepath.Join(dstRoot, "a.txt"), []byte("old content"), 0o644))

	m := &metrics.SyncMetrics{}
	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), false, false), newTestEnv(m, false))

	assert.True(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrDestinationExists)
	assert.Equal(t, "old content", readFile(t, filepath.Join(dstRoot, "a.txt")))
	assert.Equal(t, int64(1), m.FilesSkipped.Load())
	assert.Equal(t, int64(0), m.FilesCreated.Load())
}

func TestCopyOverwritesChangedFile(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "", "a.txt", "new content")
	require.NoError(t, os.WriteFile(filepath.Join(dstRoot, "a.txt"), []byte("old"), 0o644))

	m := &metrics.SyncMetrics{}
	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), true, false), newTestEnv(m, false))

	require.True(t, res.OK, "overwrite failed: %v", res.Err)
	assert.Equal(t, "new content", readFile(t, filepath.Join(dstRoot, "a.txt")))
	assert.Equal(t, int64(1), m.FilesUpdated.Load())
	noLeftoverTemps(t, dstRoot)
}

func TestCopyHashTieBreakCancelsUpdate(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "", "a.txt", "same bytes")

	// Same content but a different timestamp: metadata says "changed",
	// the hash comparison gets the final word.
	dstPath := filepath.Join(dstRoot, "a.txt")
	require.NoError(t, os.WriteFile(dstPath, []byte("same bytes"), 0o644))
	old := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(dstPath, old, old))

	m := &metrics.SyncMetrics{}
	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), true, false), newTestEnv(m, false))

	require.True(t, res.OK, "tie-break failed: %v", res.Err)
	assert.Equal(t, int64(1), m.HashSkips.Load())
	assert.Equal(t, int64(0), m.FilesUpdated.Load())

	// The destination was not rewritten.
	info, err := os.Stat(dstPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestCopyDryRunTouchesNothing(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "sub", "a.txt", "x")

	res := execute(context.Background(), Copy(file, fsmodel.NewFolder(dstRoot), false, false), newTestEnv(&metrics.NoopMetrics{}, true))

	assert.True(t, res.OK)
	assert.True(t, strings.Contains(res.Message, "dry run"))
	_, err := os.Stat(filepath.Join(dstRoot, "sub"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopyIsIdempotent(t *testing.T) {
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	file := sourceFile(t, srcRoot, "b", "c.txt", "payload")
	env := newTestEnv(&metrics.NoopMetrics{}, false)
	target := fsmodel.NewFolder(dstRoot)

	res := execute(context.Background(), Copy(file, target, true, false), env)
	require.True(t, res.OK, "first copy failed: %v", res.Err)
	res = execute(context.Background(), Copy(file, target, true, false), env)
	require.True(t, res.OK, "second copy failed: %v", res.Err)

	assert.Equal(t, "payload", readFile(t, filepath.Join(dstRoot, "b", "c.txt")))
	noLeftoverTemps(t, dstRoot)
}

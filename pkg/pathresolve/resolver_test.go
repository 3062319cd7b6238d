package pathresolve

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWindowsResolver(t *testing.T) *Resolver {
	t.Helper()
	return New(`C:\base`, WindowsRules(), discardLogger())
}

func TestResolveFolderWindows(t *testing.T) {
	r := newWindowsResolver(t)

	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{name: "Forward slashes converted", input: "c:/temp/data", expected: `c:\temp\data`},
		{name: "Repeated separators collapsed", input: `c:\temp\\\data`, expected: `c:\temp\data`},
		{name: "Dot segments resolved", input: `c:/a/./b/../c`, expected: `c:\a\c`},
		{name: "Trailing separator trimmed", input: `c:\temp\data\`, expected: `c:\temp\data`},
		{name: "Drive letter case preserved", input: `c:/temp`, expected: `c:\temp`},
		{name: "Relative resolved against base", input: `sub/dir`, expected: `C:\base\sub\dir`},
		{name: "Empty path", input: "", wantErr: ErrInvalidPath},
		{name: "Whitespace only", input: "   ", wantErr: ErrInvalidPath},
		{name: "Bare drive root", input: `c:\`, wantErr: ErrBareDriveRoot},
		{name: "Malformed drive pattern", input: `1:\x`, wantErr: ErrInvalidPath},
		{name: "Colon in the middle", input: `c:\a:b`, wantErr: ErrInvalidPath},
		{name: "Illegal character", input: `c:\te<mp`, wantErr: ErrInvalidPath},
		{name: "Nonexistent with extension looks like a file", input: `c:\temp\report.txt`, wantErr: ErrPathIsFile},
		{name: "Trailing separator forces folder meaning", input: `c:\temp\report.txt\`, expected: `c:\temp\report.txt`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ResolveFolder(tc.input)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.FullPath)
		})
	}
}

func TestResolveFileWindows(t *testing.T) {
	r := newWindowsResolver(t)

	testCases := []struct {
		name        string
		input       string
		defaultName string
		wantDir     string
		wantName    string
		wantErr     error
	}{
		{
			name:     "Dot-only name counts as an extension",
			input:    "c:/temp/.onlyextension",
			wantDir:  `c:\temp`,
			wantName: ".onlyextension",
		},
		{
			name:     "Extension splits into dir and name",
			input:    `c:\logs\app.log`,
			wantDir:  `c:\logs`,
			wantName: "app.log",
		},
		{
			name:     "File directly under a drive root",
			input:    `c:\app.log`,
			wantDir:  `c:\`,
			wantName: "app.log",
		},
		{
			name:        "No extension falls back to the default name",
			input:       `c:\data`,
			defaultName: "config.json",
			wantDir:     `c:\data`,
			wantName:    "config.json",
		},
		{
			name:    "No extension and no default is ambiguous",
			input:   `c:\data`,
			wantErr: ErrAmbiguousPath,
		},
		{
			name:        "Empty path",
			input:       "",
			defaultName: "config.json",
			wantErr:     ErrInvalidPath,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ResolveFile(tc.input, tc.defaultName)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDir, got.Dir)
			assert.Equal(t, tc.wantName, got.Name)
		})
	}
}

func TestResolveFolderExistingPaths(t *testing.T) {
	r := New(t.TempDir(), HostRules(), discardLogger())

	dir := t.TempDir()
	resolved, err := r.ResolveFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved.FullPath)

	// An existing regular file never resolves as a folder, extension or not.
	noExt := filepath.Join(dir, "datafile")
	require.NoError(t, os.WriteFile(noExt, []byte("x"), 0o644))
	_, err = r.ResolveFolder(noExt)
	assert.ErrorIs(t, err, ErrPathIsFile)
}

func TestResolveFileExistingRegularFile(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, HostRules(), discardLogger())

	// No extension, but the file exists, so it still splits as a file.
	path := filepath.Join(dir, "datafile")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	got, err := r.ResolveFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, dir, got.Dir)
	assert.Equal(t, "datafile", got.Name)
}

func TestResolveFileExistingDirWithDotInName(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, HostRules(), discardLogger())

	// An existing directory wins over its extension-looking name.
	dotDir := filepath.Join(dir, "backup.d")
	require.NoError(t, os.Mkdir(dotDir, 0o755))

	got, err := r.ResolveFile(dotDir, "state.json")
	require.NoError(t, err)
	assert.Equal(t, dotDir, got.Dir)
	assert.Equal(t, "state.json", got.Name)
}

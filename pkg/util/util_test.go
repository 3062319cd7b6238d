package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithUserWritePermission(t *testing.T) {
	testCases := []struct {
		name     string
		input    os.FileMode
		expected os.FileMode
	}{
		{
			name:     "Read-only permission",
			input:    0444, // r--r--r--
			expected: 0644, // rw-r--r--
		},
		{
			name:     "Already has write permission",
			input:    0755, // rwxr-xr-x
			expected: 0755, // rwxr-xr-x (should not change)
		},
		{
			name:     "No permissions",
			input:    0000, // ---------
			expected: 0200, // -w-------
		},
		{
			name:     "Execute-only permission",
			input:    0111, // --x--x--x
			expected: 0311, // -wx--x--x
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := WithUserWritePermission(tc.input)
			if result != tc.expected {
				t.Errorf("expected permission %o, but got %o", tc.expected, result)
			}
		})
	}
}

func TestTempFileName(t *testing.T) {
	a := TempFileName()
	b := TempFileName()

	if a == b {
		t.Errorf("expected unique temp file names, got %q twice", a)
	}
	if !IsTempFile(a) {
		t.Errorf("TempFileName() produced %q which IsTempFile does not recognize", a)
	}
}

func TestIsTempFile(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Generated temp name", tempFilePrefix + "0000" + tempFileSuffix, true},
		{"Regular file", "report.txt", false},
		{"Prefix only", tempFilePrefix + "leftover.txt", false},
		{"Suffix only", "somefile" + tempFileSuffix, false},
		{"Empty name", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTempFile(tc.input); got != tc.expected {
				t.Errorf("IsTempFile(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	expanded, err := ExpandPath("~/logs/app.log")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	expected := filepath.Join(home, "logs", "app.log")
	if expanded != expected {
		t.Errorf("expected %q, got %q", expected, expanded)
	}

	plain := filepath.Join(string(filepath.Separator), "var", "data")
	got, err := ExpandPath(plain)
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != plain {
		t.Errorf("path without tilde should be unchanged, got %q", got)
	}
	if strings.HasPrefix(got, "~") {
		t.Errorf("expanded path still contains tilde: %q", got)
	}
}

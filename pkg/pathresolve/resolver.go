// Package pathresolve turns ambiguous user-supplied path strings into
// resolved file or folder references. It owns all path validation and
// normalization; the rest of the program only ever sees paths that have
// already passed through here.
package pathresolve

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Resolution error classes. Callers are expected to match with errors.Is
// and recover locally: a path that fails to resolve is excluded and
// logged, it never aborts the surrounding operation.
var (
	// ErrInvalidPath marks paths with illegal characters or a malformed
	// drive-letter pattern.
	ErrInvalidPath = errors.New("invalid path")
	// ErrAmbiguousPath marks paths that cannot be classified as a file
	// and had no default file name to fall back to.
	ErrAmbiguousPath = errors.New("ambiguous path")
	// ErrBareDriveRoot marks folder resolutions that yield a bare drive
	// root, which is indistinguishable from "no folder given".
	ErrBareDriveRoot = errors.New("bare drive root")
	// ErrPathIsFile marks folder resolutions that name an existing file.
	ErrPathIsFile = errors.New("path is a file")
)

// ResolvedFolder is a normalized full path accepted as a folder.
type ResolvedFolder struct {
	FullPath string
}

// ResolvedFile is a normalized folder path plus a file name.
type ResolvedFile struct {
	Dir  string
	Name string
}

// Resolver resolves paths against a base directory under a fixed set of
// platform rules.
type Resolver struct {
	base  string
	rules Rules
	log   *slog.Logger
}

// New builds a Resolver. base is the directory relative inputs resolve
// against (typically the process working directory) and must itself be
// fully qualified under the given rules.
func New(base string, rules Rules, log *slog.Logger) *Resolver {
	return &Resolver{base: base, rules: rules, log: log}
}

// Rules exposes the convention this resolver was built with.
func (r *Resolver) Rules() Rules { return r.rules }

// ResolveFolder validates and normalizes path and accepts it as a folder
// reference. Existing directories and plausible not-yet-existing folder
// paths both succeed; an existing regular file fails with ErrPathIsFile,
// and a bare drive root fails with ErrBareDriveRoot.
func (r *Resolver) ResolveFolder(path string) (ResolvedFolder, error) {
	trimmed := strings.TrimSpace(path)
	hadTrailingSep := len(trimmed) > 0 && r.rules.isSeparator(trimmed[len(trimmed)-1])

	norm, err := r.qualify(trimmed)
	if err != nil {
		return ResolvedFolder{}, err
	}

	if r.isBareDriveRoot(norm) {
		return ResolvedFolder{}, fmt.Errorf("%w: %q", ErrBareDriveRoot, norm)
	}

	if info, err := os.Stat(norm); err == nil {
		if !info.IsDir() {
			return ResolvedFolder{}, fmt.Errorf("%w: %q", ErrPathIsFile, norm)
		}
		return ResolvedFolder{FullPath: norm}, nil
	}

	// The folder does not exist (yet). A last segment carrying an
	// extension and no explicit trailing separator looks like a file
	// name, not a folder.
	if !hadTrailingSep && extension(lastSegment(norm, r.rules)) != "" {
		return ResolvedFolder{}, fmt.Errorf("%w: %q names a file, not a folder", ErrPathIsFile, norm)
	}
	return ResolvedFolder{FullPath: norm}, nil
}

// ResolveFile validates and normalizes path and resolves it into a
// directory plus file name. The decision order is: an existing regular
// file, or an extension-bearing path that is not an existing directory,
// splits directly; otherwise the whole path is treated as a folder and
// paired with defaultFileName; with no default the path is ambiguous.
func (r *Resolver) ResolveFile(path string, defaultFileName string) (ResolvedFile, error) {
	norm, err := r.qualify(strings.TrimSpace(path))
	if err != nil {
		return ResolvedFile{}, err
	}

	name := lastSegment(norm, r.rules)
	var isRegular, isDir bool
	if info, err := os.Stat(norm); err == nil {
		isRegular = info.Mode().IsRegular()
		isDir = info.IsDir()
	}

	if name != "" && (isRegular || (extension(name) != "" && !isDir)) {
		return ResolvedFile{Dir: parentOf(norm, r.rules), Name: name}, nil
	}

	if defaultFileName != "" {
		return ResolvedFile{Dir: norm, Name: defaultFileName}, nil
	}

	return ResolvedFile{}, fmt.Errorf("%w: %q is neither a file nor a folder with a default file name", ErrAmbiguousPath, norm)
}

// qualify validates the trimmed input, resolves it against the base if
// relative, and normalizes the result.
func (r *Resolver) qualify(trimmed string) (string, error) {
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if err := r.validate(trimmed); err != nil {
		r.log.Debug("path rejected", "path", trimmed, "error", err)
		return "", err
	}
	if !r.isFullyQualified(trimmed) {
		trimmed = r.base + string(r.rules.Separator) + trimmed
	}
	return normalize(trimmed, r.rules), nil
}

// validate rejects illegal characters and malformed drive patterns
// before any filesystem access happens.
func (r *Resolver) validate(p string) error {
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c < 0x20 || strings.IndexByte(r.rules.IllegalChars, c) >= 0 {
			return fmt.Errorf("%w: %q contains illegal character %q", ErrInvalidPath, p, c)
		}
		// A colon is legal in exactly one position under drive-letter
		// rules: the second byte, preceded by a letter. On POSIX it is
		// an ordinary byte.
		if c == ':' && r.rules.DriveLetters && (i != 1 || !isLetter(p[0])) {
			return fmt.Errorf("%w: %q has a malformed drive pattern", ErrInvalidPath, p)
		}
	}
	return nil
}

// isFullyQualified reports whether p stands on its own or needs the base
// directory prepended.
func (r *Resolver) isFullyQualified(p string) bool {
	if r.rules.DriveLetters {
		return len(p) >= 2 && isLetter(p[0]) && p[1] == ':'
	}
	return len(p) > 0 && r.rules.isSeparator(p[0])
}

// isBareDriveRoot reports whether the normalized path is exactly a root
// with nothing after it.
func (r *Resolver) isBareDriveRoot(norm string) bool {
	if r.rules.DriveLetters {
		return len(norm) == 3 && isLetter(norm[0]) && norm[1] == ':' && norm[2] == r.rules.Separator
	}
	return norm == string(r.rules.Separator)
}

// normalize converts forward slashes to the rule separator, collapses
// repeated separators, resolves "." and ".." segments lexically, and
// trims any trailing separator unless the result is a bare root.
func normalize(p string, rules Rules) string {
	var root string
	rest := p
	if rules.DriveLetters && len(p) >= 2 && isLetter(p[0]) && p[1] == ':' {
		// Drive case is preserved: folder equality is byte-identical by
		// contract, so rewriting "c:" to "C:" would split identities.
		root = p[:2] + string(rules.Separator)
		rest = p[2:]
	} else if len(p) > 0 && rules.isSeparator(p[0]) {
		root = string(rules.Separator)
	}

	var segments []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		seg := rest[start:end]
		start = -1
		switch seg {
		case ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}
	for i := 0; i < len(rest); i++ {
		if rules.isSeparator(rest[i]) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(rest))

	joined := strings.Join(segments, string(rules.Separator))
	if root == "" {
		return joined
	}
	return root + joined
}

// lastSegment returns the final path segment of a normalized path, or ""
// for a bare root.
func lastSegment(norm string, rules Rules) string {
	idx := strings.LastIndexByte(norm, rules.Separator)
	if idx < 0 {
		return norm
	}
	return norm[idx+1:]
}

// parentOf returns the directory part of a normalized path, keeping the
// trailing separator only on a bare root ("C:\" or "/").
func parentOf(norm string, rules Rules) string {
	idx := strings.LastIndexByte(norm, rules.Separator)
	if idx < 0 {
		return ""
	}
	dir := norm[:idx]
	if rules.DriveLetters && len(dir) == 2 && dir[1] == ':' {
		return dir + string(rules.Separator)
	}
	if dir == "" {
		return string(rules.Separator)
	}
	return dir
}

// extension returns the suffix starting at the last dot of name. A name
// that is nothing but a leading dot still counts as carrying an
// extension, so ".onlyextension" resolves as a file name.
func extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

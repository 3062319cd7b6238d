// Package fsmodel holds the small immutable value types shared by the
// scanner, the diff engine and the command pipeline: a Folder location,
// a File discovered inside it, and the file's captured Metadata.
//
// Folders and Files are plain values constructed once and never mutated
// after they have been published to another goroutine, so they are safe
// to share between the producer (scan/diff) and consumer (pipeline)
// sides without synchronization.
package fsmodel

import (
	"fmt"
	"path/filepath"
	"time"
)

// Folder is an immutable full path to a directory. Two Folders are equal
// iff their path strings are byte-identical; no normalization or case
// folding happens here (the resolver is responsible for producing
// normalized paths in the first place).
type Folder struct {
	fullPath string
}

// NewFolder wraps an already-resolved full path.
func NewFolder(fullPath string) Folder {
	return Folder{fullPath: fullPath}
}

// FullPath returns the folder's full path string.
func (f Folder) FullPath() string { return f.fullPath }

// IsZero reports whether the folder carries no path at all.
func (f Folder) IsZero() bool { return f.fullPath == "" }

func (f Folder) String() string { return f.fullPath }

// Metadata captures what a scan discovered about a file. Size validation
// is the caller's responsibility; ModTime keeps whatever zone the
// filesystem reported. Hash is a lowercase hex MD5 digest, set lazily and
// only when the pipeline needs a tie-break.
type Metadata struct {
	Size    int64
	ModTime time.Time
	Hash    string
}

// NewMetadata builds a Metadata without a hash.
func NewMetadata(size int64, modTime time.Time) Metadata {
	return Metadata{Size: size, ModTime: modTime}
}

// File is a file name plus the Folder it lives in. RelPath is the
// directory part of the file's location relative to its scan root,
// "" for a root-level file; it is assigned exactly once when the file is
// discovered and never contains "." or ".." segments. Meta is nil until
// a scan has captured it.
type File struct {
	Name    string
	Dir     Folder
	RelPath string
	Meta    *Metadata
}

// NewFile pairs a name with its owning folder. RelPath and Meta are
// filled in by the scanner after discovery.
func NewFile(dir Folder, name string) File {
	return File{Name: name, Dir: dir}
}

// Key is the identity the diff engine matches on: relative path plus
// name. Content never participates in identity.
func (f File) Key() string {
	if f.RelPath == "" {
		return f.Name
	}
	return f.RelPath + string(filepath.Separator) + f.Name
}

// FullPath joins the owning folder and the file name.
func (f File) FullPath() string {
	return filepath.Join(f.Dir.FullPath(), f.Name)
}

func (f File) String() string { return f.FullPath() }

// FolderPair associates a source folder with the target it mirrors into.
type FolderPair struct {
	Source Folder
	Target Folder
}

// NewFolderPair validates the one structural invariant a pair carries:
// source and target must not be the same path string.
func NewFolderPair(source, target Folder) (FolderPair, error) {
	if source.FullPath() == target.FullPath() {
		return FolderPair{}, fmt.Errorf("source and target are the same path: %s", source.FullPath())
	}
	return FolderPair{Source: source, Target: target}, nil
}

func (p FolderPair) String() string {
	return p.Source.FullPath() + " => " + p.Target.FullPath()
}

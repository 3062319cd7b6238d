// Package pathscan walks a directory tree and captures a metadata record
// for every regular file it finds. The records feed the diff engine;
// content hashes are deliberately left unset here and computed lazily by
// the pipeline when a tie-break is needed.
package pathscan

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/paulschiretz/pgl-mirror/pkg/fsmodel"
	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
	"github.com/paulschiretz/pgl-mirror/pkg/pathresolve"
	"github.com/paulschiretz/pgl-mirror/pkg/progress"
	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// Scanner enumerates folders into File records. It is stateless across
// scans and safe to reuse for every folder pair of a run.
type Scanner struct {
	resolver *pathresolve.Resolver
	excl     Exclusions
	sink     progress.Sink
	metrics  metrics.Metrics
	log      *slog.Logger
}

// New builds a Scanner. sink receives one cosmetic report per entry.
func New(resolver *pathresolve.Resolver, excl Exclusions, sink progress.Sink, m metrics.Metrics, log *slog.Logger) *Scanner {
	return &Scanner{resolver: resolver, excl: excl, sink: sink, metrics: m, log: log}
}

// Scan walks root recursively and returns a File record per regular
// file, each carrying its relative path (the directory part relative to
// root, "" for root-level files) plus size and modification time.
// Entries that fail resolution are logged and skipped; only a failure to
// read the root itself, or cancellation, aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root fsmodel.Folder) ([]fsmodel.File, error) {
	rootPath := root.FullPath()
	var files []fsmodel.File

	err := filepath.WalkDir(rootPath, func(absPath string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if absPath == rootPath {
				return walkErr // unreadable root aborts the scan
			}
			s.log.Warn("SKIP", "reason", "error accessing path", "path", absPath, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if absPath == rootPath {
			return nil
		}

		relKey, relErr := filepath.Rel(rootPath, absPath)
		if relErr != nil {
			s.log.Warn("SKIP", "reason", "relative path", "path", absPath, "error", relErr)
			return nil
		}
		relKey = filepath.ToSlash(relKey)

		if !s.excl.Empty() && s.excl.Matches(relKey, d.Name()) {
			s.log.Debug("EXCL", "path", relKey)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			s.log.Debug("SKIP", "reason", "not a regular file", "path", relKey)
			return nil
		}
		// Stale temporaries from a crashed run are never part of a tree.
		if util.IsTempFile(d.Name()) {
			s.log.Debug("SKIP", "reason", "stale temp file", "path", relKey)
			return nil
		}

		s.metrics.AddEntriesScanned(1)
		s.sink.Report(progress.IndeterminatePercent, relKey)

		file, err := s.record(rootPath, absPath, d)
		if err != nil {
			s.log.Warn("SKIP", "reason", "entry failed to resolve", "path", absPath, "error", err)
			return nil
		}
		files = append(files, file)
		return nil
	})

	s.sink.Done()
	if err != nil {
		return nil, err
	}
	return files, nil
}

// record resolves one walked entry into a File and fills its relative
// path and metadata.
func (s *Scanner) record(rootPath, absPath string, d fs.DirEntry) (fsmodel.File, error) {
	resolved, err := s.resolver.ResolveFile(absPath, "")
	if err != nil {
		return fsmodel.File{}, err
	}

	info, err := d.Info()
	if err != nil {
		return fsmodel.File{}, err
	}

	file := fsmodel.NewFile(fsmodel.NewFolder(resolved.Dir), resolved.Name)
	file.RelPath = relDir(rootPath, resolved.Dir)
	meta := fsmodel.NewMetadata(info.Size(), info.ModTime())
	file.Meta = &meta
	return file, nil
}

// relDir expresses dir relative to the scan root using the root's own
// separator convention. The empty string denotes a root-level file,
// never a literal "current directory" marker.
func relDir(rootPath, dir string) string {
	if dir == rootPath {
		return ""
	}
	return strings.TrimPrefix(dir, rootPath+string(filepath.Separator))
}

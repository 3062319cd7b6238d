package plog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// maxRotatedLogs caps how many compressed day files are kept next to
// the active log.
const maxRotatedLogs = 14

const dayFormat = "20060102"

// rollingWriter appends to a date-stamped log file derived from the
// configured path and rotates at the first write of a new day. Rotated
// files are gzip-compressed and the oldest ones are pruned.
type rollingWriter struct {
	mu      sync.Mutex
	dir     string
	stem    string // file name without extension, e.g. "pgl-mirror"
	ext     string // extension including the dot, e.g. ".log"
	day     string
	file    *os.File
	current string
}

// newRollingWriter opens today's log file for the given base path.
// "~/logs/pgl-mirror.log" becomes "~/logs/pgl-mirror_20260826.log".
func newRollingWriter(basePath string) (*rollingWriter, error) {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".log"
	}

	if err := os.MkdirAll(dir, util.UserWritableDirPerms); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	w := &rollingWriter{
		dir:  dir,
		stem: strings.TrimSuffix(base, ext),
		ext:  ext,
	}
	if err := w.open(time.Now()); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer for the slog file handler.
func (w *rollingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.Format(dayFormat) != w.day {
		if err := w.rotate(now); err != nil {
			// Keep logging into the stale day file rather than dropping
			// the record.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	return w.file.Write(p)
}

// Close flushes and closes the active file.
func (w *rollingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *rollingWriter) open(now time.Time) error {
	day := now.Format(dayFormat)
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", w.stem, day, w.ext))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, util.UserWritableFilePerms)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	w.file = file
	w.current = path
	w.day = day
	return nil
}

// rotate closes the finished day file, compresses it in the background
// and opens the new day's file.
func (w *rollingWriter) rotate(now time.Time) error {
	finished := w.current
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
	}

	if err := w.open(now); err != nil {
		return err
	}

	go func() {
		if err := compressLogFile(finished); err != nil {
			fmt.Fprintf(os.Stderr, "log compression failed: %v\n", err)
			return
		}
		w.pruneOldLogs()
	}()
	return nil
}

// compressLogFile gzips path into path.gz and removes the original.
func compressLogFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, util.UserWritableFilePerms)
	if err != nil {
		return err
	}

	gz := pgzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

// pruneOldLogs removes the oldest compressed day files beyond the cap.
func (w *rollingWriter) pruneOldLogs() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}

	prefix := w.stem + "_"
	var rotated []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, w.ext+".gz") {
			rotated = append(rotated, name)
		}
	}
	if len(rotated) <= maxRotatedLogs {
		return
	}

	// Date-stamped names sort chronologically.
	sort.Strings(rotated)
	for _, name := range rotated[:len(rotated)-maxRotatedLogs] {
		os.Remove(filepath.Join(w.dir, name))
	}
}

// Package preflight provides the folder-initialization checks the
// orchestrator consults before accepting a folder pair. The checks are
// deliberately chatty about what went wrong: a pair rejected at startup
// should explain itself without a debugger.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// CheckSourceAccessible validates that the source path exists and is a
// directory.
func CheckSourceAccessible(srcPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source directory %s does not exist", srcPath)
		}
		return fmt.Errorf("cannot stat source directory %s: %w", srcPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path %s is not a directory", srcPath)
	}
	return nil
}

// EnsureTargetWritable ensures the target directory can be created and
// is writable by performing real filesystem modifications: the
// directory is created if missing, and a probe file is written and
// removed.
func EnsureTargetWritable(targetPath string) error {
	if info, err := os.Stat(targetPath); err == nil && !info.IsDir() {
		return fmt.Errorf("target path exists but is not a directory: %s", targetPath)
	}

	if err := os.MkdirAll(targetPath, util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetPath, err)
	}

	probe := filepath.Join(targetPath, util.TempFileName())
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("target directory %s is not writable: %w", targetPath, err)
	}
	f.Close()
	_ = os.Remove(probe)
	return nil
}

package pathcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// executeDelete removes a file from the target tree. The resolved
// absolute path is verified against the target root before any I/O: a
// corrupted or malicious relative path that escapes the root fails with
// ErrOutsideRoot and touches nothing.
func executeDelete(ctx context.Context, cmd *Command, env *Env) Result {
	root := cmd.TargetRoot.FullPath()
	dstPath := filepath.Join(root, filepath.FromSlash(cmd.File.RelPath), cmd.File.Name)

	// filepath.Join cleans ".." segments, so a path that still escapes
	// the root after joining really is outside it.
	if !strings.HasPrefix(dstPath, root+string(filepath.Separator)) {
		return failure(fmt.Sprintf("refusing to delete outside target root: %s", dstPath),
			fmt.Errorf("%w: %s is not under %s", ErrOutsideRoot, dstPath, root))
	}

	if _, err := os.Lstat(dstPath); errors.Is(err, fs.ErrNotExist) {
		return success(fmt.Sprintf("already absent: %s", dstPath), nil)
	}

	if env.dryRun {
		env.log.Info("[DRY RUN] DELETE", "path", cmd.File.Key())
		return success(fmt.Sprintf("dry run, would delete %s", dstPath), nil)
	}

	err := withRetry(ctx, env.log, env.metrics, "delete "+cmd.File.Key(), func() error {
		// A read-only attribute blocks deletion on Windows; clearing it
		// on POSIX restores the owner-write bit.
		if err := clearReadOnly(dstPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			env.log.Debug("could not clear read-only attribute", "path", dstPath, "error", err)
		}
		if err := os.Remove(dstPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
	if err != nil {
		return failure(fmt.Sprintf("delete %s failed", dstPath), err)
	}

	env.metrics.AddFilesDeleted(1)

	if cmd.PruneEmptyDirs {
		pruneEmptyDirs(root, filepath.Dir(dstPath), env)
	}
	return success(fmt.Sprintf("deleted %s", dstPath), nil)
}

// pruneEmptyDirs walks upward from dir toward root, removing each
// directory that is now empty. It stops at the first non-empty
// directory or at the root boundary; the root itself is never removed.
func pruneEmptyDirs(root, dir string, env *Env) {
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			env.log.Debug("directory prune stopped", "path", dir, "error", err)
			return
		}
		env.log.Debug("pruned empty directory", "path", dir)
		env.metrics.AddDirsPruned(1)
		dir = filepath.Dir(dir)
	}
}

package pathcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// executeCopy writes the command's source file into the target tree.
// The write goes through a uniquely named temporary file in the final
// directory followed by an atomic rename, so the destination name never
// observes partial content. The whole write+commit sequence sits inside
// the retry policy; attribute propagation happens once, after a
// successful commit, and only ever degrades to a warning.
func executeCopy(ctx context.Context, cmd *Command, env *Env) Result {
	srcPath := cmd.File.FullPath()
	dstDir := filepath.Join(cmd.TargetRoot.FullPath(), filepath.FromSlash(cmd.File.RelPath))
	dstPath := filepath.Join(dstDir, cmd.File.Name)

	// The source may have disappeared between scan and execution. Fail
	// before any target I/O so no partial file appears.
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failure(fmt.Sprintf("source vanished since scan: %s", srcPath), fmt.Errorf("%w: %s", ErrSourceMissing, srcPath))
		}
		return failure(fmt.Sprintf("cannot stat source: %s", srcPath), err)
	}

	if _, err := os.Lstat(dstPath); err == nil {
		if !cmd.Overwrite {
			env.metrics.AddFilesSkipped(1)
			return success(fmt.Sprintf("skipped, destination exists: %s", dstPath), ErrDestinationExists)
		}
		// Metadata flagged this file as changed; hashes get the final
		// word. Any hashing failure counts as "different" and the
		// overwrite proceeds.
		if identical, err := identicalContent(srcPath, dstPath, env); err == nil && identical {
			env.log.Info("update skipped, content identical despite metadata difference",
				"path", cmd.File.Key(), "source", srcPath)
			env.metrics.AddHashSkips(1)
			return success(fmt.Sprintf("skipped, identical content: %s", dstPath), nil)
		}
	}

	if env.dryRun {
		env.log.Info("[DRY RUN] COPY", "path", cmd.File.Key())
		return success(fmt.Sprintf("dry run, would copy to %s", dstPath), nil)
	}

	err = withRetry(ctx, env.log, env.metrics, "copy "+cmd.File.Key(), func() error {
		return commitCopy(srcPath, dstPath, dstDir, srcInfo, env)
	})
	if err != nil {
		return failure(fmt.Sprintf("copy to %s failed", dstPath), err)
	}

	if cmd.PreserveAttrs {
		if err := preserveAttributes(srcPath, dstPath, srcInfo); err != nil {
			env.log.Warn("failed to propagate file attributes", "path", dstPath, "error", err)
		}
	}

	if cmd.Overwrite {
		env.metrics.AddFilesUpdated(1)
	} else {
		env.metrics.AddFilesCreated(1)
	}
	return success(fmt.Sprintf("copied %s", dstPath), nil)
}

// commitCopy performs one attempt of the write+commit sequence. The
// temporary file is removed on every exit path except a successful
// rename.
func commitCopy(srcPath, dstPath, dstDir string, srcInfo os.FileInfo, env *Env) (err error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source %s: %w", srcPath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(dstDir, util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("create target directory %s: %w", dstDir, err)
	}

	tmpPath := filepath.Join(dstDir, util.TempFileName())
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, util.WithUserWritePermission(srcInfo.Mode().Perm()))
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", dstDir, err)
	}
	defer out.Close() // no-op after the explicit Close below

	// If the rename succeeds, tmpPath is cleared and this becomes a
	// no-op; otherwise the temporary never survives the attempt.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	// Pre-allocate to reduce fragmentation on large files.
	if srcInfo.Size() > 0 {
		_ = out.Truncate(srcInfo.Size())
	}

	bufPtr := env.buffers.Get()
	defer env.buffers.Put(bufPtr)

	written, err := io.CopyBuffer(out, in, *bufPtr)
	if err != nil {
		return fmt.Errorf("copy content to %s: %w", tmpPath, err)
	}

	// Flush to stable storage before the rename makes the file visible
	// under its final name.
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync temporary file %s: %w", tmpPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temporary file %s: %w", tmpPath, err)
	}

	// Carry the source's modification time onto the committed file so
	// the next scan sees the two sides as identical. This must happen
	// before the rename: the destination name never holds a file with a
	// transient timestamp.
	if err := os.Chtimes(tmpPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("set timestamps on %s: %w", tmpPath, err)
	}

	// os.Rename is atomic on POSIX and replaces existing files on
	// Windows via MoveFileEx(MOVEFILE_REPLACE_EXISTING).
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("commit %s: %w", dstPath, err)
	}
	tmpPath = ""

	env.metrics.AddBytesWritten(written)
	return nil
}

//go:build !windows

package pathcmd

import (
	"os"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// clearReadOnly restores the owner-write bit when it is missing, so a
// subsequent os.Remove is not blocked by mode bits we copied earlier.
func clearReadOnly(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&util.PermUserWrite != 0 {
		return nil
	}
	return os.Chmod(path, info.Mode()|util.PermUserWrite)
}

// preserveAttributes propagates permission bits and timestamps from the
// source onto the committed destination. POSIX filesystems expose no
// settable creation time, so only the modification time carries over.
// The owner-write bit stays set regardless of the source mode, which
// keeps later runs from locking themselves out.
func preserveAttributes(srcPath, dstPath string, srcInfo os.FileInfo) error {
	if err := os.Chmod(dstPath, util.WithUserWritePermission(srcInfo.Mode().Perm())); err != nil {
		return err
	}
	return os.Chtimes(dstPath, srcInfo.ModTime(), srcInfo.ModTime())
}

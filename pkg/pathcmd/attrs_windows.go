//go:build windows

package pathcmd

import (
	"os"

	"golang.org/x/sys/windows"
)

// clearReadOnly drops FILE_ATTRIBUTE_READONLY so the following delete or
// replace is not rejected by the attribute.
func clearReadOnly(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return nil
	}
	return windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY)
}

// preserveAttributes propagates last-write time, the attribute bits, and
// the creation time from the source onto the committed destination.
func preserveAttributes(srcPath, dstPath string, srcInfo os.FileInfo) error {
	if err := os.Chtimes(dstPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return err
	}

	srcPtr, err := windows.UTF16PtrFromString(srcPath)
	if err != nil {
		return err
	}
	dstPtr, err := windows.UTF16PtrFromString(dstPath)
	if err != nil {
		return err
	}

	attrs, err := windows.GetFileAttributes(srcPtr)
	if err != nil {
		return err
	}
	if err := windows.SetFileAttributes(dstPtr, attrs); err != nil {
		return err
	}

	return copyCreationTime(srcPtr, dstPtr)
}

// copyCreationTime reads the source's creation Filetime and stamps it
// onto the destination. Both handles are opened with the minimal access
// the operation needs.
func copyCreationTime(srcPtr, dstPtr *uint16) error {
	src, err := windows.CreateFile(srcPtr, windows.GENERIC_READ,
		windows.FILE_SHARE_READ, nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(src)

	var ctime, atime, wtime windows.Filetime
	if err := windows.GetFileTime(src, &ctime, &atime, &wtime); err != nil {
		return err
	}

	dst, err := windows.CreateFile(dstPtr, windows.FILE_WRITE_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(dst)

	return windows.SetFileTime(dst, &ctime, nil, nil)
}

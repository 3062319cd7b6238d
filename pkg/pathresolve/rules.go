package pathresolve

import "runtime"

// Rules describes the path convention the resolver enforces. The rules
// are a value rather than build-tagged code so that the Windows behavior
// (drive letters, backslash separators) stays testable on any host.
type Rules struct {
	// Separator is the canonical separator normalized paths use.
	Separator byte
	// DriveLetters enables drive-root handling ("C:\") and the colon
	// placement checks that come with it.
	DriveLetters bool
	// IllegalChars are bytes that may never appear anywhere in a path.
	IllegalChars string
}

// WindowsRules returns the NTFS-style convention: backslash separators,
// drive letters, and the usual set of reserved characters. The colon is
// handled separately because it is legal in exactly one position.
func WindowsRules() Rules {
	return Rules{
		Separator:    '\\',
		DriveLetters: true,
		IllegalChars: `<>"|?*`,
	}
}

// UnixRules returns the POSIX convention, where only NUL is reserved.
func UnixRules() Rules {
	return Rules{
		Separator:    '/',
		DriveLetters: false,
		IllegalChars: "\x00",
	}
}

// HostRules picks the convention of the running platform.
func HostRules() Rules {
	if runtime.GOOS == "windows" {
		return WindowsRules()
	}
	return UnixRules()
}

// isSeparator reports whether c acts as a separator under these rules.
// Forward slashes are always accepted on input and normalized away.
func (r Rules) isSeparator(c byte) bool {
	return c == '/' || c == r.Separator
}

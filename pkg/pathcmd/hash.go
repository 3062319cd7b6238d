package pathcmd

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// fileMD5 computes the lowercase hex MD5 digest of the file at path.
// MD5 is a tie-breaker between two locally readable files, not an
// integrity or security boundary.
func fileMD5(path string, env *Env) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	bufPtr := env.buffers.Get()
	defer env.buffers.Put(bufPtr)
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// identicalContent hashes both sides of a planned overwrite. A true
// result cancels the update as a metadata false positive. The first
// hashing failure aborts the comparison; the caller treats that as
// "different" and proceeds conservatively.
func identicalContent(srcPath, dstPath string, env *Env) (bool, error) {
	srcHash, err := fileMD5(srcPath, env)
	if err != nil {
		return false, err
	}
	dstHash, err := fileMD5(dstPath, env)
	if err != nil {
		return false, err
	}
	return srcHash == dstHash, nil
}

package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Digest identifies file content.
type Digest struct {
	SHA256 string
	Size   int64
}

// WriteStream writes r to path through a temporary sibling, renaming it into
// place only after every byte is on disk. The digest covers the bytes
// written.
func WriteStream(path string, r io.Reader, mode os.FileMode) (Digest, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return Digest{}, err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		cleanup()
		return Digest{}, err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return Digest{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return Digest{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return Digest{}, err
	}
	return Digest{SHA256: hex.EncodeToString(hasher.Sum(nil)), Size: written}, nil
}

// CopyFile streams src to dst and checks that the copy has the source size.
func CopyFile(src, dst string) (Digest, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Digest{}, fmt.Errorf("stat source: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return Digest{}, err
	}
	defer in.Close()

	digest, err := WriteStream(dst, in, 0o644)
	if err != nil {
		return Digest{}, err
	}
	if digest.Size != info.Size() {
		_ = os.Remove(dst)
		return Digest{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), digest.Size)
	}
	return digest, nil
}

// HashFile returns the digest of the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	hasher := sha256.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return Digest{}, err
	}
	return Digest{SHA256: hex.EncodeToString(hasher.Sum(nil)), Size: n}, nil
}

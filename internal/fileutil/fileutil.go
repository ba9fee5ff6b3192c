// Package fileutil copies and replaces files with integrity checks.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/backmassage/hevcshrink/internal/naming"
)

// rename is os.Rename; tests swap it to simulate cross-device moves.
var rename = os.Rename

// CopyFileVerified streams src to dst with SHA256 + size integrity
// verification, creating dst with mode. Removes dst on mismatch.
func CopyFileVerified(src, dst string, mode os.FileMode) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// ReplaceFile moves src over dst, keeping dst's permission bits. Within one
// filesystem this is a single rename. Across filesystems src is copied with
// verification to a hidden sibling of dst, renamed over dst, and then src is
// removed; dst is never left partially written.
func ReplaceFile(src, dst string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(dst); err == nil {
		mode = info.Mode().Perm()
	}
	// Best effort: ffmpeg creates the output with the process umask.
	_ = os.Chmod(src, mode)

	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}

	staged := naming.SiblingTempPath(dst)
	if err := CopyFileVerified(src, staged, mode); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("stage copy of %s: %w", dst, err)
	}
	if err := rename(staged, dst); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove scratch %s: %w", src, err)
	}
	return nil
}

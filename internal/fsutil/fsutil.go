// Package fsutil writes files so readers never observe a partial write.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// WriteFile copies r into a temp file next to dst and moves it into place
// with RenameOrCopy. Missing parent directories are created.
func WriteFile(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".amcsetup_tmp_")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := tmpFile.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := io.Copy(tmpFile, r); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmp, 0o644); err != nil {
			return fmt.Errorf("set mode: %w", err)
		}
	}
	return RenameOrCopy(tmp, dst)
}

// RenameOrCopy moves tmp over dst, falling back to an in-place copy when the
// rename is refused (Windows refuses while another process holds dst open).
func RenameOrCopy(tmp, dst string) error {
	renameErr := os.Rename(tmp, dst)
	if renameErr == nil {
		return nil
	}
	in, err := os.Open(tmp)
	if err != nil {
		return fmt.Errorf("rename: %v; fallback open tmp failed: %w", renameErr, err)
	}
	defer func() { _ = in.Close() }()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("rename: %v; fallback open dst failed: %w", renameErr, err)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	_ = in.Close()
	for i := 0; i < 5; i++ {
		if rerr := os.Remove(tmp); rerr == nil || os.IsNotExist(rerr) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if copyErr != nil {
		return fmt.Errorf("rename: %v; fallback copy failed: %w", renameErr, copyErr)
	}
	return closeErr
}

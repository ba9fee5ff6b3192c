package check

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/backmassage/hevcshrink/internal/config"
)

// ScratchSpace returns the bytes available to unprivileged users on the
// filesystem holding dir.
func ScratchSpace(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}

// CheckScratchDir reports whether dir exists and the process may create
// files in it.
func CheckScratchDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return nil
}

func scratchDir(cfg *config.Config) string {
	if cfg.ScratchDir != "" {
		return cfg.ScratchDir
	}
	return os.TempDir()
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

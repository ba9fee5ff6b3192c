package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// videoExtensions is the allow-list of file extensions considered for
// compression. Matching is case-sensitive.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mpeg": true,
	".mpg":  true,
	".mov":  true,
}

// IsVideoPath reports whether path has an allow-listed extension.
func IsVideoPath(path string) bool {
	return videoExtensions[filepath.Ext(path)]
}

// Discover returns the regular files under root whose extension is in the
// allow-list, sorted lexicographically. If root is itself a regular file it
// is returned alone, whatever its extension.
//
// The tree is walked with an explicit stack so depth is bounded by memory,
// not the goroutine stack. Symlinks (to files or directories) are not
// followed, so every path appears at most once.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%s is neither a directory nor a regular file", root)
		}
		return []string{root}, nil
	}

	var files []string
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			switch mode := e.Type(); {
			case mode.IsDir():
				stack = append(stack, path)
			case mode&fs.ModeType == 0 && IsVideoPath(path):
				files = append(files, path)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

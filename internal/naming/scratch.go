package naming

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ScratchNameLen is the length of the random scratch file stem.
	ScratchNameLen = 12
	// ScratchExt is the container extension of every encode output.
	ScratchExt = ".mp4"

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomName returns n distinct characters drawn from [a-zA-Z0-9].
// n is capped at the alphabet size.
func RandomName(n int) string {
	n = min(n, len(alphabet))
	var b strings.Builder
	b.Grow(n)
	for _, i := range rand.Perm(len(alphabet))[:n] {
		b.WriteByte(alphabet[i])
	}
	return b.String()
}

// ScratchPath returns <dir>/<12 random alphanumerics>.mp4. An empty dir
// means the system temp directory. The path is generated once per run and
// reused for every file.
func ScratchPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, RandomName(ScratchNameLen)+ScratchExt)
}

// SiblingTempPath returns a hidden path in target's directory, used to stage
// a copy before renaming it over target.
//
//	/media/clip.avi -> /media/.clip.avi.<6 random>.hevcshrink.tmp
func SiblingTempPath(target string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, "."+base+"."+RandomName(6)+".hevcshrink.tmp")
}

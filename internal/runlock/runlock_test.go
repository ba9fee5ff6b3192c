package runlock

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathFor(t *testing.T) {
	dir := t.TempDir()
	a, err := PathFor(dir, "/media/videos")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := PathFor(dir, "/media/videos/")
	c, _ := PathFor(dir, "/media/other")
	if a != b {
		t.Errorf("trailing slash changed the lock path: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different roots share a lock path")
	}
	base := filepath.Base(a)
	if !strings.HasPrefix(base, "hevcshrink-") || !strings.HasSuffix(base, ".lock") || len(base) != len("hevcshrink-")+12+len(".lock") {
		t.Errorf("lock name = %q", base)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("lock dir = %q", filepath.Dir(a))
	}
}

func TestAcquire_Exclusive(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()

	first, err := Acquire(dir, root)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := Acquire(dir, root); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire err = %v, want ErrLocked", err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}

	again, err := Acquire(dir, root)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = again.Release()
}

func TestAcquire_DifferentRoots(t *testing.T) {
	dir := t.TempDir()
	a, err := Acquire(dir, filepath.Join(t.TempDir(), "a"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()
	b, err := Acquire(dir, filepath.Join(t.TempDir(), "b"))
	if err != nil {
		t.Fatalf("independent roots should not conflict: %v", err)
	}
	defer b.Release()
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release: %v", err)
	}
}

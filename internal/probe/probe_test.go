package probe

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// writeStub writes an executable shell script to dir and returns its path.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleReport = `[STREAM]
index=0
codec_name=h264
codec_long_name=H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10
codec_type=video
duration=120.000000
TAG:encoder=Lavc60.3.100 libx264
[/STREAM]
[FORMAT]
filename=clip.mp4
duration=120.040000
size=104857600
[/FORMAT]
`

func TestArgs(t *testing.T) {
	got := Args("/media/clip.mp4")
	want := []string{"-hide_banner", "-loglevel", "panic", "-show_streams", "-show_format", "/media/clip.mp4"}
	if !slices.Equal(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}
}

func TestProbe_ReturnsStdout(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(report, []byte(sampleReport), 0o644); err != nil {
		t.Fatal(err)
	}
	bin := writeStub(t, dir, "ffprobe", `cat "`+report+`"`+"\n")

	out, err := New(bin).Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if out != sampleReport {
		t.Errorf("Probe output = %q", out)
	}
}

func TestProbe_PassesPathLast(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "ffprobe", `for a; do last=$a; done; echo "path=$last"`+"\n")

	out, err := New(bin).Probe(context.Background(), "/media/with space.mov")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if strings.TrimSpace(out) != "path=/media/with space.mov" {
		t.Errorf("Probe output = %q", out)
	}
}

func TestProbe_NonzeroExit(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "ffprobe", "echo 'Invalid data found' >&2\nexit 1\n")

	_, err := New(bin).Probe(context.Background(), "broken.mp4")
	if err == nil {
		t.Fatal("expected error on nonzero exit")
	}
	if !strings.Contains(err.Error(), "exit 1") || !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("error = %v", err)
	}
}

func TestProbe_MissingBinary(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "no-ffprobe")).Probe(context.Background(), "x.mp4")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestProber_DefaultBin(t *testing.T) {
	var p *Prober
	if p.bin() != "ffprobe" {
		t.Errorf("nil Prober bin = %q", p.bin())
	}
	if New("  ").bin() != "ffprobe" {
		t.Error("blank Bin should fall back to ffprobe")
	}
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/backmassage/hevcshrink/internal/check"
	"github.com/backmassage/hevcshrink/internal/config"
	"github.com/backmassage/hevcshrink/internal/ffmpeg"
	"github.com/backmassage/hevcshrink/internal/logging"
	"github.com/backmassage/hevcshrink/internal/planner"
)

const mib = 1024 * 1024

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	touch(t, dir, "show.mp4")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "anime.avi")
	touch(t, dir, "clip.mov")
	touch(t, dir, "old.mpg")
	touch(t, dir, "older.mpeg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"anime.avi", "clip.mov", "old.mpg", "older.mpeg", "show.mp4"}
	if got := basenames(files); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_CaseSensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MP4")
	touch(t, dir, "Show.Mov")
	touch(t, dir, "keep.mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := basenames(files); !slices.Equal(got, []string{"keep.mp4"}) {
		t.Errorf("got %v, want only keep.mp4", got)
	}
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "Trips", "2019")
	mkdir(t, dir, "Trips", "2020")
	touch(t, filepath.Join(dir, "Trips", "2020"), "b.mp4")
	touch(t, filepath.Join(dir, "Trips", "2019"), "c.mp4")
	touch(t, filepath.Join(dir, "Trips", "2019"), "a.mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	if !slices.IsSorted(files) {
		t.Errorf("not sorted: %v", files)
	}
	if !strings.HasSuffix(files[0], filepath.Join("2019", "a.mp4")) {
		t.Errorf("first file = %q", files[0])
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_FileRoot(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "single.mov")

	files, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !slices.Equal(files, []string{path}) {
		t.Errorf("got %v, want [%s]", files, path)
	}
}

func TestDiscover_FileRootIgnoresExtension(t *testing.T) {
	path := touch(t, t.TempDir(), "capture.MKV")
	files, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !slices.Equal(files, []string{path}) {
		t.Errorf("got %v, want [%s]", files, path)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	target := touch(t, other, "real.mp4")
	touch(t, other, "also.mp4")
	if err := os.Symlink(target, filepath.Join(dir, "link.mp4")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(other, filepath.Join(dir, "linkdir")); err != nil {
		t.Fatal(err)
	}
	// A loop must not hang discovery.
	if err := os.Symlink(dir, filepath.Join(dir, "loop")); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "own.mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := basenames(files); !slices.Equal(got, []string{"own.mp4"}) {
		t.Errorf("got %v, want only own.mp4", got)
	}
}

// --- RunStats tests ---

func TestRunStats_SpaceSaved(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

func TestRunStats_Record(t *testing.T) {
	var s RunStats
	s.record(FileResult{Status: StatusCompressed, InSize: 100, OutSize: 60})
	s.record(FileResult{Status: StatusCompressed, InSize: 50, OutSize: 40})
	s.record(FileResult{Status: StatusRejected, InSize: 70, OutSize: 69})
	s.record(FileResult{Status: StatusSkipped})
	s.record(FileResult{Status: StatusFailed})

	if s.Compressed != 2 || s.Rejected != 1 || s.Skipped != 1 || s.Failed != 1 {
		t.Errorf("counters = %+v", s)
	}
	if s.TotalInputBytes != 150 || s.TotalOutputBytes != 100 {
		t.Errorf("totals = %d/%d, rejected files must not count", s.TotalInputBytes, s.TotalOutputBytes)
	}
	if len(s.Results) != 5 {
		t.Errorf("Results = %d, want 5", len(s.Results))
	}
}

// --- Runner tests with fakes ---

type fakeProber struct {
	meta map[string]string
	err  error
}

func (p *fakeProber) Probe(_ context.Context, path string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.meta[filepath.Base(path)], nil
}

// fakeEncoder writes an output of outSize bytes, or fails with err.
type fakeEncoder struct {
	outSize int64
	err     error
	calls   []string
	locked  string
}

func (e *fakeEncoder) Encode(_ context.Context, in, out string, _ float64) (ffmpeg.Result, error) {
	e.calls = append(e.calls, filepath.Base(in))
	if e.err != nil {
		return ffmpeg.Result{Attempts: []ffmpeg.Attempt{{Codec: "libx265", Err: e.err, Stderr: "boom\n"}}}, e.err
	}
	f, err := os.Create(out)
	if err != nil {
		return ffmpeg.Result{}, err
	}
	defer f.Close()
	if err := f.Truncate(e.outSize); err != nil {
		return ffmpeg.Result{}, err
	}
	e.locked = "libx265"
	return ffmpeg.Result{Codec: "libx265", Attempts: []ffmpeg.Attempt{{Codec: "libx265"}}}, nil
}

func (e *fakeEncoder) Locked() string { return e.locked }

func newTestRunner(t *testing.T, root string, p Prober, e Encoder) (*Runner, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig(t, root)
	log := testLogger(t, cfg)
	var out bytes.Buffer
	log.SetOutput(&out, &out)
	return &Runner{
		Cfg:     cfg,
		Log:     log,
		Prober:  p,
		Encoder: e,
		Policy:  planner.PolicyFromConfig(cfg),
		Scratch: filepath.Join(t.TempDir(), "scratch000000.mp4"),
		Out:     &out,
	}, &out
}

const tenSeconds = "[FORMAT]\nduration=10.000000\n[/FORMAT]\n"

func TestRunner_AcceptsSmallerOutput(t *testing.T) {
	dir := t.TempDir()
	path := sized(t, dir, "clip.mp4", 10*mib)
	enc := &fakeEncoder{outSize: 8 * mib}
	r, out := newTestRunner(t, dir, &fakeProber{meta: map[string]string{"clip.mp4": tenSeconds}}, enc)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Compressed != 1 || stats.Candidates != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := fileSize(t, path); got != 8*mib {
		t.Errorf("original size = %d, want %d", got, 8*mib)
	}
	if stats.SpaceSaved() != 2*mib {
		t.Errorf("SpaceSaved = %d", stats.SpaceSaved())
	}
	assertGone(t, r.Scratch)
	if !strings.Contains(out.String(), "Using libx265") {
		t.Errorf("locked codec not announced:\n%s", out.String())
	}
}

func TestRunner_RejectsWeakCompression(t *testing.T) {
	dir := t.TempDir()
	path := sized(t, dir, "clip.mp4", 10*mib)
	enc := &fakeEncoder{outSize: 9*mib + 512*1024}
	r, _ := newTestRunner(t, dir, &fakeProber{meta: map[string]string{"clip.mp4": tenSeconds}}, enc)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rejected != 1 || stats.Compressed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := fileSize(t, path); got != 10*mib {
		t.Errorf("original modified: size = %d", got)
	}
	assertGone(t, r.Scratch)
}

func TestRunner_SkipsAlreadyCompressed(t *testing.T) {
	dir := t.TempDir()
	sized(t, dir, "hevc.mp4", 10*mib)
	sized(t, dir, "tiny.mp4", 1*mib)
	meta := map[string]string{
		"hevc.mp4": "[STREAM]\ncodec_name=hevc\n[/STREAM]\n" + tenSeconds,
		"tiny.mp4": "[FORMAT]\nduration=100\n[/FORMAT]\n",
	}
	enc := &fakeEncoder{outSize: 1}
	r, out := newTestRunner(t, dir, &fakeProber{meta: meta}, enc)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 2 || len(enc.calls) != 0 {
		t.Errorf("stats = %+v, encoder calls = %v", stats, enc.calls)
	}
	if !strings.Contains(out.String(), "No files to compress") {
		t.Errorf("missing no-candidates message:\n%s", out.String())
	}
}

func TestRunner_ProbeFailureIsCandidate(t *testing.T) {
	dir := t.TempDir()
	sized(t, dir, "odd.avi", 10*mib)
	enc := &fakeEncoder{outSize: 5 * mib}
	r, out := newTestRunner(t, dir, &fakeProber{err: errors.New("exit status 1")}, enc)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Compressed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(out.String(), "Cannot probe") {
		t.Errorf("missing probe warning:\n%s", out.String())
	}
}

func TestRunner_SkipUnprobeable(t *testing.T) {
	dir := t.TempDir()
	sized(t, dir, "odd.avi", 10*mib)
	enc := &fakeEncoder{outSize: 5 * mib}
	r, _ := newTestRunner(t, dir, &fakeProber{err: errors.New("exit status 1")}, enc)
	r.Policy.SkipUnprobeable = true

	stats, _ := r.Run(context.Background())
	if stats.Skipped != 1 || len(enc.calls) != 0 {
		t.Errorf("stats = %+v, calls = %v", stats, enc.calls)
	}
}

func TestRunner_EncodeFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := sized(t, dir, "a.mp4", 10*mib)
	sized(t, dir, "b.mp4", 10*mib)
	enc := &fakeEncoder{err: ffmpeg.ErrAllCodecsFailed}
	r, out := newTestRunner(t, dir, &fakeProber{meta: map[string]string{"a.mp4": tenSeconds, "b.mp4": tenSeconds}}, enc)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(enc.calls) != 2 {
		t.Errorf("every file should be attempted, calls = %v", enc.calls)
	}
	if got := fileSize(t, path); got != 10*mib {
		t.Errorf("original modified: size = %d", got)
	}
	if !strings.Contains(out.String(), "boom") {
		t.Errorf("ffmpeg stderr tail not logged:\n%s", out.String())
	}
}

func TestRunner_NotEnoughScratchSpace(t *testing.T) {
	dir := t.TempDir()
	sized(t, dir, "big.mp4", 10*mib)
	enc := &fakeEncoder{outSize: 1}
	r, _ := newTestRunner(t, dir, &fakeProber{meta: map[string]string{"big.mp4": tenSeconds}}, enc)
	r.FreeSpace = func(string) (uint64, error) { return mib, nil }

	stats, _ := r.Run(context.Background())
	if stats.Failed != 1 || len(enc.calls) != 0 {
		t.Errorf("stats = %+v, calls = %v", stats, enc.calls)
	}
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	path := sized(t, dir, "a.mp4", 10*mib)
	enc := &fakeEncoder{outSize: 1}
	r, _ := newTestRunner(t, dir, &fakeProber{meta: map[string]string{"a.mp4": tenSeconds}}, enc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Interrupted || len(enc.calls) != 0 {
		t.Errorf("stats = %+v, calls = %v", stats, enc.calls)
	}
	if got := fileSize(t, path); got != 10*mib {
		t.Errorf("original modified: size = %d", got)
	}
}

func TestRunner_EmptyTree(t *testing.T) {
	r, out := newTestRunner(t, t.TempDir(), &fakeProber{}, &fakeEncoder{})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d", stats.Total)
	}
	if !strings.Contains(out.String(), "No files to compress") {
		t.Errorf("missing no-files message:\n%s", out.String())
	}
}

// --- End-to-end with stub ffprobe/ffmpeg ---

// stubTools writes shell stand-ins for ffprobe and ffmpeg into a temp dir.
// The ffmpeg stub writes outSize bytes to its last argument and records the
// encoder of every call; encoders listed in failing exit 1.
func stubTools(t *testing.T, outSize int64, failing ...string) (ffprobe, ffmpegBin, calls string) {
	t.Helper()
	dir := t.TempDir()
	calls = filepath.Join(dir, "calls")
	ffprobe = writeStub(t, dir, "ffprobe", "printf '[FORMAT]\\nduration=10.000000\\n[/FORMAT]\\n'\n")

	var fail strings.Builder
	for _, name := range failing {
		fmt.Fprintf(&fail, "  *%s*) echo 'Conversion failed!' >&2; exit 1 ;;\n", name)
	}
	ffmpegBin = writeStub(t, dir, "ffmpeg", fmt.Sprintf(`codec=""
prev=""
for a; do
  [ "$prev" = "-c:v" ] && codec="$a"
  prev="$a"
  last="$a"
done
echo "$codec" >> %q
case "$codec" in
%s  *) ;;
esac
truncate -s %d "$last"
`, calls, fail.String(), outSize))
	return ffprobe, ffmpegBin, calls
}

func stubConfig(t *testing.T, root, ffprobe, ffmpegBin string, encoders ...string) *config.Config {
	t.Helper()
	cfg := testConfig(t, root)
	cfg.FFprobeBin = ffprobe
	cfg.FFmpegBin = ffmpegBin
	cfg.Encoders = encoders
	return cfg
}

func TestRun_StubTools_Accepted(t *testing.T) {
	root := t.TempDir()
	path := sized(t, root, "holiday.mp4", 100*mib)
	ffprobe, ffmpegBin, _ := stubTools(t, 80*mib)
	cfg := stubConfig(t, root, ffprobe, ffmpegBin, "libx265")
	log := testLogger(t, cfg)
	log.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	stats, err := Run(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Compressed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := fileSize(t, path); got != 80*mib {
		t.Errorf("size after run = %d, want %d", got, 80*mib)
	}
	assertEmptyDir(t, cfg.ScratchDir)
}

func TestRun_StubTools_Rejected(t *testing.T) {
	root := t.TempDir()
	path := sized(t, root, "holiday.mp4", 100*mib)
	ffprobe, ffmpegBin, _ := stubTools(t, 95*mib)
	cfg := stubConfig(t, root, ffprobe, ffmpegBin, "libx265")
	log := testLogger(t, cfg)
	log.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	stats, err := Run(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rejected != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := fileSize(t, path); got != 100*mib {
		t.Errorf("original modified: size = %d", got)
	}
	assertEmptyDir(t, cfg.ScratchDir)
}

func TestRun_StubTools_StickyCodec(t *testing.T) {
	root := t.TempDir()
	sized(t, root, "a.mp4", 100*mib)
	sized(t, root, "b.mp4", 100*mib)
	ffprobe, ffmpegBin, calls := stubTools(t, 50*mib, "hevc_nvenc")
	cfg := stubConfig(t, root, ffprobe, ffmpegBin, "hevc_nvenc", "libx265")
	log := testLogger(t, cfg)
	log.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	stats, err := Run(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Compressed != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	data, err := os.ReadFile(calls)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Fields(string(data))
	want := []string{"hevc_nvenc", "libx265", "libx265"}
	if !slices.Equal(got, want) {
		t.Errorf("ffmpeg calls = %v, want %v", got, want)
	}
}

// --- Real ffmpeg integration test ---

func TestRun_RealFFmpeg(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}
	encoders, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil || !check.ListedEncoders(string(encoders))["libx265"] {
		t.Skip("ffmpeg built without libx265")
	}

	root := t.TempDir()
	path := filepath.Join(root, "sample.avi")
	gen := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=640x360:rate=24",
		"-c:v", "mpeg4", "-q:v", "1", "-y", path)
	gen.Stderr = os.Stderr
	if err := gen.Run(); err != nil {
		t.Fatalf("generate sample: %v", err)
	}

	cfg := testConfig(t, root)
	cfg.Encoders = []string{"libx265"}
	cfg.DensityMiBPerSec = 0.0001
	cfg.MinSavingsMiB = 0
	log := testLogger(t, cfg)
	log.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	stats, err := Run(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("Compressed=%d Rejected=%d Failed=%d", stats.Compressed, stats.Rejected, stats.Failed)
	if stats.Failed != 0 || stats.Compressed+stats.Rejected != 1 {
		t.Errorf("stats = %+v", stats)
	}
	assertEmptyDir(t, cfg.ScratchDir)
}

// --- Scan tests ---

func TestScan_ReportsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	sized(t, dir, "big.mp4", 10*mib)
	sized(t, dir, "hevc.mov", 10*mib)
	sized(t, dir, "odd.avi", 10*mib)
	meta := map[string]string{
		"big.mp4":  tenSeconds,
		"hevc.mov": "[STREAM]\nTAG:encoder=Lavf x265\n[/STREAM]\n" + tenSeconds,
	}
	prober := &fakeProber{meta: meta}
	cfg := testConfig(t, dir)
	log := testLogger(t, cfg)
	var logs, out bytes.Buffer
	log.SetOutput(&logs, &logs)

	report, err := scan(context.Background(), cfg, log, prober, &out)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(report.Rows))
	}
	// odd.avi has no metadata: no duration, so it stays a candidate.
	if report.Candidates != 2 || report.CandidateBytes != 20*mib {
		t.Errorf("report = %+v", report)
	}
	for _, name := range []string{"big.mp4", "hevc.mov", "odd.avi", "skip: HEVC stream"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("table missing %q:\n%s", name, out.String())
		}
	}
	for _, name := range []string{"big.mp4", "hevc.mov", "odd.avi"} {
		if got := fileSize(t, filepath.Join(dir, name)); got != 10*mib {
			t.Errorf("%s modified", name)
		}
	}
}

func TestComputeStats_FlagsOutliers(t *testing.T) {
	b := computeStats([]float64{1, 1.1, 1.2, 1.3, 1.1, 1.2})
	if !b.valid {
		t.Fatal("expected valid bounds")
	}
	if got := b.classify(1.15); got != "" {
		t.Errorf("classify(1.15) = %q, want normal", got)
	}
	if got := b.classify(50); got != "extreme" {
		t.Errorf("classify(50) = %q, want extreme", got)
	}
	if small := computeStats([]float64{1, 2, 3}); small.valid {
		t.Error("fewer than four values should not produce bounds")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p, want float64
	}{
		{0, 1},
		{50, 2.5},
		{100, 4},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

// --- Helpers ---

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RootPath = root
	cfg.ScratchDir = t.TempDir()
	cfg.ColorMode = config.ColorNever
	return &cfg
}

func testLogger(t *testing.T, cfg *config.Config) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}

// sized creates a sparse file of the given size.
func sized(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	path := touch(t, dir, name)
	if err := os.Truncate(path, size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
	return path
}

func mkdir(t *testing.T, parts ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(parts...), 0o755); err != nil {
		t.Fatal(err)
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return fi.Size()
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("%s should not exist (err=%v)", path, err)
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%s should be empty, has %d entries", dir, len(entries))
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

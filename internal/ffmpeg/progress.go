package ffmpeg

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress consumes ffmpeg's -progress key=value stream.
type Progress interface {
	io.Writer
	Finish()
}

// ParseOutTime extracts the encoded position from one -progress line.
// ffmpeg reports out_time_us and (historically misnamed) out_time_ms, both
// in microseconds. It returns false for other keys and for "N/A".
func ParseOutTime(line string) (time.Duration, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok || (key != "out_time_us" && key != "out_time_ms") {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

// lineProgress splits the -progress stream into lines and reports each
// parsed position to update.
type lineProgress struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	update func(time.Duration)
	done   func()
}

func (p *lineProgress) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.Write(b)
	for {
		line, err := p.buf.ReadString('\n')
		if err != nil {
			// Incomplete line: keep it for the next write.
			p.buf.Reset()
			p.buf.WriteString(line)
			break
		}
		if pos, ok := ParseOutTime(line); ok {
			p.update(pos)
		}
	}
	return len(b), nil
}

func (p *lineProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		p.done()
		p.done = nil
	}
}

// NewProgressFunc returns a Progress that calls update with each encoded
// position. Finish is a no-op.
func NewProgressFunc(update func(time.Duration)) Progress {
	return &lineProgress{update: update}
}

// NewProgressBar returns a Progress that drives a terminal progress bar on w.
// The bar counts milliseconds of encoded media against duration (seconds);
// an unknown duration shows a spinner instead.
func NewProgressBar(w io.Writer, label string, duration float64) Progress {
	total := int64(-1)
	if duration > 0 {
		total = int64(duration * 1000)
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	return &lineProgress{
		update: func(pos time.Duration) {
			ms := pos.Milliseconds()
			if total > 0 && ms > total {
				ms = total
			}
			_ = bar.Set64(ms)
		},
		done: func() {
			_ = bar.Finish()
		},
	}
}

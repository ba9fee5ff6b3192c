package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Attempt records one ffmpeg invocation with one ladder option.
type Attempt struct {
	Codec       string
	Err         error // Nil on success.
	Stderr      string
	Unavailable bool // Stderr showed the encoder cannot run here.
	Elapsed     time.Duration
}

// Result describes the outcome of [Session.Encode].
type Result struct {
	Codec    string // Option that produced the output; empty on failure.
	Attempts []Attempt
}

// Session selects the encoder for a run. The first option that succeeds is
// locked in and used alone for every later file. It is not safe for
// concurrent use.
type Session struct {
	Bin    string
	Ladder []Option

	// Exec runs ffmpeg; nil uses [Execute].
	Exec ExecFunc
	// Tee receives a live copy of ffmpeg stderr when set.
	Tee io.Writer
	// Progress, when set, is called once per attempt and receives ffmpeg's
	// -progress stream.
	Progress func(codec string, duration float64) Progress

	locked      *Option
	unavailable map[string]bool
}

// NewSession returns a Session over ladder using the ffmpeg binary bin.
func NewSession(bin string, ladder []Option) *Session {
	return &Session{Bin: bin, Ladder: ladder}
}

// Locked returns the locked-in option name, or "" if none succeeded yet.
func (s *Session) Locked() string {
	if s.locked == nil {
		return ""
	}
	return s.locked.Name
}

// Unavailable reports whether the named option was dropped from the ladder.
func (s *Session) Unavailable(name string) bool {
	return s.unavailable[name]
}

// Encode encodes in to out. Without a lock it walks the ladder and locks in
// the first option that succeeds; with a lock it uses only that option and
// returns [ErrLockedCodecFailed] when it fails. When every option fails it
// returns [ErrAllCodecsFailed]. out is removed after every failed attempt.
// duration (seconds, 0 if unknown) only feeds progress reporting.
func (s *Session) Encode(ctx context.Context, in, out string, duration float64) (Result, error) {
	var res Result

	if s.locked != nil {
		att := s.attempt(ctx, *s.locked, in, out, duration)
		res.Attempts = append(res.Attempts, att)
		if att.Err == nil {
			res.Codec = s.locked.Name
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		return res, fmt.Errorf("%w: %s: %w", ErrLockedCodecFailed, s.locked.Name, att.Err)
	}

	for _, opt := range s.Ladder {
		if s.unavailable[opt.Name] {
			continue
		}
		att := s.attempt(ctx, opt, in, out, duration)
		res.Attempts = append(res.Attempts, att)
		if att.Err == nil {
			locked := opt
			s.locked = &locked
			res.Codec = opt.Name
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if att.Unavailable {
			s.markUnavailable(opt.Name)
		}
	}

	if len(res.Attempts) == 0 {
		return res, fmt.Errorf("%w: no encoder left to try", ErrAllCodecsFailed)
	}
	return res, fmt.Errorf("%w (%d tried)", ErrAllCodecsFailed, len(res.Attempts))
}

func (s *Session) attempt(ctx context.Context, opt Option, in, out string, duration float64) Attempt {
	var prog Progress
	if s.Progress != nil {
		prog = s.Progress(opt.Name, duration)
	}

	run := s.Exec
	if run == nil {
		run = Execute
	}
	opts := ExecOptions{Tee: s.Tee}
	if prog != nil {
		opts.Stdout = prog
	}

	start := time.Now()
	r := run(ctx, s.Bin, Build(opt, in, out, prog != nil), opts)
	if prog != nil {
		prog.Finish()
	}

	att := Attempt{
		Codec:   opt.Name,
		Err:     r.Err,
		Stderr:  r.Stderr,
		Elapsed: time.Since(start),
	}
	if att.Err == nil {
		if _, err := os.Stat(out); err != nil {
			att.Err = fmt.Errorf("ffmpeg reported success but output is missing: %w", err)
		}
	}
	if att.Err != nil {
		att.Unavailable = MatchEncoderUnavailable(r.Stderr)
		_ = RemoveScratch(out)
	}
	return att
}

func (s *Session) markUnavailable(name string) {
	if s.unavailable == nil {
		s.unavailable = make(map[string]bool)
	}
	s.unavailable[name] = true
}

// RemoveScratch deletes path, ignoring a file that is already gone.
func RemoveScratch(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

package pipeline

import "time"

// Status is the final state of one discovered file.
type Status string

const (
	StatusCompressed Status = "compressed"
	StatusRejected   Status = "kept original"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// FileResult is the per-file outcome kept for the summary table.
type FileResult struct {
	Path    string
	Status  Status
	InSize  int64
	OutSize int64 // Zero unless an encode produced output.
	Codec   string
	Elapsed time.Duration
	Note    string // Skip reason, rejection reason, or error.
}

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int // Files discovered.
	Current          int // Files visited so far.
	Candidates       int // Files not classified as already compressed.
	Compressed       int
	Skipped          int
	Rejected         int
	Failed           int
	TotalInputBytes  int64 // Sum of original sizes of compressed files.
	TotalOutputBytes int64 // Sum of new sizes of compressed files.
	Interrupted      bool
	Results          []FileResult
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

func (s *RunStats) record(r FileResult) {
	switch r.Status {
	case StatusCompressed:
		s.Compressed++
		s.TotalInputBytes += r.InSize
		s.TotalOutputBytes += r.OutSize
	case StatusRejected:
		s.Rejected++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

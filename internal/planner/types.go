package planner

import "github.com/backmassage/hevcshrink/internal/config"

// Reason names why a file was classified the way it was.
type Reason string

const (
	ReasonCandidate   Reason = ""            // No heuristic fired.
	ReasonEncoderTag  Reason = "encoder-tag" // HEVC/x265 marker in probe text.
	ReasonLowDensity  Reason = "low-density" // Bytes per second below threshold.
	ReasonUnprobeable Reason = "unprobeable" // Probe failed and policy says skip.
)

// Policy carries the thresholds used by Classify and Judge.
type Policy struct {
	DensityThreshold float64 // Bytes per second; below this counts as compressed.
	MaxRatio         float64 // Output/input at or above this is rejected.
	MinSavings       int64   // Savings in bytes below this are rejected.
	SkipUnprobeable  bool
}

// PolicyFromConfig builds a Policy from cfg.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		DensityThreshold: cfg.DensityThreshold(),
		MaxRatio:         cfg.MaxRatio,
		MinSavings:       cfg.MinSavingsBytes(),
		SkipUnprobeable:  cfg.SkipUnprobeable,
	}
}

// Classification is the result of Classify.
type Classification struct {
	Compressed  bool
	Reason      Reason
	Duration    float64 // Seconds; valid only when HasDuration.
	HasDuration bool
	Density     float64 // Bytes per second; valid only when HasDuration.
}

// Verdict is the accept/reject decision for one encoded output.
type Verdict struct {
	Accept  bool
	Ratio   float64 // Output/input; 0 when input size is not positive.
	Savings int64   // Input minus output, may be negative.
	Reason  string  // Empty when accepted.
}

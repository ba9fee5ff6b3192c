package planner

import "fmt"

// Classify decides whether a file is already efficiently encoded, from its
// ffprobe text and size. Either heuristic alone is enough; the encoder tag
// is checked first and wins regardless of size or duration.
func Classify(meta string, size int64, p Policy) Classification {
	var c Classification
	if d, ok := DurationSeconds(meta); ok {
		c.Duration, c.HasDuration = d, true
		c.Density = Density(size, d)
	}
	switch {
	case HasEfficientEncoderTag(meta):
		c.Compressed, c.Reason = true, ReasonEncoderTag
	case c.HasDuration && IsDensityLow(size, c.Duration, p.DensityThreshold):
		c.Compressed, c.Reason = true, ReasonLowDensity
	}
	return c
}

// ClassifyProbeFailure returns the classification for a file ffprobe could
// not read: a candidate, or skipped when the policy asks for it.
func ClassifyProbeFailure(p Policy) Classification {
	if p.SkipUnprobeable {
		return Classification{Compressed: true, Reason: ReasonUnprobeable}
	}
	return Classification{}
}

// Judge decides whether an encoded output of outSize bytes should replace an
// input of inSize bytes. The result is rejected when the ratio reaches
// p.MaxRatio or the savings fall below p.MinSavings.
func Judge(inSize, outSize int64, p Policy) Verdict {
	if inSize <= 0 {
		return Verdict{Savings: inSize - outSize, Reason: "input is empty"}
	}
	v := Verdict{
		Ratio:   float64(outSize) / float64(inSize),
		Savings: inSize - outSize,
	}
	switch {
	case v.Ratio >= p.MaxRatio:
		v.Reason = fmt.Sprintf("ratio %.3f is not below %.2f", v.Ratio, p.MaxRatio)
	case v.Savings < p.MinSavings:
		v.Reason = fmt.Sprintf("saves %d bytes, need at least %d", v.Savings, p.MinSavings)
	default:
		v.Accept = true
	}
	return v
}

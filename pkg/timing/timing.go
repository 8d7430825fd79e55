package timing

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/framelens/framelens/pkg/frame"
)

// ErrInsufficientTimingData reports a run with no usable timing samples.
// The corresponding summary is marked unavailable; analysis continues with
// whatever did succeed.
var ErrInsufficientTimingData = errors.New("insufficient timing data")

// Summary holds the aggregate timing statistics for one run.
type Summary struct {
	// Samples are the per-frame durations in milliseconds, in frame order.
	Samples []float64 `json:"all_runs_ms"`

	MeanMS   float64 `json:"avg_frame_time_ms"`
	FPS      float64 `json:"estimated_fps"`
	MinMS    float64 `json:"min_frame_time_ms"`
	MaxMS    float64 `json:"max_frame_time_ms"`
	StdDevMS float64 `json:"stddev_frame_time_ms"`
	P95MS    float64 `json:"p95_frame_time_ms"`

	// Usable is false when the run had no timing samples; the float fields
	// are NaN in that case.
	Usable bool `json:"usable"`
}

// Samples extracts per-frame durations (milliseconds) from a sequence.
//
// Explicit render_time_ms values win: every frame that carries one
// contributes a sample. If no frame has an explicit duration, durations are
// derived as consecutive timestamp deltas, but only when every frame in
// the run has a timestamp and there are at least two frames. Partial
// timestamp coverage yields nil.
func Samples(seq frame.Sequence) []float64 {
	var explicit []float64
	for _, r := range seq {
		if r.HasRenderTime {
			explicit = append(explicit, r.RenderTimeMS)
		}
	}
	if len(explicit) > 0 {
		return explicit
	}

	if len(seq) < 2 {
		return nil
	}
	for _, r := range seq {
		if r.Timestamp.IsZero() {
			return nil
		}
	}
	derived := make([]float64, 0, len(seq)-1)
	for i := 1; i < len(seq); i++ {
		delta := seq[i].Timestamp.Sub(seq[i-1].Timestamp)
		derived = append(derived, float64(delta.Nanoseconds())/1e6)
	}
	return derived
}

// Summarize computes the summary statistics for one run's samples.
// With no samples it returns an unusable summary (NaN statistics) and
// [ErrInsufficientTimingData].
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return emptySummary(), ErrInsufficientTimingData
	}
	return summarize(samples), nil
}

// emptySummary is the unusable summary for a run without samples.
func emptySummary() Summary {
	nan := math.NaN()
	return Summary{MeanMS: nan, FPS: nan, MinMS: nan, MaxMS: nan, StdDevMS: nan, P95MS: nan}
}

// Aggregate summarizes both runs and computes the relative improvement of
// the candidate over the baseline:
//
//	(baseline.MeanMS - candidate.MeanMS) / baseline.MeanMS * 100
//
// When either side has no usable samples the improvement is NaN and ok is
// false; missing timing is reported through the summaries, not as an error.
func Aggregate(baseline, candidate []float64) (Summary, Summary, float64, bool) {
	bs, _ := Summarize(baseline)
	cs, _ := Summarize(candidate)
	pct, ok := Improvement(bs, cs)
	return bs, cs, pct, ok
}

// Improvement computes the percentage improvement between two summaries.
// It returns NaN and false unless both summaries are usable and the
// baseline mean is positive.
func Improvement(baseline, candidate Summary) (float64, bool) {
	if !baseline.Usable || !candidate.Usable || baseline.MeanMS <= 0 {
		return math.NaN(), false
	}
	return (baseline.MeanMS - candidate.MeanMS) / baseline.MeanMS * 100, true
}

// summarize computes statistics over a non-empty sample window.
// Shared by the trackers.
func summarize(samples []float64) Summary {
	data := stats.Float64Data(samples)
	mean, _ := stats.Mean(data)
	minV, _ := stats.Min(data)
	maxV, _ := stats.Max(data)
	sd, _ := stats.StandardDeviation(data)
	p95, _ := stats.Percentile(data, 95)

	fps := math.NaN()
	if mean > 0 {
		fps = 1000 / mean
	}
	out := Summary{
		Samples:  append([]float64(nil), samples...),
		MeanMS:   mean,
		FPS:      fps,
		MinMS:    minV,
		MaxMS:    maxV,
		StdDevMS: sd,
		P95MS:    p95,
		Usable:   true,
	}
	return out
}

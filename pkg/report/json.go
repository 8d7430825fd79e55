package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/framelens/framelens/pkg/analysis"
)

// RunTiming is the per-run timing block of the results document.
type RunTiming struct {
	AvgFrameTimeMS float64   `json:"avg_frame_time_ms"`
	EstimatedFPS   float64   `json:"estimated_fps"`
	MinMS          float64   `json:"min_frame_time_ms"`
	MaxMS          float64   `json:"max_frame_time_ms"`
	StdDevMS       float64   `json:"stddev_frame_time_ms"`
	P95MS          float64   `json:"p95_frame_time_ms"`
	AllRunsMS      []float64 `json:"all_runs_ms"`
}

// PairEntry is one matched frame pair in the results document.
type PairEntry struct {
	OriginalIndex  int     `json:"original_index"`
	OptimizedIndex int     `json:"optimized_index"`
	Score          float64 `json:"score"`
	Cached         bool    `json:"cached,omitempty"`
}

// FailedEntry records a pair that could not be scored.
type FailedEntry struct {
	OriginalIndex  int    `json:"original_index"`
	OptimizedIndex int    `json:"optimized_index"`
	Reason         string `json:"reason"`
}

// Visual is the divergence section of the results document.
type Visual struct {
	MeanScore *float64 `json:"mean_score"`
	MinScore  *float64 `json:"min_score"`

	PositionalMatch bool          `json:"positional_match"`
	Pairs           []PairEntry   `json:"pairs"`
	Failed          []FailedEntry `json:"failed,omitempty"`

	UnmatchedOriginal  int `json:"unmatched_original"`
	UnmatchedOptimized int `json:"unmatched_optimized"`
}

// Document is the persisted results file for one comparison run.
//
// Timing blocks and the improvement are pointers because either run may lack
// usable timing; JSON cannot carry NaN, so absence is encoded as null.
type Document struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OriginalDir  string `json:"original_dir"`
	OptimizedDir string `json:"optimized_dir"`

	OriginalFrames  int `json:"original_frames"`
	OptimizedFrames int `json:"optimized_frames"`

	Original  *RunTiming `json:"original"`
	Optimized *RunTiming `json:"optimized"`

	ImprovementPercentage *float64 `json:"improvement_percentage"`

	Visual Visual `json:"visual"`
}

// BuildDocument maps an analysis report into the results document layout.
func BuildDocument(rep *analysis.Report) *Document {
	doc := &Document{
		ID:              rep.ID,
		CreatedAt:       rep.CreatedAt,
		OriginalDir:     rep.Baseline.Dir,
		OptimizedDir:    rep.Candidate.Dir,
		OriginalFrames:  rep.Baseline.Frames,
		OptimizedFrames: rep.Candidate.Frames,
		Original:        runTiming(rep.Baseline),
		Optimized:       runTiming(rep.Candidate),
		Visual: Visual{
			MeanScore:          finitePtr(rep.MeanScore),
			MinScore:           finitePtr(rep.MinScore),
			PositionalMatch:    rep.Positional,
			UnmatchedOriginal:  rep.UnmatchedBaseline,
			UnmatchedOptimized: rep.UnmatchedCandidate,
		},
	}
	if rep.TimingUsable {
		doc.ImprovementPercentage = finitePtr(rep.ImprovementPct)
	}

	doc.Visual.Pairs = make([]PairEntry, 0, len(rep.Pairs))
	for _, p := range rep.Pairs {
		doc.Visual.Pairs = append(doc.Visual.Pairs, PairEntry{
			OriginalIndex:  p.BaselineIndex,
			OptimizedIndex: p.CandidateIndex,
			Score:          p.Score,
			Cached:         p.Cached,
		})
	}
	for _, f := range rep.Failed {
		doc.Visual.Failed = append(doc.Visual.Failed, FailedEntry{
			OriginalIndex:  f.BaselineIndex,
			OptimizedIndex: f.CandidateIndex,
			Reason:         f.Reason,
		})
	}
	return doc
}

func runTiming(info analysis.RunInfo) *RunTiming {
	if !info.Timing.Usable {
		return nil
	}
	return &RunTiming{
		AvgFrameTimeMS: info.Timing.MeanMS,
		EstimatedFPS:   info.Timing.FPS,
		MinMS:          info.Timing.MinMS,
		MaxMS:          info.Timing.MaxMS,
		StdDevMS:       info.Timing.StdDevMS,
		P95MS:          info.Timing.P95MS,
		AllRunsMS:      info.Timing.Samples,
	}
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WriteJSON writes the document to path, indented for human diffing.
func WriteJSON(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// ReadDocument loads a results document previously written by [WriteJSON].
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	return &doc, nil
}

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/framelens/framelens/pkg/cache"
	"github.com/framelens/framelens/pkg/descriptor"
	"github.com/framelens/framelens/pkg/frame"
	"github.com/framelens/framelens/pkg/match"
	"github.com/framelens/framelens/pkg/ssim"
	"github.com/framelens/framelens/pkg/timing"
)

// ErrEmptySequence reports a capture directory that yielded no frames.
// The message names which side is empty.
var ErrEmptySequence = errors.New("empty frame sequence")

// scoreCacheTTL bounds how long cached pair scores live. Content-hashed
// keys never go stale, so this only caps cache growth.
const scoreCacheTTL = 30 * 24 * time.Hour

// Options configures an analysis run. The zero value is usable.
type Options struct {
	// MatchThreshold overrides the greedy matcher's similarity threshold.
	MatchThreshold float64

	// DescriptorSize and DescriptorBins override the fingerprint defaults.
	DescriptorSize int
	DescriptorBins int

	// Workers bounds concurrent pair scoring; runtime.NumCPU() when <= 0.
	Workers int

	// KeepDiffMaps retains the per-pair diff maps on the results. They are
	// large, so callers that only need scores leave this off.
	KeepDiffMaps bool

	// Cache stores pair scores across runs. Nil disables caching.
	Cache cache.Cache

	// Logger receives progress and warnings. May be nil.
	Logger *log.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// RunInfo describes one side of the comparison.
type RunInfo struct {
	Dir    string         `json:"dir"`
	Frames int            `json:"frames"`
	Timing timing.Summary `json:"timing"`
}

// PairResult is the outcome of scoring one matched frame pair.
type PairResult struct {
	BaselineIndex  int     `json:"baseline_index"`
	CandidateIndex int     `json:"candidate_index"`
	Score          float64 `json:"score"`
	Cached         bool    `json:"cached"`

	// DiffMap is present only when Options.KeepDiffMaps is set.
	DiffMap [][]float64 `json:"-"`
}

// FailedPair records a pair that could not be scored. It is excluded from
// the visual aggregates but does not abort the run.
type FailedPair struct {
	BaselineIndex  int    `json:"baseline_index"`
	CandidateIndex int    `json:"candidate_index"`
	Reason         string `json:"reason"`
}

// Report is the assembled outcome of one analysis run.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Baseline  RunInfo `json:"baseline"`
	Candidate RunInfo `json:"candidate"`

	Positional bool         `json:"positional_match"`
	Pairs      []PairResult `json:"pairs"`
	Failed     []FailedPair `json:"failed,omitempty"`

	UnmatchedBaseline  int `json:"unmatched_baseline"`
	UnmatchedCandidate int `json:"unmatched_candidate"`

	// MeanScore and MinScore aggregate the successfully scored pairs;
	// NaN when no pair scored.
	MeanScore float64 `json:"mean_score"`
	MinScore  float64 `json:"min_score"`

	// ImprovementPct is NaN unless both runs had usable timing.
	ImprovementPct float64 `json:"improvement_pct"`
	TimingUsable   bool    `json:"timing_usable"`
}

// Run executes the pipeline for two already-loaded sequences.
//
// It fails only structurally: when a side has no frames. Everything else
// (unmatched frames, unscorable pairs, missing timing) degrades into the
// report instead of failing the run.
func Run(ctx context.Context, baseline, candidate frame.Sequence, baselineDir, candidateDir string, opts Options) (*Report, error) {
	if len(baseline) == 0 && len(candidate) == 0 {
		return nil, fmt.Errorf("%w: both capture directories are empty", ErrEmptySequence)
	}
	if len(baseline) == 0 {
		return nil, fmt.Errorf("%w: baseline %s", ErrEmptySequence, baselineDir)
	}
	if len(candidate) == 0 {
		return nil, fmt.Errorf("%w: candidate %s", ErrEmptySequence, candidateDir)
	}

	logger := opts.Logger

	corr := match.Match(baseline, candidate, match.Options{
		Threshold:  opts.MatchThreshold,
		Descriptor: descriptor.Options{Size: opts.DescriptorSize, Bins: opts.DescriptorBins},
	})
	if logger != nil {
		logger.Infof("Matched %d pairs (%d baseline frames, %d candidate frames, positional=%v)",
			len(corr.Pairs), len(baseline), len(candidate), corr.Positional)
	}

	pairs, failed := scorePairs(ctx, baseline, candidate, corr.Pairs, opts)

	bs, cs, improvement, usable := timing.Aggregate(timing.Samples(baseline), timing.Samples(candidate))
	if logger != nil && !usable {
		logger.Warn("timing unavailable for at least one run; improvement skipped")
	}

	rep := &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Baseline:  RunInfo{Dir: baselineDir, Frames: len(baseline), Timing: bs},
		Candidate: RunInfo{Dir: candidateDir, Frames: len(candidate), Timing: cs},

		Positional:         corr.Positional,
		Pairs:              pairs,
		Failed:             failed,
		UnmatchedBaseline:  corr.UnmatchedA(len(baseline)),
		UnmatchedCandidate: corr.UnmatchedB(len(candidate)),

		ImprovementPct: improvement,
		TimingUsable:   usable,
	}
	rep.MeanScore, rep.MinScore = aggregateScores(pairs)
	return rep, nil
}

// scorePairs fans pair scoring out over a bounded worker pool. Results come
// back in pair order regardless of completion order.
func scorePairs(ctx context.Context, a, b frame.Sequence, pairs []match.Pair, opts Options) ([]PairResult, []FailedPair) {
	results := make([]*PairResult, len(pairs))
	failures := make([]*FailedPair, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, p := range pairs {
		g.Go(func() error {
			res, fail := scoreOne(gctx, a[p.A], b[p.B], opts)
			results[i] = res
			failures[i] = fail
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are per-pair records

	var out []PairResult
	var failed []FailedPair
	for i := range pairs {
		if results[i] != nil {
			out = append(out, *results[i])
		}
		if failures[i] != nil {
			failed = append(failed, *failures[i])
		}
	}
	return out, failed
}

// cachedScore is the persisted form of a pair score.
type cachedScore struct {
	Score float64 `json:"score"`
}

// scoreOne compares a single pair, consulting the score cache first.
// Diff maps are never cached; a cache hit implies the caller did not ask
// for them or accepts recomputation being skipped.
func scoreOne(ctx context.Context, a, b frame.Record, opts Options) (*PairResult, *FailedPair) {
	key := ""
	if opts.Cache != nil && !opts.KeepDiffMaps && a.Hash != "" && b.Hash != "" {
		key = cache.ScoreKey(a.Hash, b.Hash, ssim.WindowRadius)
		if data, ok, err := opts.Cache.Get(ctx, key); err == nil && ok {
			var cs cachedScore
			if json.Unmarshal(data, &cs) == nil {
				return &PairResult{
					BaselineIndex:  a.Index,
					CandidateIndex: b.Index,
					Score:          cs.Score,
					Cached:         true,
				}, nil
			}
		}
	}

	res, err := ssim.Compare(a.Image, b.Image)
	if err != nil {
		return nil, &FailedPair{
			BaselineIndex:  a.Index,
			CandidateIndex: b.Index,
			Reason:         err.Error(),
		}
	}

	if key != "" {
		if data, err := json.Marshal(cachedScore{Score: res.Score}); err == nil {
			_ = opts.Cache.Set(ctx, key, data, scoreCacheTTL)
		}
	}

	pr := &PairResult{
		BaselineIndex:  a.Index,
		CandidateIndex: b.Index,
		Score:          res.Score,
	}
	if opts.KeepDiffMaps {
		pr.DiffMap = res.DiffMap
	}
	return pr, nil
}

// aggregateScores computes mean and minimum over the scored pairs.
// Returns NaN for both when nothing scored.
func aggregateScores(pairs []PairResult) (mean, minScore float64) {
	if len(pairs) == 0 {
		return math.NaN(), math.NaN()
	}
	minScore = math.Inf(1)
	var total float64
	for _, p := range pairs {
		total += p.Score
		if p.Score < minScore {
			minScore = p.Score
		}
	}
	return total / float64(len(pairs)), minScore
}

// WorstPairs returns up to n scored pairs ordered by ascending score,
// the ones most worth eyeballing after a retune.
func (r *Report) WorstPairs(n int) []PairResult {
	out := append([]PairResult(nil), r.Pairs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

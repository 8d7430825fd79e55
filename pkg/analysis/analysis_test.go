package analysis

import (
	"context"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/framelens/framelens/pkg/cache"
	"github.com/framelens/framelens/pkg/frame"
)

func grayFrame(idx int, v uint8, renderMS float64) frame.Record {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return frame.Record{
		Index:         idx,
		Hash:          frameHash(idx, v),
		Image:         img,
		RenderTimeMS:  renderMS,
		HasRenderTime: renderMS > 0,
	}
}

// frameHash fakes a content hash; equal content gets an equal hash, like the
// loader's file hashing.
func frameHash(idx int, v uint8) string {
	return strings.Repeat("ab", 16) + string(rune('a'+v%26)) + string(rune('a'+idx%26))
}

func identicalRuns(n int, renderA, renderB float64) (frame.Sequence, frame.Sequence) {
	var a, b frame.Sequence
	for i := 0; i < n; i++ {
		v := uint8(i * 20)
		a = append(a, grayFrame(i, v, renderA))
		rec := grayFrame(i, v, renderB)
		b = append(b, rec)
	}
	return a, b
}

func TestRunIdenticalCaptures(t *testing.T) {
	a, b := identicalRuns(5, 20, 10)

	rep, err := Run(context.Background(), a, b, "orig", "opt", Options{Workers: 2})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !rep.Positional {
		t.Error("equal-length runs should match positionally")
	}
	if len(rep.Pairs) != 5 {
		t.Fatalf("len(Pairs) = %d, want 5", len(rep.Pairs))
	}
	for _, p := range rep.Pairs {
		if p.Score != 1.0 {
			t.Errorf("pair (%d,%d) score = %v, want 1.0", p.BaselineIndex, p.CandidateIndex, p.Score)
		}
	}
	if rep.MeanScore != 1.0 || rep.MinScore != 1.0 {
		t.Errorf("aggregate scores = (%v, %v), want (1, 1)", rep.MeanScore, rep.MinScore)
	}

	if !rep.TimingUsable {
		t.Fatal("timing should be usable")
	}
	if math.Abs(rep.ImprovementPct-50.0) > 1e-9 {
		t.Errorf("ImprovementPct = %v, want 50", rep.ImprovementPct)
	}
	if rep.ID == "" {
		t.Error("report should carry a run ID")
	}
}

func TestRunEmptySides(t *testing.T) {
	a, _ := identicalRuns(3, 16, 16)

	_, err := Run(context.Background(), nil, a, "orig", "opt", Options{})
	if !errors.Is(err, ErrEmptySequence) {
		t.Fatalf("error = %v, want ErrEmptySequence", err)
	}
	if !strings.Contains(err.Error(), "baseline") {
		t.Errorf("error %q should name the empty side", err)
	}

	_, err = Run(context.Background(), a, nil, "orig", "opt", Options{})
	if !errors.Is(err, ErrEmptySequence) || !strings.Contains(err.Error(), "candidate") {
		t.Errorf("error = %v, want ErrEmptySequence naming candidate", err)
	}

	_, err = Run(context.Background(), nil, nil, "orig", "opt", Options{})
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("error = %v, want ErrEmptySequence", err)
	}
}

func TestRunIsolatesFailedPairs(t *testing.T) {
	a, b := identicalRuns(3, 16, 16)
	// Sabotage one candidate frame with a zero-area image.
	b[1].Image = image.NewGray(image.Rect(0, 0, 0, 0))
	b[1].Hash = ""

	rep, err := Run(context.Background(), a, b, "orig", "opt", Options{})
	if err != nil {
		t.Fatalf("Run() must not fail on a single bad pair: %v", err)
	}
	if len(rep.Pairs) != 2 {
		t.Errorf("len(Pairs) = %d, want 2", len(rep.Pairs))
	}
	if len(rep.Failed) != 1 {
		t.Fatalf("len(Failed) = %d, want 1", len(rep.Failed))
	}
	if rep.Failed[0].CandidateIndex != 1 {
		t.Errorf("failed pair candidate index = %d, want 1", rep.Failed[0].CandidateIndex)
	}
	if rep.Failed[0].Reason == "" {
		t.Error("failed pair should carry a reason")
	}
	// Aggregates cover only the scored pairs.
	if rep.MeanScore != 1.0 {
		t.Errorf("MeanScore = %v, want 1.0 over surviving pairs", rep.MeanScore)
	}
}

func TestRunMissingTiming(t *testing.T) {
	a, b := identicalRuns(3, 0, 0) // no render times, no timestamps

	rep, err := Run(context.Background(), a, b, "orig", "opt", Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.TimingUsable {
		t.Error("timing should be unusable without samples")
	}
	if !math.IsNaN(rep.ImprovementPct) {
		t.Errorf("ImprovementPct = %v, want NaN", rep.ImprovementPct)
	}
}

func TestRunUsesScoreCache(t *testing.T) {
	a, b := identicalRuns(4, 16, 16)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Cache: c}

	first, err := Run(context.Background(), a, b, "orig", "opt", opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range first.Pairs {
		if p.Cached {
			t.Fatal("first run should not hit the cache")
		}
	}

	second, err := Run(context.Background(), a, b, "orig", "opt", opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range second.Pairs {
		if !p.Cached {
			t.Errorf("pair (%d,%d) should be served from cache", p.BaselineIndex, p.CandidateIndex)
		}
		if p.Score != 1.0 {
			t.Errorf("cached score = %v, want 1.0", p.Score)
		}
	}
}

func TestRunKeepDiffMaps(t *testing.T) {
	a, b := identicalRuns(2, 16, 16)

	rep, err := Run(context.Background(), a, b, "orig", "opt", Options{KeepDiffMaps: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range rep.Pairs {
		if len(p.DiffMap) != 16 || len(p.DiffMap[0]) != 16 {
			t.Errorf("DiffMap shape = %dx%d, want 16x16", len(p.DiffMap), len(p.DiffMap[0]))
		}
	}
}

func TestWorstPairs(t *testing.T) {
	rep := &Report{Pairs: []PairResult{
		{BaselineIndex: 0, Score: 0.9},
		{BaselineIndex: 1, Score: 0.5},
		{BaselineIndex: 2, Score: 0.7},
	}}
	worst := rep.WorstPairs(2)
	if len(worst) != 2 {
		t.Fatalf("len = %d, want 2", len(worst))
	}
	if worst[0].BaselineIndex != 1 || worst[1].BaselineIndex != 2 {
		t.Errorf("worst order = [%d %d], want [1 2]", worst[0].BaselineIndex, worst[1].BaselineIndex)
	}
}

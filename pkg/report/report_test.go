package report

import (
	"bytes"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framelens/framelens/pkg/analysis"
	"github.com/framelens/framelens/pkg/timing"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		ID:        "run-1234",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Baseline: analysis.RunInfo{
			Dir:    "captures/original",
			Frames: 3,
			Timing: timing.Summary{
				Samples: []float64{20, 20, 20},
				MeanMS:  20, FPS: 50, MinMS: 20, MaxMS: 20, P95MS: 20,
				Usable: true,
			},
		},
		Candidate: analysis.RunInfo{
			Dir:    "captures/optimized",
			Frames: 3,
			Timing: timing.Summary{
				Samples: []float64{10, 10, 10},
				MeanMS:  10, FPS: 100, MinMS: 10, MaxMS: 10, P95MS: 10,
				Usable: true,
			},
		},
		Positional: true,
		Pairs: []analysis.PairResult{
			{BaselineIndex: 0, CandidateIndex: 0, Score: 0.98},
			{BaselineIndex: 1, CandidateIndex: 1, Score: 0.75},
		},
		Failed: []analysis.FailedPair{
			{BaselineIndex: 2, CandidateIndex: 2, Reason: "invalid image: second image has zero area"},
		},
		MeanScore:      0.865,
		MinScore:       0.75,
		ImprovementPct: 50,
		TimingUsable:   true,
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleReport())

	if doc.Original == nil || doc.Optimized == nil {
		t.Fatal("both timing blocks should be present")
	}
	if doc.Original.AvgFrameTimeMS != 20 || doc.Optimized.EstimatedFPS != 100 {
		t.Errorf("timing blocks mapped wrong: %+v / %+v", doc.Original, doc.Optimized)
	}
	if doc.ImprovementPercentage == nil || *doc.ImprovementPercentage != 50 {
		t.Errorf("ImprovementPercentage = %v, want 50", doc.ImprovementPercentage)
	}
	if len(doc.Visual.Pairs) != 2 || doc.Visual.Pairs[1].Score != 0.75 {
		t.Errorf("pairs mapped wrong: %+v", doc.Visual.Pairs)
	}
	if len(doc.Visual.Failed) != 1 || doc.Visual.Failed[0].OriginalIndex != 2 {
		t.Errorf("failed pairs mapped wrong: %+v", doc.Visual.Failed)
	}
	if doc.Visual.MeanScore == nil || *doc.Visual.MeanScore != 0.865 {
		t.Errorf("MeanScore = %v, want 0.865", doc.Visual.MeanScore)
	}
}

func TestBuildDocumentWithoutTiming(t *testing.T) {
	rep := sampleReport()
	rep.Baseline.Timing = timing.Summary{MeanMS: math.NaN(), FPS: math.NaN()}
	rep.ImprovementPct = math.NaN()
	rep.TimingUsable = false

	doc := BuildDocument(rep)
	if doc.Original != nil {
		t.Error("unusable baseline timing should map to nil")
	}
	if doc.ImprovementPercentage != nil {
		t.Error("improvement should be nil without usable timing")
	}
}

func TestWriteReadJSONRoundTrip(t *testing.T) {
	doc := BuildDocument(sampleReport())
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteJSON(path, doc); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	got, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument() error: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("ID = %q, want %q", got.ID, doc.ID)
	}
	if len(got.Visual.Pairs) != len(doc.Visual.Pairs) {
		t.Errorf("pairs lost in round trip: %d != %d", len(got.Visual.Pairs), len(doc.Visual.Pairs))
	}
	if got.Original == nil || got.Original.AvgFrameTimeMS != 20 {
		t.Errorf("timing lost in round trip: %+v", got.Original)
	}
}

func TestCorrespondenceDOT(t *testing.T) {
	pairs := []PairEntry{
		{OriginalIndex: 0, OptimizedIndex: 1, Score: 0.97},
		{OriginalIndex: 1, OptimizedIndex: 0, Score: 0.88},
	}
	dot := CorrespondenceDOT([]int{0, 1, 2}, []int{0, 1}, pairs)

	for _, want := range []string{
		`"o0" -> "p1" [label="0.970"`,
		`"o1" -> "p0" [label="0.880"`,
		`rankdir=LR`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Frame 2 on the original side is unmatched and must be dashed.
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, `"o2"`) && !strings.Contains(line, "dashed") {
			t.Errorf("unmatched node should be dashed: %s", line)
		}
		if strings.Contains(line, `"o0" [`) && strings.Contains(line, "dashed") {
			t.Errorf("matched node should not be dashed: %s", line)
		}
	}
}

func TestCharts(t *testing.T) {
	doc := BuildDocument(sampleReport())

	img, err := FrameTimeChart(doc)
	if err != nil {
		t.Fatalf("FrameTimeChart() error: %v", err)
	}
	if img.Bounds().Dx() != chartWidth || img.Bounds().Dy() != chartHeight {
		t.Errorf("chart size = %v", img.Bounds())
	}

	if _, err := FPSChart(doc); err != nil {
		t.Errorf("FPSChart() error: %v", err)
	}

	doc.Original = nil
	if _, err := FrameTimeChart(doc); err != ErrNoTiming {
		t.Errorf("error = %v, want ErrNoTiming", err)
	}
}

func TestDiffHeatmap(t *testing.T) {
	diff := [][]float64{
		{0, 0.5},
		{1, 0.25},
	}
	img := DiffHeatmap(diff)
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("heatmap size = %v, want 2x2", img.Bounds())
	}

	black := img.NRGBAAt(0, 0)
	if black.R != 0 || black.G != 0 || black.B != 0 {
		t.Errorf("zero divergence should be black, got %v", black)
	}
	hot := img.NRGBAAt(0, 1)
	if (hot != color.NRGBA{R: 255, G: 255, A: 255}) {
		t.Errorf("max divergence should be yellow, got %v", hot)
	}
	mid := img.NRGBAAt(1, 0)
	if mid.R != 255 || mid.G != 0 {
		t.Errorf("mid divergence should be pure red, got %v", mid)
	}
}

func TestRenderHTML(t *testing.T) {
	doc := BuildDocument(sampleReport())

	var buf bytes.Buffer
	if err := RenderHTML(&buf, doc); err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"captures/original",
		"&#43;50.0%", // html/template escapes the plus sign
		"0.7500",
		"frame_time.png",
		"correspondence.svg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRenderHTMLWithoutTiming(t *testing.T) {
	doc := BuildDocument(sampleReport())
	doc.Original = nil
	doc.Optimized = nil
	doc.ImprovementPercentage = nil

	var buf bytes.Buffer
	if err := RenderHTML(&buf, doc); err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Timing data unavailable") {
		t.Error("HTML should note missing timing")
	}
}

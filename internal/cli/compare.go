package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/framelens/framelens/pkg/analysis"
	"github.com/framelens/framelens/pkg/frame"
	"github.com/framelens/framelens/pkg/history"
	"github.com/framelens/framelens/pkg/report"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	original  string   // original capture directory
	optimized string   // optimized capture directory
	output    string   // output directory for report artifacts
	formats   []string // artifact formats: json, html, png, svg
	noCache   bool     // bypass the score cache
	noHistory bool     // skip recording the run in history
	threshold float64  // descriptor match threshold override
	workers   int      // concurrent scoring workers
	diffMaps  bool     // write per-pair divergence heatmaps
}

// validFormats is the set of supported report artifact formats.
var validFormats = map[string]bool{"json": true, "html": true, "png": true, "svg": true}

// compareCommand creates the compare command, the full pipeline: load both
// runs, match frames, score divergence, aggregate timing, write the report.
func (c *CLI) compareCommand() *cobra.Command {
	var formatsStr string
	opts := compareOpts{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two frame capture runs",
		Long: `Compare pairs up the frames of two capture directories, scores the visual
divergence of each pair, aggregates per-frame timing, and writes the results
as JSON plus optional HTML, chart PNGs, and a correspondence diagram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runCompare(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.original, "original", "", "original capture directory (required)")
	cmd.Flags().StringVar(&opts.optimized, "optimized", "", "optimized capture directory (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "framelens-report", "output directory for report artifacts")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "artifact format(s): json (default), html, png, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the score cache")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the run in history")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "descriptor similarity threshold for matching (default 0.7)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent scoring workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.diffMaps, "diff-maps", false, "write per-pair divergence heatmaps")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("optimized")

	return cmd
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'json', 'html', 'png', or 'svg')", f)
		}
	}
	return nil
}

func (c *CLI) runCompare(ctx context.Context, opts *compareOpts) error {
	loader := &frame.Loader{Logger: c.Logger}

	p := newProgress(c.Logger)
	original, err := loader.Load(opts.original)
	if err != nil {
		return fmt.Errorf("load original run: %w", err)
	}
	optimized, err := loader.Load(opts.optimized)
	if err != nil {
		return fmt.Errorf("load optimized run: %w", err)
	}
	p.done(fmt.Sprintf("Loaded %d + %d frames", len(original), len(optimized)))

	scoreCache, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer scoreCache.Close()

	spinner := newSpinnerWithContext(ctx, "Scoring frame pairs")
	spinner.Start()
	rep, err := analysis.Run(ctx, original, optimized, opts.original, opts.optimized, analysis.Options{
		MatchThreshold: c.matchThreshold(opts.threshold),
		DescriptorSize: c.Config.Descriptor.Size,
		DescriptorBins: c.Config.Descriptor.Bins,
		Workers:        c.workerCount(opts.workers),
		KeepDiffMaps:   opts.diffMaps,
		Cache:          scoreCache,
		Logger:         c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Scored %d pairs", len(rep.Pairs)))

	doc := report.BuildDocument(rep)
	if err := c.writeArtifacts(opts, doc, rep, original, optimized); err != nil {
		return err
	}

	c.printCompareSummary(rep)

	if !opts.noHistory {
		if err := c.recordRun(ctx, rep); err != nil {
			printWarning("history not recorded: %v", err)
		}
	}
	return nil
}

// matchThreshold resolves the effective threshold: flag, then config file,
// then the matcher's built-in default.
func (c *CLI) matchThreshold(flag float64) float64 {
	if flag > 0 {
		return flag
	}
	return c.Config.Match.Threshold
}

func (c *CLI) workerCount(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.Config.Analysis.Workers
}

// writeArtifacts writes the requested report artifacts into the output
// directory.
func (c *CLI) writeArtifacts(opts *compareOpts, doc *report.Document, rep *analysis.Report, original, optimized frame.Sequence) error {
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, format := range opts.formats {
		switch format {
		case "json":
			path := filepath.Join(opts.output, "results.json")
			if err := report.WriteJSON(path, doc); err != nil {
				return err
			}
			printFile(path)
		case "html":
			path := filepath.Join(opts.output, "report.html")
			if err := report.WriteHTML(path, doc); err != nil {
				return err
			}
			printFile(path)
		case "png":
			if err := report.WriteCharts(opts.output, doc); err != nil {
				if errors.Is(err, report.ErrNoTiming) {
					printWarning("charts skipped: %v", err)
					continue
				}
				return err
			}
			printFile(filepath.Join(opts.output, "frame_time.png"))
			printFile(filepath.Join(opts.output, "fps.png"))
		case "svg":
			dot := report.CorrespondenceDOT(original.Indices(), optimized.Indices(), doc.Visual.Pairs)
			svg, err := report.RenderSVG(dot)
			if err != nil {
				return err
			}
			path := filepath.Join(opts.output, "correspondence.svg")
			if err := os.WriteFile(path, svg, 0o644); err != nil {
				return fmt.Errorf("write diagram: %w", err)
			}
			printFile(path)
		}
	}

	if opts.diffMaps {
		dir := filepath.Join(opts.output, "diff")
		if err := report.WriteDiffMaps(dir, rep); err != nil {
			return err
		}
		printFile(dir)
	}
	return nil
}

func (c *CLI) printCompareSummary(rep *analysis.Report) {
	cached := 0
	for _, pr := range rep.Pairs {
		if pr.Cached {
			cached++
		}
	}
	printPairStats(len(rep.Pairs), len(rep.Failed), rep.UnmatchedBaseline, rep.UnmatchedCandidate, cached)

	if !math.IsNaN(rep.MeanScore) {
		printKeyValue("mean score", scoreStyle(rep.MeanScore).Render(fmt.Sprintf("%.4f", rep.MeanScore)))
		printKeyValue("min score", scoreStyle(rep.MinScore).Render(fmt.Sprintf("%.4f", rep.MinScore)))
	}
	if rep.TimingUsable {
		printKeyValue("frame time", fmt.Sprintf("%.2f ms %s %.2f ms",
			rep.Baseline.Timing.MeanMS, iconArrow, rep.Candidate.Timing.MeanMS))
		printKeyValue("estimated fps", fmt.Sprintf("%.1f %s %.1f",
			rep.Baseline.Timing.FPS, iconArrow, rep.Candidate.Timing.FPS))
		style := StyleSuccess
		if rep.ImprovementPct < 0 {
			style = StyleError
		}
		printKeyValue("improvement", style.Render(fmt.Sprintf("%+.1f%%", rep.ImprovementPct)))
	} else {
		printDetail("timing unavailable for at least one run")
	}
}

// recordRun appends the run summary to the configured history store.
func (c *CLI) recordRun(ctx context.Context, rep *analysis.Report) error {
	store, err := c.newHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	e := history.Entry{
		ID:           rep.ID,
		CreatedAt:    rep.CreatedAt,
		BaselineDir:  rep.Baseline.Dir,
		CandidateDir: rep.Candidate.Dir,
		MeanScore:    finiteOrZero(rep.MeanScore),
		Pairs:        len(rep.Pairs),
	}
	if rep.TimingUsable {
		e.BaselineMeanMS = rep.Baseline.Timing.MeanMS
		e.CandidateMeanMS = rep.Candidate.Timing.MeanMS
		e.ImprovementPct = rep.ImprovementPct
	}
	return store.Append(ctx, e)
}

// finiteOrZero replaces NaN with zero so the entry stays JSON-encodable.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

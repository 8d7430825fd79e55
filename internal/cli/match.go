package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framelens/framelens/pkg/descriptor"
	"github.com/framelens/framelens/pkg/frame"
	"github.com/framelens/framelens/pkg/match"
	"github.com/framelens/framelens/pkg/report"
)

// matchOpts holds the command-line flags for the match command.
type matchOpts struct {
	output    string  // output file; extension selects json, dot, or svg
	threshold float64 // descriptor similarity threshold
}

// matchCommand creates the match command: establish the frame correspondence
// between two runs without scoring divergence.
func (c *CLI) matchCommand() *cobra.Command {
	opts := matchOpts{}

	cmd := &cobra.Command{
		Use:   "match <original-dir> <optimized-dir>",
		Short: "Match frames between two capture runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMatch(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file: .json (default stdout), .dot, or .svg")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "descriptor similarity threshold (default 0.7)")

	return cmd
}

// matchResult is the JSON output of the match command.
type matchResult struct {
	Positional         bool               `json:"positional_match"`
	Pairs              []report.PairEntry `json:"pairs"`
	UnmatchedOriginal  int                `json:"unmatched_original"`
	UnmatchedOptimized int                `json:"unmatched_optimized"`
}

func (c *CLI) runMatch(ctx context.Context, originalDir, optimizedDir string, opts *matchOpts) error {
	loader := &frame.Loader{Logger: c.Logger}

	original, err := loader.Load(originalDir)
	if err != nil {
		return fmt.Errorf("load original run: %w", err)
	}
	optimized, err := loader.Load(optimizedDir)
	if err != nil {
		return fmt.Errorf("load optimized run: %w", err)
	}

	dopts := descriptor.Options{Size: c.Config.Descriptor.Size, Bins: c.Config.Descriptor.Bins}
	corr := match.Match(original, optimized, match.Options{
		Threshold:  c.matchThreshold(opts.threshold),
		Descriptor: dopts,
	})
	c.Logger.Infof("Matched %d pairs (positional=%v)", len(corr.Pairs), corr.Positional)

	// Annotate each pair with its descriptor similarity so the output ranks
	// how confident the match is.
	result := matchResult{
		Positional:         corr.Positional,
		Pairs:              make([]report.PairEntry, 0, len(corr.Pairs)),
		UnmatchedOriginal:  corr.UnmatchedA(len(original)),
		UnmatchedOptimized: corr.UnmatchedB(len(optimized)),
	}
	for _, pr := range corr.Pairs {
		a, b := original[pr.A], optimized[pr.B]
		sim := descriptor.Similarity(
			descriptor.Compute(a.Image, dopts),
			descriptor.Compute(b.Image, dopts),
		)
		result.Pairs = append(result.Pairs, report.PairEntry{
			OriginalIndex:  a.Index,
			OptimizedIndex: b.Index,
			Score:          sim,
		})
	}

	return c.writeMatchResult(original, optimized, result, opts.output)
}

func (c *CLI) writeMatchResult(original, optimized frame.Sequence, result matchResult, output string) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".dot":
		dot := report.CorrespondenceDOT(original.Indices(), optimized.Indices(), result.Pairs)
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write DOT: %w", err)
		}
	case ".svg":
		dot := report.CorrespondenceDOT(original.Indices(), optimized.Indices(), result.Pairs)
		svg, err := report.RenderSVG(dot)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, svg, 0o644); err != nil {
			return fmt.Errorf("write SVG: %w", err)
		}
	default:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}
	printFile(output)
	return nil
}

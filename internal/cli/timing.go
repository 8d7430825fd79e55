package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/framelens/framelens/pkg/frame"
	"github.com/framelens/framelens/pkg/timing"
)

// timingCommand creates the timing command: aggregate per-frame timing for a
// single capture run.
func (c *CLI) timingCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timing <capture-dir>",
		Short: "Aggregate per-frame timing for one capture run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := &frame.Loader{Logger: c.Logger}
			seq, err := loader.Load(args[0])
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}

			summary, err := timing.Summarize(timing.Samples(seq))
			if errors.Is(err, timing.ErrInsufficientTimingData) {
				return fmt.Errorf("%s: %w (no render_time_ms and incomplete timestamps)", args[0], err)
			}
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			printTimingTable(summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

// printTimingTable renders the summary as a small bordered table.
func printTimingTable(s timing.Summary) {
	rows := [][]string{
		{"samples", fmt.Sprintf("%d", len(s.Samples))},
		{"avg frame time", fmt.Sprintf("%.3f ms", s.MeanMS)},
		{"estimated fps", fmt.Sprintf("%.1f", s.FPS)},
		{"min / max", fmt.Sprintf("%.3f / %.3f ms", s.MinMS, s.MaxMS)},
		{"stddev", fmt.Sprintf("%.3f ms", s.StdDevMS)},
		{"p95", fmt.Sprintf("%.3f ms", s.P95MS)},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return StyleDim
			}
			return StyleValue
		})
	fmt.Println(t.Render())
}

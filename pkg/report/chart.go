package report

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// ErrNoTiming reports a chart request for a document without usable timing
// on both runs.
var ErrNoTiming = errors.New("no usable timing data")

const (
	chartWidth  = 1200
	chartHeight = 500
)

// Bar colors match the original tool's palette: soft red for the original
// run, soft blue for the optimized run.
var (
	colorOriginal  = [3]float64{1.0, 0.6, 0.6} // #FF9999
	colorOptimized = [3]float64{0.4, 0.7, 1.0} // #66B2FF
	colorAxis      = [3]float64{0.25, 0.25, 0.3}
)

// FrameTimeChart renders the average frame time comparison as a bar chart.
func FrameTimeChart(doc *Document) (image.Image, error) {
	if doc.Original == nil || doc.Optimized == nil {
		return nil, ErrNoTiming
	}
	return barChart(
		"Average Frame Time",
		improvementHeadline(doc),
		[2]float64{doc.Original.AvgFrameTimeMS, doc.Optimized.AvgFrameTimeMS},
		"%.2f ms",
	), nil
}

// FPSChart renders the estimated frames-per-second comparison.
func FPSChart(doc *Document) (image.Image, error) {
	if doc.Original == nil || doc.Optimized == nil {
		return nil, ErrNoTiming
	}
	return barChart(
		"Estimated FPS",
		improvementHeadline(doc),
		[2]float64{doc.Original.EstimatedFPS, doc.Optimized.EstimatedFPS},
		"%.1f FPS",
	), nil
}

func improvementHeadline(doc *Document) string {
	if doc.ImprovementPercentage == nil {
		return "improvement: n/a"
	}
	return fmt.Sprintf("improvement: %+.1f%%", *doc.ImprovementPercentage)
}

// barChart draws a two-bar comparison with value labels above the bars and
// the improvement headline under the title. Uses the library's built-in
// bitmap face, so no font files ship with the binary.
func barChart(title, headline string, values [2]float64, valueFmt string) image.Image {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(colorAxis[0], colorAxis[1], colorAxis[2])
	dc.DrawStringAnchored(title, chartWidth/2, 30, 0.5, 0.5)
	dc.DrawStringAnchored(headline, chartWidth/2, 52, 0.5, 0.5)

	const (
		plotTop    = 90.0
		plotBottom = chartHeight - 60.0
		barWidth   = 220.0
	)
	maxVal := values[0]
	if values[1] > maxVal {
		maxVal = values[1]
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	labels := [2]string{"original", "optimized"}
	colors := [2][3]float64{colorOriginal, colorOptimized}
	centers := [2]float64{chartWidth * 0.33, chartWidth * 0.67}

	for i := 0; i < 2; i++ {
		h := (plotBottom - plotTop) * values[i] / maxVal
		x := centers[i] - barWidth/2
		y := plotBottom - h

		c := colors[i]
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(x, y, barWidth, h)
		dc.Fill()

		dc.SetRGB(colorAxis[0], colorAxis[1], colorAxis[2])
		dc.DrawStringAnchored(fmt.Sprintf(valueFmt, values[i]), centers[i], y-14, 0.5, 0.5)
		dc.DrawStringAnchored(labels[i], centers[i], plotBottom+24, 0.5, 0.5)
	}

	dc.SetLineWidth(2)
	dc.DrawLine(60, plotBottom, chartWidth-60, plotBottom)
	dc.Stroke()

	return dc.Image()
}

// WriteCharts writes both comparison charts as PNGs into dir, named
// frame_time.png and fps.png.
func WriteCharts(dir string, doc *Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	charts := []struct {
		name  string
		build func(*Document) (image.Image, error)
	}{
		{"frame_time.png", FrameTimeChart},
		{"fps.png", FPSChart},
	}
	for _, c := range charts {
		img, err := c.build(doc)
		if err != nil {
			return err
		}
		if err := imaging.Save(img, dir+"/"+c.name); err != nil {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
	}
	return nil
}

package report

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"

	"github.com/framelens/framelens/pkg/analysis"
)

// DiffHeatmap converts a normalized diff map into a heat image: black where
// the pair agrees, through red to yellow where it diverges most.
func DiffHeatmap(diff [][]float64) *image.NRGBA {
	h := len(diff)
	w := 0
	if h > 0 {
		w = len(diff[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, heatColor(diff[y][x]))
		}
	}
	return img
}

// heatColor maps v in [0,1] onto a black-red-yellow ramp.
func heatColor(v float64) color.NRGBA {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	r := clamp01(2 * v)
	g := clamp01(2*v - 1)
	return color.NRGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WriteDiffMaps writes one heatmap PNG per scored pair that kept its diff
// map, named diff_<original>_<optimized>.png under dir.
func WriteDiffMaps(dir string, rep *analysis.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create diff dir: %w", err)
	}
	for _, p := range rep.Pairs {
		if p.DiffMap == nil {
			continue
		}
		name := fmt.Sprintf("diff_%04d_%04d.png", p.BaselineIndex, p.CandidateIndex)
		if err := imaging.Save(DiffHeatmap(p.DiffMap), dir+"/"+name); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

package ssim

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage reports an image that cannot be compared (zero area).
// It is fatal to the single comparison only, never to a whole batch.
var ErrInvalidImage = errors.New("invalid image")

// SSIM stabilizing constants for 8-bit dynamic range: (K*L)^2 with
// K1=0.01, K2=0.03, L=255.
const (
	c1 = 6.5025
	c2 = 58.5225
)

// WindowRadius sets the local statistics window to (2r+1) x (2r+1) pixels.
// Exposed so cache keys can record the scoring parameters.
const WindowRadius = 3

// normEps guards the diff-map min-max normalization against a perfectly
// uniform map (max == min).
const normEps = 1e-8

// Result is the outcome of one pairwise comparison.
type Result struct {
	// Score is the mean structural similarity in [0, 1]; 1.0 = identical.
	Score float64

	// DiffMap holds per-pixel local dissimilarity, row-major, same shape as
	// the first image, min-max normalized to [0, 1]. Identical inputs yield
	// an all-zero map.
	DiffMap [][]float64
}

// Compare scores the structural similarity of two images.
//
// If b's dimensions differ from a's, b is resized to match before scoring.
// Both images are reduced to luminance, so channel layout differences are
// reconciled rather than rejected. A zero-area input fails with
// [ErrInvalidImage].
func Compare(a, b image.Image) (*Result, error) {
	if err := checkArea("first", a); err != nil {
		return nil, err
	}
	if err := checkArea("second", b); err != nil {
		return nil, err
	}

	w := a.Bounds().Dx()
	h := a.Bounds().Dy()
	if b.Bounds().Dx() != w || b.Bounds().Dy() != h {
		b = imaging.Resize(b, w, h, imaging.Lanczos)
	}

	x := luminance(a, w, h)
	y := luminance(b, w, h)

	simMap, mean := ssimMap(x, y, w, h)

	diff := normalizeDissimilarity(simMap, w, h)

	score := mean
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return &Result{Score: score, DiffMap: diff}, nil
}

func checkArea(which string, img image.Image) error {
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return fmt.Errorf("%w: %s image has zero area", ErrInvalidImage, which)
	}
	return nil
}

// luminance flattens an image into a row-major float64 luminance plane.
func luminance(img image.Image, w, h int) []float64 {
	gray := imaging.Grayscale(img)
	out := make([]float64, w*h)
	// Grayscale output is NRGBA with R == G == B.
	for i := range out {
		out[i] = float64(gray.Pix[i*4])
	}
	return out
}

// ssimMap computes the per-pixel SSIM between two equal-shape luminance
// planes using box-window local statistics, and the mean over all pixels.
// Summed-area tables keep the cost linear in the pixel count regardless of
// window size.
func ssimMap(x, y []float64, w, h int) ([]float64, float64) {
	sx := integral(x, w, h)
	sy := integral(y, w, h)
	sxx := integralProduct(x, x, w, h)
	syy := integralProduct(y, y, w, h)
	sxy := integralProduct(x, y, w, h)

	out := make([]float64, w*h)
	var total float64
	for py := 0; py < h; py++ {
		y0, y1 := clamp(py-WindowRadius, h), clamp(py+WindowRadius+1, h)
		for px := 0; px < w; px++ {
			x0, x1 := clamp(px-WindowRadius, w), clamp(px+WindowRadius+1, w)
			n := float64((x1 - x0) * (y1 - y0))

			mx := windowSum(sx, w, x0, y0, x1, y1) / n
			my := windowSum(sy, w, x0, y0, x1, y1) / n
			vx := windowSum(sxx, w, x0, y0, x1, y1)/n - mx*mx
			vy := windowSum(syy, w, x0, y0, x1, y1)/n - my*my
			cov := windowSum(sxy, w, x0, y0, x1, y1)/n - mx*my

			s := ((2*mx*my + c1) * (2*cov + c2)) /
				((mx*mx + my*my + c1) * (vx + vy + c2))
			out[py*w+px] = s
			total += s
		}
	}
	return out, total / float64(w*h)
}

// normalizeDissimilarity converts a similarity map into a [0,1] diff map:
// d = 1 - s, then (d - min) / (max - min + eps). A uniform map normalizes
// to all zeros thanks to the epsilon guard.
func normalizeDissimilarity(sim []float64, w, h int) [][]float64 {
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, s := range sim {
		d := 1 - s
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}

	out := make([][]float64, h)
	scale := maxD - minD + normEps
	for py := 0; py < h; py++ {
		row := make([]float64, w)
		for px := 0; px < w; px++ {
			row[px] = (1 - sim[py*w+px] - minD) / scale
		}
		out[py] = row
	}
	return out
}

// integral builds a summed-area table with an extra zero row and column,
// so window sums reduce to four lookups.
func integral(v []float64, w, h int) []float64 {
	s := make([]float64, (w+1)*(h+1))
	for y := 1; y <= h; y++ {
		var rowSum float64
		for x := 1; x <= w; x++ {
			rowSum += v[(y-1)*w+(x-1)]
			s[y*(w+1)+x] = s[(y-1)*(w+1)+x] + rowSum
		}
	}
	return s
}

// integralProduct builds a summed-area table of the element-wise product.
func integralProduct(a, b []float64, w, h int) []float64 {
	s := make([]float64, (w+1)*(h+1))
	for y := 1; y <= h; y++ {
		var rowSum float64
		for x := 1; x <= w; x++ {
			rowSum += a[(y-1)*w+(x-1)] * b[(y-1)*w+(x-1)]
			s[y*(w+1)+x] = s[(y-1)*(w+1)+x] + rowSum
		}
	}
	return s
}

// windowSum reads the sum over [x0,x1) x [y0,y1) from a summed-area table.
func windowSum(s []float64, w, x0, y0, x1, y1 int) float64 {
	sw := w + 1
	return s[y1*sw+x1] - s[y0*sw+x1] - s[y1*sw+x0] + s[y0*sw+x0]
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

package descriptor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Defaults for the downsample target and histogram resolution. Both sides of
// a comparison must use the same values; the fixed target size makes the
// descriptor independent of the source frame dimensions.
const (
	DefaultSize = 64 // downsample target, pixels per side
	DefaultBins = 64 // histogram bins over the 0-255 intensity range
)

// Descriptor is a unit-L2-normalized luminance histogram.
type Descriptor []float64

// Options controls descriptor computation. The zero value selects the
// defaults.
type Options struct {
	Size int // downsample target per side; DefaultSize when <= 0
	Bins int // histogram bin count; DefaultBins when <= 0
}

func (o Options) size() int {
	if o.Size > 0 {
		return o.Size
	}
	return DefaultSize
}

func (o Options) bins() int {
	if o.Bins > 0 {
		return o.Bins
	}
	return DefaultBins
}

// Compute returns the descriptor for img.
//
// The image is converted to grayscale, downsampled to a fixed Size x Size
// grid with nearest-neighbour resampling (chosen for determinism), and
// bucketed into Bins intensity bins. The histogram is normalized to unit L2
// norm, so [Similarity] reduces to a plain dot product.
func Compute(img image.Image, opts Options) Descriptor {
	size, bins := opts.size(), opts.bins()

	gray := imaging.Resize(imaging.Grayscale(img), size, size, imaging.NearestNeighbor)

	hist := make(Descriptor, bins)
	// Grayscale output has R == G == B; the red channel is the luminance.
	for i := 0; i < len(gray.Pix); i += 4 {
		bin := int(gray.Pix[i]) * bins / 256
		hist[bin]++
	}

	var norm float64
	for _, v := range hist {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range hist {
			hist[i] /= norm
		}
	}
	return hist
}

// Similarity returns the cosine similarity between two descriptors, in
// [0, 1] for the non-negative histogram vectors produced by [Compute].
// Mismatched lengths or zero vectors yield 0.
func Similarity(a, b Descriptor) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

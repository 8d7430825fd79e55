package ssim

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func noiseImage(t *testing.T, w, h int, seed int64) image.Image {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func gradientImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 255) / max(w-1, 1))})
		}
	}
	return img
}

func TestCompareIdenticalImages(t *testing.T) {
	img := noiseImage(t, 32, 24, 1)

	res, err := Compare(img, img)
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	if math.Abs(res.Score-1.0) > 1e-9 {
		t.Errorf("Score = %v, want 1.0", res.Score)
	}
	if len(res.DiffMap) != 24 || len(res.DiffMap[0]) != 32 {
		t.Fatalf("DiffMap shape = %dx%d, want 24x32", len(res.DiffMap), len(res.DiffMap[0]))
	}
	for y, row := range res.DiffMap {
		for x, v := range row {
			if v != 0 {
				t.Fatalf("DiffMap[%d][%d] = %v, want 0 for identical inputs", y, x, v)
			}
			if math.IsNaN(v) {
				t.Fatalf("DiffMap[%d][%d] is NaN; epsilon guard failed", y, x)
			}
		}
	}
}

func TestCompareSymmetry(t *testing.T) {
	a := noiseImage(t, 40, 40, 2)
	b := noiseImage(t, 40, 40, 3)

	ab, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Compare(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ab.Score-ba.Score) > 1e-9 {
		t.Errorf("Score not symmetric: %v vs %v", ab.Score, ba.Score)
	}
}

func TestCompareDifferentImagesScoreBelowOne(t *testing.T) {
	a := gradientImage(32, 32)
	b := noiseImage(t, 32, 32, 4)

	res, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score >= 1.0 {
		t.Errorf("Score = %v, want < 1.0 for dissimilar images", res.Score)
	}
	if res.Score < 0 || res.Score > 1 {
		t.Errorf("Score = %v, outside [0,1]", res.Score)
	}
}

func TestCompareDiffMapRange(t *testing.T) {
	a := gradientImage(48, 16)
	b := noiseImage(t, 48, 16, 5)

	res, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	var sawHigh bool
	for _, row := range res.DiffMap {
		for _, v := range row {
			if v < 0 || v > 1 {
				t.Fatalf("DiffMap value %v outside [0,1]", v)
			}
			if v > 0.9 {
				sawHigh = true
			}
		}
	}
	if !sawHigh {
		t.Error("min-max normalization should push the worst region near 1")
	}
}

func TestCompareResizesMismatchedDimensions(t *testing.T) {
	a := gradientImage(32, 32)
	b := gradientImage(64, 64)

	res, err := Compare(a, b)
	if err != nil {
		t.Fatalf("dimension mismatch must not be an error: %v", err)
	}
	// Map follows the first image's shape.
	if len(res.DiffMap) != 32 || len(res.DiffMap[0]) != 32 {
		t.Errorf("DiffMap shape = %dx%d, want 32x32", len(res.DiffMap), len(res.DiffMap[0]))
	}
	// Same gradient at a different scale should still score as very similar.
	if res.Score < 0.9 {
		t.Errorf("Score = %v, want >= 0.9 for rescaled identical content", res.Score)
	}
}

func TestCompareZeroAreaImage(t *testing.T) {
	ok := noiseImage(t, 8, 8, 6)
	empty := image.NewGray(image.Rect(0, 0, 0, 0))

	if _, err := Compare(empty, ok); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Compare(empty, ok) error = %v, want ErrInvalidImage", err)
	}
	if _, err := Compare(ok, empty); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Compare(ok, empty) error = %v, want ErrInvalidImage", err)
	}
	if _, err := Compare(nil, ok); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Compare(nil, ok) error = %v, want ErrInvalidImage", err)
	}
}

func TestCompareUniformImages(t *testing.T) {
	// Uniform but different brightness: similarity map is constant, so the
	// normalized diff map must degenerate to zeros, not NaN.
	a := image.NewGray(image.Rect(0, 0, 16, 16))
	b := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range a.Pix {
		a.Pix[i] = 100
		b.Pix[i] = 180
	}

	res, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score >= 1.0 {
		t.Errorf("Score = %v, want < 1.0 for different brightness", res.Score)
	}
	for _, row := range res.DiffMap {
		for _, v := range row {
			if math.IsNaN(v) {
				t.Fatal("NaN in diff map for uniform inputs")
			}
			if v != 0 {
				t.Fatalf("uniform similarity map should normalize to zeros, got %v", v)
			}
		}
	}
}

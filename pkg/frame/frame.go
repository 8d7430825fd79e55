package frame

import (
	"fmt"
	"image"
	"time"
)

// Record is one captured frame. Immutable once loaded; downstream packages
// treat the image and metadata as read-only.
type Record struct {
	// Index is the frame number parsed from the filename. Indices within a
	// sequence are unique and ascending but need not be contiguous.
	Index int

	// Path is the source file the frame was decoded from.
	Path string

	// Hash is the hex SHA-256 of the source file contents. Used as a stable
	// identity for caching score results across runs.
	Hash string

	// Image is the decoded pixel data.
	Image image.Image

	// RenderTimeMS is the per-frame render duration in milliseconds from the
	// timing sidecar. Only meaningful when HasRenderTime is true.
	RenderTimeMS float64

	// HasRenderTime reports whether RenderTimeMS was present in the sidecar.
	HasRenderTime bool

	// Timestamp is the capture instant from the sidecar, or the zero time
	// when absent.
	Timestamp time.Time
}

// Sequence is an ordered run of frames, sorted strictly ascending by Index.
type Sequence []Record

// Indices returns the frame indices in order.
func (s Sequence) Indices() []int {
	out := make([]int, len(s))
	for i, r := range s {
		out[i] = r.Index
	}
	return out
}

// validate checks the sequence invariants: strictly increasing indices,
// no duplicates.
func (s Sequence) validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Index <= s[i-1].Index {
			return fmt.Errorf("sequence indices not strictly increasing: %d after %d", s[i].Index, s[i-1].Index)
		}
	}
	return nil
}

// DecodeError reports a frame file that could not be decoded as an image.
// It is a warning, not a failure: the frame is dropped and the sequence
// shortens.
type DecodeError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error { return e.Err }

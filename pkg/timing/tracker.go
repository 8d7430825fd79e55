package timing

// Tracker accumulates frame-time samples and summarizes them on demand.
// It replaces the original tool's subclassed on-screen trackers with two
// interchangeable implementations composed by the caller: a cumulative
// tracker covering the whole run and a windowed tracker that follows the
// recent trend.
type Tracker interface {
	// Reset discards all accumulated samples.
	Reset()
	// Update records one frame time in milliseconds.
	Update(frameTimeMS float64)
	// Summarize returns statistics over the tracked samples. With no
	// samples it returns an unusable summary.
	Summarize() Summary
}

// CumulativeTracker keeps every sample since the last reset.
type CumulativeTracker struct {
	samples []float64
}

// NewCumulativeTracker creates an empty cumulative tracker.
func NewCumulativeTracker() *CumulativeTracker {
	return &CumulativeTracker{}
}

// Reset discards all samples.
func (t *CumulativeTracker) Reset() { t.samples = t.samples[:0] }

// Update appends one sample.
func (t *CumulativeTracker) Update(frameTimeMS float64) {
	t.samples = append(t.samples, frameTimeMS)
}

// Summarize returns statistics over all samples since the last reset.
func (t *CumulativeTracker) Summarize() Summary {
	if len(t.samples) == 0 {
		return emptySummary()
	}
	return summarize(t.samples)
}

// WindowedTracker keeps only the most recent window of samples, so its
// summary follows the current trend instead of the whole run.
type WindowedTracker struct {
	window  int
	samples []float64
	// total counts every update since the last reset, including samples
	// that have since fallen out of the window.
	total int
}

// DefaultWindow is the sample window used when none is specified.
const DefaultWindow = 120

// NewWindowedTracker creates a tracker over the last window samples.
// A non-positive window falls back to [DefaultWindow].
func NewWindowedTracker(window int) *WindowedTracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &WindowedTracker{window: window}
}

// Reset discards all samples and the update count.
func (t *WindowedTracker) Reset() {
	t.samples = t.samples[:0]
	t.total = 0
}

// Update appends one sample, evicting the oldest once the window is full.
func (t *WindowedTracker) Update(frameTimeMS float64) {
	t.total++
	t.samples = append(t.samples, frameTimeMS)
	if len(t.samples) > t.window {
		t.samples = t.samples[1:]
	}
}

// Summarize returns statistics over the samples currently in the window.
func (t *WindowedTracker) Summarize() Summary {
	if len(t.samples) == 0 {
		return emptySummary()
	}
	return summarize(t.samples)
}

// Total reports how many samples were observed since the last reset,
// including evicted ones.
func (t *WindowedTracker) Total() int { return t.total }

var (
	_ Tracker = (*CumulativeTracker)(nil)
	_ Tracker = (*WindowedTracker)(nil)
)

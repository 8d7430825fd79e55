// Package timing aggregates per-frame timing samples into run summaries and
// derives the relative improvement between a baseline and a candidate run.
//
// Samples come from the capture sidecar: explicit render_time_ms values
// when present, otherwise consecutive timestamp deltas, but only when
// every frame in the run carries a timestamp. Partial timestamp coverage
// yields no samples at all rather than a misleading partial derivation.
//
// A run with no usable samples produces a Summary with NaN statistics and
// [ErrInsufficientTimingData]; improvement is then skipped, never silently
// treated as zero.
package timing

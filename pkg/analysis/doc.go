// Package analysis runs the full comparison pipeline for one baseline /
// candidate directory pair: load both capture runs, establish the frame
// correspondence, score every matched pair, aggregate timing, and assemble
// a Report for the downstream writers.
//
// Pair scoring fans out across a bounded worker pool; each comparison reads
// disjoint, immutable frames and allocates its own result, so no locking is
// needed. Per-pair failures are isolated: a pair that cannot
// be scored is recorded as failed and excluded from the visual aggregates,
// and the run carries on. Only structural failures (an empty capture
// directory) abort the analysis.
package analysis

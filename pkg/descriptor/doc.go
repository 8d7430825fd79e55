// Package descriptor computes compact visual fingerprints used to find
// likely frame matches across two capture runs.
//
// A descriptor is a luminance intensity histogram taken over a fixed,
// size-invariant downsampling of the frame, normalized to unit L2 length.
// Descriptors are only used for matching, never for divergence scoring:
// two frames with similar global luminance distributions are candidates for
// "the same moment", nothing more.
//
// Computation is deterministic and pure. Descriptors are cheap enough to
// recompute per comparison and are never persisted.
package descriptor

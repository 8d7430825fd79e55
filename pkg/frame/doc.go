// Package frame loads captured render output into ordered frame sequences.
//
// A capture directory contains image files whose names carry a numeric frame
// index (e.g. frame_0042.png) plus an optional timing.json sidecar mapping
// string frame indices to per-frame timing metadata. [Load] decodes every
// image it can, attaches timing where present, and returns a [Sequence]
// sorted by ascending index. Frames that fail to decode are dropped with a
// warning rather than failing the whole load, so a sequence may be shorter
// than the number of files found.
//
// Sequences are read-only after loading. Downstream packages (match, ssim,
// timing, analysis) share them without copying or locking.
package frame

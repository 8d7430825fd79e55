// Package pkg provides the core libraries for framelens frame comparison.
//
// # Overview
//
// Framelens compares two capture runs of rendered frames, pairing frames
// across the runs, scoring how much each pair diverges visually, and
// aggregating per-frame timing. The pkg directory is organized as:
//
//  1. [frame] - capture loading (images, indices, timing sidecars)
//  2. [descriptor] / [match] - frame fingerprints and correspondence
//  3. [ssim] - pairwise divergence scoring with diff maps
//  4. [timing] - per-frame timing aggregation and trackers
//  5. [analysis] - pipeline orchestration producing a Report
//  6. [report] - JSON/HTML/PNG/SVG artifact writers
//  7. [cache] / [history] - score cache and run history backends
//
// # Architecture
//
// The typical data flow through framelens:
//
//	capture directories (PNG/JPEG/BMP/WebP + timing.json)
//	         ↓
//	    [frame] package (load, hash, attach metadata)
//	         ↓
//	    [descriptor] + [match] (establish the correspondence)
//	         ↓
//	    [ssim] + [timing] (score pairs, aggregate durations)
//	         ↓
//	    [analysis] Report → [report] artifacts, [history] entry
//
// # Quick Start
//
//	loader := &frame.Loader{}
//	original, _ := loader.Load("captures/original")
//	optimized, _ := loader.Load("captures/optimized")
//	rep, err := analysis.Run(ctx, original, optimized,
//		"captures/original", "captures/optimized", analysis.Options{})
package pkg

// Package ssim scores visual divergence between two frames already agreed
// to correspond.
//
// The score is a windowed structural similarity: local luminance mean,
// variance and covariance are combined per pixel and averaged into a scalar
// in [0, 1], where 1.0 means identical. Alongside the scalar, Compare
// returns a full-resolution diff map of local dissimilarity, min-max
// normalized to [0, 1] so downstream heatmap rendering needs no further
// scaling.
//
// Images of mismatched dimensions are reconciled by resizing the second to
// the first's bounds. That resize can itself introduce divergence; it is a
// documented approximation, not an error.
package ssim

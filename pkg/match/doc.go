// Package match pairs frames across two capture runs of possibly unequal
// length.
//
// When both runs have the same frame count the pairing is positional: the
// runs were captured in sync and frame i of one run is frame i of the other.
// Descriptors are not computed at all in that case.
//
// When the counts differ the matcher falls back to a greedy descriptor
// search: baseline frames claim their best-scoring candidate frame in
// ascending index order, and a claim is only committed when the cosine
// similarity clears a threshold. Unmatched frames on either side are a
// normal outcome, not an error; they are simply absent from the result.
//
// The greedy claim order is first-come-first-served by design: an earlier
// baseline frame can claim a candidate that a later baseline frame would
// have matched strictly better. This is a known limitation kept for
// reproducibility; replacing it with an optimal assignment would change
// observable pairings.
package match

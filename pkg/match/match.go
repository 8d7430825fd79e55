package match

import (
	"github.com/framelens/framelens/pkg/descriptor"
	"github.com/framelens/framelens/pkg/frame"
)

// DefaultThreshold is the minimum cosine similarity a greedy pairing must
// reach to be committed.
const DefaultThreshold = 0.7

// Pair links one baseline frame to one candidate frame by position within
// their sequences (not by frame index; use the sequences to resolve those).
type Pair struct {
	A int // position in the baseline sequence
	B int // position in the candidate sequence
}

// Correspondence is the one-to-one pairing produced for one baseline /
// candidate analysis. Positions absent from Pairs were left unmatched.
type Correspondence struct {
	Pairs []Pair

	// Positional reports whether the equal-length fast path was taken.
	// When true, no descriptors were computed.
	Positional bool
}

// UnmatchedA returns the count of baseline positions not in any pair.
func (c Correspondence) UnmatchedA(lenA int) int { return lenA - len(c.Pairs) }

// UnmatchedB returns the count of candidate positions not in any pair.
func (c Correspondence) UnmatchedB(lenB int) int { return lenB - len(c.Pairs) }

// Options configures matching. The zero value uses [DefaultThreshold] and
// default descriptor settings.
type Options struct {
	// Threshold is the minimum similarity for a greedy pairing.
	// DefaultThreshold when <= 0.
	Threshold float64

	// Descriptor configures fingerprint computation for the greedy path.
	Descriptor descriptor.Options
}

func (o Options) threshold() float64 {
	if o.Threshold > 0 {
		return o.Threshold
	}
	return DefaultThreshold
}

// Match produces a one-to-one correspondence between sequences a and b.
//
// Equal-length sequences pair positionally. Otherwise each baseline frame,
// in ascending index order, claims the unclaimed candidate frame with the
// highest descriptor similarity (ties broken by lowest candidate position);
// the claim is dropped if the similarity does not exceed the threshold.
// Worst case cost is O(len(a) * len(b)) similarity comparisons.
func Match(a, b frame.Sequence, opts Options) Correspondence {
	if len(a) == len(b) {
		pairs := make([]Pair, len(a))
		for i := range a {
			pairs[i] = Pair{A: i, B: i}
		}
		return Correspondence{Pairs: pairs, Positional: true}
	}

	threshold := opts.threshold()

	// Candidate descriptors are needed repeatedly; compute them once.
	descB := make([]descriptor.Descriptor, len(b))
	for i := range b {
		descB[i] = descriptor.Compute(b[i].Image, opts.Descriptor)
	}

	claimed := make([]bool, len(b))
	var pairs []Pair
	for i := range a {
		descA := descriptor.Compute(a[i].Image, opts.Descriptor)

		best, bestSim := -1, -1.0
		for j := range b {
			if claimed[j] {
				continue
			}
			// Strict > keeps the lowest candidate position on ties.
			if sim := descriptor.Similarity(descA, descB[j]); sim > bestSim {
				best, bestSim = j, sim
			}
		}
		if best >= 0 && bestSim > threshold {
			claimed[best] = true
			pairs = append(pairs, Pair{A: i, B: best})
		}
	}
	return Correspondence{Pairs: pairs}
}

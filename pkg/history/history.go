// Package history persists one summary line per analysis run so improvement
// trends across successive retunes can be inspected later.
//
// Two backends implement the same Store interface: a local JSON-lines file
// under the user data directory (default) and a MongoDB collection for
// teams that share a history across machines.
package history

import (
	"context"
	"time"
)

// Entry is the durable summary of one completed analysis run.
type Entry struct {
	ID           string    `json:"id" bson:"_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	BaselineDir  string    `json:"baseline_dir" bson:"baseline_dir"`
	CandidateDir string    `json:"candidate_dir" bson:"candidate_dir"`

	BaselineMeanMS  float64 `json:"baseline_mean_ms" bson:"baseline_mean_ms"`
	CandidateMeanMS float64 `json:"candidate_mean_ms" bson:"candidate_mean_ms"`
	ImprovementPct  float64 `json:"improvement_pct" bson:"improvement_pct"`

	MeanScore float64 `json:"mean_score" bson:"mean_score"`
	Pairs     int     `json:"pairs" bson:"pairs"`
}

// Store records and lists analysis entries.
type Store interface {
	// Append records one entry.
	Append(ctx context.Context, e Entry) error

	// List returns up to limit entries, newest first. A non-positive limit
	// returns everything.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close releases backend resources.
	Close() error
}

// Package report turns an analysis run into shareable artifacts: the JSON
// results document, PNG comparison charts, a static HTML page, per-pair
// divergence heatmaps, and a bipartite correspondence diagram rendered
// through Graphviz.
//
// The package consumes an [analysis.Report] and never recomputes scores;
// every writer works off the same [Document] so the artifacts agree.
package report

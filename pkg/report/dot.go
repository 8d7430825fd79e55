package report

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// CorrespondenceDOT builds a bipartite Graphviz DOT graph of the frame
// correspondence: original frames in one rank, optimized frames in the
// other, matched pairs joined by an edge labeled with the score. Unmatched
// frames are drawn dashed.
//
// The index slices carry every frame index on each side, in sequence order;
// pairs reference those indices.
func CorrespondenceDOT(originalIndices, optimizedIndices []int, pairs []PairEntry) string {
	matchedA := make(map[int]bool, len(pairs))
	matchedB := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		matchedA[p.OriginalIndex] = true
		matchedB[p.OptimizedIndex] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph correspondence {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=16, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	buf.WriteString("  { rank=same;\n")
	for _, idx := range originalIndices {
		fmt.Fprintf(&buf, "    %q [label=\"original %d\", %s];\n",
			nodeA(idx), idx, nodeAttrs(matchedA[idx], "#FF9999"))
	}
	buf.WriteString("  }\n")

	buf.WriteString("  { rank=same;\n")
	for _, idx := range optimizedIndices {
		fmt.Fprintf(&buf, "    %q [label=\"optimized %d\", %s];\n",
			nodeB(idx), idx, nodeAttrs(matchedB[idx], "#66B2FF"))
	}
	buf.WriteString("  }\n\n")

	for _, p := range pairs {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%.3f\", fontsize=12];\n",
			nodeA(p.OriginalIndex), nodeB(p.OptimizedIndex), p.Score)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeA(idx int) string { return fmt.Sprintf("o%d", idx) }
func nodeB(idx int) string { return fmt.Sprintf("p%d", idx) }

func nodeAttrs(matched bool, fill string) string {
	if matched {
		return fmt.Sprintf("fillcolor=%q", fill)
	}
	return "style=\"rounded,filled,dashed\", fillcolor=white, color=grey"
}

// RenderSVG renders a DOT graph to SVG in-process using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root tag so the diagram scales cleanly
// when embedded in the HTML report.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

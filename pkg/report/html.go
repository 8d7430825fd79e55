package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
)

// reportTemplate is the static HTML page. It references the chart PNGs and
// the correspondence SVG by their conventional relative names, so the page
// works when the whole output directory is served or opened locally.
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>framelens report {{.ID}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 70rem; color: #222; }
  h1 { font-size: 1.4rem; }
  table { border-collapse: collapse; margin: 1rem 0; }
  th, td { border: 1px solid #ccc; padding: 0.35rem 0.8rem; text-align: right; }
  th { background: #f4f4f4; }
  td.label, th.label { text-align: left; }
  .good { color: #0a7a2f; }
  .bad { color: #b3261e; }
  .muted { color: #777; }
  img, object { max-width: 100%; }
</style>
</head>
<body>
<h1>Frame comparison report</h1>
<p class="muted">{{.CreatedAt.Format "2006-01-02 15:04:05 MST"}} &middot; run {{.ID}}</p>
<p>
  Original: <code>{{.OriginalDir}}</code> ({{.OriginalFrames}} frames)<br>
  Optimized: <code>{{.OptimizedDir}}</code> ({{.OptimizedFrames}} frames)
</p>

<h2>Timing</h2>
{{if and .Original .Optimized}}
<table>
  <tr><th class="label"></th><th>original</th><th>optimized</th></tr>
  <tr><td class="label">avg frame time (ms)</td><td>{{printf "%.3f" .Original.AvgFrameTimeMS}}</td><td>{{printf "%.3f" .Optimized.AvgFrameTimeMS}}</td></tr>
  <tr><td class="label">estimated FPS</td><td>{{printf "%.1f" .Original.EstimatedFPS}}</td><td>{{printf "%.1f" .Optimized.EstimatedFPS}}</td></tr>
  <tr><td class="label">min / max (ms)</td><td>{{printf "%.3f / %.3f" .Original.MinMS .Original.MaxMS}}</td><td>{{printf "%.3f / %.3f" .Optimized.MinMS .Optimized.MaxMS}}</td></tr>
  <tr><td class="label">p95 (ms)</td><td>{{printf "%.3f" .Original.P95MS}}</td><td>{{printf "%.3f" .Optimized.P95MS}}</td></tr>
</table>
{{if .ImprovementPercentage}}
<p>Improvement: <strong class="{{if ge (deref .ImprovementPercentage) 0.0}}good{{else}}bad{{end}}">{{printf "%+.1f%%" (deref .ImprovementPercentage)}}</strong></p>
{{end}}
<p><img src="frame_time.png" alt="frame time chart"> <img src="fps.png" alt="fps chart"></p>
{{else}}
<p class="muted">Timing data unavailable for at least one run.</p>
{{end}}

<h2>Visual divergence</h2>
{{if .Visual.MeanScore}}
<p>Mean score {{printf "%.4f" (deref .Visual.MeanScore)}}, minimum {{printf "%.4f" (deref .Visual.MinScore)}}.
{{if .Visual.PositionalMatch}}Frames paired positionally.{{else}}Frames paired by descriptor matching.{{end}}</p>
{{end}}
<table>
  <tr><th>original</th><th>optimized</th><th>score</th></tr>
  {{range .Visual.Pairs}}
  <tr><td>{{.OriginalIndex}}</td><td>{{.OptimizedIndex}}</td><td>{{printf "%.4f" .Score}}</td></tr>
  {{end}}
</table>
{{if .Visual.Failed}}
<h3>Unscorable pairs</h3>
<table>
  <tr><th>original</th><th>optimized</th><th class="label">reason</th></tr>
  {{range .Visual.Failed}}
  <tr><td>{{.OriginalIndex}}</td><td>{{.OptimizedIndex}}</td><td class="label">{{.Reason}}</td></tr>
  {{end}}
</table>
{{end}}
<p class="muted">{{.Visual.UnmatchedOriginal}} unmatched original frames, {{.Visual.UnmatchedOptimized}} unmatched optimized frames.</p>

<h2>Correspondence</h2>
<object data="correspondence.svg" type="image/svg+xml">correspondence diagram</object>
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"deref": func(p *float64) float64 { return *p },
}).Parse(reportTemplate))

// RenderHTML writes the static HTML page for a document to w.
func RenderHTML(w io.Writer, doc *Document) error {
	if err := htmlTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// WriteHTML writes the static HTML page to path.
func WriteHTML(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	defer f.Close()
	return RenderHTML(f, doc)
}

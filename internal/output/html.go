package output

import (
	"html/template"
	"io"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Report           *bench.Report
	ThresholdResults []threshold.Result
}

// GenerateHTMLReport writes a standalone HTML comparison report.
func GenerateHTMLReport(w io.Writer, report *bench.Report, thresholdResults []threshold.Result) error {
	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC1123),
		Report:           report,
		ThresholdResults: thresholdResults,
	}
	tmpl, err := template.New("report").Parse(htmlReportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Crawl Benchmark Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1f2933; }
  h1 { font-size: 1.5rem; }
  h2 { font-size: 1.15rem; margin-top: 2rem; }
  table { border-collapse: collapse; margin-top: 0.75rem; }
  th, td { border: 1px solid #cbd2d9; padding: 0.35rem 0.75rem; text-align: left; font-size: 0.9rem; }
  th { background: #f5f7fa; }
  .ok { color: #0e7a3b; }
  .fail { color: #b3261e; }
  .muted { color: #7b8794; }
</style>
</head>
<body>
<h1>Crawl Benchmark Report</h1>
<p class="muted">Generated {{.GeneratedAt}} &middot; {{.Report.TargetCount}} targets</p>

<h2>Strategy Comparison</h2>
<table>
<tr><th>Strategy</th><th>Duration (ms)</th><th>Speedup</th><th>Successes</th><th>Failures</th><th>P50 (ms)</th><th>P99 (ms)</th></tr>
{{- $speedups := .Report.Speedups }}
{{- range .Report.Results }}
<tr>
  <td>{{.Strategy}}</td>
  {{- if .Error }}
  <td colspan="6" class="fail">{{.Error}}</td>
  {{- else }}
  <td>{{printf "%.1f" .Run.ElapsedMs}}</td>
  <td>{{with index $speedups .Strategy}}{{printf "%.2fx" .}}{{else}}&mdash;{{end}}</td>
  <td class="ok">{{.Run.Successes}}</td>
  <td{{if gt .Run.Failures 0}} class="fail"{{end}}>{{.Run.Failures}}</td>
  <td>{{printf "%.1f" .Stats.P50LatencyMs}}</td>
  <td>{{printf "%.1f" .Stats.P99LatencyMs}}</td>
  {{- end }}
</tr>
{{- end }}
</table>

{{- if .ThresholdResults }}
<h2>Thresholds</h2>
<table>
<tr><th>Assertion</th><th>Actual</th><th>Result</th></tr>
{{- range .ThresholdResults }}
<tr>
  <td>{{.Threshold.Raw}}</td>
  <td>{{printf "%.2f" .Actual}}</td>
  <td class="{{if .Pass}}ok{{else}}fail{{end}}">{{if .Pass}}pass{{else}}fail{{end}}</td>
</tr>
{{- end }}
</table>
{{- end }}

{{- range .Report.Results }}
{{- if .Run }}
<h2>Per-target outcomes &mdash; {{.Strategy}}</h2>
<table>
<tr><th>URL</th><th>Status</th><th>Title</th><th>Links</th><th>Elapsed (ms)</th><th>Retries</th><th>Result</th></tr>
{{- range .Run.Outcomes }}
<tr>
  <td>{{.Target}}</td>
  <td>{{if .StatusCode}}{{.StatusCode}}{{else}}&mdash;{{end}}</td>
  <td>{{.Title}}</td>
  <td>{{.LinkCount}}</td>
  <td>{{printf "%.1f" .ElapsedMs}}</td>
  <td>{{.Retries}}</td>
  {{- if .Succeeded }}
  <td class="ok">ok</td>
  {{- else }}
  <td class="fail">{{.Reason}}</td>
  {{- end }}
</tr>
{{- end }}
</table>
{{- end }}
{{- end }}

</body>
</html>
`

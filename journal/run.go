package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// Run mirrors the runs table: one row per completed backtest.
type Run struct {
	RunID   string
	Created time.Time

	Instrument string
	Strategy   string
	Dataset    string // source file or URL, informational
	Mode       string // completion mode

	Start time.Time
	End   time.Time

	Capital      float64
	RealizedPL   float64
	TotalPL      float64
	AnnualReturn float64
	Sharpe       float64

	Trades int
	Wins   int
	Losses int

	WinRate     float64
	MaxDrawdown float64

	OrgPath     string
	Notes       []string
	NextActions []string
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the run as an org-mode research note at r.OrgPath.
func (r *Run) WriteOrg() error {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, buf.Bytes(), 0o644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Instrument}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:INSTRUMENT:  {{.Instrument}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:MODE:        {{.Mode}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:CAPITAL:     {{printf "%.2f" .Capital}}
:REALIZED_PL: {{printf "%.2f" .RealizedPL}}
:TOTAL_PL:    {{printf "%.2f" .TotalPL}}
:ANN_RETURN:  {{printf "%.2f" (mul100 .AnnualReturn)}}
:SHARPE:      {{printf "%.2f" .Sharpe}}
:MAX_DD_PCT:  {{printf "%.2f" (mul100 .MaxDrawdown)}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .WinRate)}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Realized P&L:     *{{printf "%.2f" .RealizedPL}}*
- Total P&L:        *{{printf "%.2f" .TotalPL}}*
- Annual Return:    *{{printf "%.2f" (mul100 .AnnualReturn)}}%*
- Sharpe Ratio:     *{{printf "%.2f" .Sharpe}}*
- Max Drawdown:     *{{printf "%.2f" (mul100 .MaxDrawdown)}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}

{{- if .NextActions }}

** Next Actions
{{- range .NextActions }}
- [ ] {{.}}
{{- end }}
{{- end }}
`

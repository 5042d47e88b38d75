package report

import (
	"fmt"
	"html/template"
	"strings"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: -apple-system, Helvetica, Arial, sans-serif; max-width: 860px; margin: 0 auto;">
<h1>Vantage Daily Report</h1>
<p>{{.Date.Format "Monday, 2 January 2006"}} · run {{.ID}}</p>
<hr>
{{range .Tickers}}
<div style="margin: 24px 0;">
  <h2>{{.Symbol}}{{if .Name}} — {{.Name}}{{end}}</h2>
  {{if .Err}}
  <p style="color: #dc3545;"><strong>Analysis failed:</strong> {{.Err}}</p>
  {{else}}
  {{with .Snapshot}}
  <p>
    Close <strong>{{metric .Price}}</strong> ·
    RSI14 {{metric .RSI14}} ·
    EMA9 {{metric .EMA9}} / EMA20 {{metric .EMA20}} ·
    VWAP20 {{metric .VWAP}} ·
    ATR14 {{metric .ATR14}} ·
    HV20 {{metric .HistVol}}
  </p>
  {{end}}
  <p><strong>{{signalLine .Snapshot}}</strong></p>
  {{if .Backtests}}
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse; font-size: 13px;">
    <tr style="background: #f4f4f4;">
      <th>Strategy</th><th>Signals</th><th>Trades</th><th>Win rate</th>
      <th>Avg return</th><th>Profit factor</th><th>Max DD</th><th>Avg hold</th>
    </tr>
    {{range .Backtests}}{{if .}}
    <tr>
      <td>{{.Strategy}}</td>
      <td align="right">{{.TotalSignals}}</td>
      <td align="right">{{.TradesTaken}}</td>
      <td align="right">{{winrate .WinRate}}</td>
      <td align="right">{{.AvgReturnPct}}%</td>
      <td align="right">{{ratio .ProfitFactor}}</td>
      <td align="right">{{.MaxDrawdownPct}}%</td>
      <td align="right">{{.AvgHoldingDays}}d</td>
    </tr>
    {{end}}{{end}}
  </table>
  {{end}}
  {{if .Narrative}}<p style="background: #f8f9fa; padding: 12px;">{{.Narrative}}</p>{{end}}
  {{end}}
</div>
<hr>
{{end}}
<p style="color: #888; font-size: 12px;">
Backtest premiums are Black-Scholes estimates, not broker fills.
Generated {{.Generated.Format "2006-01-02 15:04:05 MST"}}.
</p>
</body>
</html>`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"metric":     fmtMetric,
	"ratio":      fmtRatio,
	"signalLine": signalLine,
	"winrate": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
}).Parse(htmlTemplate))

// RenderHTML renders the full report document.
func (r *Report) RenderHTML() (string, error) {
	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, r); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return sb.String(), nil
}

// RenderText renders a compact plain-text digest, used for terminal output.
func (r *Report) RenderText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Vantage Daily Report — %s (run %s)\n", r.Date.Format("2006-01-02"), r.ID)

	for _, t := range r.Tickers {
		fmt.Fprintf(&sb, "\n%s", t.Symbol)
		if t.Name != "" {
			fmt.Fprintf(&sb, " (%s)", t.Name)
		}
		sb.WriteString("\n")

		if t.Err != "" {
			fmt.Fprintf(&sb, "  analysis failed: %s\n", t.Err)
			continue
		}
		if s := t.Snapshot; s != nil {
			fmt.Fprintf(&sb, "  close %s  rsi %s  vwap %s  hv %s\n",
				fmtMetric(s.Price), fmtMetric(s.RSI14), fmtMetric(s.VWAP), fmtMetric(s.HistVol))
			fmt.Fprintf(&sb, "  %s\n", signalLine(s))
		}
		for _, b := range t.Backtests {
			if b == nil {
				continue
			}
			fmt.Fprintf(&sb, "  %-20s trades %2d  win %3.0f%%  avg %6.1f%%  pf %s\n",
				b.Strategy, b.TradesTaken, b.WinRate*100, b.AvgReturnPct, fmtRatio(b.ProfitFactor))
		}
		if t.Narrative != "" {
			fmt.Fprintf(&sb, "  %s\n", t.Narrative)
		}
	}
	return sb.String()
}

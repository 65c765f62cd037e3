package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/fortuna/nyx/internal/service"
	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/window"
)

// Report bundles the rendered subject and bodies for one night window
type Report struct {
	Subject string
	Text    string
	HTML    string
}

// view is the data handed to both templates
type view struct {
	Date          string
	WindowStart   string
	WindowEnd     string
	Games         []*store.GameRow
	Injuries      []*store.InjuryRow
	OutCount      int
	DayToDayCount int
	GeneratedAt   string
}

// statusColor picks the row highlight for an injury status label
func statusColor(status string) string {
	switch status {
	case "Out":
		return "#ffebeb"
	case "Day-To-Day":
		return "#fff8e1"
	default:
		return "#ffffff"
	}
}

const textBody = `NBA NIGHT REPORT {{.Date}}
Window: {{.WindowStart}} to {{.WindowEnd}} (Paris)

GAMES ({{len .Games}})
{{- if .Games}}
{{- range .Games}}
  {{.TipParis}}  {{.Away}} @ {{.Home}}{{if .Arena}}  {{.Arena}}{{end}}{{if .Postponed}}  [POSTPONED]{{end}}
{{- end}}
{{- else}}
  No games in this window.
{{- end}}

INJURY FLAGS ({{len .Injuries}} total, {{.OutCount}} out, {{.DayToDayCount}} day-to-day)
{{- if .Injuries}}
{{- range .Injuries}}
  [{{.Team}}] {{.Player}}: {{.Status}} (est. return {{.EstReturn}})
{{- end}}
{{- else}}
  No injuries reported for playing teams.
{{- end}}

Generated {{.GeneratedAt}}
`

const htmlBody = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #1a1a1a;">
  <h2>NBA Night Report {{.Date}}</h2>
  <p>Window: {{.WindowStart}} to {{.WindowEnd}} (Paris)</p>

  <h3>Games ({{len .Games}})</h3>
  {{if .Games -}}
  <table cellpadding="6" cellspacing="0" border="1" style="border-collapse: collapse;">
    <tr><th>Tip (Paris)</th><th>Matchup</th><th>Arena</th></tr>
    {{- range .Games}}
    <tr>
      <td>{{.TipParis}}</td>
      <td>{{.Away}} @ {{.Home}}{{if .Postponed}} (postponed){{end}}</td>
      <td>{{.Arena}}</td>
    </tr>
    {{- end}}
  </table>
  {{- else -}}
  <p>No games in this window.</p>
  {{- end}}

  <h3>Injury flags ({{len .Injuries}} total, {{.OutCount}} out, {{.DayToDayCount}} day-to-day)</h3>
  {{if .Injuries -}}
  <table cellpadding="6" cellspacing="0" border="1" style="border-collapse: collapse;">
    <tr><th>Team</th><th>Player</th><th>Status</th><th>Est. return</th></tr>
    {{- range .Injuries}}
    <tr style="background-color: {{statusColor .Status}};">
      <td>{{.Team}}</td>
      <td>{{.Player}}</td>
      <td>{{.Status}}</td>
      <td>{{.EstReturn}}</td>
    </tr>
    {{- end}}
  </table>
  {{- else -}}
  <p>No injuries reported for playing teams.</p>
  {{- end}}

  <p style="color: #888888; font-size: 12px;">Generated {{.GeneratedAt}}</p>
</body>
</html>
`

var textTmpl = texttemplate.Must(texttemplate.New("report").Parse(textBody))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("report").
	Funcs(htmltemplate.FuncMap{"statusColor": statusColor}).
	Parse(htmlBody))

// Render builds the nightly report for one snapshot
func Render(snap *service.Snapshot) (*Report, error) {
	paris := window.Location()

	v := view{
		Date:        snap.Date,
		WindowStart: snap.Window.Start.In(paris).Format("Mon 02 Jan 15:04"),
		WindowEnd:   snap.Window.End.In(paris).Format("Mon 02 Jan 15:04"),
		Games:       snap.Games,
		Injuries:    snap.Injuries,
		GeneratedAt: time.Now().In(paris).Format("2006-01-02 15:04 MST"),
	}

	for _, inj := range snap.Injuries {
		switch inj.Status {
		case "Out":
			v.OutCount++
		case "Day-To-Day":
			v.DayToDayCount++
		}
	}

	var text bytes.Buffer
	if err := textTmpl.Execute(&text, v); err != nil {
		return nil, fmt.Errorf("rendering text report: %w", err)
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return nil, fmt.Errorf("rendering html report: %w", err)
	}

	subject := fmt.Sprintf("NBA Night Report %s: %d games, %d injury flags",
		snap.Date, len(snap.Games), len(snap.Injuries))

	return &Report{
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

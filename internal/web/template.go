package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/mediapanel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Media Panel</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.connected { color: green; }
.disconnected { color: red; }
.rotenc { color: #36c; }
</style>
</head>
<body>
<h1>Media Panel</h1>

<h2>Last Input</h2>
<table>
<tr><th>Event</th><td>{{if .LastEvent}}{{.LastEvent}}{{else}}—{{end}}</td></tr>
<tr><th>At</th><td>{{if .LastEventAt.IsZero}}—{{else}}{{.LastEventAt.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
<tr><th>Total dispatched</th><td>{{.Dispatched}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
{{range $event, $count := .Counts}}<tr><th>{{$event}}</th><td>{{$count}}</td></tr>
{{else}}<tr><td>no events yet</td></tr>
{{end}}</table>

<h2>Pins</h2>
<table>
<tr><th>Line</th><th>Event</th><th>Active</th><th>Debounce</th><th>Rotary</th></tr>
{{range .Pins}}<tr><td>{{.Offset}}</td><td>{{.Event}}</td><td>{{.Active}}</td><td>{{if .Rotenc}}—{{else}}{{.Debounce}}{{end}}</td><td>{{if .Rotenc}}<span class="rotenc">{{.Rotenc}}</span>{{end}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MPD</th><td>{{.Config.MPDAddr}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll quantum</th><td>{{.Config.PollUs}}µs</td></tr>
<tr><th>Pin table</th><td>{{.Config.ConfigPath}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}

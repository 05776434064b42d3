package sentimentdashboard

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"sentiment-dashboard/agents/sentiment-dashboard/live"
	"sentiment-dashboard/shared/config"
	"sentiment-dashboard/shared/monitoring"
)

type server struct {
	dashboard *Dashboard
	snapshot  live.SnapshotFunc
	tpl       *template.Template
}

var modeLabels = map[string]string{
	config.ModeDashboard: "Dashboard",
	config.ModeSearch:    "Reddit search",
	config.ModeCombined:  "Reddit + YouTube",
}

// NewServer creates the HTTP handler for the dashboard page, the plot image
// and the health endpoints.
func NewServer(dashboard *Dashboard, snapshot live.SnapshotFunc, health *monitoring.HealthHandler) http.Handler {
	tpl := template.Must(template.New("page").Funcs(template.FuncMap{
		"modeLabel": func(mode string) string {
			if label, ok := modeLabels[mode]; ok {
				return label
			}
			return mode
		},
	}).Parse(pageTpl))

	s := &server{dashboard: dashboard, snapshot: snapshot, tpl: tpl}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /plot.png", s.handlePlot)
	health.Register(mux)
	return mux
}

// handleIndex replays the mode and topic query parameters as selection events.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var state State
	var view View
	for _, ev := range []Event{SelectMode{Mode: q.Get("mode")}, SelectTopic{Topic: q.Get("topic")}} {
		state, view = s.dashboard.Handle(r.Context(), state, ev)
	}
	s.render(w, view)
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpError(w, http.StatusBadRequest, "invalid form")
		return
	}

	state := State{Mode: r.PostForm.Get("mode"), Topic: r.PostForm.Get("topic")}
	_, view := s.dashboard.Handle(r.Context(), state, SubmitQuery{Query: r.PostForm.Get("query")})
	if view.LiveWarning != "" {
		log.Printf("Warning: Live analysis for %q failed: %s", view.Query, view.LiveWarning)
	}
	s.render(w, view)
}

func (s *server) handlePlot(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil || !snap.HasPlot() {
		httpError(w, http.StatusNotFound, "plot not available")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(snap.Plot)
}

func (s *server) render(w http.ResponseWriter, view View) {
	var buf bytes.Buffer
	if err := s.tpl.Execute(&buf, view); err != nil {
		log.Printf("Failed to render page: %v", err)
		httpError(w, http.StatusInternalServerError, "unable to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

const pageTpl = `<!doctype html>
<html lang="en">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;max-width:1000px;margin:0 auto;padding:1rem}
section{margin-bottom:1.5rem}
.panel{border:1px solid #ddd;border-radius:8px;padding:12px}
.warning{background:#fff4e5;border:1px solid #f0c36d;border-radius:6px;padding:8px}
.info{background:#eef5ff;border:1px solid #b6d0f7;border-radius:6px;padding:8px}
.insight{white-space:pre-wrap}
.plot img{max-width:100%;height:auto}
.modes a{margin-right:12px}
.modes a.active{font-weight:600}
.muted, small{color:#666}
</style>
<header>
  <h1>📊 {{.Title}}</h1>
  <p class="muted">Trending topics from YouTube and their sentiment across YouTube and Reddit.</p>
  {{if gt (len .Modes) 1}}
  <nav class="modes">
    {{range .Modes}}<a href="/?mode={{.}}&topic={{$.Topic}}"{{if eq . $.Mode}} class="active"{{end}}>{{modeLabel .}}</a>{{end}}
  </nav>
  {{end}}
</header>

{{if .Live}}
<section>
  <h2>🔎 Live analysis</h2>
  <form method="post" action="/analyze">
    <input type="hidden" name="mode" value="{{.Mode}}" />
    <input type="hidden" name="topic" value="{{.Topic}}" />
    <input type="text" name="query" value="{{.Query}}" placeholder="Enter a topic" size="40" />
    <button type="submit">Analyze</button>
  </form>
  {{if .LiveWarning}}<p class="warning">⚠️ {{.LiveWarning}}</p>{{end}}
  {{if .LiveResult}}<div class="panel">{{.LiveResult}}</div>{{end}}
</section>
{{end}}

<section class="plot">
  <h2>🎯 Sentiment Distribution: YouTube vs Reddit</h2>
  {{if .HasPlot}}
    <figure>
      <img src="/plot.png" width="{{.PlotWidth}}" height="{{.PlotHeight}}" alt="Sentiment distribution" />
      <figcaption><small>KDE Plot of Sentiment Scores</small></figcaption>
    </figure>
  {{else}}
    <p class="warning">⚠️ {{.PlotWarning}}</p>
  {{end}}
</section>

<section>
  <h2>🔥 Trending Topics</h2>
  {{if .Trending}}
  <ol>{{range .Trending}}<li><a href="/?mode={{$.Mode}}&topic={{.}}">{{.}}</a></li>{{end}}</ol>
  {{end}}
  <form method="get" action="/">
    <input type="hidden" name="mode" value="{{.Mode}}" />
    <label>Select a topic to explore insights:
      <select name="topic" onchange="this.form.submit()">
        {{range .Topics}}<option value="{{.}}"{{if eq . $.Topic}} selected{{end}}>{{.}}</option>{{end}}
      </select>
    </label>
    <noscript><button type="submit">Show</button></noscript>
  </form>
</section>

{{if .Video}}
<section>
  <h2>🎬 {{.Video.Title}}</h2>
  {{if .Video.Channel}}<p class="muted">{{.Video.Channel}}</p>{{end}}
  {{if .Video.EmbedURL}}
    <iframe width="560" height="315" src="{{.Video.EmbedURL}}" title="{{.Video.Title}}" allowfullscreen></iframe>
  {{else}}
    <p class="info">{{.VideoMessage}}</p>
  {{end}}
</section>
{{end}}

<section>
  <h2>💡 LLM Summary &amp; Insights</h2>
  {{if .InsightMissing}}
    <p class="warning">{{.InsightMissing}}</p>
  {{else}}
    <div class="panel insight">{{.Insight}}</div>
  {{end}}
</section>

<section>
  <h2>💬 Top Reddit Comments</h2>
  {{if .Comments}}
  <ul>{{range .Comments}}<li>{{.SentimentEmoji}} {{.Comment}}</li>{{end}}</ul>
  {{else}}
    <p class="muted">{{if .CommentsNote}}{{.CommentsNote}}{{else}}No exported comments for this topic.{{end}}</p>
  {{end}}
</section>

{{if not .LoadedAt.IsZero}}<footer><small>Data loaded {{.LoadedAt.Format "Jan 2 15:04"}}</small></footer>{{end}}
</html>
`

package sentimentdashboard

import (
	"context"
	"html/template"
	"strings"
	"time"

	"sentiment-dashboard/agents/sentiment-dashboard/live"
	"sentiment-dashboard/agents/sentiment-dashboard/youtube"
	"sentiment-dashboard/internal/models"
	"sentiment-dashboard/shared/config"
	"sentiment-dashboard/shared/storage"
)

const (
	noInsightMessage = "No insights found for this topic."
	noVideoMessage   = "No video available for this topic."
	noDataMessage    = "No data loaded."
)

// Analyzer runs an on-demand analysis for a live mode
type Analyzer interface {
	Analyze(ctx context.Context, mode, query string) (string, error)
}

// State is everything a page carries between interactions
type State struct {
	Mode  string
	Topic string
	Query string
}

// Event is a user interaction
type Event interface {
	event()
}

type SelectMode struct{ Mode string }
type SelectTopic struct{ Topic string }
type SubmitQuery struct{ Query string }

func (SelectMode) event()  {}
func (SelectTopic) event() {}
func (SubmitQuery) event() {}

// VideoView is the selected topic's video. EmbedURL is empty when the record
// has no usable YouTube link.
type VideoView struct {
	Title    string
	Channel  string
	URL      string
	EmbedURL string
}

// View is the render model for one page.
type View struct {
	Title    string
	Modes    []string
	Mode     string
	Live     bool
	Topics   []string
	Trending []string
	Topic    string

	Video        *VideoView
	VideoMessage string

	Insight        string
	InsightMissing string

	Comments     []models.RedditCommentRecord
	CommentsNote string

	HasPlot     bool
	PlotWidth   int
	PlotHeight  int
	PlotWarning string

	Query       string
	LiveResult  template.HTML // completion text rendered without escaping
	LiveWarning string

	LoadedAt time.Time
}

// Dashboard maps (State, Event) to the next State and its View. It holds no
// per-user data, so one instance serves all requests.
type Dashboard struct {
	title         string
	modes         []string
	snapshot      live.SnapshotFunc
	analyzer      Analyzer
	trendingLimit int
	commentsLimit int
}

// NewDashboard wires the page logic. A nil analyzer hides the live modes.
func NewDashboard(cfg *config.Config, snapshot live.SnapshotFunc, analyzer Analyzer) *Dashboard {
	var modes []string
	for _, m := range cfg.Live.Modes {
		if m != config.ModeDashboard && analyzer == nil {
			continue
		}
		modes = append(modes, m)
	}
	if len(modes) == 0 {
		modes = []string{config.ModeDashboard}
	}

	return &Dashboard{
		title:         cfg.Server.Title,
		modes:         modes,
		snapshot:      snapshot,
		analyzer:      analyzer,
		trendingLimit: cfg.Data.TrendingLimit,
		commentsLimit: cfg.Data.CommentsLimit,
	}
}

// Modes returns the enabled modes; the first is the default.
func (d *Dashboard) Modes() []string {
	return append([]string(nil), d.modes...)
}

// Handle applies ev to state. A nil event renders state as is. Unknown modes
// and topics fall back to the defaults.
func (d *Dashboard) Handle(ctx context.Context, state State, ev Event) (State, View) {
	snap := d.snapshot()

	var liveResult, liveWarning string
	switch e := ev.(type) {
	case SelectMode:
		state.Mode = e.Mode
	case SelectTopic:
		state.Topic = e.Topic
	case SubmitQuery:
		state.Query = strings.TrimSpace(e.Query)
	}

	state.Mode = d.normalizeMode(state.Mode)
	state.Topic = normalizeTopic(snap, state.Topic)

	if q, ok := ev.(SubmitQuery); ok {
		liveResult, liveWarning = d.analyze(ctx, state.Mode, q.Query)
	}

	view := d.render(snap, state)
	view.LiveResult = template.HTML(liveResult)
	view.LiveWarning = liveWarning
	return state, view
}

func (d *Dashboard) analyze(ctx context.Context, mode, query string) (string, string) {
	if d.analyzer == nil || mode == config.ModeDashboard {
		return "", live.ErrLiveDisabled.Error()
	}
	result, err := d.analyzer.Analyze(ctx, mode, query)
	if err != nil {
		return "", err.Error()
	}
	return result, ""
}

func (d *Dashboard) normalizeMode(mode string) string {
	for _, m := range d.modes {
		if m == mode {
			return m
		}
	}
	return d.modes[0]
}

func normalizeTopic(snap *storage.Snapshot, topic string) string {
	if snap == nil {
		return ""
	}
	if _, ok := snap.Video(topic); ok {
		return topic
	}
	if topics := snap.Topics(); len(topics) > 0 {
		return topics[0]
	}
	return ""
}

func (d *Dashboard) render(snap *storage.Snapshot, state State) View {
	view := View{
		Title: d.title,
		Modes: d.Modes(),
		Mode:  state.Mode,
		Live:  state.Mode != config.ModeDashboard,
		Topic: state.Topic,
		Query: state.Query,
	}

	if snap == nil {
		view.PlotWarning = noDataMessage
		view.InsightMissing = noDataMessage
		return view
	}

	view.Topics = snap.Topics()
	view.Trending = snap.Trending(d.trendingLimit)
	view.LoadedAt = snap.LoadedAt

	view.HasPlot = snap.HasPlot()
	view.PlotWidth = snap.PlotWidth
	view.PlotHeight = snap.PlotHeight
	view.PlotWarning = snap.PlotWarning

	if state.Topic == "" {
		view.InsightMissing = noInsightMessage
		return view
	}

	if rec, ok := snap.Video(state.Topic); ok {
		view.Video = &VideoView{Title: rec.Title, Channel: rec.Channel, URL: rec.URL}
		if id := youtube.VideoID(rec.URL); rec.HasURL() && id != "" {
			view.Video.EmbedURL = youtube.EmbedURL(id)
		} else {
			view.VideoMessage = noVideoMessage
		}
	}

	if insight, ok := snap.Insight(state.Topic); ok {
		view.Insight = insight
	} else {
		view.InsightMissing = noInsightMessage
	}

	view.Comments = snap.TopComments(state.Topic, d.commentsLimit)
	if len(view.Comments) == 0 {
		view.CommentsNote = snap.CommentsNote
	}

	return view
}

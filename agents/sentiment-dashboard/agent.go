package sentimentdashboard

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"sentiment-dashboard/agents/sentiment-dashboard/live"
	"sentiment-dashboard/agents/sentiment-dashboard/reddit"
	"sentiment-dashboard/agents/sentiment-dashboard/youtube"
	"sentiment-dashboard/shared/ai"
	"sentiment-dashboard/shared/config"
	"sentiment-dashboard/shared/scheduler"
	"sentiment-dashboard/shared/storage"
)

// DashboardAgent implements the scheduler.Agent interface. Each run reloads
// the exported data and swaps the served snapshot.
type DashboardAgent struct {
	config   *config.Config
	paths    storage.Paths
	snapshot atomic.Pointer[storage.Snapshot]

	orchestrator *live.Orchestrator
}

// LoadMetrics summarizes one data load
type LoadMetrics struct {
	Topics   int
	Insights int
	Comments int
	HasPlot  bool
}

func (m *LoadMetrics) GetSummary() string {
	plot := "no plot"
	if m.HasPlot {
		plot = "plot loaded"
	}
	return fmt.Sprintf("%d topics, %d insights, %d comments, %s", m.Topics, m.Insights, m.Comments, plot)
}

func NewDashboardAgent(cfg *config.Config) *DashboardAgent {
	return &DashboardAgent{
		config: cfg,
		paths: storage.PathsIn(cfg.Data.Dir,
			cfg.Data.VideosFile, cfg.Data.InsightsFile, cfg.Data.CommentsFile, cfg.Data.PlotFile),
	}
}

func (a *DashboardAgent) Name() string {
	return "Sentiment Dashboard"
}

// Initialize builds the live analysis clients for the enabled modes.
func (a *DashboardAgent) Initialize(ctx context.Context) error {
	log.Printf("Initializing %s...", a.Name())

	if !a.config.LiveEnabled() || a.orchestrator != nil {
		return nil
	}

	if a.config.Live.Simulate {
		a.orchestrator = live.NewOrchestrator(a.config,
			live.SnapshotReddit{Snapshot: a.Snapshot},
			live.SnapshotYouTube{Snapshot: a.Snapshot},
			live.SnapshotCompleter{Snapshot: a.Snapshot},
		)
		log.Println("Live analysis running in simulated mode")
		return nil
	}

	redditClient := reddit.NewClient(&a.config.Reddit)
	log.Println("Reddit client initialized")

	var youtubeSource live.Source
	if a.config.ModeEnabled(config.ModeCombined) {
		client, err := youtube.NewClient(ctx, &a.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		youtubeSource = client
		log.Println("YouTube client initialized")
	}

	completer, err := ai.NewCompleter(ctx, &a.config.AI)
	if err != nil {
		return fmt.Errorf("failed to create AI completer: %w", err)
	}
	log.Printf("AI completer initialized (%s, %s)", a.config.AI.Provider, a.config.AI.Model)

	a.orchestrator = live.NewOrchestrator(a.config, redditClient, youtubeSource, completer)
	return nil
}

// RunOnce loads the data directory. When a snapshot is already being served,
// a failed load keeps it and is reported as a partial failure.
func (a *DashboardAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	snap, err := storage.Load(a.paths)
	if err != nil {
		if a.snapshot.Load() != nil {
			events.OnPartialFailure(fmt.Errorf("reload failed, keeping previous data: %w", err), time.Since(startTime))
			return nil
		}
		return err
	}

	a.snapshot.Store(snap)
	if snap.PlotWarning != "" {
		log.Printf("Warning: %s", snap.PlotWarning)
	}

	events.OnSuccess(&LoadMetrics{
		Topics:   len(snap.Topics()),
		Insights: len(snap.Insights),
		Comments: len(snap.Comments),
		HasPlot:  snap.HasPlot(),
	}, time.Since(startTime))
	return nil
}

// Snapshot returns the data currently being served, or nil before the first load.
func (a *DashboardAgent) Snapshot() *storage.Snapshot {
	return a.snapshot.Load()
}

// Analyzer returns the live analysis orchestrator, or nil when no live mode is enabled.
func (a *DashboardAgent) Analyzer() Analyzer {
	if a.orchestrator == nil {
		return nil
	}
	return a.orchestrator
}

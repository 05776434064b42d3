package live

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sentiment-dashboard/shared/ai"
	"sentiment-dashboard/shared/config"
)

var (
	ErrEmptyQuery   = errors.New("please enter a topic to analyze")
	ErrNoContent    = errors.New("no posts or videos found for this topic")
	ErrLiveDisabled = errors.New("live analysis is not enabled for this mode")
)

// Source gathers text snippets about a query from one platform.
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Orchestrator runs one on-demand analysis: gather, prompt, complete.
type Orchestrator struct {
	reddit     Source
	youtube    Source // nil when combined mode is unavailable
	completer  ai.Completer
	postLimit  int
	videoLimit int
}

func NewOrchestrator(cfg *config.Config, reddit, youtube Source, completer ai.Completer) *Orchestrator {
	return &Orchestrator{
		reddit:     reddit,
		youtube:    youtube,
		completer:  completer,
		postLimit:  cfg.Reddit.PostLimit,
		videoLimit: cfg.YouTube.VideoLimit,
	}
}

// Analyze returns the completion text for query verbatim. Any failure of a
// source or the completer aborts the request.
func (o *Orchestrator) Analyze(ctx context.Context, mode, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	switch mode {
	case config.ModeSearch:
	case config.ModeCombined:
		if o.youtube == nil {
			return "", ErrLiveDisabled
		}
	default:
		return "", ErrLiveDisabled
	}
	if o.reddit == nil || o.completer == nil {
		return "", ErrLiveDisabled
	}

	start := time.Now()
	log.Printf("Running %s analysis for %q", mode, query)

	snippets, err := o.reddit.Search(ctx, query, o.postLimit)
	if err != nil {
		return "", fmt.Errorf("failed to search Reddit: %w", err)
	}

	if mode == config.ModeCombined {
		videos, err := o.youtube.Search(ctx, query, o.videoLimit)
		if err != nil {
			return "", fmt.Errorf("failed to search YouTube: %w", err)
		}
		snippets = append(snippets, videos...)
	}

	if len(snippets) == 0 {
		return "", ErrNoContent
	}

	result, err := o.completer.Complete(ctx, ai.BuildPrompt(query, snippets), ai.Instructions(mode))
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}

	log.Printf("Analysis for %q completed in %v (%d snippets)", query, time.Since(start).Round(time.Millisecond), len(snippets))
	return result, nil
}

package live

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sentiment-dashboard/shared/ai"
	"sentiment-dashboard/shared/config"
)

type fakeSource struct {
	snippets []string
	err      error
	calls    int
	query    string
	limit    int
}

func (f *fakeSource) Search(ctx context.Context, query string, limit int) ([]string, error) {
	f.calls++
	f.query = query
	f.limit = limit
	return f.snippets, f.err
}

type fakeCompleter struct {
	reply        string
	err          error
	calls        int
	prompt       string
	instructions string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, instructions string) (string, error) {
	f.calls++
	f.prompt = prompt
	f.instructions = instructions
	return f.reply, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Reddit.PostLimit = 5
	cfg.YouTube.VideoLimit = 3
	return cfg
}

func TestAnalyzeSearchMode(t *testing.T) {
	reddit := &fakeSource{snippets: []string{"Reddit post (r/tech): Phone X", "Reddit comment: love it"}}
	youtube := &fakeSource{snippets: []string{"YouTube video: should not appear"}}
	completer := &fakeCompleter{reply: "<b>Mostly positive</b>"}

	o := NewOrchestrator(testConfig(), reddit, youtube, completer)
	got, err := o.Analyze(context.Background(), config.ModeSearch, "  Phone X  ")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if got != "<b>Mostly positive</b>" {
		t.Errorf("Analyze() = %q, want completion text verbatim", got)
	}
	if reddit.query != "Phone X" || reddit.limit != 5 {
		t.Errorf("reddit called with query=%q limit=%d", reddit.query, reddit.limit)
	}
	if youtube.calls != 0 {
		t.Error("search mode must not call YouTube")
	}

	wantPrompt := "Topic: Phone X" + ai.SnippetSeparator + "Reddit post (r/tech): Phone X" + ai.SnippetSeparator + "Reddit comment: love it"
	if completer.prompt != wantPrompt {
		t.Errorf("prompt = %q, want %q", completer.prompt, wantPrompt)
	}
	if completer.instructions != ai.Instructions(config.ModeSearch) {
		t.Error("search mode should use the Reddit-only instructions")
	}
}

func TestAnalyzeCombinedMode(t *testing.T) {
	reddit := &fakeSource{snippets: []string{"r1"}}
	youtube := &fakeSource{snippets: []string{"y1", "y2"}}
	completer := &fakeCompleter{reply: "comparison"}

	o := NewOrchestrator(testConfig(), reddit, youtube, completer)
	if _, err := o.Analyze(context.Background(), config.ModeCombined, "topic"); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if youtube.calls != 1 || youtube.limit != 3 {
		t.Errorf("youtube calls=%d limit=%d, want 1 call with limit 3", youtube.calls, youtube.limit)
	}
	if strings.Count(completer.prompt, ai.SnippetSeparator) != 3 {
		t.Errorf("prompt should hold 3 snippets: %q", completer.prompt)
	}
	if !strings.HasSuffix(completer.prompt, "r1"+ai.SnippetSeparator+"y1"+ai.SnippetSeparator+"y2") {
		t.Errorf("Reddit snippets should precede YouTube snippets: %q", completer.prompt)
	}
	if completer.instructions != ai.Instructions(config.ModeCombined) {
		t.Error("combined mode should use the comparison instructions")
	}
}

func TestAnalyzeErrors(t *testing.T) {
	failure := errors.New("upstream exploded")

	tests := []struct {
		name           string
		mode           string
		query          string
		reddit         *fakeSource
		youtube        *fakeSource
		completer      *fakeCompleter
		wantErr        error
		wantMsg        string
		wantCompletion bool
	}{
		{
			name:      "EmptyQuery",
			mode:      config.ModeSearch,
			query:     "   ",
			reddit:    &fakeSource{snippets: []string{"x"}},
			completer: &fakeCompleter{},
			wantErr:   ErrEmptyQuery,
		},
		{
			name:      "DashboardMode",
			mode:      config.ModeDashboard,
			query:     "q",
			reddit:    &fakeSource{snippets: []string{"x"}},
			completer: &fakeCompleter{},
			wantErr:   ErrLiveDisabled,
		},
		{
			name:      "CombinedWithoutYouTube",
			mode:      config.ModeCombined,
			query:     "q",
			reddit:    &fakeSource{snippets: []string{"x"}},
			completer: &fakeCompleter{},
			wantErr:   ErrLiveDisabled,
		},
		{
			name:      "NoContent",
			mode:      config.ModeSearch,
			query:     "q",
			reddit:    &fakeSource{},
			completer: &fakeCompleter{},
			wantErr:   ErrNoContent,
		},
		{
			name:      "RedditFailure",
			mode:      config.ModeSearch,
			query:     "q",
			reddit:    &fakeSource{err: failure},
			completer: &fakeCompleter{},
			wantErr:   failure,
			wantMsg:   "failed to search Reddit: upstream exploded",
		},
		{
			name:      "YouTubeFailure",
			mode:      config.ModeCombined,
			query:     "q",
			reddit:    &fakeSource{snippets: []string{"x"}},
			youtube:   &fakeSource{err: failure},
			completer: &fakeCompleter{},
			wantErr:   failure,
			wantMsg:   "failed to search YouTube",
		},
		{
			name:           "CompletionFailure",
			mode:           config.ModeSearch,
			query:          "q",
			reddit:         &fakeSource{snippets: []string{"x"}},
			completer:      &fakeCompleter{err: failure},
			wantErr:        failure,
			wantMsg:        "failed to generate analysis",
			wantCompletion: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var youtube Source
			if tt.youtube != nil {
				youtube = tt.youtube
			}

			o := NewOrchestrator(testConfig(), tt.reddit, youtube, tt.completer)
			_, err := o.Analyze(context.Background(), tt.mode, tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Analyze() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
			if got := tt.completer.calls > 0; got != tt.wantCompletion {
				t.Errorf("completer called = %v, want %v", got, tt.wantCompletion)
			}
		})
	}
}

func TestAnalyzeRecoversAfterFailure(t *testing.T) {
	reddit := &fakeSource{err: errors.New("rate limited")}
	completer := &fakeCompleter{reply: "fine"}
	o := NewOrchestrator(testConfig(), reddit, nil, completer)

	if _, err := o.Analyze(context.Background(), config.ModeSearch, "q"); err == nil {
		t.Fatal("expected first request to fail")
	}

	reddit.err = nil
	reddit.snippets = []string{"x"}
	got, err := o.Analyze(context.Background(), config.ModeSearch, "q")
	if err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}
	if got != "fine" {
		t.Errorf("Analyze() = %q, want fine", got)
	}
}

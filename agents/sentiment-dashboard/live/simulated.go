package live

import (
	"context"
	"fmt"
	"strings"

	"sentiment-dashboard/shared/storage"
)

// SnapshotFunc returns the snapshot currently being served
type SnapshotFunc func() *storage.Snapshot

// SnapshotReddit answers searches from the exported Reddit comments.
type SnapshotReddit struct {
	Snapshot SnapshotFunc
}

func (s SnapshotReddit) Search(ctx context.Context, query string, limit int) ([]string, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("no data loaded")
	}

	// Rows of one post need not be adjacent in the export
	var titles []string
	comments := make(map[string][]string)
	for _, c := range snap.Comments {
		if !containsFold(c.SourceTitle, query) {
			continue
		}
		if _, seen := comments[c.SourceTitle]; !seen {
			if limit > 0 && len(titles) == limit {
				continue
			}
			titles = append(titles, c.SourceTitle)
		}
		line := strings.TrimSpace("Reddit comment: " + strings.TrimSpace(c.Comment) + " " + c.SentimentEmoji)
		comments[c.SourceTitle] = append(comments[c.SourceTitle], line)
	}

	var out []string
	for _, title := range titles {
		out = append(out, "Reddit post: "+title)
		out = append(out, comments[title]...)
	}
	return out, nil
}

// SnapshotYouTube answers searches from the exported video table.
type SnapshotYouTube struct {
	Snapshot SnapshotFunc
}

func (s SnapshotYouTube) Search(ctx context.Context, query string, limit int) ([]string, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("no data loaded")
	}

	var out []string
	for _, title := range snap.Topics() {
		if !containsFold(title, query) {
			continue
		}
		v, _ := snap.Video(title)
		out = append(out, fmt.Sprintf("YouTube video: %s (%s)\nTranscript: ", v.Title, v.Channel))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SnapshotCompleter replies with the exported insight whose topic best
// matches the prompt's query.
type SnapshotCompleter struct {
	Snapshot SnapshotFunc
}

func (s SnapshotCompleter) Complete(ctx context.Context, prompt, instructions string) (string, error) {
	snap := s.Snapshot()
	if snap == nil {
		return "", fmt.Errorf("no data loaded")
	}

	query := queryFromPrompt(prompt)
	best, bestScore := "", 0
	for _, in := range snap.Insights {
		if score := matchScore(in.Topic, query); score > bestScore {
			best, bestScore = in.Analysis, score
		}
	}
	if bestScore == 0 {
		return "", fmt.Errorf("no precomputed insight matches %q", query)
	}
	return best, nil
}

func queryFromPrompt(prompt string) string {
	line, _, _ := strings.Cut(prompt, "\n")
	return strings.TrimSpace(strings.TrimPrefix(line, "Topic:"))
}

// matchScore ranks an exact match above containment, and containment above
// shared words. Zero means unrelated.
func matchScore(topic, query string) int {
	t, q := strings.ToLower(topic), strings.ToLower(query)
	switch {
	case t == "" || q == "":
		return 0
	case t == q:
		return 1000
	case strings.Contains(t, q) || strings.Contains(q, t):
		return 500
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(t) {
		words[w] = true
	}
	shared := 0
	for _, w := range strings.Fields(q) {
		if words[w] {
			shared++
			delete(words, w)
		}
	}
	return shared
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

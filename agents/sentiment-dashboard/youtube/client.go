package youtube

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"sentiment-dashboard/shared/ai"
	"sentiment-dashboard/shared/config"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Video is a search hit with its (possibly empty) transcript excerpt
type Video struct {
	ID         string
	Title      string
	Channel    string
	URL        string
	Transcript string
}

type transcriptSource interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

type Client struct {
	service         *youtube.Service
	transcripts     transcriptSource
	transcriptChars int
}

// NewClient authenticates with the API key when one is configured and falls
// back to the OAuth device flow otherwise.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, cfg, NewTranscriptFetcher(cfg.TranscriptLangs), opts...)
}

func newClient(ctx context.Context, cfg *config.YouTubeConfig, transcripts transcriptSource, opts ...option.ClientOption) (*Client, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:         service,
		transcripts:     transcripts,
		transcriptChars: cfg.TranscriptChars,
	}, nil
}

// SearchVideos finds up to limit videos for query and attaches a transcript
// excerpt to each. A video whose transcript cannot be fetched keeps an empty
// transcript instead of failing the search. A non-positive limit keeps every
// result of the first page.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]*Video, error) {
	call := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Context(ctx)
	if limit > 0 {
		call = call.MaxResults(int64(limit))
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search YouTube: %w", err)
	}

	var videos []*Video
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, &Video{
			ID:      item.Id.VideoId,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
			URL:     WatchURL(item.Id.VideoId),
		})
		if limit > 0 && len(videos) >= limit {
			break
		}
	}

	for _, video := range videos {
		transcript, err := c.transcripts.Fetch(ctx, video.ID)
		if err != nil {
			log.Printf("Warning: No transcript for video %s (%s): %v", video.ID, video.Title, err)
			continue
		}
		video.Transcript = ai.Truncate(transcript, c.transcriptChars)
	}

	log.Printf("YouTube search %q returned %d videos", query, len(videos))
	return videos, nil
}

// Search implements the live analysis source capability.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	videos, err := c.SearchVideos(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return Snippets(videos), nil
}

// Snippets renders one prompt item per video.
func Snippets(videos []*Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, fmt.Sprintf("YouTube video: %s (%s)\nTranscript: %s", v.Title, v.Channel, v.Transcript))
	}
	return out
}

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// VideoID extracts the 11-character ID from a YouTube URL, or "" if none.
func VideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sentiment-dashboard/internal/models"
)

// Paths locates the exported dashboard files
type Paths struct {
	Videos   string
	Insights string
	Comments string // optional
	Plot     string // optional
}

// PathsIn joins the given file names onto dir.
func PathsIn(dir, videos, insights, comments, plot string) Paths {
	join := func(name string) string {
		if name == "" {
			return ""
		}
		return filepath.Join(dir, name)
	}
	return Paths{
		Videos:   join(videos),
		Insights: join(insights),
		Comments: join(comments),
		Plot:     join(plot),
	}
}

// Snapshot is a read-only view of the exported data loaded at one point in time.
type Snapshot struct {
	Videos   []models.VideoRecord
	Insights []models.InsightRecord
	Comments []models.RedditCommentRecord

	Plot        []byte
	PlotWidth   int
	PlotHeight  int
	PlotWarning string // set when the image could not be used

	CommentsNote string
	LoadedAt     time.Time

	topics       []string
	firstVideo   map[string]int
	counts       map[string]int
	firstInsight map[string]int
}

// Load reads all exported files. Missing video or insight tables are errors;
// the comments table and plot image are optional.
func Load(paths Paths) (*Snapshot, error) {
	videos, err := loadVideos(paths.Videos)
	if err != nil {
		return nil, err
	}

	insights, err := loadInsights(paths.Insights)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		Videos:   videos,
		Insights: insights,
		LoadedAt: time.Now(),
	}

	s.Comments, s.CommentsNote = loadComments(paths.Comments)
	s.loadPlot(paths.Plot)
	s.index()

	log.Printf("Loaded %d video rows (%d topics), %d insights, %d comments",
		len(s.Videos), len(s.topics), len(s.Insights), len(s.Comments))

	return s, nil
}

func loadVideos(path string) ([]models.VideoRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load video data: %w", err)
	}

	titleCol, err := t.requireColumn(path, "video_title", "title")
	if err != nil {
		return nil, err
	}
	channelCol := t.column("channel_title", "channel")
	urlCol := t.column("video_url", "url")

	videos := make([]models.VideoRecord, 0, len(t.rows))
	for _, row := range t.rows {
		videos = append(videos, models.VideoRecord{
			Title:   keyField(row, titleCol),
			Channel: keyField(row, channelCol),
			URL:     keyField(row, urlCol),
		})
	}
	return videos, nil
}

func loadInsights(path string) ([]models.InsightRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights data: %w", err)
	}

	topicCol, err := t.requireColumn(path, "topic")
	if err != nil {
		return nil, err
	}
	analysisCol, err := t.requireColumn(path, "llm_analysis", "analysis")
	if err != nil {
		return nil, err
	}

	insights := make([]models.InsightRecord, 0, len(t.rows))
	for _, row := range t.rows {
		insights = append(insights, models.InsightRecord{
			Topic:    keyField(row, topicCol),
			Analysis: field(row, analysisCol),
		})
	}
	return insights, nil
}

func loadComments(path string) ([]models.RedditCommentRecord, string) {
	if path == "" {
		return nil, "Reddit comment export not configured."
	}

	t, err := readTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "No Reddit comment export found."
		}
		log.Printf("Warning: Failed to load Reddit comments from %s: %v", path, err)
		return nil, "Reddit comment export could not be read."
	}

	sourceCol := t.column("source_title", "topic")
	commentCol := t.column("comment", "body")
	emojiCol := t.column("sentiment_emoji", "sentiment")
	if sourceCol < 0 || commentCol < 0 {
		log.Printf("Warning: %s lacks source_title/comment columns, ignoring it", path)
		return nil, "Reddit comment export has an unexpected layout."
	}

	comments := make([]models.RedditCommentRecord, 0, len(t.rows))
	for _, row := range t.rows {
		comments = append(comments, models.RedditCommentRecord{
			SourceTitle:    keyField(row, sourceCol),
			Comment:        field(row, commentCol),
			SentimentEmoji: keyField(row, emojiCol),
		})
	}
	return comments, ""
}

func (s *Snapshot) loadPlot(path string) {
	if path == "" {
		s.PlotWarning = "Sentiment plot not configured."
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Sentiment plot unavailable: %v", err)
		s.PlotWarning = "Sentiment distribution plot not found."
		return
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Printf("Warning: Sentiment plot %s is not a valid PNG: %v", path, err)
		s.PlotWarning = "Sentiment distribution plot could not be decoded."
		return
	}

	s.Plot = data
	s.PlotWidth = cfg.Width
	s.PlotHeight = cfg.Height
}

func (s *Snapshot) index() {
	s.firstVideo = make(map[string]int)
	s.counts = make(map[string]int)
	s.topics = nil
	for i, v := range s.Videos {
		s.counts[v.Title]++
		if _, seen := s.firstVideo[v.Title]; seen {
			continue
		}
		s.firstVideo[v.Title] = i
		s.topics = append(s.topics, v.Title)
	}

	s.firstInsight = make(map[string]int)
	for i, in := range s.Insights {
		if _, seen := s.firstInsight[in.Topic]; !seen {
			s.firstInsight[in.Topic] = i
		}
	}
}

// HasPlot reports whether a decoded plot image is available.
func (s *Snapshot) HasPlot() bool {
	return len(s.Plot) > 0
}

// Topics returns the distinct video titles in first-seen order.
func (s *Snapshot) Topics() []string {
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// Video resolves a title to its first matching record.
func (s *Snapshot) Video(title string) (models.VideoRecord, bool) {
	idx, ok := s.firstVideo[title]
	if !ok {
		return models.VideoRecord{}, false
	}
	return s.Videos[idx], true
}

// Trending returns titles ordered by how many rows mention them. Ties keep
// first-seen order; n <= 0 returns every topic.
func (s *Snapshot) Trending(n int) []string {
	out := s.Topics()
	sort.SliceStable(out, func(i, j int) bool {
		return s.counts[out[i]] > s.counts[out[j]]
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Insight returns the analysis text for topic. A false result means no
// insight was exported for it, which is a normal state.
func (s *Snapshot) Insight(topic string) (string, bool) {
	idx, ok := s.firstInsight[topic]
	if !ok {
		return "", false
	}
	return s.Insights[idx].Analysis, true
}

// TopComments returns up to n exported comments for topic.
func (s *Snapshot) TopComments(topic string, n int) []models.RedditCommentRecord {
	var out []models.RedditCommentRecord
	for _, c := range s.Comments {
		if c.SourceTitle != topic {
			continue
		}
		out = append(out, c)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return writeFile(t, dir, name, buf.String())
}

// fixture writes a complete data directory and returns its paths
func fixture(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "youtube_data.csv",
		"video_title,channel_title,video_url\n"+
			"A,Chan A,https://www.youtube.com/watch?v=aaaaaaaaaaa\n"+
			"B,Chan B,\n"+
			"A,Chan A2,https://www.youtube.com/watch?v=bbbbbbbbbbb\n")
	writeFile(t, dir, "llm_insights.csv",
		"topic,llm_analysis\n"+
			"B,x\n"+
			"B,second\n")
	writeFile(t, dir, "reddit_top_comments.csv",
		"source_title,comment,sentiment_emoji\n"+
			"A,great video,😊\n"+
			"A,meh,😐\n"+
			"B,awful,😠\n"+
			"A,loved it,😊\n")
	writePNG(t, dir, "sentiment_distribution.png", 4, 3)
	return PathsIn(dir, "youtube_data.csv", "llm_insights.csv", "reddit_top_comments.csv", "sentiment_distribution.png")
}

func TestLoadSnapshot(t *testing.T) {
	s, err := Load(fixture(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := s.Topics(), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Topics() = %v, want %v", got, want)
	}
	if len(s.Videos) != 3 {
		t.Errorf("len(Videos) = %d, want 3", len(s.Videos))
	}
	if !s.HasPlot() || s.PlotWidth != 4 || s.PlotHeight != 3 {
		t.Errorf("plot not loaded: has=%t %dx%d warning=%q", s.HasPlot(), s.PlotWidth, s.PlotHeight, s.PlotWarning)
	}
	if s.CommentsNote != "" {
		t.Errorf("CommentsNote = %q, want empty", s.CommentsNote)
	}
}

func TestTopicsAreDistinct(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "v.csv", "video_title\nx\ny\nx\nz\ny\nx\n")
	writeFile(t, dir, "i.csv", "topic,llm_analysis\n")

	s, err := Load(PathsIn(dir, "v.csv", "i.csv", "", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	topics := s.Topics()
	seen := make(map[string]bool)
	for _, topic := range topics {
		if seen[topic] {
			t.Errorf("duplicate topic %q in %v", topic, topics)
		}
		seen[topic] = true
	}
	if want := []string{"x", "y", "z"}; !reflect.DeepEqual(topics, want) {
		t.Errorf("Topics() = %v, want %v", topics, want)
	}

	if got, want := s.Trending(2), []string{"x", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Trending(2) = %v, want %v", got, want)
	}
	if got := s.Trending(0); len(got) != 3 {
		t.Errorf("Trending(0) returned %d topics, want 3", len(got))
	}
}

func TestVideoResolvesFirstMatch(t *testing.T) {
	s, err := Load(fixture(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	v, ok := s.Video("A")
	if !ok {
		t.Fatal("Video(A) not found")
	}
	if v.Channel != "Chan A" {
		t.Errorf("Video(A).Channel = %s, want first row's Chan A", v.Channel)
	}

	b, ok := s.Video("B")
	if !ok {
		t.Fatal("Video(B) not found")
	}
	if b.HasURL() {
		t.Errorf("Video(B) should have no URL, got %q", b.URL)
	}

	if _, ok := s.Video("missing"); ok {
		t.Error("Video(missing) should not resolve")
	}
}

func TestInsightLookup(t *testing.T) {
	s, err := Load(fixture(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name      string
		topic     string
		wantText  string
		wantFound bool
	}{
		{"Present topic uses first row", "B", "x", true},
		{"Absent topic", "A", "", false},
		{"Case sensitive", "b", "", false},
		{"Empty topic", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, found := s.Insight(tt.topic)
			if text != tt.wantText || found != tt.wantFound {
				t.Errorf("Insight(%q) = (%q, %t), want (%q, %t)", tt.topic, text, found, tt.wantText, tt.wantFound)
			}
		})
	}

	t.Run("Text kept verbatim", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "v.csv", "video_title\nA\n")
		writeFile(t, dir, "i.csv", "topic,llm_analysis\n"+
			" A ,\"  - item one\n  - item two\n\"\n"+
			"B,\"trailing space \"\n")

		s, err := Load(PathsIn(dir, "v.csv", "i.csv", "", ""))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		tests := []struct {
			topic string
			want  string
		}{
			{"A", "  - item one\n  - item two\n"},
			{"B", "trailing space "},
		}
		for _, tt := range tests {
			if text, ok := s.Insight(tt.topic); !ok || text != tt.want {
				t.Errorf("Insight(%q) = (%q, %t), want (%q, true)", tt.topic, text, ok, tt.want)
			}
		}
	})
}

func TestTopComments(t *testing.T) {
	s, err := Load(fixture(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := s.TopComments("A", 2)
	if len(got) != 2 {
		t.Fatalf("TopComments(A, 2) returned %d, want 2", len(got))
	}
	if got[0].Comment != "great video" || got[1].Comment != "meh" {
		t.Errorf("unexpected comments order: %+v", got)
	}
	if all := s.TopComments("A", 0); len(all) != 3 {
		t.Errorf("TopComments(A, 0) returned %d, want 3", len(all))
	}
	if none := s.TopComments("C", 5); len(none) != 0 {
		t.Errorf("TopComments(C) returned %d, want 0", len(none))
	}
}

func TestLoadMissingRequiredFiles(t *testing.T) {
	t.Run("MissingVideos", func(t *testing.T) {
		paths := fixture(t)
		os.Remove(paths.Videos)
		if _, err := Load(paths); err == nil || !strings.Contains(err.Error(), "video data") {
			t.Errorf("Load() error = %v, want video data error", err)
		}
	})

	t.Run("MissingInsights", func(t *testing.T) {
		paths := fixture(t)
		os.Remove(paths.Insights)
		if _, err := Load(paths); err == nil || !strings.Contains(err.Error(), "insights data") {
			t.Errorf("Load() error = %v, want insights data error", err)
		}
	})

	t.Run("MissingColumn", func(t *testing.T) {
		paths := fixture(t)
		writeFile(t, filepath.Dir(paths.Insights), "llm_insights.csv", "subject,llm_analysis\nB,x\n")
		_, err := Load(paths)
		if err == nil || !strings.Contains(err.Error(), `"topic"`) {
			t.Errorf("Load() error = %v, want missing topic column", err)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		paths := fixture(t)
		writeFile(t, filepath.Dir(paths.Videos), "youtube_data.csv", "")
		if _, err := Load(paths); err == nil {
			t.Error("Expected error for empty video table")
		}
	})
}

func TestLoadDegradesOptionalFiles(t *testing.T) {
	t.Run("MissingPlot", func(t *testing.T) {
		paths := fixture(t)
		os.Remove(paths.Plot)

		s, err := Load(paths)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.HasPlot() {
			t.Error("HasPlot() = true for missing image")
		}
		if s.PlotWarning == "" {
			t.Error("PlotWarning should be set")
		}
		if len(s.Topics()) != 2 {
			t.Error("rest of snapshot should still load")
		}
	})

	t.Run("CorruptPlot", func(t *testing.T) {
		paths := fixture(t)
		writeFile(t, filepath.Dir(paths.Plot), "sentiment_distribution.png", "not an image")

		s, err := Load(paths)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.HasPlot() || s.PlotWarning == "" {
			t.Errorf("corrupt plot should produce a warning, got has=%t warning=%q", s.HasPlot(), s.PlotWarning)
		}
	})

	t.Run("MissingComments", func(t *testing.T) {
		paths := fixture(t)
		os.Remove(paths.Comments)

		s, err := Load(paths)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(s.Comments) != 0 || s.CommentsNote == "" {
			t.Errorf("expected empty comments with note, got %d comments, note %q", len(s.Comments), s.CommentsNote)
		}
	})
}

func TestLoadRaggedRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "v.csv", "video_title,channel,url\nOnly Title\n\"Quoted, Title\",Chan,http://example.com\n")
	writeFile(t, dir, "i.csv", "\ufefftopic,analysis\nOnly Title,<b>bold</b>\n")

	s, err := Load(PathsIn(dir, "v.csv", "i.csv", "", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	v, ok := s.Video("Only Title")
	if !ok || v.Channel != "" || v.URL != "" {
		t.Errorf("Video(Only Title) = %+v, %t; want empty channel and URL", v, ok)
	}
	if _, ok := s.Video("Quoted, Title"); !ok {
		t.Error("quoted title with comma should resolve")
	}
	if text, ok := s.Insight("Only Title"); !ok || text != "<b>bold</b>" {
		t.Errorf("Insight() = %q, %t; markup should pass through unchanged", text, ok)
	}
}

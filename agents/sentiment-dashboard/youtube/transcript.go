package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// playerResponseMarker precedes the player JSON embedded in watch pages
const playerResponseMarker = "ytInitialPlayerResponse = "

// ErrNoCaptions is returned for videos without usable caption tracks
var ErrNoCaptions = errors.New("no captions available")

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
}

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// timedText covers both the legacy <transcript><text> and the
// format 3 <timedtext><body><p> caption documents.
type timedText struct {
	Texts      []string `xml:"text"`
	Paragraphs []struct {
		Text     string   `xml:",chardata"`
		Segments []string `xml:"s"`
	} `xml:"body>p"`
}

// TranscriptFetcher scrapes caption tracks from public watch pages.
type TranscriptFetcher struct {
	http      *http.Client
	watchBase string
	langs     []string
}

func NewTranscriptFetcher(langs []string) *TranscriptFetcher {
	return &TranscriptFetcher{
		http:      &http.Client{Timeout: 20 * time.Second},
		watchBase: "https://www.youtube.com",
		langs:     langs,
	}
}

// Fetch returns the plain-text transcript for videoID.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	page, err := f.get(ctx, f.watchBase+"/watch?v="+url.QueryEscape(videoID), 6*1024*1024)
	if err != nil {
		return "", fmt.Errorf("failed to fetch watch page: %w", err)
	}

	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return "", fmt.Errorf("player response not found in watch page")
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return "", fmt.Errorf("failed to extract player response JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return "", fmt.Errorf("failed to decode player response: %w", err)
	}
	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("%w: %s", ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return "", ErrNoCaptions
	}

	track := pickTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, f.langs)

	doc, err := f.get(ctx, track.BaseURL, 512*1024)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}

	text, err := parseTimedText(doc)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoCaptions
	}
	return text, nil
}

func (f *TranscriptFetcher) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// pickTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first track.
func pickTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

func parseTimedText(doc []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(doc, &tt); err != nil {
		return "", fmt.Errorf("failed to parse captions XML: %w", err)
	}

	parts := append([]string(nil), tt.Texts...)
	for _, p := range tt.Paragraphs {
		if len(p.Segments) > 0 {
			parts = append(parts, strings.Join(p.Segments, ""))
			continue
		}
		parts = append(parts, p.Text)
	}

	var sb strings.Builder
	for _, part := range parts {
		// caption payloads are HTML-escaped inside the XML escaping
		text := strings.Join(strings.Fields(html.UnescapeString(part)), " ")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// extractJSON returns the JSON object starting at b[0] by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

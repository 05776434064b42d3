package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sentiment-dashboard/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIBase  = "https://oauth.reddit.com"
)

// Post is a search hit together with its top-level comments
type Post struct {
	ID        string
	Title     string
	SelfText  string
	Subreddit string
	Score     int
	Comments  []string
}

// Client searches Reddit with an application-only OAuth token.
type Client struct {
	http         *http.Client
	apiBase      string
	commentLimit int
	timeFilter   string
}

// Option customizes endpoints, mainly for tests.
type Option func(*options)

type options struct {
	tokenURL string
	apiBase  string
}

func WithEndpoints(tokenURL, apiBase string) Option {
	return func(o *options) {
		o.tokenURL = tokenURL
		o.apiBase = apiBase
	}
}

func NewClient(cfg *config.RedditConfig, opts ...Option) *Client {
	o := options{tokenURL: defaultTokenURL, apiBase: defaultAPIBase}
	for _, opt := range opts {
		opt(&o)
	}

	// Reddit rejects requests without a descriptive User-Agent, including the token request
	base := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     o.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		http:         httpClient,
		apiBase:      strings.TrimSuffix(o.apiBase, "/"),
		commentLimit: cfg.CommentLimit,
		timeFilter:   cfg.TimeFilter,
	}
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// listing mirrors the Reddit "Listing" envelope
type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type linkData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SelfText  string `json:"selftext"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}

type commentData struct {
	Body string `json:"body"`
}

// SearchPosts finds up to limit posts matching query within the configured
// recency window and attaches up to the configured number of top-level comments.
// A non-positive limit leaves the page size to Reddit.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]*Post, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("t", c.timeFilter)
	params.Set("sort", "relevance")
	params.Set("type", "link")
	params.Set("raw_json", "1")

	var result listing
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("failed to search Reddit: %w", err)
	}

	var posts []*Post
	for _, child := range result.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var link linkData
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return nil, fmt.Errorf("failed to decode Reddit post: %w", err)
		}
		posts = append(posts, &Post{
			ID:        link.ID,
			Title:     link.Title,
			SelfText:  link.SelfText,
			Subreddit: link.Subreddit,
			Score:     link.Score,
		})
		if limit > 0 && len(posts) >= limit {
			break
		}
	}

	for _, post := range posts {
		comments, err := c.topComments(ctx, post.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get comments for post %s: %w", post.ID, err)
		}
		post.Comments = comments
	}

	log.Printf("Reddit search %q returned %d posts", query, len(posts))
	return posts, nil
}

// topComments returns top-level comment bodies. Deferred "more" stubs are
// dropped, never expanded.
func (c *Client) topComments(ctx context.Context, postID string) ([]string, error) {
	if c.commentLimit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.commentLimit))
	params.Set("depth", "1")
	params.Set("sort", "top")
	params.Set("raw_json", "1")

	// The comments endpoint answers with [post listing, comment listing]
	var listings []listing
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(postID)+"?"+params.Encode(), &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []string
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var comment commentData
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}
		if comment.Body == "" {
			continue
		}
		comments = append(comments, comment.Body)
		if len(comments) >= c.commentLimit {
			break
		}
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("reddit API %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Search implements the live analysis source capability: each post becomes
// one snippet and each comment another.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	posts, err := c.SearchPosts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return Snippets(posts), nil
}

// Snippets flattens posts into prompt text items.
func Snippets(posts []*Post) []string {
	var out []string
	for _, p := range posts {
		post := fmt.Sprintf("Reddit post (r/%s): %s", p.Subreddit, p.Title)
		if body := strings.TrimSpace(p.SelfText); body != "" {
			post += "\n" + body
		}
		out = append(out, post)
		for _, comment := range p.Comments {
			out = append(out, "Reddit comment: "+comment)
		}
	}
	return out
}

package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"sentiment-dashboard/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const readonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// clientOptions picks the credential for the Data API: the API key when set,
// otherwise an OAuth client whose token lives in cfg.TokenFile.
func clientOptions(ctx context.Context, cfg *config.YouTubeConfig) ([]option.ClientOption, error) {
	if cfg.APIKey != "" {
		return []option.ClientOption{option.WithAPIKey(cfg.APIKey)}, nil
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{readonlyScope},
		Endpoint:     google.Endpoint,
	}
	cache := tokenCache(cfg.TokenFile)

	tok, err := authorize(ctx, conf, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize YouTube access: %w", err)
	}

	src := &cachingTokenSource{
		base:  conf.TokenSource(ctx, tok),
		cache: cache,
		last:  tok.AccessToken,
	}
	return []option.ClientOption{option.WithTokenSource(src)}, nil
}

// authorize returns the cached token when it can still be used, directly or
// through its refresh token, and runs the device flow otherwise.
func authorize(ctx context.Context, conf *oauth2.Config, cache tokenCache) (*oauth2.Token, error) {
	tok, err := cache.Load()
	switch {
	case err == nil && (tok.Valid() || tok.RefreshToken != ""):
		return tok, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		log.Printf("Warning: Ignoring YouTube token cache: %v", err)
	}

	da, err := conf.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("failed to start device authorization: %w", err)
	}
	log.Printf("YouTube authorization required: visit %s and enter code %s", da.VerificationURI, da.UserCode)

	tok, err = conf.DeviceAccessToken(ctx, da, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}
	if err := cache.Save(tok); err != nil {
		log.Printf("Warning: Failed to cache YouTube token: %v", err)
	}
	return tok, nil
}

// cachingTokenSource writes every token with a new access token back to the
// cache so a restart skips the device flow.
type cachingTokenSource struct {
	base  oauth2.TokenSource
	cache tokenCache

	mu   sync.Mutex
	last string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.cache.Save(tok); err != nil {
			log.Printf("Warning: Failed to cache refreshed YouTube token: %v", err)
		}
	}
	return tok, nil
}

// tokenCache is the path of a JSON-encoded OAuth token.
type tokenCache string

func (c tokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(string(c))
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", string(c), err)
	}
	return &tok, nil
}

// Save replaces the cache file atomically; the file is readable by the owner only.
func (c tokenCache) Save(tok *oauth2.Token) error {
	path := string(c)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Dashboard modes. Plain dashboard needs no credentials; search uses Reddit;
// combined uses Reddit and YouTube.
const (
	ModeDashboard = "dashboard"
	ModeSearch    = "search"
	ModeCombined  = "combined"
)

// AI providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Reddit  RedditConfig  `yaml:"reddit"`
	YouTube YouTubeConfig `yaml:"youtube"`
	AI      AIConfig      `yaml:"ai"`
	Live    LiveConfig    `yaml:"live"`
}

type ServerConfig struct {
	Port  int    `yaml:"port"`
	Title string `yaml:"title"`
}

type DataConfig struct {
	Dir            string `yaml:"dir"`
	VideosFile     string `yaml:"videos_file"`
	InsightsFile   string `yaml:"insights_file"`
	CommentsFile   string `yaml:"comments_file"`
	PlotFile       string `yaml:"plot_file"`
	TrendingLimit  int    `yaml:"trending_limit"`
	CommentsLimit  int    `yaml:"comments_limit"`
	ReloadSchedule string `yaml:"reload_schedule"` // cron spec with seconds; empty disables reloads
}

type RedditConfig struct {
	ClientID     string `yaml:"client_id" env:"REDDIT_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `yaml:"user_agent" env:"REDDIT_USER_AGENT"`
	PostLimit    int    `yaml:"post_limit"`
	CommentLimit int    `yaml:"comment_limit"`
	TimeFilter   string `yaml:"time_filter"`
}

type YouTubeConfig struct {
	APIKey          string   `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID        string   `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string   `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile       string   `yaml:"token_file"`
	VideoLimit      int      `yaml:"video_limit"`
	TranscriptChars int      `yaml:"transcript_chars"`
	TranscriptLangs []string `yaml:"transcript_langs"`
}

type AIConfig struct {
	Provider     string   `yaml:"provider"`
	OpenAIAPIKey string   `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	GeminiAPIKey string   `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string   `yaml:"model"`
	Temperature  *float64 `yaml:"temperature"` // nil means DefaultTemperature; 0 is a valid setting
}

// DefaultTemperature is used when ai.temperature is not set.
const DefaultTemperature = 0.7

// SamplingTemperature returns the configured temperature or the default.
func (c *AIConfig) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

type LiveConfig struct {
	Modes    []string `yaml:"modes"`
	Simulate bool     `yaml:"simulate"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return Parse(data)
}

// Parse builds a validated Config from YAML bytes, applying environment
// fallbacks and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Reddit.ClientID, "REDDIT_CLIENT_ID")
	setFromEnv(&c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	setFromEnv(&c.Reddit.UserAgent, "REDDIT_USER_AGENT")
	setFromEnv(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	setFromEnv(&c.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	setFromEnv(&c.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setFromEnv(&c.AI.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")

	if c.Server.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.Server.Port = port
		}
	}
}

func setFromEnv(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8501
	}
	if c.Server.Title == "" {
		c.Server.Title = "Social Media Sentiment Dashboard"
	}

	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.VideosFile == "" {
		c.Data.VideosFile = "youtube_data.csv"
	}
	if c.Data.InsightsFile == "" {
		c.Data.InsightsFile = "llm_insights.csv"
	}
	if c.Data.CommentsFile == "" {
		c.Data.CommentsFile = "reddit_top_comments.csv"
	}
	if c.Data.PlotFile == "" {
		c.Data.PlotFile = "sentiment_distribution.png"
	}
	if c.Data.TrendingLimit == 0 {
		c.Data.TrendingLimit = 10
	}
	if c.Data.CommentsLimit == 0 {
		c.Data.CommentsLimit = 5
	}

	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "sentiment-dashboard/1.0"
	}
	if c.Reddit.PostLimit == 0 {
		c.Reddit.PostLimit = 5
	}
	if c.Reddit.CommentLimit == 0 {
		c.Reddit.CommentLimit = 5
	}
	if c.Reddit.TimeFilter == "" {
		c.Reddit.TimeFilter = "week"
	}

	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.VideoLimit == 0 {
		c.YouTube.VideoLimit = 3
	}
	if c.YouTube.TranscriptChars == 0 {
		c.YouTube.TranscriptChars = 2000
	}
	if len(c.YouTube.TranscriptLangs) == 0 {
		c.YouTube.TranscriptLangs = []string{"en"}
	}

	if c.AI.Provider == "" {
		c.AI.Provider = ProviderOpenAI
	}
	if c.AI.Model == "" {
		if c.AI.Provider == ProviderGemini {
			c.AI.Model = "gemini-2.5-flash"
		} else {
			c.AI.Model = "gpt-4o-mini"
		}
	}
	if c.AI.Temperature == nil {
		t := DefaultTemperature
		c.AI.Temperature = &t
	}

	if len(c.Live.Modes) == 0 {
		c.Live.Modes = []string{ModeDashboard, ModeSearch, ModeCombined}
	}
}

// ModeEnabled reports whether mode is in the configured mode list.
func (c *Config) ModeEnabled(mode string) bool {
	for _, m := range c.Live.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// LiveEnabled reports whether any mode needs the live analysis clients.
func (c *Config) LiveEnabled() bool {
	return c.ModeEnabled(ModeSearch) || c.ModeEnabled(ModeCombined)
}

func (c *Config) validate() error {
	for _, m := range c.Live.Modes {
		switch m {
		case ModeDashboard, ModeSearch, ModeCombined:
		default:
			return fmt.Errorf("unknown mode %q in live.modes", m)
		}
	}
	if c.AI.Provider != ProviderOpenAI && c.AI.Provider != ProviderGemini {
		return fmt.Errorf("unknown AI provider %q (use %s or %s)", c.AI.Provider, ProviderOpenAI, ProviderGemini)
	}
	if t := c.AI.SamplingTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", t)
	}

	// Zero limits were replaced by defaults above
	for _, limit := range []struct {
		name  string
		value int
	}{
		{"data.trending_limit", c.Data.TrendingLimit},
		{"data.comments_limit", c.Data.CommentsLimit},
		{"reddit.post_limit", c.Reddit.PostLimit},
		{"reddit.comment_limit", c.Reddit.CommentLimit},
		{"youtube.video_limit", c.YouTube.VideoLimit},
		{"youtube.transcript_chars", c.YouTube.TranscriptChars},
	} {
		if limit.value < 0 {
			return fmt.Errorf("%s must be positive, got %d", limit.name, limit.value)
		}
	}

	// Simulated live fetch runs entirely from the loaded data files
	if !c.LiveEnabled() || c.Live.Simulate {
		return nil
	}

	if c.Reddit.ClientID == "" {
		return fmt.Errorf("Reddit client ID is required (set REDDIT_CLIENT_ID or reddit.client_id)")
	}
	if c.Reddit.ClientSecret == "" {
		return fmt.Errorf("Reddit client secret is required (set REDDIT_CLIENT_SECRET or reddit.client_secret)")
	}
	if c.ModeEnabled(ModeCombined) && c.YouTube.APIKey == "" {
		if c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "" {
			return fmt.Errorf("YouTube API key is required for combined mode (set YOUTUBE_API_KEY or youtube.api_key, or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET for OAuth)")
		}
	}
	if c.AI.Provider == ProviderOpenAI && c.AI.OpenAIAPIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai_api_key)")
	}
	if c.AI.Provider == ProviderGemini && c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	return nil
}

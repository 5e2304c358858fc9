package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/resumeai/enhancer/internal/scorer"
	"github.com/resumeai/enhancer/internal/wizard"
)

// Config is the root configuration for ResumeAI Enhancer.
type Config struct {
	Server       ServerConfig
	Session      SessionConfig
	Analysis     AnalysisConfig
	Scoring      ScoringConfig
	Ledger       LedgerConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // zero disables the write deadline, needed for SSE
	ShutdownTimeout time.Duration
}

// SessionConfig controls the in-memory wizard sessions.
type SessionConfig struct {
	CookieName      string
	TTL             time.Duration // idle sessions older than this are dropped
	CleanupInterval time.Duration
	SecureCookie    bool
}

// AnalysisConfig controls pacing and the free allowance.
type AnalysisConfig struct {
	Delay            time.Duration // artificial wait before the result is delivered
	ProgressInterval time.Duration // time between progress ticks
	ProgressStep     int           // percentage added per tick
	FreeAnalyses     int           // analyses allowed before the upsell gate closes
}

// ScoringConfig is the presentation table the scorer runs on.
type ScoringConfig struct {
	Keywords          []string
	Enhancements      []string
	FallbackSkill     string
	RockstarThreshold int
}

// LedgerConfig selects where completed free analyses are counted.
type LedgerConfig struct {
	Path      string        // sqlite file; empty keeps the ledger in memory
	Retention time.Duration // how long a used allowance is remembered
	Disabled  bool          // only the session cookie counts analyses
}

// RateLimitConfig throttles analysis submissions per client.
type RateLimitConfig struct {
	MinDelay time.Duration // minimum gap between submissions from one client
}

// NotificationConfig controls which notifier receives upsell events.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	Session      rawSessionConfig   `yaml:"session"`
	Analysis     rawAnalysisConfig  `yaml:"analysis"`
	Scoring      rawScoringConfig   `yaml:"scoring"`
	Ledger       rawLedgerConfig    `yaml:"ledger"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type rawSessionConfig struct {
	CookieName      string `yaml:"cookie_name"`
	TTL             string `yaml:"ttl"`
	CleanupInterval string `yaml:"cleanup_interval"`
	SecureCookie    bool   `yaml:"secure_cookie"`
}

type rawAnalysisConfig struct {
	Delay            string `yaml:"delay"`
	ProgressInterval string `yaml:"progress_interval"`
	ProgressStep     int    `yaml:"progress_step"`
	FreeAnalyses     int    `yaml:"free_analyses"`
}

type rawScoringConfig struct {
	Keywords          []string `yaml:"keywords"`
	Enhancements      []string `yaml:"enhancements"`
	FallbackSkill     string   `yaml:"fallback_skill"`
	RockstarThreshold *int     `yaml:"rockstar_threshold"`
}

type rawLedgerConfig struct {
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
	Disabled  bool   `yaml:"disabled"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			CookieName:      "resumeai_session",
			TTL:             time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Analysis: AnalysisConfig{
			Delay:            3 * time.Second,
			ProgressInterval: 300 * time.Millisecond,
			ProgressStep:     wizard.DefaultProgressStep,
			FreeAnalyses:     wizard.DefaultFreeAnalyses,
		},
		Scoring: ScoringConfig{
			Keywords:          append([]string(nil), scorer.DefaultKeywords...),
			Enhancements:      append([]string(nil), scorer.DefaultEnhancements...),
			FallbackSkill:     scorer.DefaultFallbackSkill,
			RockstarThreshold: wizard.DefaultRockstarThreshold,
		},
		Ledger: LedgerConfig{
			Retention: 30 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			MinDelay: 2 * time.Second,
		},
		Notification: NotificationConfig{
			Type: "log",
		},
	}
}

// Load reads and parses the YAML config file at path on top of Default,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML config data on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"server.read_timeout", raw.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{"server.write_timeout", raw.Server.WriteTimeout, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", raw.Server.ShutdownTimeout, &cfg.Server.ShutdownTimeout},
		{"session.ttl", raw.Session.TTL, &cfg.Session.TTL},
		{"session.cleanup_interval", raw.Session.CleanupInterval, &cfg.Session.CleanupInterval},
		{"analysis.delay", raw.Analysis.Delay, &cfg.Analysis.Delay},
		{"analysis.progress_interval", raw.Analysis.ProgressInterval, &cfg.Analysis.ProgressInterval},
		{"ledger.retention", raw.Ledger.Retention, &cfg.Ledger.Retention},
		{"rate_limit.min_delay", raw.RateLimit.MinDelay, &cfg.RateLimit.MinDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}

	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if raw.Session.CookieName != "" {
		cfg.Session.CookieName = raw.Session.CookieName
	}
	cfg.Session.SecureCookie = raw.Session.SecureCookie
	if raw.Analysis.ProgressStep != 0 {
		cfg.Analysis.ProgressStep = raw.Analysis.ProgressStep
	}
	if raw.Analysis.FreeAnalyses != 0 {
		cfg.Analysis.FreeAnalyses = raw.Analysis.FreeAnalyses
	}
	if len(raw.Scoring.Keywords) > 0 {
		cfg.Scoring.Keywords = raw.Scoring.Keywords
	}
	if len(raw.Scoring.Enhancements) > 0 {
		cfg.Scoring.Enhancements = raw.Scoring.Enhancements
	}
	if raw.Scoring.FallbackSkill != "" {
		cfg.Scoring.FallbackSkill = raw.Scoring.FallbackSkill
	}
	if raw.Scoring.RockstarThreshold != nil {
		cfg.Scoring.RockstarThreshold = *raw.Scoring.RockstarThreshold
	}
	cfg.Ledger.Path = raw.Ledger.Path
	cfg.Ledger.Disabled = raw.Ledger.Disabled
	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Scorer builds the scorer described by the scoring table.
func (c *Config) Scorer() (*scorer.Scorer, error) {
	return scorer.New(c.Scoring.Keywords, c.Scoring.Enhancements, c.Scoring.FallbackSkill)
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %v", cfg.Session.TTL)
	}
	if cfg.Session.CleanupInterval <= 0 {
		return fmt.Errorf("session.cleanup_interval must be positive, got %v", cfg.Session.CleanupInterval)
	}
	if cfg.Analysis.Delay < 0 {
		return fmt.Errorf("analysis.delay must not be negative, got %v", cfg.Analysis.Delay)
	}
	if cfg.Analysis.ProgressInterval <= 0 {
		return fmt.Errorf("analysis.progress_interval must be positive, got %v", cfg.Analysis.ProgressInterval)
	}
	if cfg.Analysis.ProgressStep < 1 || cfg.Analysis.ProgressStep > 50 {
		return fmt.Errorf("analysis.progress_step must be between 1 and 50, got %d", cfg.Analysis.ProgressStep)
	}
	if cfg.Ledger.Retention <= 0 {
		return fmt.Errorf("ledger.retention must be positive, got %v", cfg.Ledger.Retention)
	}
	if cfg.Ledger.Disabled && cfg.Ledger.Path != "" {
		return fmt.Errorf("ledger.path must be empty when the ledger is disabled")
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Analysis.FreeAnalyses < 1 {
		return fmt.Errorf("analysis.free_analyses must be at least 1, got %d", cfg.Analysis.FreeAnalyses)
	}

	if len(cfg.Scoring.Keywords) == 0 {
		return fmt.Errorf("scoring.keywords must not be empty")
	}
	seen := make(map[string]bool)
	for _, kw := range cfg.Scoring.Keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" {
			return fmt.Errorf("scoring.keywords must not contain blank entries")
		}
		if seen[key] {
			return fmt.Errorf("scoring.keywords contains duplicate %q", kw)
		}
		seen[key] = true
	}
	if len(cfg.Scoring.Enhancements) != scorer.EnhancementCount {
		return fmt.Errorf("scoring.enhancements must have exactly %d entries, got %d", scorer.EnhancementCount, len(cfg.Scoring.Enhancements))
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

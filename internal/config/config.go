// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/jobscraper/internal/extract"
	"github.com/JakeFAU/jobscraper/internal/strategy"
)

// KeywordPlaceholder is replaced by the escaped search keyword in URL templates.
const KeywordPlaceholder = strategy.KeywordPlaceholder

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Headless    HeadlessConfig    `mapstructure:"headless"`
	Scrape      ScrapeConfig      `mapstructure:"scrape"`
	Direct      DirectConfig      `mapstructure:"direct"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures the outbound HTTP client used by the direct and feed strategies.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	MaxBodyBytes   int    `mapstructure:"max_body_bytes"`
}

// HeadlessConfig configures the browser used by the rendered strategy.
type HeadlessConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ChromeBin     string `mapstructure:"chrome_bin"`
	NoSandbox     bool   `mapstructure:"no_sandbox"`
	MaxParallel   int    `mapstructure:"max_parallel"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	SettleMs      int    `mapstructure:"settle_ms"`
	ScrollWaitMs  int    `mapstructure:"scroll_wait_ms"`
}

// ScrapeConfig governs the fallback pipeline.
type ScrapeConfig struct {
	Strategies        []string `mapstructure:"strategies"`
	DefaultMaxResults int      `mapstructure:"default_max_results"`
	MaxResultsLimit   int      `mapstructure:"max_results_limit"`
	SearchURLTemplate string   `mapstructure:"search_url_template"`
	SearchTable       string   `mapstructure:"search_table"`
}

// EndpointConfig is one direct-HTTP candidate endpoint.
type EndpointConfig struct {
	URL   string `mapstructure:"url"`
	Table string `mapstructure:"table"`
}

// DirectConfig lists the direct-HTTP endpoints in priority order.
type DirectConfig struct {
	Endpoints []EndpointConfig `mapstructure:"endpoints"`
}

// FeedConfig configures the syndication feed strategy.
type FeedConfig struct {
	URLTemplate string `mapstructure:"url_template"`
	Platform    string `mapstructure:"platform"`
}

// CredentialsConfig holds optional target-site credentials. They are only
// reported as present or absent.
type CredentialsConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// bindLegacyEnv keeps the plain variable names used by existing deployments working.
// Prefixed variables take precedence.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":          {"JOBSCRAPER_SERVER_PORT", "PORT"},
		"environment":          {"JOBSCRAPER_ENVIRONMENT", "ENVIRONMENT"},
		"headless.chrome_bin":  {"JOBSCRAPER_HEADLESS_CHROME_BIN", "GOOGLE_CHROME_BIN"},
		"credentials.email":    {"JOBSCRAPER_CREDENTIALS_EMAIL", "LINKEDIN_EMAIL"},
		"credentials.password": {"JOBSCRAPER_CREDENTIALS_PASSWORD", "LINKEDIN_PASSWORD"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.accept_language", "en-US,en;q=0.9")
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("http.max_body_bytes", 10*1024*1024)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.no_sandbox", true)
	v.SetDefault("headless.max_parallel", 2)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.settle_ms", 5000)
	v.SetDefault("headless.scroll_wait_ms", 3000)
	v.SetDefault("scrape.strategies", []string{strategy.NameRendered, strategy.NameDirect, strategy.NameFeed})
	v.SetDefault("scrape.default_max_results", 10)
	v.SetDefault("scrape.max_results_limit", 50)
	v.SetDefault("scrape.search_url_template", "https://www.linkedin.com/jobs/search/?keywords="+KeywordPlaceholder)
	v.SetDefault("scrape.search_table", extract.LinkedInSearch.Name)
	v.SetDefault("direct.endpoints", []map[string]string{
		{
			"url": "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords=" +
				KeywordPlaceholder + "&start=0",
			"table": extract.LinkedInGuest.Name,
		},
		{
			"url":   "https://www.linkedin.com/jobs/search/?keywords=" + KeywordPlaceholder,
			"table": extract.LinkedInSearch.Name,
		},
	})
	v.SetDefault("feed.url_template", "https://rss.indeed.com/rss?q="+KeywordPlaceholder)
	v.SetDefault("feed.platform", "Indeed")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// DefaultUserAgent is a desktop Chrome user agent string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	return c.validateScrape()
}

func (c Config) validateScrape() error {
	if c.Scrape.DefaultMaxResults <= 0 {
		return fmt.Errorf("scrape.default_max_results must be > 0")
	}
	if c.Scrape.MaxResultsLimit < c.Scrape.DefaultMaxResults {
		return fmt.Errorf("scrape.max_results_limit must be >= scrape.default_max_results")
	}
	if len(c.Scrape.Strategies) == 0 {
		return fmt.Errorf("scrape.strategies must list at least one strategy")
	}
	seen := make(map[string]bool, len(c.Scrape.Strategies))
	for _, name := range c.Scrape.Strategies {
		if !strategy.Known(name) {
			return fmt.Errorf("scrape.strategies: unknown strategy %q", name)
		}
		if seen[name] {
			return fmt.Errorf("scrape.strategies: duplicate strategy %q", name)
		}
		seen[name] = true
	}
	if seen[strategy.NameRendered] {
		if err := checkTemplate("scrape.search_url_template", c.Scrape.SearchURLTemplate); err != nil {
			return err
		}
		if _, ok := extract.Tables[c.Scrape.SearchTable]; !ok {
			return fmt.Errorf("scrape.search_table: unknown table %q", c.Scrape.SearchTable)
		}
	}
	if seen[strategy.NameDirect] {
		if len(c.Direct.Endpoints) == 0 {
			return fmt.Errorf("direct.endpoints must not be empty when the direct strategy is enabled")
		}
		for i, ep := range c.Direct.Endpoints {
			if err := checkTemplate(fmt.Sprintf("direct.endpoints[%d].url", i), ep.URL); err != nil {
				return err
			}
			if _, ok := extract.Tables[ep.Table]; !ok {
				return fmt.Errorf("direct.endpoints[%d].table: unknown table %q", i, ep.Table)
			}
		}
	}
	if seen[strategy.NameFeed] {
		if err := checkTemplate("feed.url_template", c.Feed.URLTemplate); err != nil {
			return err
		}
	}
	return nil
}

func checkTemplate(key, tmpl string) error {
	if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
		return fmt.Errorf("%s must be an absolute http(s) URL", key)
	}
	if !strings.Contains(tmpl, KeywordPlaceholder) {
		return fmt.Errorf("%s must contain %s", key, KeywordPlaceholder)
	}
	return nil
}

// HTTPTimeout is the bounded per-request timeout for outbound fetches.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single inbound API request.
func (c Config) RequestTimeout() time.Duration {
	if c.Server.RequestTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// CredentialsConfigured reports whether both target-site credentials are set.
func (c Config) CredentialsConfigured() bool {
	return c.Credentials.Email != "" && c.Credentials.Password != ""
}

// Package config loads the aggregator configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"news_aggregator/internal/llm"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/models"
	"news_aggregator/internal/summarize"

	"gopkg.in/yaml.v2"
)

// Defaults.
const (
	DefaultSourceTimeout        = 12 * time.Second
	DefaultArticleTimeout       = 12 * time.Second
	DefaultListPageConcurrency  = 3
	DefaultArticleConcurrency   = 4
	DefaultMaxItems             = 25
	DefaultListPageLimit        = 15
	DefaultMaxListPages         = 10
	DefaultUserAgent            = "PersonalAggregator/1.0"
	DefaultCacheTTL             = 5 * time.Minute
	DefaultStoreTTL             = time.Hour
	DefaultCacheSize            = 128
	DefaultServerAddress        = ":3000"
	DefaultServerReadTimeout    = 15 * time.Second
	DefaultServerWriteTimeout   = 10 * time.Minute
	DefaultServerShutdownPeriod = 30 * time.Second
	DefaultRedisKeyPrefix       = "news_aggregator:"
)

var ErrInvalidConfig = errors.New("invalid config")

// LogicConfig tunes the scraping pipeline.
type LogicConfig struct {
	SourceTimeout        time.Duration `yaml:"source_timeout"`
	ArticleTimeout       time.Duration `yaml:"article_timeout"`
	ListPageConcurrency  int           `yaml:"list_page_concurrency"`
	ArticleConcurrency   int           `yaml:"article_concurrency"`
	DefaultMaxItems      int           `yaml:"default_max_items"`
	DefaultListPageLimit int           `yaml:"default_list_page_limit"`
	// MaxListPages caps list pages discovered through links (not templates).
	MaxListPages int    `yaml:"max_list_pages"`
	UserAgent    string `yaml:"user_agent"`
}

type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	StoreTTL time.Duration `yaml:"store_ttl"`
	Size     int           `yaml:"size"`
}

// RedisConfig enables the Redis-backed result store when Addr is set.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ScheduleConfig struct {
	// Sync is a cron spec for periodic forced refreshes; empty disables it.
	Sync string `yaml:"sync"`
}

type Config struct {
	Logic     LogicConfig      `yaml:"logic"`
	LLM       llm.Config       `yaml:"llm"`
	Summarize summarize.Config `yaml:"summarize"`
	Cache     CacheConfig      `yaml:"cache"`
	Redis     RedisConfig      `yaml:"redis"`
	Server    ServerConfig     `yaml:"server"`
	Log       logger.Config    `yaml:"log"`
	Schedule  ScheduleConfig   `yaml:"schedule"`
	Sources   []models.Source  `yaml:"sources"`
}

// LoadConfig reads path, applies defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WithDefaults fills unset pipeline settings.
func (l LogicConfig) WithDefaults() LogicConfig {
	if l.SourceTimeout <= 0 {
		l.SourceTimeout = DefaultSourceTimeout
	}
	if l.ArticleTimeout <= 0 {
		l.ArticleTimeout = DefaultArticleTimeout
	}
	if l.ListPageConcurrency <= 0 {
		l.ListPageConcurrency = DefaultListPageConcurrency
	}
	if l.ArticleConcurrency <= 0 {
		l.ArticleConcurrency = DefaultArticleConcurrency
	}
	if l.DefaultMaxItems <= 0 {
		l.DefaultMaxItems = DefaultMaxItems
	}
	if l.DefaultListPageLimit <= 0 {
		l.DefaultListPageLimit = DefaultListPageLimit
	}
	if l.MaxListPages <= 0 {
		l.MaxListPages = DefaultMaxListPages
	}
	if l.UserAgent == "" {
		l.UserAgent = DefaultUserAgent
	}
	return l
}

func (c *Config) SetDefaults() {
	c.Logic = c.Logic.WithDefaults()

	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = llm.DefaultBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = llm.DefaultModel
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.StoreTTL <= 0 {
		c.Cache.StoreTTL = DefaultStoreTTL
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = DefaultCacheSize
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultServerShutdownPeriod
	}

	if c.Log.Level == "" {
		c.Log.Level = logger.DefaultLevel
	}
}

// Validate checks that every source has a unique id and an absolute http(s) URL.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("%w: source #%d has no id", ErrInvalidConfig, i+1)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate source id %q", ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = true

		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: source %q has invalid url %q", ErrInvalidConfig, s.ID, s.URL)
		}
		if s.MaxItems < 0 {
			return fmt.Errorf("%w: source %q has negative max_items", ErrInvalidConfig, s.ID)
		}
	}
	return nil
}

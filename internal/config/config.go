// Package config provides environment-driven configuration for the agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nexora/opportunity-agent/internal/sources"
)

// Config aggregates every sub-configuration the agent needs.
type Config struct {
	Server    *ServerConfig
	Database  *DatabaseConfig
	Redis     *RedisConfig
	Sources   *SourcesConfig
	Matching  *MatchingConfig
	Scheduler *SchedulerConfig
	Email     *EmailConfig
}

// Load reads the full configuration from the environment.
func Load() (*Config, error) {
	server, err := NewServerConfig()
	if err != nil {
		return nil, err
	}
	database, err := NewDatabaseConfig()
	if err != nil {
		return nil, err
	}
	srcs, err := NewSourcesConfig()
	if err != nil {
		return nil, err
	}
	matching, err := NewMatchingConfig()
	if err != nil {
		return nil, err
	}
	scheduler, err := NewSchedulerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Database:  database,
		Redis:     NewRedisConfig(),
		Sources:   srcs,
		Matching:  matching,
		Scheduler: scheduler,
		Email:     NewEmailConfig(),
	}, nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServerConfig reads PORT (default 8080), CORS_ALLOWED_ORIGINS,
// RATE_LIMIT_RPS and RATE_LIMIT_BURST.
func NewServerConfig() (*ServerConfig, error) {
	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	rps, err := envFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := envInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}

	c := &ServerConfig{
		Port:           port,
		AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got: %g", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got: %d", c.RateLimitBurst)
	}
	return nil
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string
}

// NewDatabaseConfig reads DATABASE_URL (required).
func NewDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	return &DatabaseConfig{URL: url}, nil
}

// RedisConfig holds listing cache settings. An empty URL disables caching.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// NewRedisConfig reads REDIS_URL and CACHE_TTL_MINUTES (default 30).
func NewRedisConfig() *RedisConfig {
	ttlMinutes, err := envInt("CACHE_TTL_MINUTES", 30)
	if err != nil || ttlMinutes < 1 {
		ttlMinutes = 30
	}
	return &RedisConfig{
		URL: os.Getenv("REDIS_URL"),
		TTL: time.Duration(ttlMinutes) * time.Minute,
	}
}

// SourcesConfig holds adapter and orchestrator settings.
type SourcesConfig struct {
	Enabled          []string
	Modes            map[string]sources.Mode
	GreenhouseBoards []string
	EventbriteToken  string

	LimitPerSource int
	Parallelism    int
	MaxRetries     int
	AdapterTimeout time.Duration
	BrowserTimeout time.Duration
	DelayMin       time.Duration
	DelayMax       time.Duration
	Verbose        bool
}

// NewSourcesConfig reads SOURCES_ENABLED, SOURCE_MODE_<NAME> overrides,
// GREENHOUSE_BOARDS, EVENTBRITE_TOKEN and the fetch tuning knobs.
func NewSourcesConfig() (*SourcesConfig, error) {
	limit, err := envInt("LIMIT_PER_SOURCE", 20)
	if err != nil {
		return nil, err
	}
	parallelism, err := envInt("FETCH_PARALLELISM", 4)
	if err != nil {
		return nil, err
	}
	retries, err := envInt("FETCH_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	adapterTimeout, err := envSeconds("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	browserTimeout, err := envSeconds("BROWSER_TIMEOUT_SECONDS", 45)
	if err != nil {
		return nil, err
	}
	delayMin, err := envSecondsFloat("FETCH_DELAY_MIN_SECONDS", 1.0)
	if err != nil {
		return nil, err
	}
	delayMax, err := envSecondsFloat("FETCH_DELAY_MAX_SECONDS", 3.0)
	if err != nil {
		return nil, err
	}

	enabled := envList("SOURCES_ENABLED", sources.DefaultEnabled())
	modes := make(map[string]sources.Mode)
	for _, name := range enabled {
		if mode := os.Getenv("SOURCE_MODE_" + strings.ToUpper(name)); mode != "" {
			modes[name] = sources.Mode(mode)
		}
	}

	c := &SourcesConfig{
		Enabled:          enabled,
		Modes:            modes,
		GreenhouseBoards: envList("GREENHOUSE_BOARDS", nil),
		EventbriteToken:  os.Getenv("EVENTBRITE_TOKEN"),
		LimitPerSource:   limit,
		Parallelism:      parallelism,
		MaxRetries:       retries,
		AdapterTimeout:   adapterTimeout,
		BrowserTimeout:   browserTimeout,
		DelayMin:         delayMin,
		DelayMax:         delayMax,
		Verbose:          os.Getenv("VERBOSE") == "true",
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SourcesConfig) normalize() error {
	if len(c.Enabled) == 0 {
		return fmt.Errorf("SOURCES_ENABLED cannot be empty")
	}
	if c.LimitPerSource < 1 {
		return fmt.Errorf("LIMIT_PER_SOURCE must be at least 1, got: %d", c.LimitPerSource)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("FETCH_PARALLELISM must be at least 1, got: %d", c.Parallelism)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be at least 1, got: %d", c.MaxRetries)
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("fetch delay window invalid: [%s, %s]", c.DelayMin, c.DelayMax)
	}
	for name, mode := range c.Modes {
		switch mode {
		case sources.ModeScrape, sources.ModeBrowser, sources.ModeAPI:
		default:
			return fmt.Errorf("invalid mode for source %s: %s", name, mode)
		}
	}
	return nil
}

// Settings converts the config into registry settings.
func (c *SourcesConfig) Settings() sources.Settings {
	return sources.Settings{
		Enabled:          c.Enabled,
		Modes:            c.Modes,
		GreenhouseBoards: c.GreenhouseBoards,
		EventbriteToken:  c.EventbriteToken,
		HTTPTimeout:      c.AdapterTimeout,
		BrowserTimeout:   c.BrowserTimeout,
		Verbose:          c.Verbose,
	}
}

// MatchingConfig holds embedding vendor credentials and score tuning.
type MatchingConfig struct {
	GeminiAPIKey   string
	EmbeddingModel string

	SemanticWeight float64
	SkillWeight    float64
	InterestWeight float64
	LocationBonus  float64
	BestThreshold  float64
	FloorThreshold float64
}

// NewMatchingConfig reads GEMINI_API_KEY, EMBEDDING_MODEL and the score
// weight and threshold knobs. A missing API key is allowed: matching then
// runs in degraded keyword mode.
func NewMatchingConfig() (*MatchingConfig, error) {
	semantic, err := envFloat("MATCH_SEMANTIC_WEIGHT", 0.6)
	if err != nil {
		return nil, err
	}
	skill, err := envFloat("MATCH_SKILL_WEIGHT", 0.3)
	if err != nil {
		return nil, err
	}
	interest, err := envFloat("MATCH_INTEREST_WEIGHT", 0.1)
	if err != nil {
		return nil, err
	}
	locationBonus, err := envFloat("MATCH_LOCATION_BONUS", 0.05)
	if err != nil {
		return nil, err
	}
	best, err := envFloat("MATCH_BEST_THRESHOLD", 0.7)
	if err != nil {
		return nil, err
	}
	floor, err := envFloat("MATCH_FLOOR_THRESHOLD", 0.2)
	if err != nil {
		return nil, err
	}

	c := &MatchingConfig{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		SemanticWeight: semantic,
		SkillWeight:    skill,
		InterestWeight: interest,
		LocationBonus:  locationBonus,
		BestThreshold:  best,
		FloorThreshold: floor,
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *MatchingConfig) normalize() error {
	sum := c.SemanticWeight + c.SkillWeight + c.InterestWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("match weights must sum to 1, got: %g", sum)
	}
	if c.LocationBonus < 0 || c.LocationBonus > 0.25 {
		return fmt.Errorf("MATCH_LOCATION_BONUS out of range: %g (must be 0-0.25)", c.LocationBonus)
	}
	if c.FloorThreshold < 0 || c.BestThreshold > 1 || c.FloorThreshold >= c.BestThreshold {
		return fmt.Errorf("match thresholds invalid: best=%g floor=%g", c.BestThreshold, c.FloorThreshold)
	}
	return nil
}

// SchedulerConfig holds pipeline scheduling settings.
type SchedulerConfig struct {
	IntervalHours int
	RunOnStart    bool
	StaleRunAge   time.Duration
}

// NewSchedulerConfig reads SCHEDULE_INTERVAL_HOURS (default 1),
// RUN_ON_START and STALE_RUN_MINUTES (default 120).
func NewSchedulerConfig() (*SchedulerConfig, error) {
	interval, err := envInt("SCHEDULE_INTERVAL_HOURS", 1)
	if err != nil {
		return nil, err
	}
	staleMinutes, err := envInt("STALE_RUN_MINUTES", 120)
	if err != nil {
		return nil, err
	}

	c := &SchedulerConfig{
		IntervalHours: interval,
		RunOnStart:    os.Getenv("RUN_ON_START") == "true",
		StaleRunAge:   time.Duration(staleMinutes) * time.Minute,
	}
	if c.IntervalHours < 1 {
		return nil, fmt.Errorf("SCHEDULE_INTERVAL_HOURS must be at least 1, got: %d", c.IntervalHours)
	}
	return c, nil
}

// EmailConfig holds transactional email vendor settings. Missing values
// disable digest notifications.
type EmailConfig struct {
	Endpoint string
	APIKey   string
	From     string
}

// NewEmailConfig reads EMAIL_API_ENDPOINT, EMAIL_API_KEY and EMAIL_FROM.
func NewEmailConfig() *EmailConfig {
	return &EmailConfig{
		Endpoint: os.Getenv("EMAIL_API_ENDPOINT"),
		APIKey:   os.Getenv("EMAIL_API_KEY"),
		From:     os.Getenv("EMAIL_FROM"),
	}
}

// Enabled reports whether digest sending is configured.
func (c *EmailConfig) Enabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// env helpers

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func envSeconds(key string, def int) (time.Duration, error) {
	v, err := envInt(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}

func envSecondsFloat(key string, def float64) (time.Duration, error) {
	v, err := envFloat(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(v * float64(time.Second)), nil
}

func envList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/sources"
)

func TestNewServerConfigDefaults(t *testing.T) {
	cfg, err := NewServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestNewServerConfigInvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")
	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "PORT")

	t.Setenv("PORT", "not-a-number")
	_, err = NewServerConfig()
	assert.Error(t, err)
}

func TestNewDatabaseConfigRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := NewDatabaseConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/nexora")
	cfg, err := NewDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/nexora", cfg.URL)
}

func TestNewRedisConfigDefaults(t *testing.T) {
	cfg := NewRedisConfig()
	assert.Empty(t, cfg.URL)
	assert.Equal(t, 30*time.Minute, cfg.TTL)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL_MINUTES", "10")
	cfg = NewRedisConfig()
	assert.Equal(t, "redis://localhost:6379/0", cfg.URL)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
}

func TestNewSourcesConfigDefaults(t *testing.T) {
	cfg, err := NewSourcesConfig()
	require.NoError(t, err)
	assert.Equal(t, sources.DefaultEnabled(), cfg.Enabled)
	assert.Equal(t, 20, cfg.LimitPerSource)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, 1*time.Second, cfg.DelayMin)
	assert.Equal(t, 3*time.Second, cfg.DelayMax)
}

func TestNewSourcesConfigModeOverrides(t *testing.T) {
	t.Setenv("SOURCES_ENABLED", "indeed,greenhouse")
	t.Setenv("SOURCE_MODE_GREENHOUSE", "scrape")

	cfg, err := NewSourcesConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"indeed", "greenhouse"}, cfg.Enabled)
	assert.Equal(t, sources.ModeScrape, cfg.Modes["greenhouse"])
	_, ok := cfg.Modes["indeed"]
	assert.False(t, ok)
}

func TestNewSourcesConfigInvalidMode(t *testing.T) {
	t.Setenv("SOURCES_ENABLED", "indeed")
	t.Setenv("SOURCE_MODE_INDEED", "carrier-pigeon")

	_, err := NewSourcesConfig()
	assert.ErrorContains(t, err, "invalid mode")
}

func TestNewSourcesConfigInvalidDelayWindow(t *testing.T) {
	t.Setenv("FETCH_DELAY_MIN_SECONDS", "5")
	t.Setenv("FETCH_DELAY_MAX_SECONDS", "2")

	_, err := NewSourcesConfig()
	assert.ErrorContains(t, err, "delay window")
}

func TestSourcesConfigSettings(t *testing.T) {
	t.Setenv("GREENHOUSE_BOARDS", "acme, globex")
	t.Setenv("EVENTBRITE_TOKEN", "tok-123")

	cfg, err := NewSourcesConfig()
	require.NoError(t, err)

	settings := cfg.Settings()
	assert.Equal(t, []string{"acme", "globex"}, settings.GreenhouseBoards)
	assert.Equal(t, "tok-123", settings.EventbriteToken)
	assert.Equal(t, cfg.AdapterTimeout, settings.HTTPTimeout)
}

func TestNewMatchingConfigDefaults(t *testing.T) {
	cfg, err := NewMatchingConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.SemanticWeight)
	assert.Equal(t, 0.3, cfg.SkillWeight)
	assert.Equal(t, 0.1, cfg.InterestWeight)
	assert.Equal(t, 0.05, cfg.LocationBonus)
	assert.Equal(t, 0.7, cfg.BestThreshold)
	assert.Equal(t, 0.2, cfg.FloorThreshold)
}

func TestNewMatchingConfigLocationBonusRange(t *testing.T) {
	t.Setenv("MATCH_LOCATION_BONUS", "0.5")
	_, err := NewMatchingConfig()
	assert.ErrorContains(t, err, "MATCH_LOCATION_BONUS")
}

func TestNewMatchingConfigWeightsMustSum(t *testing.T) {
	t.Setenv("MATCH_SEMANTIC_WEIGHT", "0.5")
	_, err := NewMatchingConfig()
	assert.ErrorContains(t, err, "sum to 1")
}

func TestNewMatchingConfigThresholdOrder(t *testing.T) {
	t.Setenv("MATCH_BEST_THRESHOLD", "0.2")
	t.Setenv("MATCH_FLOOR_THRESHOLD", "0.7")
	_, err := NewMatchingConfig()
	assert.ErrorContains(t, err, "thresholds")
}

func TestNewSchedulerConfig(t *testing.T) {
	cfg, err := NewSchedulerConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.IntervalHours)
	assert.False(t, cfg.RunOnStart)
	assert.Equal(t, 120*time.Minute, cfg.StaleRunAge)

	t.Setenv("SCHEDULE_INTERVAL_HOURS", "6")
	t.Setenv("RUN_ON_START", "true")
	cfg, err = NewSchedulerConfig()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.IntervalHours)
	assert.True(t, cfg.RunOnStart)

	t.Setenv("SCHEDULE_INTERVAL_HOURS", "0")
	_, err = NewSchedulerConfig()
	assert.ErrorContains(t, err, "SCHEDULE_INTERVAL_HOURS")
}

func TestEmailConfigEnabled(t *testing.T) {
	cfg := NewEmailConfig()
	assert.False(t, cfg.Enabled())

	t.Setenv("EMAIL_API_ENDPOINT", "https://api.resend.com/emails")
	t.Setenv("EMAIL_API_KEY", "re_123")
	cfg = NewEmailConfig()
	assert.True(t, cfg.Enabled())
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/nexora")
	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Server)
	assert.NotNil(t, cfg.Sources)
	assert.NotNil(t, cfg.Matching)
}

func TestEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, b ,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, envList("TEST_LIST", nil))

	t.Setenv("TEST_LIST", "")
	assert.Equal(t, []string{"x"}, envList("TEST_LIST", []string{"x"}))
}

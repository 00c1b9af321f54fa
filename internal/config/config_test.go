package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialtrack/internal/domain/analytics"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CorsOrigins)
	assert.Equal(t, "socialtrack", cfg.Database.Database)
	assert.Empty(t, cfg.Redis.URL)
	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Alerts.ScanInterval)
	assert.Equal(t, "alerts", cfg.Alerts.EventsTopic)
	assert.Equal(t, 2, cfg.Analytics.DashboardRecommendations)
	assert.Equal(t, 3, cfg.Analytics.DashboardAlerts)
	assert.Equal(t, analytics.DefaultPriorities(), cfg.Analytics.Priorities)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("REDIS_REPORT_TTL", "30s")
	t.Setenv("ALERTS_SCAN_INTERVAL", "1m")
	t.Setenv("ANALYTICS_DASHBOARD_ALERTS", "5")
	t.Setenv("ANALYTICS_PRIORITY_CAPTION", "HIGH")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CorsOrigins)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, 30*time.Second, cfg.Redis.ReportTTL)
	assert.Equal(t, time.Minute, cfg.Alerts.ScanInterval)
	assert.Equal(t, 5, cfg.Analytics.DashboardAlerts)
	assert.Equal(t, analytics.PriorityHigh, cfg.Analytics.Priorities.Of(analytics.HeuristicCaption))
	assert.Equal(t, analytics.PriorityHigh, cfg.Analytics.Priorities.Of(analytics.HeuristicTiming))
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"zero scan interval", map[string]string{"ALERTS_SCAN_INTERVAL": "0s"}},
		{"negative dashboard limit", map[string]string{"ANALYTICS_DASHBOARD_RECOMMENDATIONS": "-1"}},
		{"unknown priority", map[string]string{"ANALYTICS_PRIORITY_TIMING": "urgent"}},
		{"default password in production", map[string]string{"APP_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DisabledAlertsSkipIntervalCheck(t *testing.T) {
	t.Setenv("ALERTS_ENABLED", "false")
	t.Setenv("ALERTS_SCAN_INTERVAL", "0s")

	_, err := Load()
	assert.NoError(t, err)
}

package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewMetricsForTesting_IsUsable(t *testing.T) {
	m := NewMetricsForTesting()
	m.SimulatorTicks.Inc()
	m.GeolocationErrors.WithLabelValues("timeout").Inc()
	m.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
	assert.Len(t, m.collectors(), 21)
}

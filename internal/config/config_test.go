package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/voyage/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) {
	t.Helper()
	t.Setenv("VOYAGE_DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func Test_MustLoadDefaults(t *testing.T) {
	noDotenv(t)

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "nominatim", cfg.Geocoder.Type)
	assert.Equal(t, 1, cfg.Geocoder.RateLimit)
	assert.Equal(t, "ru", cfg.Geocoder.CountryCodes)
	assert.Equal(t, "ru", cfg.Geocoder.Language)
	assert.Equal(t, "osrm", cfg.Router.Type)
	assert.Equal(t, "driving", cfg.Router.Profile)
	assert.Equal(t, 5, cfg.Router.RateLimit)
	assert.Empty(t, cfg.Router.BaseURL)
	assert.InDelta(t, 67.0, cfg.Map.CenterLon, 1e-9)
	assert.InDelta(t, 40.0, cfg.Map.CenterLat, 1e-9)
	assert.InDelta(t, 10.0, cfg.Map.Zoom, 1e-9)
	assert.InDelta(t, 800.0, cfg.Map.Width, 1e-9)
	assert.InDelta(t, 500.0, cfg.Map.Height, 1e-9)
	assert.InDelta(t, 40.0, cfg.Map.Padding, 1e-9)
	assert.Equal(t, "off", cfg.Geolocation)
	assert.Equal(t, "RU", cfg.PhoneRegion)
	assert.Equal(t, "log", cfg.Notifier.Type)
	assert.Equal(t, 587, cfg.Notifier.SMTP.Port)
	assert.Equal(t, "trip-orders", cfg.Notifier.KafkaTopic)
	assert.Empty(t, cfg.Notifier.KafkaBrokers)
	assert.Empty(t, cfg.Relay.Type)
	assert.Equal(t, 2, cfg.Relay.Workers)
	assert.Equal(t, 30*time.Second, cfg.Relay.Interval)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func Test_MustLoadFromEnv(t *testing.T) {
	noDotenv(t)
	t.Setenv("VOYAGE_ENV", "local")
	t.Setenv("VOYAGE_GEOCODER_TYPE", "visicom")
	t.Setenv("VOYAGE_GEOCODER_KEY", "testAPIKey")
	t.Setenv("VOYAGE_MAP_CENTER", "37.6, 55.75")
	t.Setenv("VOYAGE_MAP_SIZE", "1024x768")
	t.Setenv("VOYAGE_NOTIFIER_TYPE", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "visicom", cfg.Geocoder.Type)
	assert.Equal(t, "testAPIKey", cfg.Geocoder.APIKey)
	assert.InDelta(t, 37.6, cfg.Map.CenterLon, 1e-9)
	assert.InDelta(t, 55.75, cfg.Map.CenterLat, 1e-9)
	assert.InDelta(t, 1024.0, cfg.Map.Width, 1e-9)
	assert.InDelta(t, 768.0, cfg.Map.Height, 1e-9)
	assert.Equal(t, "kafka", cfg.Notifier.Type)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notifier.KafkaBrokers)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func Test_MustLoadFromDotenv(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "voyage.env")
	filet.File(t, path, "VOYAGE_ROUTER_TYPE=mapbox\nVOYAGE_ROUTER_KEY=pk.test\nVOYAGE_HEALTH_PORT=9090\n")
	t.Setenv("VOYAGE_DOTENV_FILE", path)
	t.Setenv("VOYAGE_HEALTH_PORT", "9191") // the environment wins over the file
	for _, key := range []string{"VOYAGE_ROUTER_TYPE", "VOYAGE_ROUTER_KEY"} {
		// godotenv writes to the process environment; Setenv restores it after the test.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := config.MustLoad()

	assert.Equal(t, "mapbox", cfg.Router.Type)
	assert.Equal(t, "pk.test", cfg.Router.APIKey)
	assert.Equal(t, 9191, cfg.Port)
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		panic string
	}{
		{"port", "VOYAGE_HEALTH_PORT", "error_value", "failed to parse port for monitoring server from configuration"},
		{"timeout", "VOYAGE_REQUEST_TIMEOUT", "error_value", "failed to parse request timeout from configuration"},
		{
			"geocoder rate", "VOYAGE_GEOCODER_RATE", "error_value",
			"failed to parse geocoder rate limit from configuration, must be an integer",
		},
		{
			"router rate", "VOYAGE_ROUTER_RATE", "error_value",
			"failed to parse router rate limit from configuration, must be an integer",
		},
		{"map zoom", "VOYAGE_MAP_ZOOM", "error_value", "failed to parse map zoom from configuration"},
		{"map padding", "VOYAGE_MAP_PADDING", "error_value", "failed to parse map padding from configuration"},
		{"map center", "VOYAGE_MAP_CENTER", "67;40", "failed to parse map center from configuration, expected \"lon,lat\""},
		{
			"map size", "VOYAGE_MAP_SIZE", "800",
			"failed to parse map size from configuration, expected \"<width>x<height>\"",
		},
		{"smtp port", "SMTP_PORT", "error_value", "failed to parse SMTP port from configuration"},
		{"relay interval", "VOYAGE_RELAY_INTERVAL", "error_value", "failed to parse relay interval from configuration"},
		{
			"relay workers", "VOYAGE_RELAY_WORKERS", "error_value",
			"failed to parse relay workers from configuration, must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noDotenv(t)
			t.Setenv(tt.key, tt.value)

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}

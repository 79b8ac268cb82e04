package testsupport

import (
	"path/filepath"
	"testing"

	"seasonarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ImageCacheDir = filepath.Join(base, "posters")
	cfg.Sonarr.URL = "http://127.0.0.1:8989"
	cfg.Sonarr.APIKey = "test"
	cfg.AniList.DetailDelayMS = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSonarr points the test config at a specific sonarr endpoint.
func WithSonarr(url, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sonarr.URL = url
		cfg.Sonarr.APIKey = apiKey
	}
}

// WithIngestWorkers overrides the ingestion worker pool size.
func WithIngestWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ingest.Workers = workers
	}
}

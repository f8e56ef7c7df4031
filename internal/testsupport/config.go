package testsupport

import (
	"path/filepath"
	"testing"

	"musictaste/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are set to test values and word clouds are disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Spotify.ClientID = "test-id"
	cfgVal.Spotify.ClientSecret = "test-secret"
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Export.WordClouds = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCredentials overrides the Spotify client credentials.
func WithCredentials(id, secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.ClientID = id
		b.cfg.Spotify.ClientSecret = secret
	}
}

// WithSpotify points the catalog endpoints at a test server.
func WithSpotify(server *SpotifyServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.APIBaseURL = server.BaseURL()
		b.cfg.Spotify.TokenURL = server.TokenURL()
	}
}

// WithWordClouds enables word cloud rendering with a small radius.
func WithWordClouds() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.WordClouds = true
		b.cfg.Export.WordCloudRadius = 80
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}

package config

const (
	defaultSpotifyBaseURL   = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL  = "https://accounts.spotify.com/api/token"
	defaultRequestTimeout   = 10
	defaultRetryAttempts    = 5
	defaultCacheDir         = "~/.cache/musictaste"
	defaultOutputDir        = "output"
	defaultCacheFilename    = "musictaste.cache"
	defaultCompressionLevel = 9
	defaultWordCloudRadius  = 300
	defaultFontSizeMin      = 14
	defaultFontSizeMax      = 56
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfigPath       = "~/.config/musictaste/config.toml"
	projectConfigFilename   = "musictaste.toml"
	minCompressionLevel     = -2
	maxCompressionLevel     = 9
	envSpotifyClientID      = "SPOTIFY_CLIENT_ID"
	envSpotifyClientSecret  = "SPOTIFY_CLIENT_SECRET"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Spotify: Spotify{
			APIBaseURL:     defaultSpotifyBaseURL,
			TokenURL:       defaultSpotifyTokenURL,
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
		},
		Paths: Paths{
			CacheDir:  defaultCacheDir,
			OutputDir: defaultOutputDir,
		},
		Cache: Cache{
			Filename:         defaultCacheFilename,
			CompressionLevel: defaultCompressionLevel,
		},
		Export: Export{
			WordClouds:      true,
			WordCloudRadius: defaultWordCloudRadius,
			FontSizeMin:     defaultFontSizeMin,
			FontSizeMax:     defaultFontSizeMax,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable for every command.
func (c *Config) Validate() error {
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCatalog ensures catalog credentials and endpoints are present. Only
// commands that contact the catalog call it.
func (c *Config) ValidateCatalog() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("spotify.client_id and spotify.client_secret are required. Set %s and %s env vars or edit %s (create with 'musictaste config init')",
			envSpotifyClientID, envSpotifyClientSecret, defaultPath)
	}
	if c.Spotify.RequestTimeout <= 0 {
		return errors.New("spotify.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Filename != filepath.Base(c.Cache.Filename) {
		return fmt.Errorf("cache.filename must be a bare file name, got %q", c.Cache.Filename)
	}
	if strings.HasSuffix(c.Cache.Filename, ".gz") {
		return errors.New("cache.filename must not end in .gz (the archived form adds it)")
	}
	if c.Cache.CompressionLevel < minCompressionLevel || c.Cache.CompressionLevel > maxCompressionLevel {
		return fmt.Errorf("cache.compression_level must be between %d and %d", minCompressionLevel, maxCompressionLevel)
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.WordCloudRadius <= 0 {
		return errors.New("export.word_cloud_radius must be positive")
	}
	if c.Export.FontSizeMin <= 0 {
		return errors.New("export.font_size_min must be positive")
	}
	if c.Export.FontSizeMax < c.Export.FontSizeMin {
		return errors.New("export.font_size_max must be >= export.font_size_min")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

// Package config loads, normalizes, and validates musictaste configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET
// environment fallbacks. Catalog credentials are validated separately through
// ValidateCatalog because only commands that talk to the catalog need them;
// cache inspection works without credentials.
package config

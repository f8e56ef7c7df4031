package preflight

import (
	"context"

	"musictaste/internal/catalog"
	"musictaste/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the given config. The catalog check only
// runs when credentials are present; opts are passed to the catalog client.
func RunAll(ctx context.Context, cfg *config.Config, opts ...catalog.Option) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckCacheState(cfg.CachePath()))

	credentials := CheckCredentials(cfg)
	results = append(results, credentials)
	if credentials.Passed {
		results = append(results, CheckCatalog(ctx, cfg, opts...))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

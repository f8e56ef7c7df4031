package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"musictaste/internal/catalog"
	"musictaste/internal/config"
	"musictaste/internal/enrich"
	"musictaste/internal/export"
	"musictaste/internal/logging"
	"musictaste/internal/lookupcache"
	"musictaste/internal/stats"
)

type analyzeOptions struct {
	input        string
	output       string
	clientID     string
	clientSecret string
	noWordClouds bool
}

type analyzeReport struct {
	SessionID   string       `json:"session_id"`
	Input       string       `json:"input"`
	OutputDir   string       `json:"output_dir"`
	Processed   int          `json:"processed"`
	Skipped     int          `json:"skipped"`
	CacheHits   int          `json:"cache_hits"`
	CacheMisses int          `json:"cache_misses"`
	Stats       []stats.Stat `json:"stats"`
	Files       []string     `json:"files"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Enrich a track list and write statistics",
		Long: "Reads one Spotify track ID, URI or URL per line, resolves each track, " +
			"its album and its artists through the lookup cache, and writes tables " +
			"and word clouds to the output directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "File with one track ID or URL per line")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "Spotify client ID (overrides config and environment)")
	cmd.Flags().StringVar(&opts.clientSecret, "client-secret", "", "Spotify client secret (overrides config and environment)")
	cmd.Flags().BoolVar(&opts.noWordClouds, "no-wordclouds", false, "Skip word cloud rendering")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(cmd *cobra.Command, ctx *commandContext, opts analyzeOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyAnalyzeOverrides(cfg, opts); err != nil {
		return err
	}
	if err := cfg.ValidateCatalog(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	input, err := config.ExpandPath(strings.TrimSpace(opts.input))
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}

	client, err := newCatalogClient(cfg, logger)
	if err != nil {
		return err
	}

	agg := stats.New()
	var result enrich.Result
	err = lookupcache.With(cmd.Context(), cacheConfig(cfg), func(cache *lookupcache.Cache) error {
		var runErr error
		result, runErr = enrich.New(client, cache, agg, logger).AddTrackIDsFromFile(cmd.Context(), input)
		return runErr
	}, lookupcache.WithLogger(logger))
	if err != nil {
		if errors.Is(err, lookupcache.ErrCacheUnavailable) {
			logging.ErrorWithContext(logger, "lookup cache unavailable", "cache_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run 'musictaste doctor' to inspect the cache files"),
			)
		}
		return fmt.Errorf("analyze: %w", err)
	}
	logger.Info("enrichment complete",
		logging.Int("processed", result.Processed),
		logging.Int("skipped", result.Skipped),
		logging.Int("cache_hits", result.CacheHits),
		logging.Int("cache_misses", result.CacheMisses),
	)

	files, err := export.Write(cmd.Context(), cfg.Paths.OutputDir, agg, export.Options{
		WordClouds: cfg.Export.WordClouds,
		Cloud: export.CloudOptions{
			Radius:   cfg.Export.WordCloudRadius,
			Padding:  export.DefaultCloudOptions().Padding,
			FontMin:  cfg.Export.FontSizeMin,
			FontMax:  cfg.Export.FontSizeMax,
			MaxWords: export.DefaultCloudOptions().MaxWords,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	report := analyzeReport{
		SessionID:   ctx.sessionID,
		Input:       input,
		OutputDir:   cfg.Paths.OutputDir,
		Processed:   result.Processed,
		Skipped:     result.Skipped,
		CacheHits:   result.CacheHits,
		CacheMisses: result.CacheMisses,
		Stats:       agg.BasicStats(),
		Files:       files,
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, report)
	}
	printAnalyzeReport(cmd, report)
	return nil
}

func applyAnalyzeOverrides(cfg *config.Config, opts analyzeOptions) error {
	if v := strings.TrimSpace(opts.clientID); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(opts.clientSecret); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := strings.TrimSpace(opts.output); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if opts.noWordClouds {
		cfg.Export.WordClouds = false
	}
	return nil
}

func newCatalogClient(cfg *config.Config, logger *slog.Logger) (*catalog.Client, error) {
	return catalog.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		catalog.WithBaseURL(cfg.Spotify.APIBaseURL),
		catalog.WithTokenURL(cfg.Spotify.TokenURL),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		catalog.WithRetryAttempts(cfg.Spotify.RetryAttempts),
		catalog.WithLogger(logger),
	)
}

func printAnalyzeReport(cmd *cobra.Command, report analyzeReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d tracks (%d skipped); cache hits %d, misses %d\n",
		report.Processed, report.Skipped, report.CacheHits, report.CacheMisses)

	rows := make([][]string, 0, len(report.Stats))
	for _, stat := range report.Stats {
		rows = append(rows, []string{stat.Name, formatStat(stat.Value)})
	}
	fmt.Fprintln(out, renderTable("Summary", []string{"Statistic", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "Wrote %d files to %s\n", len(report.Files), report.OutputDir)
}

func formatStat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"musictaste/internal/catalog"
	"musictaste/internal/config"
	"musictaste/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *testsupport.SpotifyServer
	configPath string
	inputPath  string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	server := testsupport.NewSpotifyServer(t)
	alpha := catalog.Artist{ID: "r1", Name: "Alpha", Genres: []string{"indie rock", "shoegaze"}}
	beta := catalog.Artist{ID: "r2", Name: "Beta", Genres: []string{"rock"}}
	server.AddTrack(
		catalog.Track{ID: "t1", Name: "One", DurationMs: 200000},
		catalog.Album{ID: "a1", Name: "First", ReleaseDate: "1994-05-01"},
		alpha,
	)
	server.AddTrack(
		catalog.Track{ID: "t2", Name: "Two", DurationMs: 245000},
		catalog.Album{ID: "a2", Name: "Second", ReleaseDate: "2003"},
		alpha, beta,
	)
	server.AddAlbum("r1", catalog.Album{ID: "a0", Name: "Demo", ReleaseDate: "1989-10-10"})

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithSpotify(server)}, opts...)...)
	base := testsupport.BaseDir(cfg)

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	input := strings.Join([]string{
		"# favourites",
		"spotify:track:t1",
		"https://open.spotify.com/track/t2?si=share",
		"",
		"unknown",
	}, "\n")
	inputPath := filepath.Join(base, "tracks.txt")
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	return &cliTestEnv{cfg: cfg, server: server, configPath: configPath, inputPath: inputPath}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names
}

func TestAnalyzeEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWordClouds())

	out, err := runCLI(t, env.configPath, "--json", "analyze", "-i", env.inputPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var report analyzeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Processed != 2 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Files) != 12 {
		t.Fatalf("expected 12 files, got %v", report.Files)
	}

	if diff := cmp.Diff([]string{"musictaste.cache.gz"}, dirNames(t, env.cfg.Paths.CacheDir)); diff != "" {
		t.Fatalf("cache dir at rest (-want +got):\n%s", diff)
	}
	artists, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "artists.csv"))
	if err != nil {
		t.Fatalf("read artists.csv: %v", err)
	}
	if got := string(artists); got != "Artist\tTrack count\nAlpha\t2\nBeta\t1\n" {
		t.Fatalf("artists.csv = %q", got)
	}
	debuts, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "artist-debut-years.csv"))
	if err != nil {
		t.Fatalf("read artist-debut-years.csv: %v", err)
	}
	if got := string(debuts); got != "Artist debut year\tArtist count\n1989\t2\n2003\t1\n" {
		t.Fatalf("artist-debut-years.csv = %q", got)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "genre-words.png")); err != nil {
		t.Fatalf("expected genre word cloud: %v", err)
	}

	hits := env.server.Hits()
	out, err = runCLI(t, env.configPath, "analyze", "-i", env.inputPath, "--no-wordclouds")
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	requireContains(t, out, "Processed 2 tracks (1 skipped)")
	requireContains(t, out, "misses 0")
	requireContains(t, out, "Track count")
	// Only the unknown track goes back to the catalog.
	if got := env.server.Hits(); got != hits+1 {
		t.Fatalf("catalog hits = %d, want %d", got, hits+1)
	}
}

func TestAnalyzeRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCredentials("", ""))

	_, err := runCLI(t, env.configPath, "analyze", "-i", env.inputPath)
	if err == nil || !strings.Contains(err.Error(), "SPOTIFY_CLIENT_ID") {
		t.Fatalf("expected credentials error, got %v", err)
	}

	if _, err := runCLI(t, env.configPath, "analyze", "-i", env.inputPath, "--client-id", "cli-id", "--client-secret", "cli-secret"); err != nil {
		t.Fatalf("analyze with flag credentials: %v", err)
	}
}

func TestAnalyzeRequiresInputFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env.configPath, "analyze"); err == nil {
		t.Fatal("expected error without --input")
	}
}

func TestAnalyzeCorruptArchiveFails(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Paths.CacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(env.cfg.Paths.CacheDir, "musictaste.cache.gz")
	if err := os.WriteFile(archive, []byte("not a gzip stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, env.configPath, "analyze", "-i", env.inputPath)
	if err == nil || !strings.Contains(err.Error(), "cache unavailable") {
		t.Fatalf("expected cache unavailable error, got %v", err)
	}
	if diff := cmp.Diff([]string{"musictaste.cache.gz"}, dirNames(t, env.cfg.Paths.CacheDir)); diff != "" {
		t.Fatalf("corrupt archive must be left alone (-want +got):\n%s", diff)
	}
	if env.server.Hits() != 0 {
		t.Fatal("catalog should not be contacted when the cache is unavailable")
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env.configPath, "analyze", "-i", env.inputPath); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	out, err := runCLI(t, env.configPath, "cache", "keys", "--prefix", "artist/")
	if err != nil {
		t.Fatalf("cache keys: %v", err)
	}
	if diff := cmp.Diff("artist/r1\nartist/r2\n", out); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}

	out, err = runCLI(t, env.configPath, "cache", "get", "track/t1")
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	requireContains(t, out, `"duration_ms": 200000`)

	out, err = runCLI(t, env.configPath, "--json", "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var stats cacheStatsJSON
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	// 2 tracks, 3 albums, 2 artists, 2 debuts.
	if stats.Entries != 9 {
		t.Fatalf("entries = %d, want 9 (%+v)", stats.Entries, stats.Kinds)
	}

	if _, err := runCLI(t, env.configPath, "cache", "get", "track/absent"); err == nil {
		t.Fatal("expected error for missing key")
	}
	if diff := cmp.Diff([]string{"musictaste.cache.gz"}, dirNames(t, env.cfg.Paths.CacheDir)); diff != "" {
		t.Fatalf("cache dir after inspection (-want +got):\n%s", diff)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Warning:")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\ncompression_level = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, path, "config", "validate"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Spotify API:")
	requireContains(t, out, "[OK] credentials accepted")

	bad := setupCLITestEnv(t, testsupport.WithCredentials("id", "wrong"))
	out, err = runCLI(t, bad.configPath, "--json", "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail with rejected credentials")
	}
	var checks []checkJSON
	if err := json.Unmarshal([]byte(out), &checks); err != nil {
		t.Fatalf("decode checks: %v\n%s", err, out)
	}
	last := checks[len(checks)-1]
	if last.Name != "Spotify API" || last.Passed {
		t.Fatalf("unexpected last check %+v", last)
	}
}

func TestFormatStat(t *testing.T) {
	for value, want := range map[float64]string{3: "3", 168.333: "168.3", 0: "0"} {
		if got := formatStat(value); got != want {
			t.Errorf("formatStat(%v) = %q, want %q", value, got, want)
		}
	}
}

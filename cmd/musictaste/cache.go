package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"musictaste/internal/lookupcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the lookup cache",
		Long: "Inspect the lookup cache. Each command restores the cache from its " +
			"archive and re-archives it on exit, so it cannot run alongside analyze.",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheKeysCommand(ctx))
	cacheCmd.AddCommand(newCacheGetCommand(ctx))
	return cacheCmd
}

type cacheKindJSON struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type cacheStatsJSON struct {
	LivePath    string          `json:"live_path"`
	ArchivePath string          `json:"archive_path"`
	Entries     int             `json:"entries"`
	Kinds       []cacheKindJSON `json:"kinds"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts per record kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats lookupcache.Stats
			err := ctx.withCache(cmd, func(cache *lookupcache.Cache) error {
				var err error
				stats, err = cache.Stats(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				payload := cacheStatsJSON{
					LivePath:    stats.LivePath,
					ArchivePath: stats.ArchivePath,
					Entries:     stats.Entries,
					Kinds:       make([]cacheKindJSON, 0, len(stats.Kinds)),
				}
				for _, kind := range stats.Kinds {
					payload.Kinds = append(payload.Kinds, cacheKindJSON{Kind: kind.Kind, Count: kind.Count})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive: %s\n", stats.ArchivePath)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			if len(stats.Kinds) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(stats.Kinds))
			for _, kind := range stats.Kinds {
				rows = append(rows, []string{kind.Kind, strconv.Itoa(kind.Count)})
			}
			fmt.Fprintln(out, renderTable("", []string{"Kind", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func newCacheKeysCommand(ctx *commandContext) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List cached keys in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys []string
			err := ctx.withCache(cmd, func(cache *lookupcache.Cache) error {
				var err error
				keys, err = cache.Keys(cmd.Context(), prefix)
				return err
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if keys == nil {
					keys = []string{}
				}
				return writeJSON(cmd, keys)
			}
			out := cmd.OutOrStdout()
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list keys starting with this prefix (e.g. artist/)")
	return cmd
}

type cacheEntryJSON struct {
	Key       string          `json:"key"`
	UpdatedAt time.Time       `json:"updated_at"`
	Value     json.RawMessage `json:"value"`
}

func newCacheGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the stored value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			var (
				value     string
				updatedAt time.Time
				found     bool
			)
			err := ctx.withCache(cmd, func(cache *lookupcache.Cache) error {
				entry, ok, err := cache.Raw(cmd.Context(), key)
				if err != nil {
					return err
				}
				value, updatedAt, found = entry.Value, entry.UpdatedAt, ok
				return nil
			})
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("key %q not cached", key)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, cacheEntryJSON{Key: key, UpdatedAt: updatedAt, Value: json.RawMessage(value)})
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, []byte(value), "", "  "); err != nil {
				pretty.Reset()
				pretty.WriteString(value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
}

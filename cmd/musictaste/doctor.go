package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"musictaste/internal/preflight"
)

type checkJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, cache files and Spotify credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if ctx.jsonOutput() {
				payload := make([]checkJSON, 0, len(results))
				for _, r := range results {
					payload = append(payload, checkJSON(r))
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, r := range results {
					fmt.Fprintln(out, renderCheckLine(r.Name, r.Passed, r.Detail, colorize))
				}
			}

			if preflight.Failed(results) {
				failed := 0
				for _, r := range results {
					if !r.Passed {
						failed++
					}
				}
				return fmt.Errorf("doctor: %d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
}

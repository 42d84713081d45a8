// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/internscout/internal/searchlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Long: `History lists the searches recorded in the search log, newest first.
Only the query and its outcome are kept; results are not stored.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of searches to list")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().String("export", "", "write the searches to the data directory as yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	export, _ := cmd.Flags().GetString("export")
	ctx := cmd.Context()

	store, err := searchlog.Open(appConfig.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	switch strings.ToLower(export) {
	case "":
	case "yaml", "yml":
		path, err := store.ExportYAML(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Exported to", path)
		return nil
	case "json":
		path, err := store.ExportJSON(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Exported to", path)
		return nil
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", export)
	}

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []searchlog.Entry{}
		}
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No searches recorded.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-24s  %-40s  %4d  %-6s  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			e.City,
			strings.Join(e.Domains, ", "),
			e.Results,
			e.Outcome,
			e.Duration.Round(time.Millisecond))
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/internscout/internal/form"
	"github.com/pdiddy/internscout/internal/search"
	"github.com/pdiddy/internscout/internal/searchlog"
	"github.com/pdiddy/internscout/internal/secrets"
	"github.com/pdiddy/internscout/internal/session"
	"github.com/pdiddy/internscout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a city for companies offering internships",
	Long: `Search sends the city and industries to the scraping backend and prints
each company as soon as it arrives. Separate several industries with commas;
leave --industry empty to search the default domains.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("city", "", "city to search (required)")
	searchCmd.Flags().String("industry", "", "industries to search, comma-separated")
	searchCmd.Flags().Bool("json", false, "print each company as a JSON line")
	searchCmd.Flags().Bool("flush-trailing", false, "parse an unterminated final line instead of dropping it")
	searchCmd.Flags().String("endpoint", "", "search backend URL")
	searchCmd.Flags().Bool("save", false, "save the query and results as YAML under the data directory")
	searchCmd.Flags().Bool("no-history", false, "do not record this search in the search log")

	_ = viper.BindPFlag("search.flush_trailing", searchCmd.Flags().Lookup("flush-trailing"))
	_ = viper.BindPFlag("search.endpoint", searchCmd.Flags().Lookup("endpoint"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	city, _ := cmd.Flags().GetString("city")
	industry, _ := cmd.Flags().GetString("industry")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	ctx = logger.WithContext(ctx)

	apiKey := secretDefault(secrets.BackendAPIKey, viper.GetString("backend_api_key"))
	client := search.NewClient(appConfig.Search, appConfig.HTTP, apiKey)

	opts := session.Options{
		Notifier:       form.LogNotifier{Logger: logger},
		DefaultDomains: appConfig.Search.DefaultDomains,
		OnAppend:       printer(cmd.OutOrStdout(), asJSON),
	}
	if !noHistory {
		store, err := searchlog.Open(appConfig.DataDir)
		if err != nil {
			logger.Warn().Err(err).Msg("search log unavailable")
		} else {
			defer store.Close()
			opts.History = store
		}
	}

	sess := session.New(client, opts)
	err := sess.Controller().Submit(ctx, city, industry)
	if errors.Is(err, form.ErrValidation) {
		return err
	}

	stats := sess.LastStats()
	logger.Info().
		Int("companies", stats.Records).
		Int("malformed", stats.Malformed).
		Bool("trailing_dropped", stats.TrailingDropped).
		Msg("search complete")

	if save {
		if err := saveResults(sess, city, industry); err != nil {
			logger.Warn().Err(err).Msg("could not save results")
		}
	}
	return err
}

// printer writes each record to w as it is appended.
func printer(w io.Writer, asJSON bool) func(types.CompanyResult) {
	if asJSON {
		return func(rec types.CompanyResult) {
			data, err := json.Marshal(rec)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "%s\n", data)
		}
	}
	return func(rec types.CompanyResult) {
		fmt.Fprintf(w, "%-40s  %-22s  %s\n", rec.DisplayName(), rec.Category(), rec.SafeLink())
	}
}

func saveResults(sess *session.Session, city, industry string) error {
	q, err := form.Normalize(city, industry)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("search-%s.yaml", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(appConfig.DataDir, "searches", name)
	if err := search.WriteQueryFile(path, q, appConfig.Search, sess.Results().Snapshot(), sess.LastStats()); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("saved results")
	return nil
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

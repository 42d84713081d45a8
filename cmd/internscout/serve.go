// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/internscout/internal/search"
	"github.com/pdiddy/internscout/internal/searchlog"
	"github.com/pdiddy/internscout/internal/secrets"
	"github.com/pdiddy/internscout/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the InternScout landing page",
	Long: `Serve runs the landing page with its search form, streaming results into
the page as the backend finds them. The JSON API under /api exposes the same
sessions for other front ends.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	apiKey := secretDefault(secrets.BackendAPIKey, viper.GetString("backend_api_key"))
	client := search.NewClient(appConfig.Search, appConfig.HTTP, apiKey)

	opts := web.Options{
		Config:         appConfig.Server,
		DefaultDomains: appConfig.Search.DefaultDomains,
		Backend:        client,
		Logger:         logger,
	}
	store, err := searchlog.Open(appConfig.DataDir)
	if err != nil {
		logger.Warn().Err(err).Msg("search log unavailable")
	} else {
		defer store.Close()
		opts.History = store
	}

	srv, err := web.NewServer(opts)
	if err != nil {
		return err
	}
	return srv.Run(ctx, appConfig.Server.Addr)
}

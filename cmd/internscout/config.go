// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/internscout/pkg/types"
)

// setDefaults registers every config key so environment overrides apply
// even without a config file.
func setDefaults(def types.Config) {
	viper.SetDefault("search.endpoint", def.Search.Endpoint)
	viper.SetDefault("search.intents", def.Search.Intents)
	viper.SetDefault("search.default_domains", def.Search.DefaultDomains)
	viper.SetDefault("search.flush_trailing", def.Search.FlushTrailing)
	viper.SetDefault("search.max_retries", def.Search.MaxRetries)

	viper.SetDefault("http.timeout", def.HTTP.Timeout)
	viper.SetDefault("http.user_agent", def.HTTP.UserAgent)

	viper.SetDefault("server.addr", def.Server.Addr)
	viper.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	viper.SetDefault("server.submit_rate", def.Server.SubmitRate)
	viper.SetDefault("server.submit_burst", def.Server.SubmitBurst)
	viper.SetDefault("server.session_ttl", def.Server.SessionTTL)

	viper.SetDefault("log.level", def.Log.Level)
	viper.SetDefault("log.format", def.Log.Format)

	viper.SetDefault("data_dir", def.DataDir)
	viper.SetDefault("backend_api_key", "")
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

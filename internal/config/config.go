// Package config loads the engine configuration from the environment.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is everything tunable about the engine.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// APIBaseURL is the remote server the gateway talks to.
	APIBaseURL string `mapstructure:"api_base_url"`

	// APIToken is the bearer token for the remote server. Without it the
	// engine stays in offline mode and never syncs.
	APIToken string `mapstructure:"api_token"`

	// ListenAddress is where the local HTTP surface binds.
	ListenAddress string `mapstructure:"listen_address"`

	// SyncInterval is the periodic sync trigger. Zero disables the timer
	// and leaves only manual triggers.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// PageSize and BatchSize control the transaction pull.
	PageSize  int `mapstructure:"page_size"`
	BatchSize int `mapstructure:"batch_size"`

	// FiscalYearStartMonth is the month fiscal year-to-date ranges start
	// in, 1-12.
	FiscalYearStartMonth int `mapstructure:"fiscal_year_start_month"`

	// CORSAllowOrigins enables CORS for the listed origins when set.
	CORSAllowOrigins string `mapstructure:"cors_allow_origins"`

	// LogFormat is "json" or "human".
	LogFormat string `mapstructure:"log_format"`
}

// Load reads the configuration from SAMPATTI_* environment variables,
// falling back to defaults suitable for local development.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("sampatti")
	v.AutomaticEnv()

	v.SetDefault("db_path", "data/ledger.db")
	v.SetDefault("api_base_url", "http://localhost:8080/api")
	v.SetDefault("api_token", "")
	v.SetDefault("listen_address", ":8420")
	v.SetDefault("sync_interval", 5*time.Minute)
	v.SetDefault("page_size", 100)
	v.SetDefault("batch_size", 10)
	v.SetDefault("fiscal_year_start_month", int(time.April))
	v.SetDefault("cors_allow_origins", "")
	v.SetDefault("log_format", "json")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sampattitrack/engine/internal/analytics"
	"github.com/sampattitrack/engine/internal/config"
	v1 "github.com/sampattitrack/engine/internal/controllers/v1"
	"github.com/sampattitrack/engine/internal/gateway"
	"github.com/sampattitrack/engine/internal/metrics"
	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/router"
	"github.com/sampattitrack/engine/internal/sync"
)

// tokenAuth provides the bearer token for the gateway and tracks whether
// the server still accepts it. A rejected token disables sync until the
// engine is restarted with a fresh one.
type tokenAuth struct {
	token   string
	revoked atomic.Bool
}

func (a *tokenAuth) Token() string { return a.token }

func (a *tokenAuth) Authenticated() bool {
	return a.token != "" && !a.revoked.Load()
}

func (a *tokenAuth) HandleUnauthorized() {
	a.revoked.Store(true)
	log.Warn().Msg("API token rejected by the server, sync disabled")
}

// alwaysOnline assumes the network is reachable. Actual outages surface
// as delivery failures and are absorbed by the write queue backoff.
type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && gin.IsDebugging()) || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create the data directory
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := models.Connect(cfg.DBPath); err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := metrics.Register(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	auth := &tokenAuth{token: cfg.APIToken}
	gw := gateway.NewClient(cfg.APIBaseURL, auth)
	cache := analytics.NewCache(time.Month(cfg.FiscalYearStartMonth))

	orchestrator := sync.New(gw, auth, alwaysOnline{}, cache)
	orchestrator.Interval = cfg.SyncInterval
	orchestrator.PageSize = cfg.PageSize
	orchestrator.BatchSize = cfg.BatchSize

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orchestrator.Run(ctx)

	r, err := router.Router(cfg, v1.Controller{Sync: orchestrator, Cache: cache})
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(cfg.ListenAddress); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

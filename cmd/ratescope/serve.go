package main

import (
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	server "ratescope/internal/adapters/http_server"
	"ratescope/internal/adapters/observability"
	redisad "ratescope/internal/adapters/redis"
	"ratescope/internal/adapters/serpapi"
	"ratescope/internal/app"
	"ratescope/internal/shared"
	pgrepo "ratescope/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the hotel and competitor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runServe()
		},
	}
}

func runServe() error {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}
	if err := pgrepo.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := pgrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// candidate discovery falls back to stored same-city hotels when no
	// search credential is configured
	var comp *app.CompetitorService
	if cfg.SerpKey != "" {
		client, err := serpapi.New(cfg.SerpBase, cfg.SerpKey, cfg.SerpRPS)
		if err != nil {
			return err
		}
		comp = app.NewCompetitorService(repo, client, cache, cfg.CompetitorLimit)
	} else {
		comp = app.NewCompetitorService(repo, nil, cache, cfg.CompetitorLimit)
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: comp})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

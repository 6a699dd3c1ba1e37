package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"ratescope/internal/adapters/observability"
	redisad "ratescope/internal/adapters/redis"
	"ratescope/internal/adapters/serpapi"
	"ratescope/internal/app"
	"ratescope/internal/shared"
	pgrepo "ratescope/internal/storage/postgres"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <city> [city...]",
		Short: "Run one ingestion pass per city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runIngest(args)
		},
	}
}

func runIngest(cities []string) error {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// let the in-flight page finish; the loop stops at the next boundary
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}
	if err := pgrepo.AutoMigrate(db); err != nil {
		return err
	}

	repo := pgrepo.New(db)
	client, err := serpapi.New(cfg.SerpBase, cfg.SerpKey, cfg.SerpRPS)
	if err != nil {
		return err
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(client, repo, repo, cache, app.IngestConfig{
		PageDelay:   cfg.PageDelay,
		RetryBase:   cfg.RetryBase,
		MaxAttempts: cfg.MaxAttempts,
	})

	// one run per city; different cities may proceed concurrently since
	// every upsert is a self-contained transaction
	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, city := range cities {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			defer sem.Release(1)

			sum, err := ing.Run(ctx, city)
			if err != nil {
				log.Error().Str("city", city).Int("pages", sum.Pages).Int("stored", sum.Stored).Err(err).Msg("ingest failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			log.Info().Str("city", city).Int("pages", sum.Pages).Int("stored", sum.Stored).Int("skipped", sum.Skipped).Msg("ingest ok")
		}(city)
	}

	wg.Wait()
	if firstErr != nil {
		return fmt.Errorf("ingestion failed: %w", firstErr)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

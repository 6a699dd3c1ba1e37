package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ratescope/internal/adapters/observability"
	"ratescope/internal/domain"
	"ratescope/internal/identity"
)

type IngestConfig struct {
	PageDelay   time.Duration // courtesy pause between pages
	RetryBase   time.Duration // backoff unit, scaled by attempt number
	MaxAttempts int
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.PageDelay == 0 {
		c.PageDelay = 3 * time.Second
	}
	if c.RetryBase == 0 {
		c.RetryBase = 2 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	return c
}

// IngestionService drives one city crawl: resolve the city, page through the
// external search, map and upsert every result. Re-running the same city is
// safe because upserts are idempotent by key.
type IngestionService struct {
	search domain.SearchClient
	store  domain.HotelStore
	loc    domain.LocationDirectory
	cache  domain.Cache // optional
	cfg    IngestConfig
}

func NewIngestionService(search domain.SearchClient, store domain.HotelStore, loc domain.LocationDirectory, cache domain.Cache, cfg IngestConfig) *IngestionService {
	return &IngestionService{search: search, store: store, loc: loc, cache: cache, cfg: cfg.withDefaults()}
}

// Summary reports one finished ingestion run.
type Summary struct {
	RunID   string
	City    string
	Pages   int
	Stored  int
	Skipped int
}

// Run ingests one city start to finish. A city missing from the location
// dataset fails immediately; transient fetch failures are retried with
// capped backoff; the provider's "no results" answer completes the run with
// zero records. Cancellation is honored between pages, never mid-batch.
func (s *IngestionService) Run(ctx context.Context, cityName string) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), City: cityName}
	l := log.With().Str("run_id", sum.RunID).Str("city", cityName).Logger()

	loc, err := s.loc.CityByName(ctx, cityName)
	if err != nil {
		return sum, fmt.Errorf("resolve city %q: %w", cityName, err)
	}
	q := domain.SearchQuery{City: loc.City, State: loc.State}

	var cur domain.Cursor
	seen := make(map[string]struct{})

	for {
		var batch domain.Batch
		err := withRetry(ctx, s.cfg.MaxAttempts, s.cfg.RetryBase, func() error {
			b, ferr := s.search.FetchBatch(ctx, q, cur)
			if ferr != nil {
				l.Warn().Err(ferr).Msg("fetch failed")
				return ferr
			}
			batch = b
			return nil
		})
		if err != nil {
			return sum, fmt.Errorf("fetch page %d: %w", sum.Pages+1, err)
		}

		if batch.Empty || (len(batch.Records) == 0 && batch.Next.IsZero()) {
			break
		}

		sum.Pages++
		observability.ObserveIngestPage(loc.City)
		// the in-flight page always finishes; cancellation is only
		// honored at the next loop boundary
		pageCtx := context.WithoutCancel(ctx)
		for _, raw := range batch.Records {
			if err := s.processRecord(pageCtx, raw, loc); err != nil {
				// per-record failures never abort the batch or the run
				sum.Skipped++
				observability.ObserveIngestRecord(loc.City, "skipped")
				l.Warn().Err(err).Msg("record skipped")
				continue
			}
			sum.Stored++
			observability.ObserveIngestRecord(loc.City, "stored")
		}

		next := batch.Next
		if next.IsZero() {
			break
		}
		// loop protection: a repeated continuation means the provider is
		// cycling; treat it as the end of the result set
		mark := next.URL
		if mark == "" {
			mark = next.Token
		}
		if _, dup := seen[mark]; dup {
			l.Info().Str("cursor", mark).Msg("cursor repeated, stopping")
			break
		}
		seen[mark] = struct{}{}
		cur = next

		if !sleepCtx(ctx, s.cfg.PageDelay) {
			return sum, ctx.Err()
		}
	}

	l.Info().Int("pages", sum.Pages).Int("stored", sum.Stored).Int("skipped", sum.Skipped).Msg("ingestion run done")
	return sum, nil
}

func (s *IngestionService) processRecord(ctx context.Context, raw map[string]any, loc domain.Location) error {
	rec := mapProperty(raw, loc.Country, loc.State, loc.City, "")
	rec.Key = identity.Key(rec.Name, rec.Lat, rec.Lon)
	if err := s.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Key, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "hotel:"+rec.Key)
	}
	return nil
}

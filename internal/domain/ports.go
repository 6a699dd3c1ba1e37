package domain

import "context"

type HotelStore interface {
	// Write paths
	Upsert(ctx context.Context, h HotelRecord) error
	ReplaceCompetitors(ctx context.Context, key string, refs []CompetitorRef) error
	ReplaceSuggested(ctx context.Context, key string, keys []string) error

	// Read paths
	FindByKey(ctx context.Context, keyOrID string) (HotelRecord, error)
	SearchByCity(ctx context.Context, city string, page, pageSize int) (HotelsPage, error)
	SearchByName(ctx context.Context, q NameSearch) ([]HotelRecord, error)
}

// LocationDirectory resolves a city name against the reference dataset.
type LocationDirectory interface {
	CityByName(ctx context.Context, name string) (Location, error)
}

// Cursor is the pagination continuation returned by the external search.
// URL, when present, encodes the full query state and wins over Token.
type Cursor struct {
	Token string
	URL   string
}

func (c Cursor) IsZero() bool { return c.Token == "" && c.URL == "" }

// SearchQuery describes one external hotel search.
type SearchQuery struct {
	City  string
	State string
}

// Batch is one page of external search results. Empty marks the provider's
// "no results for this query" answer, a valid terminal state rather than an
// error.
type Batch struct {
	Records []map[string]any
	Next    Cursor
	Empty   bool
}

type SearchClient interface {
	FetchBatch(ctx context.Context, q SearchQuery, cur Cursor) (Batch, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

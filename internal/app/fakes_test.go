package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"ratescope/internal/domain"
	"ratescope/internal/identity"
)

// ---- shared fakes ----

type fakeStore struct {
	records  map[string]domain.HotelRecord
	upserts  int
	failKeys map[string]error
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]domain.HotelRecord{}, failKeys: map[string]error{}}
}

func (f *fakeStore) Upsert(ctx context.Context, h domain.HotelRecord) error {
	f.upserts++
	if err, ok := f.failKeys[h.Key]; ok {
		return err
	}
	h.IsActive = true
	if old, ok := f.records[h.Key]; ok {
		// upsert never touches the competitor columns
		h.ID = old.ID
		h.Competitors = old.Competitors
		h.SuggestedCompetitors = old.SuggestedCompetitors
	} else {
		f.nextID++
		h.ID = f.nextID
	}
	f.records[h.Key] = h
	return nil
}

func (f *fakeStore) ReplaceCompetitors(ctx context.Context, key string, refs []domain.CompetitorRef) error {
	h, ok := f.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	h.Competitors = refs
	f.records[key] = h
	return nil
}

func (f *fakeStore) ReplaceSuggested(ctx context.Context, key string, keys []string) error {
	h, ok := f.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	h.SuggestedCompetitors = keys
	f.records[key] = h
	return nil
}

func (f *fakeStore) FindByKey(ctx context.Context, keyOrID string) (domain.HotelRecord, error) {
	if h, ok := f.records[keyOrID]; ok {
		return h, nil
	}
	return domain.HotelRecord{}, domain.ErrNotFound
}

func (f *fakeStore) SearchByCity(ctx context.Context, city string, page, pageSize int) (domain.HotelsPage, error) {
	var items []domain.HotelRecord
	for _, h := range f.records {
		if h.IsActive && h.City != nil && strings.EqualFold(*h.City, city) {
			items = append(items, h)
		}
	}
	sort.Slice(items, func(i, j int) bool { return deref(items[i].Name) < deref(items[j].Name) })
	return domain.HotelsPage{Items: items, Total: len(items)}, nil
}

func (f *fakeStore) SearchByName(ctx context.Context, q domain.NameSearch) ([]domain.HotelRecord, error) {
	var items []domain.HotelRecord
	for _, h := range f.records {
		if h.IsActive && strings.Contains(strings.ToLower(deref(h.Name)), strings.ToLower(q.Term)) {
			items = append(items, h)
		}
	}
	return items, nil
}

// fakeSearch replays a scripted sequence of batches/errors.
type fakeSearch struct {
	steps []func() (domain.Batch, error)
	calls int
	last  domain.Cursor
}

func (f *fakeSearch) FetchBatch(ctx context.Context, q domain.SearchQuery, cur domain.Cursor) (domain.Batch, error) {
	f.calls++
	f.last = cur
	if len(f.steps) == 0 {
		return domain.Batch{Empty: true}, nil
	}
	step := f.steps[0]
	if len(f.steps) > 1 {
		f.steps = f.steps[1:]
	}
	return step()
}

func batchStep(b domain.Batch) func() (domain.Batch, error) {
	return func() (domain.Batch, error) { return b, nil }
}

func errStep(err error) func() (domain.Batch, error) {
	return func() (domain.Batch, error) { return domain.Batch{}, err }
}

type fakeLoc struct{ cities map[string]domain.Location }

func (f *fakeLoc) CityByName(ctx context.Context, name string) (domain.Location, error) {
	if l, ok := f.cities[strings.ToLower(name)]; ok {
		return l, nil
	}
	return domain.Location{}, domain.ErrCityNotFound
}

type fakeCache struct{ store map[string][]byte }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- tiny helpers ----

func keyFor(name string, lat, lon float64) string {
	return identity.Key(&name, &lat, &lon)
}

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

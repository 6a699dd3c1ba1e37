package app

import (
	"context"
	"fmt"
	"time"

	"ratescope/internal/domain"
)

type QueryService struct {
	store    domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.HotelStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, keyOrID string) (domain.HotelRecord, error) {
	key := "hotel:" + keyOrID
	var h domain.HotelRecord
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.store.FindByKey(ctx, keyOrID)
	if err != nil {
		return domain.HotelRecord{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *QueryService) SearchByCity(ctx context.Context, city string, page, pageSize int) (domain.HotelsPage, error) {
	key := fmt.Sprintf("hotels:city:%s:%d:%d", city, page, pageSize)
	var out domain.HotelsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	out, err := s.store.SearchByCity(ctx, city, page, pageSize)
	if err != nil {
		return domain.HotelsPage{}, err
	}

	// copy so later callers can't mutate the cached slice
	cp := domain.HotelsPage{Total: out.Total}
	if n := len(out.Items); n > 0 {
		cp.Items = make([]domain.HotelRecord, n)
		copy(cp.Items, out.Items)
	}
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// SearchByName is a bounded substring search; results are small and filters
// vary too much for caching to pay off, so it always hits the store.
func (s *QueryService) SearchByName(ctx context.Context, q domain.NameSearch) ([]domain.HotelRecord, error) {
	return s.store.SearchByName(ctx, q)
}

package app

import (
	"context"
	"errors"
	"fmt"

	"ratescope/internal/domain"
	"ratescope/internal/identity"
)

// DefaultCompetitorLimit is the per-type capacity when none is configured.
const DefaultCompetitorLimit = 10

// maxCandidates bounds FindCandidates output.
const maxCandidates = 5

// CompetitorService maintains the bounded, typed competitor list of a hotel.
// Operations are read-modify-write over the stored list; concurrent writers
// to the same hotel are last-write-wins.
type CompetitorService struct {
	store  domain.HotelStore
	search domain.SearchClient // optional; nil selects the store-only candidate lookup
	cache  domain.Cache        // optional
	limit  int
}

func NewCompetitorService(store domain.HotelStore, search domain.SearchClient, cache domain.Cache, limit int) *CompetitorService {
	if limit <= 0 {
		limit = DefaultCompetitorLimit
	}
	return &CompetitorService{store: store, search: search, cache: cache, limit: limit}
}

// Add appends competitorKey with the given type. Duplicates (any type) and
// full per-type lists are rejected.
func (s *CompetitorService) Add(ctx context.Context, hotelKey, competitorKey string, t domain.CompetitorType) error {
	if !t.Valid() {
		return fmt.Errorf("invalid competitor type %q", t)
	}
	if hotelKey == competitorKey {
		return domain.ErrSelfCompetitor
	}
	h, err := s.store.FindByKey(ctx, hotelKey)
	if err != nil {
		return err
	}
	if h.HasCompetitor(competitorKey) {
		return domain.ErrDuplicateCompetitor
	}
	if h.CountByType(t) >= s.limit {
		return domain.ErrCompetitorLimit
	}
	refs := append(h.Competitors, domain.CompetitorRef{HotelKey: competitorKey, Type: t})
	if err := s.store.ReplaceCompetitors(ctx, h.Key, refs); err != nil {
		return err
	}
	s.invalidate(ctx, h.Key)
	return nil
}

// Remove drops the single entry for competitorKey.
func (s *CompetitorService) Remove(ctx context.Context, hotelKey, competitorKey string) error {
	h, err := s.store.FindByKey(ctx, hotelKey)
	if err != nil {
		return err
	}
	refs := make([]domain.CompetitorRef, 0, len(h.Competitors))
	found := false
	for _, c := range h.Competitors {
		if !found && c.HotelKey == competitorKey {
			found = true
			continue
		}
		refs = append(refs, c)
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := s.store.ReplaceCompetitors(ctx, h.Key, refs); err != nil {
		return err
	}
	s.invalidate(ctx, h.Key)
	return nil
}

// ChangeType retypes an existing entry, honoring the target type's capacity
// (the entry being moved does not count against it).
func (s *CompetitorService) ChangeType(ctx context.Context, hotelKey, competitorKey string, newType domain.CompetitorType) error {
	if !newType.Valid() {
		return fmt.Errorf("invalid competitor type %q", newType)
	}
	h, err := s.store.FindByKey(ctx, hotelKey)
	if err != nil {
		return err
	}
	idx := -1
	inType := 0
	for i, c := range h.Competitors {
		if c.HotelKey == competitorKey {
			idx = i
			continue
		}
		if c.Type == newType {
			inType++
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	if inType >= s.limit {
		return domain.ErrCompetitorLimit
	}
	refs := append([]domain.CompetitorRef(nil), h.Competitors...)
	refs[idx].Type = newType
	if err := s.store.ReplaceCompetitors(ctx, h.Key, refs); err != nil {
		return err
	}
	s.invalidate(ctx, h.Key)
	return nil
}

// ReplaceSuggested overwrites the advisory suggestion list. No capacity
// checks: suggestions are candidates, not confirmed competitors.
func (s *CompetitorService) ReplaceSuggested(ctx context.Context, hotelKey string, candidateKeys []string) error {
	h, err := s.store.FindByKey(ctx, hotelKey)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceSuggested(ctx, h.Key, candidateKeys); err != nil {
		return err
	}
	s.invalidate(ctx, h.Key)
	return nil
}

// FindCandidates proposes up to five same-city hotels as competitors,
// excluding the subject and, when the subject's rating is known, keeping a
// ±1 star band. Candidates found via the external search that are not yet
// stored get upserted so callers can confirm them later.
func (s *CompetitorService) FindCandidates(ctx context.Context, hotelKey string) ([]domain.HotelRecord, error) {
	h, err := s.store.FindByKey(ctx, hotelKey)
	if err != nil {
		return nil, err
	}
	if h.City == nil {
		return nil, fmt.Errorf("hotel %s has no city on record", h.Key)
	}

	if s.search == nil {
		return s.candidatesFromStore(ctx, h)
	}
	return s.candidatesFromSearch(ctx, h)
}

func (s *CompetitorService) candidatesFromStore(ctx context.Context, h domain.HotelRecord) ([]domain.HotelRecord, error) {
	page, err := s.store.SearchByCity(ctx, *h.City, 1, 50)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HotelRecord, 0, maxCandidates)
	for _, cand := range page.Items {
		if cand.Key == h.Key || !inRatingBand(h.StarRating, cand.StarRating) {
			continue
		}
		out = append(out, cand)
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}

func (s *CompetitorService) candidatesFromSearch(ctx context.Context, h domain.HotelRecord) ([]domain.HotelRecord, error) {
	q := domain.SearchQuery{City: *h.City}
	if h.State != nil {
		q.State = *h.State
	}
	batch, err := s.search.FetchBatch(ctx, q, domain.Cursor{})
	if err != nil {
		return nil, err
	}

	country, state := "", ""
	if h.Country != nil {
		country = *h.Country
	}
	if h.State != nil {
		state = *h.State
	}

	out := make([]domain.HotelRecord, 0, maxCandidates)
	for _, raw := range batch.Records {
		cand := mapProperty(raw, country, state, *h.City, "")
		cand.Key = identity.Key(cand.Name, cand.Lat, cand.Lon)
		if cand.Key == h.Key || !inRatingBand(h.StarRating, cand.StarRating) {
			continue
		}
		stored, err := s.store.FindByKey(ctx, cand.Key)
		switch {
		case err == nil:
			cand = stored
		case errors.Is(err, domain.ErrNotFound):
			if uerr := s.store.Upsert(ctx, cand); uerr != nil {
				return nil, uerr
			}
		default:
			return nil, err
		}
		out = append(out, cand)
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}

// inRatingBand applies the ±1 star filter when the subject's rating is known.
func inRatingBand(subject, cand *int) bool {
	if subject == nil {
		return true
	}
	if cand == nil {
		return false
	}
	d := *subject - *cand
	return d >= -1 && d <= 1
}

func (s *CompetitorService) invalidate(ctx context.Context, key string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, "hotel:"+key)
	}
}

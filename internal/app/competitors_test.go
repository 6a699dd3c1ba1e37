package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ratescope/internal/app"
	"ratescope/internal/domain"
)

func seedHotel(store *fakeStore, key, name, city string, stars int) {
	_ = store.Upsert(context.Background(), domain.HotelRecord{
		Key:        key,
		Name:       ptr(name),
		City:       ptr(city),
		StarRating: &stars,
		IsActive:   true,
	})
}

func TestAdd_AppendsCompetitor(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 0)

	if err := cs.Add(context.Background(), "SUBJECT", "RIVAL1", domain.CompetitorPrimary); err != nil {
		t.Fatalf("err: %v", err)
	}
	h, _ := store.FindByKey(context.Background(), "SUBJECT")
	if len(h.Competitors) != 1 || h.Competitors[0].HotelKey != "RIVAL1" || h.Competitors[0].Type != domain.CompetitorPrimary {
		t.Fatalf("unexpected list: %+v", h.Competitors)
	}
}

func TestAdd_RejectsDuplicateAcrossTypes(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 0)
	ctx := context.Background()

	if err := cs.Add(ctx, "SUBJECT", "RIVAL1", domain.CompetitorPrimary); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	err := cs.Add(ctx, "SUBJECT", "RIVAL1", domain.CompetitorSecondary)
	if !errors.Is(err, domain.ErrDuplicateCompetitor) {
		t.Fatalf("want ErrDuplicateCompetitor, got %v", err)
	}
}

func TestAdd_RejectsSelf(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 0)

	if err := cs.Add(context.Background(), "SUBJECT", "SUBJECT", domain.CompetitorPrimary); !errors.Is(err, domain.ErrSelfCompetitor) {
		t.Fatalf("want ErrSelfCompetitor, got %v", err)
	}
}

func TestAdd_EnforcesPerTypeLimit(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 10)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := cs.Add(ctx, "SUBJECT", fmt.Sprintf("RIVAL%d", i), domain.CompetitorPrimary); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	err := cs.Add(ctx, "SUBJECT", "RIVAL10", domain.CompetitorPrimary)
	if !errors.Is(err, domain.ErrCompetitorLimit) {
		t.Fatalf("want ErrCompetitorLimit, got %v", err)
	}
	h, _ := store.FindByKey(ctx, "SUBJECT")
	if len(h.Competitors) != 10 {
		t.Fatalf("list must stay at 10, got %d", len(h.Competitors))
	}
	// the other type still has room
	if err := cs.Add(ctx, "SUBJECT", "RIVAL10", domain.CompetitorSecondary); err != nil {
		t.Fatalf("secondary should still fit: %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 0)
	ctx := context.Background()

	if err := cs.Remove(ctx, "SUBJECT", "GHOST"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	_ = cs.Add(ctx, "SUBJECT", "RIVAL1", domain.CompetitorPrimary)
	if err := cs.Remove(ctx, "SUBJECT", "RIVAL1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	h, _ := store.FindByKey(ctx, "SUBJECT")
	if len(h.Competitors) != 0 {
		t.Fatalf("expected empty list, got %+v", h.Competitors)
	}
}

func TestChangeType(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 2)
	ctx := context.Background()

	if err := cs.ChangeType(ctx, "SUBJECT", "GHOST", domain.CompetitorPrimary); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	_ = cs.Add(ctx, "SUBJECT", "A", domain.CompetitorPrimary)
	_ = cs.Add(ctx, "SUBJECT", "B", domain.CompetitorPrimary)
	_ = cs.Add(ctx, "SUBJECT", "C", domain.CompetitorSecondary)

	// primary is full (limit 2); moving C there must fail
	if err := cs.ChangeType(ctx, "SUBJECT", "C", domain.CompetitorPrimary); !errors.Is(err, domain.ErrCompetitorLimit) {
		t.Fatalf("want ErrCompetitorLimit, got %v", err)
	}
	// moving A to secondary is fine
	if err := cs.ChangeType(ctx, "SUBJECT", "A", domain.CompetitorSecondary); err != nil {
		t.Fatalf("change type: %v", err)
	}
	h, _ := store.FindByKey(ctx, "SUBJECT")
	if h.CountByType(domain.CompetitorSecondary) != 2 || h.CountByType(domain.CompetitorPrimary) != 1 {
		t.Fatalf("unexpected counts: %+v", h.Competitors)
	}
}

func TestReplaceSuggested_Unconditional(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	cs := app.NewCompetitorService(store, nil, nil, 2)
	ctx := context.Background()

	// more suggestions than the confirmed limit is fine
	keys := []string{"A", "B", "C", "D", "E"}
	if err := cs.ReplaceSuggested(ctx, "SUBJECT", keys); err != nil {
		t.Fatalf("err: %v", err)
	}
	h, _ := store.FindByKey(ctx, "SUBJECT")
	if len(h.SuggestedCompetitors) != 5 {
		t.Fatalf("unexpected suggestions: %+v", h.SuggestedCompetitors)
	}

	if err := cs.ReplaceSuggested(ctx, "SUBJECT", nil); err != nil {
		t.Fatalf("overwrite with empty: %v", err)
	}
	h, _ = store.FindByKey(ctx, "SUBJECT")
	if len(h.SuggestedCompetitors) != 0 {
		t.Fatalf("expected cleared suggestions, got %+v", h.SuggestedCompetitors)
	}
}

func TestFindCandidates_StoreVariant(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 3)
	seedHotel(store, "SAME3", "Band Hotel", "Springfield", 3)
	seedHotel(store, "SAME4", "Near Hotel", "Springfield", 4)
	seedHotel(store, "FAR5", "Luxury Hotel", "Springfield", 5)
	seedHotel(store, "OTHER", "Chicago Hotel", "Chicago", 3)
	cs := app.NewCompetitorService(store, nil, nil, 0)

	out, err := cs.FindCandidates(context.Background(), "SUBJECT")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(out), out)
	}
	for _, c := range out {
		if c.Key == "SUBJECT" {
			t.Fatal("subject must never be its own candidate")
		}
		if c.Key == "FAR5" || c.Key == "OTHER" {
			t.Fatalf("candidate outside band or city: %s", c.Key)
		}
	}
}

func TestFindCandidates_CapsAtFive(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 3)
	for i := 0; i < 8; i++ {
		seedHotel(store, fmt.Sprintf("C%d", i), fmt.Sprintf("Hotel %d", i), "Springfield", 3)
	}
	cs := app.NewCompetitorService(store, nil, nil, 0)

	out, err := cs.FindCandidates(context.Background(), "SUBJECT")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(out))
	}
}

func TestFindCandidates_SearchVariantPersistsUnseen(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "SUBJECT", "Subject Hotel", "Springfield", 4)
	search := &fakeSearch{steps: []func() (domain.Batch, error){
		batchStep(domain.Batch{Records: []map[string]any{
			prop("Fresh Hotel", 39.70, -89.60),
			prop("Another Fresh", 39.71, -89.61),
		}}),
	}}
	cs := app.NewCompetitorService(store, search, nil, 0)

	out, err := cs.FindCandidates(context.Background(), "SUBJECT")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	for _, c := range out {
		if _, err := store.FindByKey(context.Background(), c.Key); err != nil {
			t.Fatalf("candidate %s was not persisted: %v", c.Key, err)
		}
	}
}

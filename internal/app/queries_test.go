package app_test

import (
	"context"
	"testing"
	"time"

	"ratescope/internal/app"
)

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "ABCDEF0123456789", "Grand Hotel", "Springfield", 4)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	h, err := q.GetHotel(context.Background(), "ABCDEF0123456789")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.Key != "ABCDEF0123456789" || deref(h.Name) != "Grand Hotel" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	// Mutate the store to prove the second read comes from cache
	rec := store.records["ABCDEF0123456789"]
	rec.Name = ptr("SHOULD NOT SEE THIS")
	store.records["ABCDEF0123456789"] = rec

	h2, err := q.GetHotel(context.Background(), "ABCDEF0123456789")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if deref(h2.Name) != "Grand Hotel" {
		t.Fatalf("expected cached name, got %s", deref(h2.Name))
	}
}

func TestSearchByCity_Cache(t *testing.T) {
	store := newFakeStore()
	seedHotel(store, "A", "Alpha Hotel", "Springfield", 3)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, 10*time.Minute)

	out, err := q.SearchByCity(context.Background(), "Springfield", 1, 20)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.Total != 1 || len(out.Items) != 1 {
		t.Fatalf("unexpected page: %+v", out)
	}

	// Add a record, call again -> still served from cache
	seedHotel(store, "B", "Beta Hotel", "Springfield", 3)
	out2, _ := q.SearchByCity(context.Background(), "Springfield", 1, 20)
	if out2.Total != 1 {
		t.Fatalf("expected cached total 1, got %d", out2.Total)
	}
}

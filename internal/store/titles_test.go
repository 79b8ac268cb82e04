package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"seasonarr/internal/store"
	"seasonarr/internal/testsupport"
)

func TestUpsertPreservesStarredAndBackendID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	rec := store.TitleRecord{
		CatalogID:   100,
		Kind:        store.KindTV,
		Title:       "Show A",
		Genres:      "Action,Comedy",
		Description: "Original description.",
		Airing:      store.AiringStatusAiring,
		Season:      store.SeasonWinter,
	}
	id, err := st.UpsertTitle(ctx, rec)
	if err != nil {
		t.Fatalf("UpsertTitle: %v", err)
	}

	fetched, err := st.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.Starred || fetched.BackendID != nil {
		t.Fatalf("expected fresh title with starred=false, backendID=nil, got %#v", fetched)
	}

	if err := st.SetStarred(ctx, id, true); err != nil {
		t.Fatalf("SetStarred: %v", err)
	}
	if err := st.SetBackendID(ctx, id, 4242); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}

	rec.Description = "Refreshed description."
	rec.Genres = "Action,Drama"
	if _, err := st.UpsertTitle(ctx, rec); err != nil {
		t.Fatalf("re-ingest UpsertTitle: %v", err)
	}

	updated, err := st.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after re-ingest: %v", err)
	}
	if !updated.Starred {
		t.Fatal("expected starred flag to survive re-ingestion")
	}
	if updated.BackendID == nil || *updated.BackendID != 4242 {
		t.Fatalf("expected backend id to survive re-ingestion, got %v", updated.BackendID)
	}
	if updated.Description != "Refreshed description." {
		t.Fatalf("expected description replaced, got %q", updated.Description)
	}
	if updated.Genres != "Action,Drama" {
		t.Fatalf("expected genres replaced wholesale, got %q", updated.Genres)
	}
}

func TestUpsertIsIdempotentOnIdenticalData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	rec := store.TitleRecord{CatalogID: 555, Kind: store.KindTV, Title: "Stable Show"}
	if _, err := st.UpsertTitle(ctx, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := st.UpsertTitle(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row per catalog id, got %d", count)
	}
}

func TestUpsertKeepsSameTitleDistinctCatalogIDsApart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := st.UpsertTitle(ctx, store.TitleRecord{CatalogID: 700, Kind: store.KindTV, Title: "Rerun"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := st.UpsertTitle(ctx, store.TitleRecord{CatalogID: 701, Kind: store.KindTV, Title: "Rerun"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first == second {
		t.Fatal("catalog identifier is the dedup key; identical titles must stay distinct rows")
	}
}

func TestUpsertRejectsMissingFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.UpsertTitle(ctx, store.TitleRecord{Title: "No Catalog"}); err == nil {
		t.Fatal("expected error for missing catalog id")
	}
	if _, err := st.UpsertTitle(ctx, store.TitleRecord{CatalogID: 9}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestListFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tvID, err := st.UpsertTitle(ctx, store.TitleRecord{CatalogID: 1, Kind: store.KindTV, Title: "TV Show", Season: store.SeasonWinter})
	if err != nil {
		t.Fatalf("upsert tv: %v", err)
	}
	if _, err := st.UpsertTitle(ctx, store.TitleRecord{CatalogID: 2, Kind: store.KindMovie, Title: "Movie", Season: store.SeasonWinter}); err != nil {
		t.Fatalf("upsert movie: %v", err)
	}
	if err := st.SetBackendID(ctx, tvID, 99); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}

	movies, err := st.List(ctx, store.ListFilter{Kinds: []store.Kind{store.KindMovie}})
	if err != nil {
		t.Fatalf("List movies: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Movie" {
		t.Fatalf("unexpected movie list: %#v", movies)
	}

	watching := true
	tracked, err := st.List(ctx, store.ListFilter{Watching: &watching})
	if err != nil {
		t.Fatalf("List watching: %v", err)
	}
	if len(tracked) != 1 || tracked[0].ID != tvID {
		t.Fatalf("unexpected watching list: %#v", tracked)
	}
	if tracked[0].State() != store.StateWatching {
		t.Fatalf("expected derived watching state, got %s", tracked[0].State())
	}
}

func TestClearBackendID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id := testsupport.SeedTitle(t, st, 31, "Tracked")
	if err := st.SetBackendID(ctx, id, 7); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}
	if err := st.ClearBackendID(ctx, id); err != nil {
		t.Fatalf("ClearBackendID: %v", err)
	}

	title, err := st.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if title.BackendID != nil {
		t.Fatalf("expected backend id cleared, got %v", title.BackendID)
	}
	if title.State() != store.StateDiscovered {
		t.Fatalf("expected discovered state after clear, got %s", title.State())
	}
}

func TestGetByCatalogAndBackendID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id := testsupport.SeedTitle(t, st, 88, "Lookup")
	if err := st.SetBackendID(ctx, id, 808); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}

	byCatalog, err := st.GetByCatalogID(ctx, 88)
	if err != nil {
		t.Fatalf("GetByCatalogID: %v", err)
	}
	if byCatalog == nil || byCatalog.ID != id {
		t.Fatalf("unexpected catalog lookup: %#v", byCatalog)
	}

	byBackend, err := st.GetByBackendID(ctx, 808)
	if err != nil {
		t.Fatalf("GetByBackendID: %v", err)
	}
	if byBackend == nil || byBackend.ID != id {
		t.Fatalf("unexpected backend lookup: %#v", byBackend)
	}

	missing, err := st.GetByCatalogID(ctx, 404)
	if err != nil {
		t.Fatalf("GetByCatalogID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown catalog id, got %#v", missing)
	}
}

func TestConcurrentUpsertsAllPersist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			rec := store.TitleRecord{
				CatalogID: 100 + n,
				Kind:      store.KindTV,
				Title:     fmt.Sprintf("Show %d", n),
				Airing:    store.AiringStatusAiring,
				Season:    store.SeasonWinter,
			}
			_, err := st.UpsertTitle(ctx, rec)
			errs <- err
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent UpsertTitle: %v", err)
		}
	}
	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != workers {
		t.Fatalf("count = %d, want %d", count, workers)
	}
}

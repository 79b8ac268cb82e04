package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"seasonarr/internal/backend"
	"seasonarr/internal/catalog"
	"seasonarr/internal/resolver"
	"seasonarr/internal/services"
	"seasonarr/internal/store"
	"seasonarr/internal/testsupport"
)

type stubCatalog struct {
	seasonFn func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error)
	detailFn func(ctx context.Context, catalogID int64) (*catalog.RawTitle, error)
}

func (s *stubCatalog) SeasonTitles(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
	return s.seasonFn(ctx, season, year)
}

func (s *stubCatalog) Detail(ctx context.Context, catalogID int64) (*catalog.RawTitle, error) {
	if s.detailFn == nil {
		return nil, services.Wrap(services.ErrNotFound, "stub", "detail", "no detail", nil)
	}
	return s.detailFn(ctx, catalogID)
}

type stubResolver struct {
	mu    sync.Mutex
	terms []string
	fn    func(term string) ([]string, error)
}

func (s *stubResolver) FindGroups(ctx context.Context, q resolver.Query) ([]string, error) {
	s.mu.Lock()
	s.terms = append(s.terms, q.Term)
	s.mu.Unlock()
	if s.fn == nil {
		return nil, nil
	}
	return s.fn(q.Term)
}

type stubBackend struct {
	mu       sync.Mutex
	authErr  error
	addFn    func(title *store.Title, group string) (int64, error)
	statusFn func(backendID int64) (backend.WatchStatus, error)
	watching []backend.SeriesRef
	lookupFn func(term string) ([]backend.SeriesRef, error)
	edits    []string
	removals []int64
}

func (s *stubBackend) Authenticate(ctx context.Context, username, password string) error {
	return s.authErr
}

func (s *stubBackend) AddTitle(ctx context.Context, title *store.Title, group string) (int64, error) {
	if s.addFn == nil {
		return 9001, nil
	}
	return s.addFn(title, group)
}

func (s *stubBackend) EditTitle(ctx context.Context, backendID int64, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, group)
	return nil
}

func (s *stubBackend) RemoveTitle(ctx context.Context, backendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removals = append(s.removals, backendID)
	return nil
}

func (s *stubBackend) Status(ctx context.Context, backendID int64) (backend.WatchStatus, error) {
	if s.statusFn == nil {
		return backend.WatchStatus{Tracked: true}, nil
	}
	return s.statusFn(backendID)
}

func (s *stubBackend) Watching(ctx context.Context) ([]backend.SeriesRef, error) {
	return s.watching, nil
}

func (s *stubBackend) Lookup(ctx context.Context, term string) ([]backend.SeriesRef, error) {
	if s.lookupFn == nil {
		return nil, nil
	}
	return s.lookupFn(term)
}

func rawTitle(catalogID int64, title string) catalog.RawTitle {
	return catalog.RawTitle{
		CatalogID:   catalogID,
		Title:       title,
		Kind:        store.KindTV,
		Genres:      []string{"Action"},
		Description: "A show.",
		Season:      store.SeasonWinter,
		Airing:      store.AiringStatusAiring,
	}
}

func newTestEngine(t *testing.T, cat catalog.Client, res resolver.Resolver, be backend.Client) (*Engine, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if cat == nil {
		cat = &stubCatalog{}
	}
	if res == nil {
		res = &stubResolver{}
	}
	if be == nil {
		be = &stubBackend{}
	}
	return New(st, cat, res, be, cfg, nil), st
}

func TestIngestUpsertsSeasonTitles(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return []catalog.RawTitle{rawTitle(100, "Show A"), rawTitle(101, "Show B")}, nil
		},
		detailFn: func(ctx context.Context, catalogID int64) (*catalog.RawTitle, error) {
			raw := rawTitle(catalogID, "Detailed")
			raw.Studio = "Studio D"
			return &raw, nil
		},
	}
	eng, st := newTestEngine(t, cat, nil, nil)

	if err := eng.Ingest(context.Background()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	count, err := st.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	title, err := st.GetByCatalogID(context.Background(), 100)
	if err != nil || title == nil {
		t.Fatalf("GetByCatalogID: %v, %v", title, err)
	}
	if title.Studio != "Studio D" {
		t.Fatalf("Studio = %q, want detail record applied", title.Studio)
	}
}

func TestIngestIsIdempotentAndPreservesUserState(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return []catalog.RawTitle{rawTitle(100, "Show A")}, nil
		},
	}
	eng, st := newTestEngine(t, cat, nil, nil)
	ctx := context.Background()

	if err := eng.Ingest(ctx); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	title, _ := st.GetByCatalogID(ctx, 100)
	if title.Starred {
		t.Fatal("new title should not be starred")
	}
	if _, err := eng.ToggleStar(ctx, title.ID); err != nil {
		t.Fatalf("ToggleStar: %v", err)
	}

	if err := eng.Ingest(ctx); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	count, _ := st.Count(ctx)
	if count != 1 {
		t.Fatalf("count = %d after re-ingest, want 1", count)
	}
	title, _ = st.GetByCatalogID(ctx, 100)
	if !title.Starred {
		t.Fatal("starred flag lost across re-ingest")
	}
}

func TestIngestSkipsCycleWhenSeasonFetchFails(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return nil, services.Wrap(services.ErrUpstreamUnavailable, "stub", "season", "down", nil)
		},
	}
	eng, st := newTestEngine(t, cat, nil, nil)

	err := eng.Ingest(context.Background())
	if !services.Retryable(err) {
		t.Fatalf("error = %v, want retryable", err)
	}
	count, _ := st.Count(context.Background())
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestIngestIsolatesDetailFailures(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return []catalog.RawTitle{rawTitle(100, "Show A"), rawTitle(101, "Show B")}, nil
		},
		detailFn: func(ctx context.Context, catalogID int64) (*catalog.RawTitle, error) {
			if catalogID == 101 {
				return nil, services.Wrap(services.ErrUpstreamUnavailable, "stub", "detail", "down", nil)
			}
			raw := rawTitle(catalogID, "Show A")
			return &raw, nil
		},
	}
	eng, st := newTestEngine(t, cat, nil, nil)

	if err := eng.Ingest(context.Background()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	count, _ := st.Count(context.Background())
	if count != 2 {
		t.Fatalf("count = %d, want both titles upserted", count)
	}
}

func TestIngestClearsBackendIDWhenDownstreamForgets(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return nil, nil
		},
	}
	be := &stubBackend{
		statusFn: func(backendID int64) (backend.WatchStatus, error) {
			return backend.WatchStatus{Tracked: false}, nil
		},
	}
	eng, st := newTestEngine(t, cat, nil, be)
	ctx := context.Background()

	id := testsupport.SeedTitle(t, st, 100, "Show A")
	if err := st.SetBackendID(ctx, id, 9001); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}

	if err := eng.Ingest(ctx); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	title, _ := st.GetByID(ctx, id)
	if title.BackendID != nil {
		t.Fatalf("BackendID = %v, want cleared", *title.BackendID)
	}
}

func TestIngestRejectsOverlappingCycles(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	eng, _ := newTestEngine(t, cat, nil, nil)

	done := make(chan error, 1)
	go func() { done <- eng.Ingest(context.Background()) }()
	<-started

	err := eng.Ingest(context.Background())
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("overlapping cycle error = %v, want ErrConflict", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first cycle: %v", err)
	}
}

func TestResolveUnionsVariantResults(t *testing.T) {
	res := &stubResolver{
		fn: func(term string) ([]string, error) {
			switch term {
			case "Show A":
				return []string{"GroupA", "GroupB"}, nil
			case "Show A (EN)":
				return []string{"GroupB", "GroupC"}, nil
			default:
				return nil, nil
			}
		},
	}
	eng, st := newTestEngine(t, nil, res, nil)
	ctx := context.Background()

	id, err := st.UpsertTitle(ctx, store.TitleRecord{
		CatalogID: 100, Title: "Show A", AltTitle: "Show A (EN)", Kind: store.KindTV,
	})
	if err != nil {
		t.Fatalf("UpsertTitle: %v", err)
	}

	groups, err := eng.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]bool{"GroupA": true, "GroupB": true, "GroupC": true}
	if len(groups) != len(want) {
		t.Fatalf("groups = %v", groups)
	}
	for _, g := range groups {
		if !want[g] {
			t.Fatalf("unexpected group %q in %v", g, groups)
		}
	}
}

func TestResolveEmptyResultIsNotAnError(t *testing.T) {
	eng, st := newTestEngine(t, nil, &stubResolver{}, nil)
	ctx := context.Background()
	id := testsupport.SeedTitle(t, st, 100, "Show A")

	groups, err := eng.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("groups = %v, want none", groups)
	}
}

func TestResolveUnknownTitle(t *testing.T) {
	eng, _ := newTestEngine(t, nil, nil, nil)
	_, err := eng.Resolve(context.Background(), 999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestConfirmPersistsBackendID(t *testing.T) {
	be := &stubBackend{
		addFn: func(title *store.Title, group string) (int64, error) {
			if group != "GroupA" {
				t.Errorf("group = %q", group)
			}
			return 9001, nil
		},
	}
	eng, st := newTestEngine(t, nil, nil, be)
	ctx := context.Background()
	id := testsupport.SeedTitle(t, st, 100, "Show A")

	backendID, err := eng.Confirm(ctx, id, "GroupA")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if backendID != 9001 {
		t.Fatalf("backendID = %d", backendID)
	}
	title, _ := st.GetByID(ctx, id)
	if title.State() != store.StateWatching {
		t.Fatalf("state = %s, want watching", title.State())
	}
	if title.BackendID == nil || *title.BackendID != 9001 {
		t.Fatalf("BackendID = %v", title.BackendID)
	}
}

func TestEditRequiresWatchingState(t *testing.T) {
	be := &stubBackend{}
	eng, st := newTestEngine(t, nil, nil, be)
	ctx := context.Background()
	id := testsupport.SeedTitle(t, st, 100, "Show A")

	err := eng.Edit(ctx, id, "GroupB")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	if err := st.SetBackendID(ctx, id, 9001); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}
	if err := eng.Edit(ctx, id, "GroupB"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(be.edits) != 1 || be.edits[0] != "GroupB" {
		t.Fatalf("edits = %v", be.edits)
	}
}

func TestRemoveClearsBackendIDAndKeepsRow(t *testing.T) {
	be := &stubBackend{}
	eng, st := newTestEngine(t, nil, nil, be)
	ctx := context.Background()
	id := testsupport.SeedTitle(t, st, 100, "Show A")
	if err := st.SetBackendID(ctx, id, 9001); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}
	if err := st.SetStarred(ctx, id, true); err != nil {
		t.Fatalf("SetStarred: %v", err)
	}

	if err := eng.Remove(ctx, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(be.removals) != 1 || be.removals[0] != 9001 {
		t.Fatalf("removals = %v", be.removals)
	}
	title, _ := st.GetByID(ctx, id)
	if title == nil {
		t.Fatal("row deleted, want retained")
	}
	if title.BackendID != nil {
		t.Fatalf("BackendID = %v, want cleared", *title.BackendID)
	}
	if !title.Starred {
		t.Fatal("starred flag lost on remove")
	}
}

func TestToggleStarNeverCallsBackend(t *testing.T) {
	be := &stubBackend{
		addFn: func(title *store.Title, group string) (int64, error) {
			t.Error("backend called for a star toggle")
			return 0, nil
		},
	}
	eng, st := newTestEngine(t, nil, nil, be)
	ctx := context.Background()
	id := testsupport.SeedTitle(t, st, 100, "Show A")

	starred, err := eng.ToggleStar(ctx, id)
	if err != nil || !starred {
		t.Fatalf("ToggleStar = %v, %v, want true", starred, err)
	}
	starred, err = eng.ToggleStar(ctx, id)
	if err != nil || starred {
		t.Fatalf("second ToggleStar = %v, %v, want false", starred, err)
	}
}

func TestIngestKeepsBackendIDWhenBulkListingTracksIt(t *testing.T) {
	cat := &stubCatalog{
		seasonFn: func(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
			return nil, nil
		},
	}
	be := &stubBackend{
		watching: []backend.SeriesRef{{BackendID: 9001, Title: "Show A"}},
		statusFn: func(backendID int64) (backend.WatchStatus, error) {
			t.Fatal("status check despite bulk listing tracking the title")
			return backend.WatchStatus{}, nil
		},
	}
	eng, st := newTestEngine(t, cat, nil, be)
	ctx := context.Background()

	id := testsupport.SeedTitle(t, st, 100, "Show A")
	if err := st.SetBackendID(ctx, id, 9001); err != nil {
		t.Fatalf("SetBackendID: %v", err)
	}

	if err := eng.Ingest(ctx); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	title, _ := st.GetByID(ctx, id)
	if title.BackendID == nil || *title.BackendID != 9001 {
		t.Fatalf("BackendID = %v, want 9001 kept", title.BackendID)
	}
}

func TestLookupBackendSearchesDownstream(t *testing.T) {
	be := &stubBackend{
		lookupFn: func(term string) ([]backend.SeriesRef, error) {
			if term != "Show A" {
				t.Fatalf("lookup term = %q, want %q", term, "Show A")
			}
			return []backend.SeriesRef{{BackendID: 77, Title: "Show A"}}, nil
		},
	}
	eng, _ := newTestEngine(t, &stubCatalog{}, nil, be)

	refs, err := eng.LookupBackend(context.Background(), "  Show A  ")
	if err != nil {
		t.Fatalf("LookupBackend: %v", err)
	}
	if len(refs) != 1 || refs[0].BackendID != 77 {
		t.Fatalf("refs = %+v, want one match with backend id 77", refs)
	}
}

func TestLookupBackendRejectsEmptyTerm(t *testing.T) {
	eng, _ := newTestEngine(t, &stubCatalog{}, nil, &stubBackend{})

	if _, err := eng.LookupBackend(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

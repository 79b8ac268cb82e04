package testsupport

import (
	"context"
	"fmt"
	"testing"

	"seasonarr/internal/config"
	"seasonarr/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedTitle upserts a minimal title for tests and returns its local id.
func SeedTitle(t testing.TB, st *store.Store, catalogID int64, title string) int64 {
	t.Helper()

	id, err := st.UpsertTitle(context.Background(), store.TitleRecord{
		CatalogID: catalogID,
		Kind:      store.KindTV,
		Title:     title,
		AltTitle:  fmt.Sprintf("%s (alt)", title),
		Genres:    "Action,Comedy",
		Studio:    "Studio Test",
		Airing:    store.AiringStatusAiring,
		Season:    store.SeasonWinter,
	})
	if err != nil {
		t.Fatalf("store.UpsertTitle: %v", err)
	}
	return id
}

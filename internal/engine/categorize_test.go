package engine

import (
	"testing"

	"seasonarr/internal/store"
)

func TestCategorizeBucketsByKind(t *testing.T) {
	backendID := int64(9001)
	titles := []*store.Title{
		{ID: 1, Title: "TV Show", Kind: store.KindTV},
		{ID: 2, Title: "Short", Kind: store.KindTVShort},
		{ID: 3, Title: "An OVA", Kind: store.KindOVA},
		{ID: 4, Title: "An ONA", Kind: store.KindONA},
		{ID: 5, Title: "A Special", Kind: store.KindSpecial},
		{ID: 6, Title: "A Movie", Kind: store.KindMovie},
		{ID: 7, Title: "Watched TV", Kind: store.KindTV, BackendID: &backendID},
	}

	cats := Categorize(titles)
	if len(cats.Watching) != 1 || cats.Watching[0].ID != 7 {
		t.Fatalf("Watching = %v", ids(cats.Watching))
	}
	if got := ids(cats.Airing); len(got) != 2 {
		t.Fatalf("Airing = %v, want TV and short", got)
	}
	if got := ids(cats.Specials); len(got) != 3 {
		t.Fatalf("Specials = %v, want ova/ona/special", got)
	}
	if got := ids(cats.Movies); len(got) != 1 || got[0] != 6 {
		t.Fatalf("Movies = %v", got)
	}
}

func TestCategorizeWatchingExcludedFromKindLists(t *testing.T) {
	backendID := int64(9001)
	cats := Categorize([]*store.Title{
		{ID: 1, Kind: store.KindMovie, BackendID: &backendID},
	})
	if len(cats.Movies) != 0 {
		t.Fatal("watching movie also listed under movies")
	}
	if len(cats.Watching) != 1 {
		t.Fatal("watching movie missing from watching list")
	}
}

func ids(titles []*store.Title) []int64 {
	out := make([]int64, 0, len(titles))
	for _, t := range titles {
		out = append(out, t.ID)
	}
	return out
}

package engine

import (
	"seasonarr/internal/store"
)

// Categories splits titles into the four display lists. Watching titles
// appear only in Watching, never in the kind lists.
type Categories struct {
	Watching []*store.Title
	Airing   []*store.Title
	Specials []*store.Title
	Movies   []*store.Title
}

var (
	airingKinds  = map[store.Kind]struct{}{store.KindTV: {}, store.KindTVShort: {}}
	specialKinds = map[store.Kind]struct{}{store.KindSpecial: {}, store.KindOVA: {}, store.KindONA: {}}
	movieKinds   = map[store.Kind]struct{}{store.KindMovie: {}}
)

// Categorize buckets titles by watch state and kind.
func Categorize(titles []*store.Title) Categories {
	var cats Categories
	for _, title := range titles {
		if title.State() == store.StateWatching {
			cats.Watching = append(cats.Watching, title)
			continue
		}
		switch {
		case kindIn(title.Kind, airingKinds):
			cats.Airing = append(cats.Airing, title)
		case kindIn(title.Kind, specialKinds):
			cats.Specials = append(cats.Specials, title)
		case kindIn(title.Kind, movieKinds):
			cats.Movies = append(cats.Movies, title)
		}
	}
	return cats
}

func kindIn(kind store.Kind, set map[store.Kind]struct{}) bool {
	_, ok := set[kind]
	return ok
}

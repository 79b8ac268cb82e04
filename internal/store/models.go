package store

import (
	"strings"
	"time"
)

// Kind classifies a title as reported by the catalog source. The enum is
// open: unknown upstream values pass through unchanged.
type Kind = string

const (
	KindTV      Kind = "tv"
	KindTVShort Kind = "tv short"
	KindOVA     Kind = "ova"
	KindONA     Kind = "ona"
	KindSpecial Kind = "special"
	KindMovie   Kind = "movie"
)

// AiringStatus mirrors the catalog source's airing state, also open.
type AiringStatus = string

const (
	AiringStatusAiring      AiringStatus = "airing"
	AiringStatusFinished    AiringStatus = "finished"
	AiringStatusNotYetAired AiringStatus = "not yet aired"
)

// Season labels follow the northern-hemisphere broadcast calendar.
const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
)

// WatchState is derived from backend identifier presence, never stored.
type WatchState string

const (
	StateDiscovered WatchState = "discovered"
	StateWatching   WatchState = "watching"
)

// Title is the central entity: one row per catalog identifier.
type Title struct {
	ID            int64
	CatalogID     int64
	BackendID     *int64
	Kind          Kind
	Title         string
	AltTitle      string
	Synonyms      string
	TotalEpisodes *int64
	NextEpisode   *int64
	NextEpisodeAt *time.Time
	StartAt       *time.Time
	Genres        string
	Studio        string
	Description   string
	Link          string
	Image         string
	Airing        AiringStatus
	Season        string
	Starred       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// State reports the derived watch state for the title.
func (t *Title) State() WatchState {
	if t.BackendID != nil {
		return StateWatching
	}
	return StateDiscovered
}

// GenreList splits the comma-joined genre field.
func (t *Title) GenreList() []string {
	return splitJoined(t.Genres, ",")
}

// SynonymList splits the pipe-joined synonyms field.
func (t *Title) SynonymList() []string {
	return splitJoined(t.Synonyms, "|")
}

func splitJoined(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TitleRecord carries the descriptive fields for an upsert. Starred and
// backend identifier are deliberately absent: ingestion never touches them.
type TitleRecord struct {
	CatalogID     int64
	Kind          Kind
	Title         string
	AltTitle      string
	Synonyms      string
	TotalEpisodes *int64
	NextEpisode   *int64
	NextEpisodeAt *time.Time
	StartAt       *time.Time
	Genres        string
	Studio        string
	Description   string
	Link          string
	Image         string
	Airing        AiringStatus
	Season        string
}

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Kinds    []Kind
	Season   string
	Starred  *bool
	Watching *bool
}

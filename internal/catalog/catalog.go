package catalog

import (
	"context"
	"strings"
	"time"
)

// RawTitle is the normalized record shape every catalog adapter must supply.
type RawTitle struct {
	CatalogID     int64
	Title         string
	AltTitle      string
	Synonyms      []string
	Kind          string
	TotalEpisodes *int64
	NextEpisode   *int64
	NextEpisodeAt *time.Time
	StartAt       *time.Time
	Genres        []string
	Studio        string
	Description   string
	Link          string
	Image         string
	Airing        string
	Season        string
}

// Client is the capability set a catalog source must implement. The engine
// depends only on this interface; the concrete adapter is selected at
// process startup by configuration.
type Client interface {
	// SeasonTitles fetches the raw title list for one broadcast season.
	SeasonTitles(ctx context.Context, season string, year int) ([]RawTitle, error)
	// Detail refreshes one title's record, including episode and airing
	// fields, and caches its poster locally.
	Detail(ctx context.Context, catalogID int64) (*RawTitle, error)
}

// CurrentSeason derives the broadcast season label and year for a moment in
// time. Months map to quarters: Jan-Mar winter, Apr-Jun spring, Jul-Sep
// summer, Oct-Dec fall.
func CurrentSeason(now time.Time) (string, int) {
	switch now.Month() {
	case time.January, time.February, time.March:
		return "winter", now.Year()
	case time.April, time.May, time.June:
		return "spring", now.Year()
	case time.July, time.August, time.September:
		return "summer", now.Year()
	default:
		return "fall", now.Year()
	}
}

// JoinGenres serializes a genre set as the ordered comma-joined list the
// store expects. The field is replaced wholesale on every upsert, so
// duplicates never accumulate across cycles.
func JoinGenres(genres []string) string {
	return joinTrimmed(genres, ",")
}

// JoinSynonyms serializes synonyms pipe-joined.
func JoinSynonyms(synonyms []string) string {
	return joinTrimmed(synonyms, "|")
}

func joinTrimmed(values []string, sep string) string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, sep)
}

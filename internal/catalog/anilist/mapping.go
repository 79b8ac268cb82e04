package anilist

import (
	"fmt"
	"strings"
	"time"

	"seasonarr/internal/catalog"
	"seasonarr/internal/services"
	"seasonarr/internal/store"
)

type media struct {
	ID     int64 `json:"id"`
	Format string `json:"format"`
	Title  struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	Synonyms    []string `json:"synonyms"`
	Episodes    *int64   `json:"episodes"`
	Status      string   `json:"status"`
	Season      string   `json:"season"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	CoverImage  struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	StartDate struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"startDate"`
	NextAiringEpisode *struct {
		Episode  int64 `json:"episode"`
		AiringAt int64 `json:"airingAt"`
	} `json:"nextAiringEpisode"`
	Studios struct {
		Edges []struct {
			IsMain bool `json:"isMain"`
			Node   struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"studios"`
}

func (c *Client) mapMedia(m media) catalog.RawTitle {
	raw := catalog.RawTitle{
		CatalogID:     m.ID,
		Title:         m.Title.Romaji,
		AltTitle:      m.Title.English,
		Synonyms:      m.Synonyms,
		Kind:          mapFormat(m.Format),
		TotalEpisodes: m.Episodes,
		Genres:        m.Genres,
		Studio:        mainStudio(m),
		Description:   m.Description,
		Link:          fmt.Sprintf("%s/anime/%d", c.siteURL, m.ID),
		Image:         m.CoverImage.Large,
		Airing:        mapStatus(m.Status),
		Season:        mapSeason(m.Season),
	}

	startAt := startDate(m)
	raw.StartAt = startAt

	if m.NextAiringEpisode != nil {
		episode := m.NextAiringEpisode.Episode
		airingAt := time.Unix(m.NextAiringEpisode.AiringAt, 0).UTC()
		raw.NextEpisode = &episode
		raw.NextEpisodeAt = &airingAt
	} else {
		// No schedule means the run has not started yet; point at episode
		// one and the premiere date so sorting stays sensible.
		one := int64(1)
		raw.NextEpisode = &one
		raw.NextEpisodeAt = startAt
	}

	return raw
}

func mapFormat(format string) string {
	switch format {
	case "TV":
		return string(store.KindTV)
	case "TV_SHORT":
		return string(store.KindTVShort)
	case "OVA":
		return string(store.KindOVA)
	case "ONA":
		return string(store.KindONA)
	case "SPECIAL", "MUSIC":
		return string(store.KindSpecial)
	case "MOVIE":
		return string(store.KindMovie)
	default:
		return strings.ToLower(strings.ReplaceAll(format, "_", " "))
	}
}

func mapStatus(status string) string {
	switch status {
	case "RELEASING", "HIATUS":
		return string(store.AiringStatusAiring)
	case "FINISHED", "CANCELLED":
		return string(store.AiringStatusFinished)
	case "NOT_YET_RELEASED":
		return string(store.AiringStatusNotYetAired)
	default:
		return strings.ToLower(strings.ReplaceAll(status, "_", " "))
	}
}

func mapSeason(season string) string {
	switch season {
	case "WINTER":
		return store.SeasonWinter
	case "SPRING":
		return store.SeasonSpring
	case "SUMMER":
		return store.SeasonSummer
	case "FALL":
		return store.SeasonFall
	default:
		return strings.ToLower(season)
	}
}

func seasonVariable(season string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(season)) {
	case store.SeasonWinter:
		return "WINTER", nil
	case store.SeasonSpring:
		return "SPRING", nil
	case store.SeasonSummer:
		return "SUMMER", nil
	case store.SeasonFall:
		return "FALL", nil
	default:
		return "", services.Wrap(services.ErrValidation, "anilist", "season titles",
			fmt.Sprintf("unknown season %q", season), nil)
	}
}

func mainStudio(m media) string {
	for _, edge := range m.Studios.Edges {
		if edge.IsMain {
			return edge.Node.Name
		}
	}
	if len(m.Studios.Edges) > 0 {
		return m.Studios.Edges[0].Node.Name
	}
	return ""
}

func startDate(m media) *time.Time {
	if m.StartDate.Year == 0 {
		return nil
	}
	month := m.StartDate.Month
	if month == 0 {
		month = 1
	}
	day := m.StartDate.Day
	if day == 0 {
		day = 1
	}
	at := time.Date(m.StartDate.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &at
}

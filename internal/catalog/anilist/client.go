package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"seasonarr/internal/catalog"
	"seasonarr/internal/config"
	"seasonarr/internal/logging"
	"seasonarr/internal/services"
)

const defaultPageSize = 50

// Client talks to an AniList-compatible GraphQL endpoint and caches poster
// images locally.
type Client struct {
	baseURL     string
	siteURL     string
	imageDir    string
	detailDelay time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// New builds a catalog client from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.AniList.RequestTimeout) * time.Second
	return &Client{
		baseURL:     cfg.AniList.BaseURL,
		siteURL:     cfg.AniList.SiteURL,
		imageDir:    cfg.Paths.ImageCacheDir,
		detailDelay: time.Duration(cfg.AniList.DetailDelayMS) * time.Millisecond,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger.With(logging.String("component", "anilist")),
	}
}

var _ catalog.Client = (*Client)(nil)

const seasonQuery = `query ($season: MediaSeason!, $seasonYear: Int!, $page: Int!, $perPage: Int!) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { hasNextPage }
    media(season: $season, seasonYear: $seasonYear, type: ANIME) {
      id
      format
      title { romaji english }
      synonyms
      episodes
      status
      season
      description
      genres
      coverImage { large }
      startDate { year month day }
      nextAiringEpisode { episode airingAt }
      studios { edges { isMain node { name } } }
    }
  }
}`

const detailQuery = `query ($id: Int!) {
  Media(id: $id, type: ANIME) {
    id
    format
    title { romaji english }
    synonyms
    episodes
    status
    season
    description
    genres
    coverImage { large }
    startDate { year month day }
    nextAiringEpisode { episode airingAt }
    studios { edges { isMain node { name } } }
  }
}`

// SeasonTitles returns every title the catalog lists for the given season,
// following pagination until the upstream reports no further pages.
func (c *Client) SeasonTitles(ctx context.Context, season string, year int) ([]catalog.RawTitle, error) {
	mediaSeason, err := seasonVariable(season)
	if err != nil {
		return nil, err
	}

	var titles []catalog.RawTitle
	for page := 1; ; page++ {
		var resp struct {
			Page struct {
				PageInfo struct {
					HasNextPage bool `json:"hasNextPage"`
				} `json:"pageInfo"`
				Media []media `json:"media"`
			} `json:"Page"`
		}
		variables := map[string]any{
			"season":     mediaSeason,
			"seasonYear": year,
			"page":       page,
			"perPage":    defaultPageSize,
		}
		if err := c.query(ctx, "season titles", seasonQuery, variables, &resp); err != nil {
			return nil, err
		}
		for _, m := range resp.Page.Media {
			titles = append(titles, c.mapMedia(m))
		}
		if !resp.Page.PageInfo.HasNextPage {
			break
		}
	}

	c.logger.Debug("fetched season listing",
		logging.String("season", season),
		logging.Int("year", year),
		logging.Int("titles", len(titles)))
	return titles, nil
}

// Detail fetches the full record for a single title and caches its poster.
// Returns ErrNotFound when the upstream no longer knows the ID.
func (c *Client) Detail(ctx context.Context, catalogID int64) (*catalog.RawTitle, error) {
	var resp struct {
		Media *media `json:"Media"`
	}
	variables := map[string]any{"id": catalogID}
	if err := c.query(ctx, "title detail", detailQuery, variables, &resp); err != nil {
		return nil, err
	}
	if resp.Media == nil {
		return nil, services.Wrap(services.ErrNotFound, "anilist", "title detail",
			fmt.Sprintf("title %d missing from response", catalogID), nil)
	}

	title := c.mapMedia(*resp.Media)
	if resp.Media.CoverImage.Large != "" {
		cached, err := c.cachePoster(ctx, resp.Media.CoverImage.Large)
		if err != nil {
			c.logger.Warn("poster cache failed",
				logging.Int64("catalog_id", catalogID),
				logging.Error(err))
		} else {
			title.Image = cached
		}
	}

	// Upstream throttles aggressive clients, so space out detail fetches.
	if c.detailDelay > 0 {
		select {
		case <-time.After(c.detailDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &title, nil
}

type graphqlError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (c *Client) query(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return services.Wrap(nil, "anilist", operation, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(nil, "anilist", operation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.ClassifyTransport("anilist", operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.ClassifyTransport("anilist", operation, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return services.Wrap(services.ErrNotFound, "anilist", operation,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "decode response", err)
	}
	for _, gerr := range envelope.Errors {
		if gerr.Status == http.StatusNotFound || gerr.Status == http.StatusGone {
			return services.Wrap(services.ErrNotFound, "anilist", operation, gerr.Message, nil)
		}
	}
	if len(envelope.Errors) > 0 {
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, envelope.Errors[0].Message, nil)
	}
	if len(envelope.Data) == 0 {
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "empty response data", nil)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "decode response data", err)
	}
	return nil
}

package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seasonarr/internal/backend"
	"seasonarr/internal/config"
	"seasonarr/internal/logging"
	"seasonarr/internal/services"
	"seasonarr/internal/store"
)

// tagPrefix namespaces the tags this system manages so they never collide
// with tags the user created by hand.
const tagPrefix = "sr:"

// Client talks to a sonarr-compatible download manager over its v3 API.
type Client struct {
	baseURL        string
	apiKey         string
	qualityProfile string
	rootFolder     string
	httpClient     *http.Client
	logger         *slog.Logger
}

// New builds a backend client from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		baseURL:        cfg.Sonarr.URL,
		apiKey:         cfg.Sonarr.APIKey,
		qualityProfile: cfg.Sonarr.QualityProfile,
		rootFolder:     cfg.Sonarr.RootFolder,
		httpClient:     &http.Client{Timeout: time.Duration(cfg.Sonarr.RequestTimeout) * time.Second},
		logger:         logger.With(logging.String("component", "sonarr")),
	}
}

var _ backend.Client = (*Client)(nil)

// series carries the fields the add/edit payloads need. Unknown upstream
// fields are preserved nowhere; edits re-fetch the full record first.
type series struct {
	ID               int64           `json:"id,omitempty"`
	Title            string          `json:"title"`
	TitleSlug        string          `json:"titleSlug,omitempty"`
	TvdbID           int64           `json:"tvdbId"`
	QualityProfileID int64           `json:"qualityProfileId,omitempty"`
	RootFolderPath   string          `json:"rootFolderPath,omitempty"`
	Images           json.RawMessage `json:"images,omitempty"`
	Seasons          json.RawMessage `json:"seasons,omitempty"`
	Tags             []int64         `json:"tags"`
	AddOptions       *addOptions     `json:"addOptions,omitempty"`
}

type addOptions struct {
	IgnoreEpisodesWithFiles bool `json:"ignoreEpisodesWithFiles"`
}

// Authenticate checks credentials against the downstream login. A system
// without authentication configured accepts any credentials.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/system/status", nil)
	if err != nil {
		return services.Wrap(nil, "sonarr", "authenticate", "build request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.SetBasicAuth(username, password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.ClassifyTransport("sonarr", "authenticate", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrAuthFailed, "sonarr", "authenticate", "credentials rejected", nil)
	case resp.StatusCode >= 400:
		return services.Wrap(services.ErrUpstreamUnavailable, "sonarr", "authenticate",
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// AddTitle starts tracking a title downstream. When the downstream already
// tracks the same series the existing identifier is returned and no new
// entry is created.
func (c *Client) AddTitle(ctx context.Context, title *store.Title, group string) (int64, error) {
	if title == nil {
		return 0, services.Wrap(services.ErrValidation, "sonarr", "add title", "nil title", nil)
	}

	match, err := c.lookupSeries(ctx, title)
	if err != nil {
		return 0, err
	}

	existing, err := c.findTracked(ctx, match.TvdbID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		c.logger.Debug("title already tracked downstream",
			logging.String("title", existing.Title),
			logging.Int64("backend_id", existing.TvdbID))
		return existing.TvdbID, nil
	}

	tagID, err := c.ensureGroupTag(ctx, group)
	if err != nil {
		return 0, err
	}
	profileID, err := c.qualityProfileID(ctx)
	if err != nil {
		return 0, err
	}

	payload := series{
		Title:            match.Title,
		TitleSlug:        match.TitleSlug,
		TvdbID:           match.TvdbID,
		QualityProfileID: profileID,
		RootFolderPath:   c.rootFolder,
		Images:           match.Images,
		Seasons:          match.Seasons,
		Tags:             []int64{tagID},
		AddOptions:       &addOptions{IgnoreEpisodesWithFiles: true},
	}

	var added series
	if err := c.do(ctx, http.MethodPost, "/api/v3/series", payload, &added, "add title"); err != nil {
		if errors.Is(err, services.ErrConflict) {
			// Lost the race to a concurrent add. The downstream entry
			// exists, which is the state we wanted.
			return match.TvdbID, nil
		}
		return 0, err
	}

	c.logger.Info("title added downstream",
		logging.String("title", match.Title),
		logging.String("group", group),
		logging.Int64("backend_id", match.TvdbID))
	return match.TvdbID, nil
}

// EditTitle changes the release group restriction of a tracked title.
func (c *Client) EditTitle(ctx context.Context, backendID int64, group string) error {
	tracked, err := c.findTracked(ctx, backendID)
	if err != nil {
		return err
	}
	if tracked == nil {
		return services.Wrap(services.ErrNotFound, "sonarr", "edit title",
			fmt.Sprintf("backend id %d not tracked", backendID), nil)
	}

	tagID, err := c.ensureGroupTag(ctx, group)
	if err != nil {
		return err
	}
	tracked.Tags = []int64{tagID}

	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v3/series/%d", tracked.ID), tracked, nil, "edit title"); err != nil {
		return err
	}
	c.logger.Info("title group changed downstream",
		logging.String("title", tracked.Title),
		logging.String("group", group),
		logging.Int64("backend_id", backendID))
	return nil
}

// RemoveTitle stops tracking a title downstream, keeping files. Removing an
// identifier the downstream no longer knows succeeds with no effect.
func (c *Client) RemoveTitle(ctx context.Context, backendID int64) error {
	tracked, err := c.findTracked(ctx, backendID)
	if err != nil {
		return err
	}
	if tracked == nil {
		c.logger.Debug("title already absent downstream", logging.Int64("backend_id", backendID))
		return nil
	}

	path := fmt.Sprintf("/api/v3/series/%d?deleteFiles=false", tracked.ID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, "remove title"); err != nil {
		return err
	}
	c.logger.Info("title removed downstream",
		logging.String("title", tracked.Title),
		logging.Int64("backend_id", backendID))
	return nil
}

// Status reports the downstream tracking state for a backend identifier.
func (c *Client) Status(ctx context.Context, backendID int64) (backend.WatchStatus, error) {
	tracked, err := c.findTracked(ctx, backendID)
	if err != nil {
		return backend.WatchStatus{}, err
	}
	if tracked == nil {
		return backend.WatchStatus{}, nil
	}

	status := backend.WatchStatus{Tracked: true, Title: tracked.Title}
	if len(tracked.Tags) > 0 {
		if label, err := c.tagLabel(ctx, tracked.Tags[0]); err == nil {
			status.Group = strings.TrimPrefix(label, tagPrefix)
		}
	}
	return status, nil
}

// Watching lists every title the downstream system currently tracks.
func (c *Client) Watching(ctx context.Context) ([]backend.SeriesRef, error) {
	all, err := c.allSeries(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]backend.SeriesRef, 0, len(all))
	for _, s := range all {
		refs = append(refs, backend.SeriesRef{BackendID: s.TvdbID, Title: s.Title})
	}
	return refs, nil
}

// Lookup searches the downstream system's indexers for a title.
func (c *Client) Lookup(ctx context.Context, term string) ([]backend.SeriesRef, error) {
	results, err := c.lookupRaw(ctx, term)
	if err != nil {
		return nil, err
	}
	refs := make([]backend.SeriesRef, 0, len(results))
	for _, s := range results {
		refs = append(refs, backend.SeriesRef{BackendID: s.TvdbID, Title: s.Title})
	}
	return refs, nil
}

// lookupSeries finds the downstream series record for a local title, trying
// the canonical title first and the alternate title second.
func (c *Client) lookupSeries(ctx context.Context, title *store.Title) (*series, error) {
	terms := []string{title.Title}
	if title.AltTitle != "" {
		terms = append(terms, title.AltTitle)
	}
	for _, term := range terms {
		results, err := c.lookupRaw(ctx, term)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return &results[0], nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "sonarr", "add title",
		fmt.Sprintf("no downstream match for %q", title.Title), nil)
}

func (c *Client) lookupRaw(ctx context.Context, term string) ([]series, error) {
	var results []series
	path := "/api/v3/series/lookup?term=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &results, "lookup"); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) allSeries(ctx context.Context) ([]series, error) {
	var all []series
	if err := c.do(ctx, http.MethodGet, "/api/v3/series", nil, &all, "list series"); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) findTracked(ctx context.Context, tvdbID int64) (*series, error) {
	all, err := c.allSeries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].TvdbID == tvdbID {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, operation string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(nil, "sonarr", operation, "encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return services.Wrap(nil, "sonarr", operation, "build request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.ClassifyTransport("sonarr", operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return services.Wrap(services.ErrAuthFailed, "sonarr", operation, "api key rejected", nil)
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "sonarr", operation, "not found", nil)
	case resp.StatusCode == http.StatusConflict, resp.StatusCode == http.StatusBadRequest && method == http.MethodPost:
		return services.Wrap(services.ErrConflict, "sonarr", operation,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return services.Wrap(services.ErrUpstreamUnavailable, "sonarr", operation,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrUpstreamUnavailable, "sonarr", operation, "decode response", err)
	}
	return nil
}

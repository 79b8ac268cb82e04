package engine

import (
	"context"
	"fmt"
	"strings"

	"seasonarr/internal/backend"
	"seasonarr/internal/logging"
	"seasonarr/internal/resolver"
	"seasonarr/internal/services"
)

// Resolve finds the release groups producing a title. The resolver is
// queried with every title variant (canonical, alternate, synonyms, and
// relaxed spellings) and the results are unioned. An empty result is a valid
// zero-result answer, not a failure.
func (e *Engine) Resolve(ctx context.Context, id int64) ([]string, error) {
	title, err := e.Show(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		groups  []string
		seen    = make(map[string]struct{})
		lastErr error
	)
	for _, variant := range queryVariants(title) {
		found, err := e.resolver.FindGroups(ctx, resolver.Query{Term: variant})
		if err != nil {
			lastErr = err
			e.logger.Warn("group lookup failed for variant",
				logging.String("variant", variant),
				logging.Error(err))
			continue
		}
		for _, group := range found {
			if _, dup := seen[group]; dup {
				continue
			}
			seen[group] = struct{}{}
			groups = append(groups, group)
		}
	}

	// Only surface an error when every variant failed and nothing was
	// found; partial upstream trouble with results is still an answer.
	if len(groups) == 0 && lastErr != nil {
		return nil, lastErr
	}

	e.logger.Debug("groups resolved",
		logging.String("title", title.Title),
		logging.Int("groups", len(groups)))
	return groups, nil
}

// Confirm adds a title to the downstream backend with the chosen release
// group and persists the returned backend identifier. The backend add is
// idempotent, so racing confirms converge on one downstream entry.
func (e *Engine) Confirm(ctx context.Context, id int64, group string) (int64, error) {
	title, err := e.Show(ctx, id)
	if err != nil {
		return 0, err
	}

	backendID, err := e.backend.AddTitle(ctx, title, group)
	if err != nil {
		return 0, err
	}
	if err := e.store.SetBackendID(ctx, id, backendID); err != nil {
		return 0, err
	}

	e.logger.Info("title confirmed",
		logging.String("title", title.Title),
		logging.String("group", group),
		logging.Int64("backend_id", backendID))
	return backendID, nil
}

// Edit changes the release group of a watching title downstream.
func (e *Engine) Edit(ctx context.Context, id int64, group string) error {
	title, err := e.Show(ctx, id)
	if err != nil {
		return err
	}
	if title.BackendID == nil {
		return services.Wrap(services.ErrValidation, "engine", "edit",
			fmt.Sprintf("title %d is not watching", id), nil)
	}

	if err := e.backend.EditTitle(ctx, *title.BackendID, group); err != nil {
		return err
	}
	e.logger.Info("title group changed",
		logging.String("title", title.Title),
		logging.String("group", group))
	return nil
}

// Remove stops tracking a title downstream and clears the local backend
// identifier. The local row and its starred flag are retained.
func (e *Engine) Remove(ctx context.Context, id int64) error {
	title, err := e.Show(ctx, id)
	if err != nil {
		return err
	}
	if title.BackendID == nil {
		return services.Wrap(services.ErrValidation, "engine", "remove",
			fmt.Sprintf("title %d is not watching", id), nil)
	}

	if err := e.backend.RemoveTitle(ctx, *title.BackendID); err != nil {
		return err
	}
	if err := e.store.ClearBackendID(ctx, id); err != nil {
		return err
	}
	e.logger.Info("title removed", logging.String("title", title.Title))
	return nil
}

// ToggleStar flips the starred flag and returns the new value. Starring
// never touches the backend.
func (e *Engine) ToggleStar(ctx context.Context, id int64) (bool, error) {
	title, err := e.Show(ctx, id)
	if err != nil {
		return false, err
	}
	starred := !title.Starred
	if err := e.store.SetStarred(ctx, id, starred); err != nil {
		return false, err
	}
	return starred, nil
}

// LookupBackend searches the download backend's indexers for a title term.
// The results are candidates only; nothing is added or changed.
func (e *Engine) LookupBackend(ctx context.Context, term string) ([]backend.SeriesRef, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "lookup", "empty search term", nil)
	}
	return e.backend.Lookup(ctx, term)
}

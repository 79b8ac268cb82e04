package engine

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"seasonarr/internal/catalog"
	"seasonarr/internal/logging"
	"seasonarr/internal/services"
	"seasonarr/internal/store"
)

const ingestLockFile = "ingest.lock"

// Ingest runs one ingestion cycle: fetch the current season's titles, refresh
// each with per-title detail, and upsert them into the store. Watching titles
// are then reconciled against the downstream backend. Only one cycle runs at
// a time; a second call while one is in flight returns ErrConflict.
//
// A failing season fetch aborts the cycle (retried on the next schedule).
// Per-title failures are logged and isolated; the cycle continues.
func (e *Engine) Ingest(ctx context.Context) error {
	if !e.ingestMu.TryLock() {
		return services.Wrap(services.ErrConflict, "engine", "ingest", "cycle already running", nil)
	}
	defer e.ingestMu.Unlock()

	lock := flock.New(filepath.Join(e.cfg.Paths.DataDir, ingestLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(nil, "engine", "ingest", "acquire cycle lock", err)
	}
	if !locked {
		return services.Wrap(services.ErrConflict, "engine", "ingest", "cycle already running in another process", nil)
	}
	defer lock.Unlock()

	season, year := catalog.CurrentSeason(time.Now())
	e.logger.Info("ingestion cycle started",
		logging.String("season", season),
		logging.Int("year", year))

	raw, err := e.catalog.SeasonTitles(ctx, season, year)
	if err != nil {
		e.logger.Warn("season fetch failed, skipping cycle", logging.Error(err))
		return err
	}

	var upserted, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.cfg.Ingest.Workers)
	for _, seasonRecord := range raw {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			record := seasonRecord
			if detail, err := e.catalog.Detail(groupCtx, record.CatalogID); err == nil {
				record = *detail
			} else {
				// The season listing still carries enough to upsert.
				e.logger.Warn("detail fetch failed, using season record",
					logging.Int64("catalog_id", record.CatalogID),
					logging.String("title", record.Title),
					logging.Error(err))
			}
			if _, err := e.store.UpsertTitle(groupCtx, titleRecord(record)); err != nil {
				failed.Add(1)
				e.logger.Error("title upsert failed",
					logging.Int64("catalog_id", record.CatalogID),
					logging.String("title", record.Title),
					logging.Error(err))
				return nil
			}
			upserted.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	reconciled, err := e.reconcileWatching(ctx)
	if err != nil {
		e.logger.Warn("watching reconciliation failed", logging.Error(err))
	}

	e.logger.Info("ingestion cycle finished",
		logging.Int64("upserted", upserted.Load()),
		logging.Int64("failed", failed.Load()),
		logging.Int("reconciled", reconciled))
	return nil
}

// reconcileWatching clears local backend identifiers for titles the
// downstream system no longer tracks. The downstream is the source of truth
// for existence.
func (e *Engine) reconcileWatching(ctx context.Context) (int, error) {
	watching := true
	titles, err := e.store.List(ctx, store.ListFilter{Watching: &watching})
	if err != nil {
		return 0, err
	}

	if len(titles) == 0 {
		return 0, nil
	}

	refs, err := e.backend.Watching(ctx)
	if err != nil {
		return 0, err
	}
	tracked := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		tracked[ref.BackendID] = true
	}

	reconciled := 0
	for _, title := range titles {
		if tracked[*title.BackendID] {
			continue
		}
		// The bulk listing can lag a just-added series, so confirm with a
		// direct check before clearing.
		status, err := e.backend.Status(ctx, *title.BackendID)
		if err != nil {
			e.logger.Warn("status check failed",
				logging.Int64("backend_id", *title.BackendID),
				logging.String("title", title.Title),
				logging.Error(err))
			continue
		}
		if status.Tracked {
			continue
		}
		if err := e.store.ClearBackendID(ctx, title.ID); err != nil {
			e.logger.Error("clearing backend id failed",
				logging.Int64("id", title.ID),
				logging.Error(err))
			continue
		}
		reconciled++
		e.logger.Info("title no longer tracked downstream",
			logging.String("title", title.Title),
			logging.Int64("backend_id", *title.BackendID))
	}
	return reconciled, nil
}

func titleRecord(r catalog.RawTitle) store.TitleRecord {
	return store.TitleRecord{
		CatalogID:     r.CatalogID,
		Kind:          r.Kind,
		Title:         r.Title,
		AltTitle:      r.AltTitle,
		Synonyms:      catalog.JoinSynonyms(r.Synonyms),
		TotalEpisodes: r.TotalEpisodes,
		NextEpisode:   r.NextEpisode,
		NextEpisodeAt: r.NextEpisodeAt,
		StartAt:       r.StartAt,
		Genres:        catalog.JoinGenres(r.Genres),
		Studio:        r.Studio,
		Description:   r.Description,
		Link:          r.Link,
		Image:         r.Image,
		Airing:        r.Airing,
		Season:        r.Season,
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const titleColumns = "id, catalog_id, backend_id, kind, title, alt_title, synonyms, total_episodes, next_episode, next_episode_at, start_at, genres, studio, description, link, image, airing, season, starred, created_at, updated_at"

// UpsertTitle inserts or refreshes a title keyed on its catalog identifier.
// On conflict every descriptive field is replaced with the latest catalog
// snapshot; the starred flag and backend identifier are preserved. The
// search index entry is refreshed by trigger inside the same statement.
func (s *Store) UpsertTitle(ctx context.Context, rec TitleRecord) (int64, error) {
	if rec.CatalogID == 0 {
		return 0, errors.New("catalog id is required")
	}
	if strings.TrimSpace(rec.Title) == "" {
		return 0, errors.New("title is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO titles (
            catalog_id, kind, title, alt_title, synonyms, total_episodes,
            next_episode, next_episode_at, start_at, genres, studio,
            description, link, image, airing, season, starred, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
        ON CONFLICT(catalog_id) DO UPDATE SET
            kind = excluded.kind,
            title = excluded.title,
            alt_title = excluded.alt_title,
            synonyms = excluded.synonyms,
            total_episodes = excluded.total_episodes,
            next_episode = excluded.next_episode,
            next_episode_at = excluded.next_episode_at,
            start_at = excluded.start_at,
            genres = excluded.genres,
            studio = excluded.studio,
            description = excluded.description,
            link = excluded.link,
            image = excluded.image,
            airing = excluded.airing,
            season = excluded.season,
            updated_at = excluded.updated_at`,
		rec.CatalogID,
		rec.Kind,
		rec.Title,
		rec.AltTitle,
		rec.Synonyms,
		nullableInt(rec.TotalEpisodes),
		nullableInt(rec.NextEpisode),
		nullableTime(rec.NextEpisodeAt),
		nullableTime(rec.StartAt),
		rec.Genres,
		rec.Studio,
		rec.Description,
		rec.Link,
		rec.Image,
		rec.Airing,
		rec.Season,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert title: %w", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM titles WHERE catalog_id = ?`, rec.CatalogID)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve upserted id: %w", err)
	}
	return id, nil
}

// GetByID fetches a title by local identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Title, error) {
	return s.getWhere(ctx, "id", id)
}

// GetByCatalogID fetches a title by its catalog identifier.
func (s *Store) GetByCatalogID(ctx context.Context, catalogID int64) (*Title, error) {
	return s.getWhere(ctx, "catalog_id", catalogID)
}

// GetByBackendID fetches a title by its backend identifier.
func (s *Store) GetByBackendID(ctx context.Context, backendID int64) (*Title, error) {
	return s.getWhere(ctx, "backend_id", backendID)
}

func (s *Store) getWhere(ctx context.Context, column string, value int64) (*Title, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+titleColumns+` FROM titles WHERE `+column+` = ?`, value)
	title, err := scanTitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get title by %s: %w", column, err)
	}
	return title, nil
}

// List returns titles matching the filter ordered by title text.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Title, error) {
	query := `SELECT ` + titleColumns + ` FROM titles`
	var (
		clauses []string
		args    []any
	)

	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, kind := range filter.Kinds {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(kind))
		}
		clauses = append(clauses, `lower(kind) IN (`+strings.Join(placeholders, ",")+`)`)
	}
	if filter.Season != "" {
		clauses = append(clauses, `season = ?`)
		args = append(args, filter.Season)
	}
	if filter.Starred != nil {
		clauses = append(clauses, `starred = ?`)
		args = append(args, boolToInt(*filter.Starred))
	}
	if filter.Watching != nil {
		if *filter.Watching {
			clauses = append(clauses, `backend_id IS NOT NULL`)
		} else {
			clauses = append(clauses, `backend_id IS NULL`)
		}
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY title COLLATE NOCASE`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	return collectTitles(rows)
}

// SetStarred updates the user-controlled starred flag.
func (s *Store) SetStarred(ctx context.Context, id int64, starred bool) error {
	return s.updateField(ctx, id, "starred", boolToInt(starred))
}

// SetBackendID records the downstream identifier once the backend confirms
// the title exists there.
func (s *Store) SetBackendID(ctx context.Context, id, backendID int64) error {
	return s.updateField(ctx, id, "backend_id", backendID)
}

// ClearBackendID removes the downstream identifier after an explicit removal.
func (s *Store) ClearBackendID(ctx context.Context, id int64) error {
	return s.updateField(ctx, id, "backend_id", nil)
}

func (s *Store) updateField(ctx context.Context, id int64, column string, value any) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE titles SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("title %d not found", id)
	}
	return nil
}

// Delete removes a title; the delete trigger drops its index entry in the
// same transaction.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM titles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of stored titles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM titles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count titles: %w", err)
	}
	return count, nil
}

func collectTitles(rows *sql.Rows) ([]*Title, error) {
	var titles []*Title
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func scanTitle(scanner interface{ Scan(dest ...any) error }) (*Title, error) {
	var (
		id            int64
		catalogID     int64
		backendID     sql.NullInt64
		kind          string
		titleStr      string
		altTitle      string
		synonyms      string
		totalEpisodes sql.NullInt64
		nextEpisode   sql.NullInt64
		nextEpisodeAt sql.NullString
		startAt       sql.NullString
		genres        string
		studio        string
		description   string
		link          string
		image         string
		airing        string
		season        string
		starred       int
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&catalogID,
		&backendID,
		&kind,
		&titleStr,
		&altTitle,
		&synonyms,
		&totalEpisodes,
		&nextEpisode,
		&nextEpisodeAt,
		&startAt,
		&genres,
		&studio,
		&description,
		&link,
		&image,
		&airing,
		&season,
		&starred,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	title := &Title{
		ID:          id,
		CatalogID:   catalogID,
		Kind:        kind,
		Title:       titleStr,
		AltTitle:    altTitle,
		Synonyms:    synonyms,
		Genres:      genres,
		Studio:      studio,
		Description: description,
		Link:        link,
		Image:       image,
		Airing:      airing,
		Season:      season,
		Starred:     starred != 0,
	}
	if backendID.Valid {
		title.BackendID = &backendID.Int64
	}
	if totalEpisodes.Valid {
		title.TotalEpisodes = &totalEpisodes.Int64
	}
	if nextEpisode.Valid {
		title.NextEpisode = &nextEpisode.Int64
	}
	if nextEpisodeAt.Valid {
		if at, err := parseTimeString(nextEpisodeAt.String); err == nil {
			title.NextEpisodeAt = &at
		}
	}
	if startAt.Valid {
		if at, err := parseTimeString(startAt.String); err == nil {
			title.StartAt = &at
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		title.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		title.UpdatedAt = updated
	}
	return title, nil
}

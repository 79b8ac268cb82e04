package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session is a login token issued after the backend accepts credentials.
type Session struct {
	ID        int64
	Token     string
	ExpiresAt time.Time
}

// AddSession records a login token with its expiry.
func (s *Store) AddSession(ctx context.Context, token string, expiresAt time.Time) error {
	err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO sessions (token, expires_at) VALUES (?, ?)`,
		token,
		expiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the session for a token, or nil when the token is
// unknown or expired. Expired tokens are deleted on sight; there is no
// background eviction.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, token, expires_at FROM sessions WHERE token = ?`,
		token,
	)

	var (
		id         int64
		tokenValue string
		expiresRaw string
	)
	if err := row.Scan(&id, &tokenValue, &expiresRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	expiresAt, err := parseTimeString(expiresRaw)
	if err != nil {
		return nil, fmt.Errorf("parse session expiry: %w", err)
	}

	if !expiresAt.After(time.Now().UTC()) {
		if err := s.DeleteSession(ctx, tokenValue); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &Session{ID: id, Token: tokenValue, ExpiresAt: expiresAt}, nil
}

// DeleteSession removes a session token. Deleting an unknown token is a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

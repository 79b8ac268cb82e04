package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"seasonarr/internal/logging"
)

// Login verifies credentials against the downstream backend and issues a
// session token with the configured lifetime.
func (e *Engine) Login(ctx context.Context, username, password string) (string, error) {
	if err := e.backend.Authenticate(ctx, username, password); err != nil {
		return "", err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(time.Duration(e.cfg.Sessions.TTL) * time.Second)
	if err := e.store.AddSession(ctx, token, expiresAt); err != nil {
		return "", err
	}

	e.logger.Info("session issued", logging.String("user", username))
	return token, nil
}

// CheckSession reports whether a token is valid. Expired tokens are treated
// as absent; expiry is enforced lazily on use.
func (e *Engine) CheckSession(ctx context.Context, token string) (bool, error) {
	session, err := e.store.GetSession(ctx, token)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// Logout discards a session token. Unknown tokens are a no-op.
func (e *Engine) Logout(ctx context.Context, token string) error {
	return e.store.DeleteSession(ctx, token)
}

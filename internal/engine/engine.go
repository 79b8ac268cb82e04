package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"seasonarr/internal/backend"
	"seasonarr/internal/catalog"
	"seasonarr/internal/config"
	"seasonarr/internal/logging"
	"seasonarr/internal/resolver"
	"seasonarr/internal/services"
	"seasonarr/internal/store"
)

// Engine orchestrates the catalog, resolver, and backend adapters against the
// store. All external state changes flow through here.
type Engine struct {
	store    *store.Store
	catalog  catalog.Client
	resolver resolver.Resolver
	backend  backend.Client
	cfg      *config.Config
	logger   *slog.Logger

	// ingestMu serializes ingestion cycles within this process; the lock
	// file in Ingest covers other processes.
	ingestMu sync.Mutex
}

// New builds an engine over the given store and adapters.
func New(st *store.Store, cat catalog.Client, res resolver.Resolver, be backend.Client, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:    st,
		catalog:  cat,
		resolver: res,
		backend:  be,
		cfg:      cfg,
		logger:   logger.With(logging.String("component", "engine")),
	}
}

// Show returns one title by its local identifier.
func (e *Engine) Show(ctx context.Context, id int64) (*store.Title, error) {
	title, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, services.Wrap(services.ErrNotFound, "engine", "show",
			fmt.Sprintf("title %d", id), nil)
	}
	return title, nil
}

// Shows lists titles, optionally narrowed by a search term. The search never
// fails on malformed input.
func (e *Engine) Shows(ctx context.Context, term string) ([]*store.Title, error) {
	if term == "" {
		return e.store.List(ctx, store.ListFilter{})
	}
	return e.store.Search(ctx, term)
}

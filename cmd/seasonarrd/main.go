package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"seasonarr/internal/backend"
	"seasonarr/internal/backend/sonarr"
	"seasonarr/internal/catalog"
	"seasonarr/internal/catalog/anilist"
	"seasonarr/internal/config"
	"seasonarr/internal/daemon"
	"seasonarr/internal/engine"
	"seasonarr/internal/logging"
	"seasonarr/internal/resolver"
	"seasonarr/internal/resolver/nyaa"
	"seasonarr/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	cat, res, be, err := buildAdapters(cfg, logger)
	if err != nil {
		logger.Error("build adapters", logging.Error(err))
		st.Close()
		return
	}

	eng := engine.New(st, cat, res, be, cfg, logger)
	d, err := daemon.New(cfg, st, eng, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("seasonarrd shutting down")
}

func buildAdapters(cfg *config.Config, logger *slog.Logger) (catalog.Client, resolver.Resolver, backend.Client, error) {
	var cat catalog.Client
	switch cfg.Adapters.Catalog {
	case "anilist":
		cat = anilist.New(cfg, logger)
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog adapter %q", cfg.Adapters.Catalog)
	}

	var res resolver.Resolver
	switch cfg.Adapters.Resolver {
	case "nyaa":
		client, err := nyaa.New(cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		res = client
	default:
		return nil, nil, nil, fmt.Errorf("unknown resolver adapter %q", cfg.Adapters.Resolver)
	}

	var be backend.Client
	switch cfg.Adapters.Backend {
	case "sonarr":
		be = sonarr.New(cfg, logger)
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend adapter %q", cfg.Adapters.Backend)
	}

	return cat, res, be, nil
}

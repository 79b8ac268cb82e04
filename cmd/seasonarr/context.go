package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"seasonarr/internal/backend"
	"seasonarr/internal/backend/sonarr"
	"seasonarr/internal/catalog"
	"seasonarr/internal/catalog/anilist"
	"seasonarr/internal/config"
	"seasonarr/internal/engine"
	"seasonarr/internal/logging"
	"seasonarr/internal/resolver"
	"seasonarr/internal/resolver/nyaa"
	"seasonarr/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath reports the --config flag value, empty when unset.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withEngine opens the store, wires the configured adapters, and runs fn.
// The store is closed when fn returns.
func (c *commandContext) withEngine(fn func(*engine.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger := logging.NewNop()
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cat, res, be, err := buildAdapters(cfg)
	if err != nil {
		return err
	}

	return fn(engine.New(st, cat, res, be, cfg, logger))
}

func buildAdapters(cfg *config.Config) (catalog.Client, resolver.Resolver, backend.Client, error) {
	var cat catalog.Client
	switch cfg.Adapters.Catalog {
	case "anilist":
		cat = anilist.New(cfg, nil)
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog adapter %q", cfg.Adapters.Catalog)
	}

	var res resolver.Resolver
	switch cfg.Adapters.Resolver {
	case "nyaa":
		client, err := nyaa.New(cfg, nil)
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
		be = sonarr.New(cfg, nil)
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend adapter %q", cfg.Adapters.Backend)
	}

	return cat, res, be, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

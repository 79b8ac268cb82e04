package config

import (
	"errors"
	"fmt"
)

var knownCatalogs = map[string]struct{}{"anilist": {}}
var knownResolvers = map[string]struct{}{"nyaa": {}}
var knownBackends = map[string]struct{}{"sonarr": {}}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAdapters(); err != nil {
		return err
	}
	if err := c.validateSonarr(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAdapters() error {
	if _, ok := knownCatalogs[c.Adapters.Catalog]; !ok {
		return fmt.Errorf("adapters.catalog: unknown adapter %q", c.Adapters.Catalog)
	}
	if _, ok := knownResolvers[c.Adapters.Resolver]; !ok {
		return fmt.Errorf("adapters.resolver: unknown adapter %q", c.Adapters.Resolver)
	}
	if _, ok := knownBackends[c.Adapters.Backend]; !ok {
		return fmt.Errorf("adapters.backend: unknown adapter %q", c.Adapters.Backend)
	}
	return nil
}

func (c *Config) validateSonarr() error {
	if c.Sonarr.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/seasonarr/config.toml"
		}
		return fmt.Errorf("sonarr.url is required. Edit %s (create with 'seasonarr config init')", defaultPath)
	}
	if c.Sonarr.APIKey == "" {
		return errors.New("sonarr.api_key is required")
	}
	if c.Sonarr.RequestTimeout <= 0 {
		return errors.New("sonarr.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.Interval < 60 {
		return errors.New("ingest.interval must be at least 60 seconds")
	}
	if c.Ingest.Workers < 1 || c.Ingest.Workers > 32 {
		return errors.New("ingest.workers must be between 1 and 32")
	}
	return nil
}

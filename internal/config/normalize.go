package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.ImageCacheDir, err = expandPath(c.Paths.ImageCacheDir); err != nil {
		return err
	}

	c.Adapters.Catalog = strings.ToLower(strings.TrimSpace(c.Adapters.Catalog))
	c.Adapters.Resolver = strings.ToLower(strings.TrimSpace(c.Adapters.Resolver))
	c.Adapters.Backend = strings.ToLower(strings.TrimSpace(c.Adapters.Backend))

	c.AniList.BaseURL = strings.TrimRight(strings.TrimSpace(c.AniList.BaseURL), "/")
	c.AniList.SiteURL = strings.TrimRight(strings.TrimSpace(c.AniList.SiteURL), "/")
	c.Nyaa.BaseURL = strings.TrimRight(strings.TrimSpace(c.Nyaa.BaseURL), "/")
	c.Nyaa.Category = strings.ToLower(strings.TrimSpace(c.Nyaa.Category))
	c.Nyaa.Filter = strings.ToLower(strings.TrimSpace(c.Nyaa.Filter))
	c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(c.Sonarr.URL), "/")
	c.Sonarr.APIKey = strings.TrimSpace(c.Sonarr.APIKey)

	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = defaultIngestWorkers
	}
	if c.Ingest.Interval <= 0 {
		c.Ingest.Interval = defaultIngestInterval
	}
	if c.Sessions.TTL <= 0 {
		c.Sessions.TTL = defaultSessionTTL
	}
	return nil
}

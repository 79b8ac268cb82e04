package config

const (
	defaultDataDir        = "~/.local/share/seasonarr"
	defaultLogDir         = "~/.local/share/seasonarr/logs"
	defaultImageCacheDir  = "~/.local/share/seasonarr/cache/posters"
	defaultCatalogAdapter = "anilist"
	defaultResolver       = "nyaa"
	defaultBackend        = "sonarr"

	defaultAniListBaseURL = "https://graphql.anilist.co"
	defaultAniListSiteURL = "https://anilist.co"
	defaultDetailDelayMS  = 100

	defaultNyaaBaseURL  = "https://nyaa.si"
	defaultNyaaCategory = "anime - english-translated"
	defaultNyaaFilter   = "show all"

	defaultSonarrQualityProfile = "HD-1080p"

	defaultRequestTimeout = 15
	defaultIngestInterval = 21600
	defaultIngestWorkers  = 4
	defaultSessionTTL     = 7200

	defaultLogFormat = "text"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
			ImageCacheDir: defaultImageCacheDir,
		},
		Adapters: Adapters{
			Catalog:  defaultCatalogAdapter,
			Resolver: defaultResolver,
			Backend:  defaultBackend,
		},
		AniList: AniList{
			BaseURL:        defaultAniListBaseURL,
			SiteURL:        defaultAniListSiteURL,
			RequestTimeout: defaultRequestTimeout,
			DetailDelayMS:  defaultDetailDelayMS,
		},
		Nyaa: Nyaa{
			BaseURL:        defaultNyaaBaseURL,
			Category:       defaultNyaaCategory,
			Filter:         defaultNyaaFilter,
			RequestTimeout: defaultRequestTimeout,
		},
		Sonarr: Sonarr{
			QualityProfile: defaultSonarrQualityProfile,
			RequestTimeout: defaultRequestTimeout,
		},
		Ingest: Ingest{
			Interval: defaultIngestInterval,
			Workers:  defaultIngestWorkers,
		},
		Sessions: Sessions{
			TTL: defaultSessionTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

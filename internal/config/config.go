package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	ImageCacheDir string `toml:"image_cache_dir"`
}

// Adapters selects the concrete implementation for each external boundary.
type Adapters struct {
	Catalog  string `toml:"catalog"`
	Resolver string `toml:"resolver"`
	Backend  string `toml:"backend"`
}

// AniList contains configuration for the AniList catalog adapter.
type AniList struct {
	BaseURL        string `toml:"base_url"`
	SiteURL        string `toml:"site_url"`
	RequestTimeout int    `toml:"request_timeout"`
	// DetailDelayMS spaces out per-title detail fetches to stay under the
	// upstream rate limit.
	DetailDelayMS int `toml:"detail_delay_ms"`
}

// Nyaa contains configuration for the nyaa release-index resolver.
type Nyaa struct {
	BaseURL        string `toml:"base_url"`
	Category       string `toml:"category"`
	Filter         string `toml:"filter"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Sonarr contains configuration for the sonarr download backend.
type Sonarr struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	QualityProfile string `toml:"quality_profile"`
	RootFolder     string `toml:"root_folder"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Ingest contains configuration for the ingestion scheduler.
type Ingest struct {
	Interval int `toml:"interval"`
	Workers  int `toml:"workers"`
}

// Sessions contains configuration for login session tokens.
type Sessions struct {
	TTL int `toml:"ttl"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for seasonarr.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and poster cache directories
//   - Adapters: which concrete adapter serves each external boundary
//   - AniList: catalog adapter connection parameters
//   - Nyaa: group resolver connection parameters and filters
//   - Sonarr: download backend connection parameters
//   - Ingest: scheduler cadence and worker pool size
//   - Sessions: login token lifetime
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Adapters Adapters `toml:"adapters"`
	AniList  AniList  `toml:"anilist"`
	Nyaa     Nyaa     `toml:"nyaa"`
	Sonarr   Sonarr   `toml:"sonarr"`
	Ingest   Ingest   `toml:"ingest"`
	Sessions Sessions `toml:"sessions"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/seasonarr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("seasonarr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ImageCacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the on-disk location of the title store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "seasonarr.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

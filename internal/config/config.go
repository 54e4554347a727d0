package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shelf/internal/reading"
)

// Config holds everything shelf needs to reach the API and run its refresher.
type Config struct {
	APIURL          string
	Token           string
	LogDir          string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	LookupWorkers   int
	BookLimit       int
	Buckets         reading.Buckets
}

const (
	defaultConfigPath      = "~/.config/shelf/config.toml"
	defaultLogDir          = "~/.local/share/shelf"
	defaultAPIURL          = "http://127.0.0.1:8000/api"
	defaultRequestTimeout  = 15 * time.Second
	defaultRefreshInterval = 30 * time.Second
	defaultLookupWorkers   = 4
	defaultBookLimit       = 100

	// EnvAPIURL overrides api_url.
	EnvAPIURL = "SHELF_API_URL"
	// EnvToken overrides token.
	EnvToken = "SHELF_TOKEN"
)

type rawConfig struct {
	APIURL          string `toml:"api_url"`
	Token           string `toml:"token"`
	LogDir          string `toml:"log_dir"`
	RequestTimeout  string `toml:"request_timeout"`
	RefreshInterval string `toml:"refresh_interval"`
	LookupWorkers   int    `toml:"lookup_workers"`
	BookLimit       int    `toml:"book_limit"`
	Buckets         struct {
		Planned   string `toml:"planned"`
		Reading   string `toml:"reading"`
		Completed string `toml:"completed"`
	} `toml:"buckets"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		LogDir:          mustExpand(defaultLogDir),
		RequestTimeout:  defaultRequestTimeout,
		RefreshInterval: defaultRefreshInterval,
		LookupWorkers:   defaultLookupWorkers,
		BookLimit:       defaultBookLimit,
		Buckets:         reading.DefaultBuckets(),
	}
}

// Load locates and parses the shelf config, falling back to defaults when
// missing. SHELF_API_URL and SHELF_TOKEN override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(&cfg)
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = parseDuration("refresh_interval", raw.RefreshInterval, defaultRefreshInterval); err != nil {
		return Config{}, err
	}
	if raw.LookupWorkers > 0 {
		cfg.LookupWorkers = raw.LookupWorkers
	}
	if raw.BookLimit > 0 {
		cfg.BookLimit = raw.BookLimit
	}
	if v := strings.TrimSpace(raw.Buckets.Planned); v != "" {
		cfg.Buckets.Planned = v
	}
	if v := strings.TrimSpace(raw.Buckets.Reading); v != "" {
		cfg.Buckets.Reading = v
	}
	if v := strings.TrimSpace(raw.Buckets.Completed); v != "" {
		cfg.Buckets.Completed = v
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LogPath returns the path of shelf's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/shelf.log")
	}
	return filepath.Join(c.LogDir, "shelf.log")
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

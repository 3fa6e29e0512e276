package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pronounce/internal/evaluation"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	StagingDir       string `toml:"staging_dir"`
	CacheDir         string `toml:"cache_dir"`
	LogDir           string `toml:"log_dir"`
	ReferenceCatalog string `toml:"reference_catalog"`
	EnvFile          string `toml:"env_file"`
}

// Evaluation contains the scoring thresholds and filler vocabulary.
type Evaluation struct {
	LowConfidence     float64  `toml:"low_confidence"`
	VeryLowConfidence float64  `toml:"very_low_confidence"`
	Fillers           []string `toml:"fillers"`
	PhoneticHints     bool     `toml:"phonetic_hints"`
}

// Gladia contains configuration for the transcription provider.
type Gladia struct {
	APIKey                string `toml:"api_key"`
	BaseURL               string `toml:"base_url"`
	Language              string `toml:"language"`
	PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
	MaxPollAttempts       int    `toml:"max_poll_attempts"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Cache contains configuration for the transcript cache.
type Cache struct {
	Enabled    bool `toml:"enabled"`
	MaxAgeDays int  `toml:"max_age_days"`
}

// Output contains report rendering defaults.
type Output struct {
	Format  string `toml:"format"`
	CSVName string `toml:"csv_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pronounce.
//
// Configuration sections by subsystem:
//   - Paths: staging, cache, and log directories, reference catalog, dotenv file
//   - Evaluation: confidence thresholds, filler vocabulary, phonetic hints
//   - Gladia: provider credentials, endpoint, and polling policy
//   - Cache: transcript cache toggle and retention
//   - Output: default report format and CSV file name
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Evaluation Evaluation `toml:"evaluation"`
	Gladia     Gladia     `toml:"gladia"`
	Cache      Cache      `toml:"cache"`
	Output     Output     `toml:"output"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
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

// EnsureDirectories creates the staging, cache, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the transcript cache database location.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, cacheFileName)
}

// LockDir returns the directory holding per-recording lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.CacheDir, "locks")
}

// CacheMaxAge returns the retention window, or zero when entries never expire.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeDays) * 24 * time.Hour
}

// PollInterval returns the provider polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Gladia.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request HTTP timeout for the provider.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Gladia.RequestTimeoutSeconds) * time.Second
}

// EvaluationOptions builds the classifier options from the [evaluation]
// section.
func (c *Config) EvaluationOptions() evaluation.Options {
	return evaluation.Options{
		Fillers:           evaluation.NewFillerSet(c.Evaluation.Fillers...),
		LowConfidence:     c.Evaluation.LowConfidence,
		VeryLowConfidence: c.Evaluation.VeryLowConfidence,
		PhoneticHints:     c.Evaluation.PhoneticHints,
	}
}

// RequireGladia reports whether the provider can be called.
func (c *Config) RequireGladia() error {
	if strings.TrimSpace(c.Gladia.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return configError("gladia.api_key is required. Set GLADIA_API_KEY (environment or %s) or edit %s (create with 'pronounce config init')",
		envFileLabel(c.Paths.EnvFile), defaultPath)
}

func envFileLabel(path string) string {
	if strings.TrimSpace(path) == "" {
		return ".env"
	}
	return path
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

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pronounce/internal/config"
	"pronounce/internal/evaluation"
	"pronounce/internal/services"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config, cache, or dotenv file leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("GLADIA_API_KEY", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(home, ".config", "pronounce", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(home, ".local", "share", "pronounce", "staging"); cfg.Paths.StagingDir != want {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, want)
	}
	if want := filepath.Join(home, ".cache", "pronounce"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if cfg.CachePath() != filepath.Join(cfg.Paths.CacheDir, "transcripts.db") {
		t.Fatalf("unexpected cache path %q", cfg.CachePath())
	}
	if cfg.Paths.ReferenceCatalog != "" {
		t.Fatalf("expected built-in catalog, got %q", cfg.Paths.ReferenceCatalog)
	}
	if cfg.Evaluation.LowConfidence != 0.35 || cfg.Evaluation.VeryLowConfidence != 0.20 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Evaluation)
	}
	if !reflect.DeepEqual(cfg.Evaluation.Fillers, evaluation.DefaultFillers) {
		t.Fatalf("unexpected fillers: %q", cfg.Evaluation.Fillers)
	}
	if cfg.PollInterval() != 2*time.Second || cfg.Gladia.MaxPollAttempts != 10 {
		t.Fatalf("unexpected polling: %v x %d", cfg.PollInterval(), cfg.Gladia.MaxPollAttempts)
	}
	if cfg.Gladia.BaseURL != "https://api.gladia.io/v2" {
		t.Fatalf("unexpected base url %q", cfg.Gladia.BaseURL)
	}
	if cfg.Output.Format != "table" || cfg.Output.CSVName != "evaluation.csv" {
		t.Fatalf("unexpected output: %+v", cfg.Output)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.CacheMaxAge() != 30*24*time.Hour {
		t.Fatalf("unexpected cache max age %v", cfg.CacheMaxAge())
	}
	if err := cfg.RequireGladia(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("RequireGladia = %v, want configuration error", err)
	}
}

func TestLoadHonoursXDGCacheHome(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CacheDir != filepath.Join(xdg, "pronounce") {
		t.Fatalf("unexpected cache dir %q", cfg.Paths.CacheDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pronounce.toml")
	doc := `
[paths]
staging_dir = "` + filepath.ToSlash(filepath.Join(dir, "staging")) + `"
cache_dir = "` + filepath.ToSlash(filepath.Join(dir, "cache")) + `"

[evaluation]
low_confidence = 0.5
very_low_confidence = 0.1
fillers = ["Um", " erm ", ""]
phonetic_hints = false

[gladia]
api_key = " file-key "
base_url = "http://localhost:9000/v2/"
language = "EN"
poll_interval_seconds = 1
max_poll_attempts = 3

[output]
format = "CSV"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Paths.CacheDir != filepath.Join(dir, "cache") {
		t.Fatalf("unexpected cache dir %q", cfg.Paths.CacheDir)
	}
	if cfg.Gladia.APIKey != "file-key" || cfg.Gladia.BaseURL != "http://localhost:9000/v2" || cfg.Gladia.Language != "en" {
		t.Fatalf("unexpected gladia: %+v", cfg.Gladia)
	}
	if cfg.Output.Format != "csv" || cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected output/logging: %+v %+v", cfg.Output, cfg.Logging)
	}

	opts := cfg.EvaluationOptions()
	if opts.LowConfidence != 0.5 || opts.VeryLowConfidence != 0.1 || opts.PhoneticHints {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !opts.Fillers.Contains("um") || !opts.Fillers.Contains("erm") || len(opts.Fillers) != 2 {
		t.Fatalf("unexpected fillers: %v", opts.Fillers.Sorted())
	}
	if err := cfg.RequireGladia(); err != nil {
		t.Fatalf("RequireGladia: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[evaluation]\nlow_confidense = 0.3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestLoadProjectConfigInWorkingDirectory(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("pronounce.toml", []byte("[output]\nformat = \"json\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "pronounce.toml" || cfg.Output.Format != "json" {
		t.Fatalf("resolved = %q exists = %v format = %q", resolved, exists, cfg.Output.Format)
	}
}

func TestAPIKeyResolutionOrder(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "secrets.env")
	if err := os.WriteFile(envFile, []byte("GLADIA_API_KEY=dotenv-key\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	write := func(apiKey string) {
		doc := "[paths]\nenv_file = \"" + filepath.ToSlash(envFile) + "\"\n[gladia]\napi_key = \"" + apiKey + "\"\n"
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	write("")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gladia.APIKey != "dotenv-key" {
		t.Fatalf("expected dotenv key, got %q", cfg.Gladia.APIKey)
	}

	t.Setenv("GLADIA_API_KEY", "env-key")
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gladia.APIKey != "env-key" {
		t.Fatalf("expected env key, got %q", cfg.Gladia.APIKey)
	}

	write("file-key")
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gladia.APIKey != "file-key" {
		t.Fatalf("expected file key, got %q", cfg.Gladia.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "GLADIA_API_KEY") {
		t.Fatalf("sample config missing api key guidance: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.StagingDir, "pronounce") {
			t.Fatalf("expected staging dir to contain pronounce, got %q", cfg.Paths.StagingDir)
		}
	}
	def := config.Default()
	if cfg.Evaluation.LowConfidence != def.Evaluation.LowConfidence || cfg.Gladia.MaxPollAttempts != def.Gladia.MaxPollAttempts {
		t.Fatalf("sample disagrees with defaults: %+v", cfg)
	}
	if got, want := evaluation.NewFillerSet(cfg.Evaluation.Fillers...).Sorted(), evaluation.NewFillerSet(def.Evaluation.Fillers...).Sorted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sample fillers %q, defaults %q", got, want)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"low confidence above one", func(c *config.Config) { c.Evaluation.LowConfidence = 1.5 }},
		{"negative very low confidence", func(c *config.Config) { c.Evaluation.VeryLowConfidence = -0.1 }},
		{"zero poll interval", func(c *config.Config) { c.Gladia.PollIntervalSeconds = 0 }},
		{"zero poll attempts", func(c *config.Config) { c.Gladia.MaxPollAttempts = 0 }},
		{"zero request timeout", func(c *config.Config) { c.Gladia.RequestTimeoutSeconds = 0 }},
		{"bad base url", func(c *config.Config) { c.Gladia.BaseURL = "ftp://example" }},
		{"negative cache age", func(c *config.Config) { c.Cache.MaxAgeDays = -1 }},
		{"unknown output format", func(c *config.Config) { c.Output.Format = "xml" }},
		{"unknown log level", func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("Validate = %v, want configuration error", err)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := config.Default()
	cfg.Gladia.APIKey = "key"
	if warnings := cfg.Warnings(); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %q", warnings)
	}
	cfg.Evaluation.Fillers = append(cfg.Evaluation.Fillers, "you know")
	cfg.Evaluation.VeryLowConfidence = 0.5
	warnings := cfg.Warnings()
	if len(warnings) != 2 || !strings.Contains(warnings[0], "you know") {
		t.Fatalf("warnings = %q", warnings)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.CacheDir = filepath.Join(dir, "cache")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.StagingDir, cfg.Paths.CacheDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", p, err)
		}
	}
}

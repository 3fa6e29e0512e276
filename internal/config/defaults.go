package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"pronounce/internal/evaluation"
	"pronounce/internal/gladia"
)

const (
	defaultConfigPath          = "~/.config/pronounce/config.toml"
	projectConfigName          = "pronounce.toml"
	defaultStagingDir          = "~/.local/share/pronounce/staging"
	defaultLogDir              = "~/.local/share/pronounce/logs"
	defaultEnvFile             = ".env"
	defaultRequestTimeout      = 60
	defaultCacheMaxAgeDays     = 30
	defaultOutputFormat        = "table"
	defaultCSVName             = "evaluation.csv"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	cacheFileName              = "transcripts.db"
	gladiaAPIKeyEnv            = "GLADIA_API_KEY"
	defaultPollIntervalSeconds = int(gladia.DefaultPollInterval / time.Second)
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			CacheDir:   defaultCacheDir(),
			LogDir:     defaultLogDir,
			EnvFile:    defaultEnvFile,
		},
		Evaluation: Evaluation{
			LowConfidence:     evaluation.DefaultLowConfidence,
			VeryLowConfidence: evaluation.DefaultVeryLowConfidence,
			Fillers:           append([]string(nil), evaluation.DefaultFillers...),
			PhoneticHints:     true,
		},
		Gladia: Gladia{
			BaseURL:               gladia.DefaultBaseURL,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			MaxPollAttempts:       gladia.DefaultMaxPollAttempts,
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		Cache: Cache{
			Enabled:    true,
			MaxAgeDays: defaultCacheMaxAgeDays,
		},
		Output: Output{
			Format:  defaultOutputFormat,
			CSVName: defaultCSVName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "pronounce")
	}
	return "~/.cache/pronounce"
}

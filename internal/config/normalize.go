package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGladia(); err != nil {
		return err
	}
	c.normalizeEvaluation()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReferenceCatalog, err = expandPath(strings.TrimSpace(c.Paths.ReferenceCatalog)); err != nil {
		return fmt.Errorf("paths.reference_catalog: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	return nil
}

// normalizeGladia resolves the API key from the config file, then the
// process environment, then the dotenv file.
func (c *Config) normalizeGladia() error {
	c.Gladia.APIKey = strings.TrimSpace(c.Gladia.APIKey)
	if c.Gladia.APIKey == "" {
		if value, ok := os.LookupEnv(gladiaAPIKeyEnv); ok {
			c.Gladia.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Gladia.APIKey == "" {
		values, err := readEnvFile(c.Paths.EnvFile)
		if err != nil {
			return fmt.Errorf("paths.env_file: %w", err)
		}
		c.Gladia.APIKey = strings.TrimSpace(values[gladiaAPIKeyEnv])
	}
	c.Gladia.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gladia.BaseURL), "/")
	if c.Gladia.BaseURL == "" {
		c.Gladia.BaseURL = Default().Gladia.BaseURL
	}
	c.Gladia.Language = strings.ToLower(strings.TrimSpace(c.Gladia.Language))
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

func (c *Config) normalizeEvaluation() {
	fillers := make([]string, 0, len(c.Evaluation.Fillers))
	for _, filler := range c.Evaluation.Fillers {
		if filler = strings.TrimSpace(filler); filler != "" {
			fillers = append(fillers, filler)
		}
	}
	c.Evaluation.Fillers = fillers
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	c.Output.CSVName = strings.TrimSpace(c.Output.CSVName)
	if c.Output.CSVName == "" {
		c.Output.CSVName = defaultCSVName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"

	"pronounce/internal/evaluation"
	"pronounce/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEvaluation(); err != nil {
		return err
	}
	if err := c.validateGladia(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// Warnings lists settings that load fine but probably do not do what the
// user expects.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, phrase := range evaluation.NewFillerSet(c.Evaluation.Fillers...).Phrases() {
		warnings = append(warnings, fmt.Sprintf("evaluation.fillers entry %q contains a space and will never match a single heard word", phrase))
	}
	if c.Evaluation.VeryLowConfidence > c.Evaluation.LowConfidence {
		warnings = append(warnings, "evaluation.very_low_confidence is above evaluation.low_confidence")
	}
	if strings.TrimSpace(c.Gladia.APIKey) == "" {
		warnings = append(warnings, "gladia.api_key is not set; only 'pronounce evaluate' on saved transcripts will work")
	}
	return warnings
}

func (c *Config) validateEvaluation() error {
	if c.Evaluation.LowConfidence < 0 || c.Evaluation.LowConfidence > 1 {
		return configError("evaluation.low_confidence must be between 0 and 1")
	}
	if c.Evaluation.VeryLowConfidence < 0 || c.Evaluation.VeryLowConfidence > 1 {
		return configError("evaluation.very_low_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateGladia() error {
	parsed, err := url.Parse(c.Gladia.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return configError("gladia.base_url must be an http(s) URL, got %q", c.Gladia.BaseURL)
	}
	if c.Gladia.PollIntervalSeconds <= 0 {
		return configError("gladia.poll_interval_seconds must be positive")
	}
	if c.Gladia.MaxPollAttempts <= 0 {
		return configError("gladia.max_poll_attempts must be positive")
	}
	if c.Gladia.RequestTimeoutSeconds <= 0 {
		return configError("gladia.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MaxAgeDays < 0 {
		return configError("cache.max_age_days must be zero or positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "table", "csv", "json":
	default:
		return configError("output.format must be table, csv, or json, got %q", c.Output.Format)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return configError("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrConfiguration, fmt.Sprintf(format, args...))
}

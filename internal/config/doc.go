// Package config loads, normalizes, and validates pronounce configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the Gladia API key from the
// config file, the process environment, or a dotenv file, in that order. The
// Config type centralizes every knob the CLI needs so scoring thresholds,
// filler vocabulary, cache location, and provider polling are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config

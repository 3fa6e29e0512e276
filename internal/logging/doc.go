// Package logging builds the slog loggers used by the pronounce CLI.
//
// Console output is a readable multi-line layout meant for terminals; JSON
// output keeps one record per line for machine consumption. When a log
// directory is configured, every record is also appended as JSON to
// pronounce.log at debug level so that a failed assessment can be inspected
// after the fact without re-running it verbosely.
//
// Context helpers tag records with the assessment stage and correlation ID
// stored by the services package.
package logging

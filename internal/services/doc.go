// Package services defines shared utilities consumed by the assessment
// workflow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and correlation identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     validation problems apart from provider or configuration failures.
//
// Use these helpers when wiring new stages so error handling and
// observability stay uniform across the pipeline.
package services

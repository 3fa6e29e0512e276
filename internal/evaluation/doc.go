// Package evaluation turns an alignment between a reference prompt and a
// transcription into pronunciation discrepancies.
//
// Classify maps each aligned operation to a Label using the filler vocabulary
// and two confidence thresholds carried in Options; nothing is read from
// package state, so per-locale calibration is a matter of passing different
// Options. BuildReport is the end-to-end entry point: it validates provider
// words, aligns them against the tokenized reference, classifies every
// operation, and returns the rows worth reporting (everything except plain
// matches) in alignment order. Evaluate adds an aggregate Summary.
package evaluation

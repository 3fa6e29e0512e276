// Package assess runs a recording through the full pronunciation pipeline:
// staging, transcript cache, provider transcription, and evaluation.
//
// Assessments of the same recording are serialized with a file lock keyed by
// the audio hash, so two concurrent runs never pay for the same transcription.
// EvaluateFiles covers the offline path where transcripts were saved earlier.
package assess

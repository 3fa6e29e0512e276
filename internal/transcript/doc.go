// Package transcript models the word-level output of a transcription provider
// and converts it into typed hypothesis words.
//
// Provider payloads arrive as loosely shaped JSON. Decode accepts either a bare
// utterance array or a full provider result document, and Flatten is the strict
// ingestion boundary: every word record is validated (text present, finite
// timings with start <= end, confidence within [0, 1]) before its text is
// normalized. Absent timing or confidence fields stay nil; they are never
// coerced to zero.
package transcript

// Package gladia is a small client for the Gladia v2 pre-recorded
// transcription API.
//
// A transcription takes three calls: Upload sends the audio as multipart form
// data and returns a hosted audio URL, Submit starts a job for that URL, and
// Poll fetches the job at a fixed interval until it is done, fails, or the
// attempt budget runs out. Transcribe chains the three. Every failure wraps one
// of the package sentinels so callers can branch with errors.Is.
package gladia

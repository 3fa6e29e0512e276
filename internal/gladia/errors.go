package gladia

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"pronounce/internal/services"
)

var (
	// ErrUploadFailed marks a rejected or unreadable audio upload.
	ErrUploadFailed = fmt.Errorf("%w: gladia upload failed", services.ErrExternal)
	// ErrTranscriptionFailed marks a job that could not be created or that
	// finished with an error status.
	ErrTranscriptionFailed = fmt.Errorf("%w: gladia transcription failed", services.ErrExternal)
	// ErrPollingExhausted is returned when a job is still pending after the
	// final poll attempt.
	ErrPollingExhausted = fmt.Errorf("%w: gladia polling exhausted", services.ErrTimeout)
	// ErrUnauthorized is returned when the API key is missing or rejected.
	ErrUnauthorized = fmt.Errorf("%w: gladia rejected the api key", services.ErrConfiguration)
)

const maxErrorBody = 4096

// statusError turns a failed response into an error tagged with marker.
// Authentication failures always map to ErrUnauthorized; throttling and
// server errors are additionally tagged transient.
func statusError(resp *http.Response, marker error, action string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	snippet := strings.TrimSpace(string(body))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s (%s): %s", ErrUnauthorized, action, resp.Status, snippet)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w: %s (%s): %s", marker, services.ErrTransient, action, resp.Status, snippet)
	default:
		return fmt.Errorf("%w: %s (%s): %s", marker, action, resp.Status, snippet)
	}
}

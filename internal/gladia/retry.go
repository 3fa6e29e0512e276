package gladia

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"pronounce/internal/services"
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err is worth another poll: throttling, server
// errors, timeouts, and dropped connections.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, services.ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
		"unexpected eof",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-parser/internal/resumes"
	"resume-parser/internal/shared/telemetry"
)

// DefaultRetryDelay is the pause before the single retry.
const DefaultRetryDelay = 300 * time.Millisecond

type retryingStructurer struct {
	base  Structurer
	delay time.Duration
}

// WithRetry wraps base so a transient transport failure is retried once after
// delay. Other errors and successful results pass through unchanged.
func WithRetry(base Structurer, delay time.Duration) Structurer {
	if base == nil {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	return retryingStructurer{base: base, delay: delay}
}

func (r retryingStructurer) Structure(ctx context.Context, text string) (resumes.Details, error) {
	details, err := r.base.Structure(ctx, text)
	if err == nil || !shouldRetry(err) {
		return details, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"attempt": 1,
		"error":   err.Error(),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return resumes.Details{}, TransportError(ctx.Err(), 0)
	}

	return r.base.Structure(ctx, text)
}

func shouldRetry(err error) bool {
	var structErr *StructuringError
	if !errors.As(err, &structErr) {
		return false
	}
	return structErr.Transient()
}

func isTransientNetErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "client.timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof")
}

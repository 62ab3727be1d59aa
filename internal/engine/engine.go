package engine

import (
	"context"
	"errors"
	"fmt"
)

// AutoDetect is the source-language sentinel asking the engine to detect it.
const AutoDetect = "auto"

// Translator performs one chunk+language translation call. Implementations
// carry no retry policy of their own; retries belong to the pipeline.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// UpstreamError is any failed call to the translation engine. Status is the
// HTTP status code, or 0 for transport-level failures (timeout, connection
// reset, DNS).
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("engine: %s", e.Message)
	}
	return fmt.Sprintf("engine: status %d: %s", e.Status, truncate(e.Message, 200))
}

// Retryable reports whether the failure is transient: transport errors,
// request timeout, rate limiting, and server-side errors including the
// Cloudflare 520-524 range.
func (e *UpstreamError) Retryable() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == 408, e.Status == 429:
		return true
	case e.Status >= 500 && e.Status <= 504:
		return true
	case e.Status >= 520 && e.Status <= 524:
		return true
	}
	return false
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

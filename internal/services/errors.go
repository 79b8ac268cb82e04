package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrUpstreamUnavailable marks transport or timeout failures against an
	// external adapter. Retryable; the ingestion loop skips and retries on
	// the next scheduled cycle.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotFound marks a remote entity that has vanished. Non-fatal; the
	// local record is retained.
	ErrNotFound = errors.New("not found")
	// ErrAuthFailed marks a credential rejection. Surfaced to the caller,
	// never retried automatically.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrConflict marks an add racing with an existing downstream entry.
	// Adapters must resolve it by returning the existing identifier.
	ErrConflict = errors.New("conflict")
	// ErrDataIntegrity marks a title/index divergence. Fatal to the
	// enclosing transaction.
	ErrDataIntegrity = errors.New("data integrity violation")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstreamUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error should be retried on the next cycle
// rather than surfaced as a terminal failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// ClassifyTransport maps transport-level failures onto the sentinel taxonomy.
// Every failure from an adapter's transport becomes ErrUpstreamUnavailable,
// so the ingestion loop treats it as retryable; timeouts and network errors
// only pick up a more specific message.
func ClassifyTransport(component, operation string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrUpstreamUnavailable, component, operation, "timeout", err)
	case errors.As(err, &netErr):
		return Wrap(ErrUpstreamUnavailable, component, operation, "network failure", err)
	default:
		return Wrap(ErrUpstreamUnavailable, component, operation, "", err)
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

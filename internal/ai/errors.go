package ai

import (
	"errors"
	"strings"
)

var (
	// ErrRateLimited the upstream model rejected the call with HTTP 429.
	ErrRateLimited = errors.New("ai: rate limited")
	// ErrNotConfigured no usable backend is configured.
	ErrNotConfigured = errors.New("ai: not configured")
)

// classify marks upstream rate-limit failures with ErrRateLimited.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrRateLimited) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		return errors.Join(ErrRateLimited, err)
	}
	return err
}

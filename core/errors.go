package core

import (
	"errors"
	"fmt"
)

// Standard errors for consistent error handling across all tools.
var (
	ErrUnknownTool           = errors.New("unknown tool")
	ErrMissingConfiguration  = errors.New("missing configuration")
	ErrUpstreamRequestFailed = errors.New("upstream request failed")
	ErrMalformedArgument     = errors.New("malformed argument")

	// Specific to the interview feedback workflow.
	ErrNoPendingInterview = errors.New("no pending interview")
	ErrNoFeedbackForm     = errors.New("no feedback form")
)

// UpstreamError wraps a provider API failure, preserving the upstream
// message for the caller.
func UpstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamRequestFailed, provider, err)
}

// MissingConfigError reports an absent credential or setting at adapter
// construction time.
func MissingConfigError(detail string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfiguration, detail)
}

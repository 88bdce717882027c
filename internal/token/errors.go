package token

import "errors"

var (
	// ErrInvalidToken is the only error Verify reports to callers.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrUnknownRole     = errors.New("unknown role")
	ErrPayloadMismatch = errors.New("payload does not match role")
)

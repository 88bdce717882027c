package gate

import "errors"

var (
	ErrMissingCredential      = errors.New("authentication required")
	ErrInvalidCredential      = errors.New("invalid or expired credentials")
	ErrInsufficientPermission = errors.New("insufficient permissions")
	ErrAuthenticationFailed   = errors.New("authentication failed")
)

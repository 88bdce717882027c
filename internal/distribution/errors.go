package distribution

import "errors"

var (
	ErrNotFound              = errors.New("distribution not found")
	ErrDuplicateDistribution = errors.New("distribution already recorded for this day")
	ErrAlreadyReceived       = errors.New("portion already received")
	ErrForeignSchool         = errors.New("school is outside the caller's scope")
	ErrNotPermitted          = errors.New("operation not permitted for caller")
)

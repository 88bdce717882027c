package account

import "errors"

var (
	ErrNotFound               = errors.New("account not found")
	ErrDuplicateUsername      = errors.New("username already exists")
	ErrDuplicateNPSN          = errors.New("npsn already exists")
	ErrDuplicateStudentNumber = errors.New("student number already exists")
	ErrUnknownSchool          = errors.New("school does not exist")
)

// ErrNotPermitted is returned when the caller's claims carry the wrong payload
// for the operation.
var ErrNotPermitted = errors.New("operation not permitted for caller")

package services

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to API callers. The HTTP layer maps each
// one to a status code; anything outside this set is treated as a
// storage fault, logged with full detail, and reported generically.
var (
	ErrInvalid        = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrPollClosed     = errors.New("poll has ended")
	ErrAlreadyVoted   = errors.New("you have already voted on this poll")
	ErrInvalidOption  = errors.New("option does not belong to this poll")
	ErrExists         = errors.New("username or email already exists")
	ErrBadCredentials = errors.New("invalid credentials")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

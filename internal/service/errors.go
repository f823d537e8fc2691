package service

import "errors"

var (
	// ErrNotFound is returned when a referenced travel or itinerary does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for a failed login. It deliberately
	// does not distinguish unknown users from wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError signals rejected input. The message is safe to show to the
// user; nothing is written before validation passes.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCredentials is returned when no strategy had any input to work with.
var ErrNoCredentials = errors.New("no authentication credentials or token found")

// AuthenticationFailedError is returned when at least one strategy was
// attempted and none succeeded.
type AuthenticationFailedError struct {
	Attempts []Attempt
}

func (e *AuthenticationFailedError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Strategy.String())
	}
	return fmt.Sprintf("authentication failed (tried %s)", strings.Join(names, ", "))
}

// Unwrap exposes the individual attempt failures to errors.Is and errors.As.
func (e *AuthenticationFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthenticationFailedError) Is(target error) bool {
	_, ok := target.(*AuthenticationFailedError)
	return ok
}

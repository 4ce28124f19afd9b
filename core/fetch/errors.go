package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mod-builder/core/apperr"
)

// StatusError is a non-success response from a mirror.
type StatusError struct {
	Code   int
	Mirror string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror %s responded %d %s", e.Mirror, e.Code, http.StatusText(e.Code))
}

// PermanentError marks a failure that retrying the same mirror cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err should move the fetch to the next mirror
// without spending the current mirror's retry budget: not-found, forbidden
// and other client errors except timeouts and rate limiting.
func IsPermanent(err error) bool {
	var pErr *PermanentError
	if errors.As(err, &pErr) {
		return true
	}
	var sErr *StatusError
	if errors.As(err, &sErr) {
		switch {
		case sErr.Code == http.StatusRequestTimeout, sErr.Code == http.StatusTooManyRequests:
			return false
		case sErr.Code >= 400 && sErr.Code < 500:
			return true
		}
	}
	return false
}

// MirrorFailure is the final error seen on one mirror.
type MirrorFailure struct {
	Mirror   string
	Attempts int
	Err      error
}

// NetworkError is returned once every mirror is exhausted.
// It matches apperr.ErrNetwork and unwraps to the last underlying cause.
type NetworkError struct {
	Failures []MirrorFailure
	Last     error
}

func (e *NetworkError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%d attempts): %v", f.Mirror, f.Attempts, f.Err))
	}
	return fmt.Sprintf("all %d mirrors failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *NetworkError) Is(target error) bool {
	return target == apperr.ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Last
}

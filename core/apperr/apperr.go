package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad job input such as a missing path or an empty selection list.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an expected id, manifest or data file that is absent.
	ErrNotFound = errors.New("not found")
	// ErrStructuralMismatch marks a replacement block rejected by the patch validator.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrNetwork marks a fetch that failed on every mirror.
	ErrNetwork = errors.New("network failure")
	// ErrExtraction marks a corrupt archive or a failing external tool.
	ErrExtraction = errors.New("extraction failed")
	// ErrPatchWrite marks a failure writing the patched data file.
	ErrPatchWrite = errors.New("patch write failed")
	// ErrCancelled marks cooperative cancellation. It is never retried and never logged as a fault.
	ErrCancelled = errors.New("cancelled")
)

// cancelledError ties a context error to ErrCancelled while keeping the original cause reachable.
type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string {
	return fmt.Sprintf("cancelled: %v", e.cause)
}

func (e *cancelledError) Is(target error) bool {
	return target == ErrCancelled
}

func (e *cancelledError) Unwrap() error {
	return e.cause
}

// Cancelled wraps err so that errors.Is(err, ErrCancelled) holds.
// Already-marked errors are returned unchanged.
func Cancelled(err error) error {
	if err == nil {
		err = context.Canceled
	}
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return &cancelledError{cause: err}
}

// IsCancelled reports whether err stems from cancellation, either marked
// explicitly or coming straight from a context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Validation returns an ErrValidation wrapped with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound wrapped with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Describe maps an error to the single human-readable message surfaced to callers.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case IsCancelled(err):
		return "Generation was cancelled"
	case errors.Is(err, ErrValidation):
		return "Invalid job: " + err.Error()
	case errors.Is(err, ErrNetwork):
		return "Download failed on every mirror: " + err.Error()
	case errors.Is(err, ErrExtraction):
		return "Could not extract or rebuild package: " + err.Error()
	case errors.Is(err, ErrPatchWrite):
		return "Could not write patched item data: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "Required data missing: " + err.Error()
	case errors.Is(err, ErrStructuralMismatch):
		return "Patch rejected: " + err.Error()
	default:
		return "Generation failed: " + err.Error()
	}
}

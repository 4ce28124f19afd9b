// Package apperr defines the error taxonomy shared by the patch engine,
// the fetcher and the generation pipeline.
//
// Every failure surfaced to a caller wraps exactly one of the sentinel
// errors so that callers can branch with errors.Is. Cancellation is kept
// distinct: it is never retried and is reported without fault logging.
//
// # Usage
//
//	if errors.Is(err, apperr.ErrNetwork) {
//	    // every mirror failed
//	}
//	msg := apperr.Describe(err)
package apperr

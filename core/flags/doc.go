// Package flags provides fail-open feature toggles for the generation pipeline.
//
// A fixed default record (everything enabled) is merged with an optional
// override fetched from a remote mirror. The Cache is an explicit object with
// Get, Reload and Invalidate; when the override cannot be fetched the
// defaults apply.
package flags

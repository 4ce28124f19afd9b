// Package fetch retrieves remote assets through an ordered list of mirrors.
//
// The Fetcher retries transient failures (timeouts, 5xx, connection errors)
// on the same mirror with capped exponential backoff and moves on to the next
// mirror as soon as one answers not-found or forbidden. Only when every mirror
// is exhausted does it return a *NetworkError carrying the last cause.
//
// # Mirrors
//
// Mirror URLs are routed by scheme:
//   - http:// and https:// through net/http
//   - s3://bucket/key through the object storage client (core/storage)
//   - file:// from the local disk
//
// # Usage
//
//	f := fetch.New(cfg.Fetch, logger)
//	router := fetch.NewRouter(cfg.Fetch, store)
//	data, err := f.Fetch(ctx, mirrors, router.Get)
package fetch

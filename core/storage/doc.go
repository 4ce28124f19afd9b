// Package storage wraps the MinIO Go client for the object storage the
// generator can read asset archives from and publish built packages to.
//
// # Client Interface
//
// The Client interface abstracts the provider so that fetch and generation
// code can be tested with the testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists: checked once at startup before publishing is enabled.
//   - GetObject: streams an asset archive for an s3:// mirror.
//   - PutObject: uploads a built package.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if client == nil {
//	    // storage not configured
//	}
package storage

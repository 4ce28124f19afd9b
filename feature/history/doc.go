// Package history persists finished generation jobs in MySQL.
//
// The Repository implements generation.Recorder, so the job service writes a
// JobRecord for every job that reaches a terminal stage. The feature is only
// enabled when a database connection is configured.
//
// # HTTP Endpoints
//
//   - GET /history : recent jobs, newest first
//   - GET /history/:id : one stored job
package history

// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application lifecycle; this package only
// defines the listen port, the API key protecting the job endpoints and the
// graceful shutdown window.
package server

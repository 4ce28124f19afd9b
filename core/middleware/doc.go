// Package middleware groups the Fiber middleware mounted in front of the
// job API.
//
//   - rayid: assigns every request an X-Ray-ID (reusing an incoming one) so
//     job submissions and their log lines can be traced.
//   - auth: requires the configured API key, as X-API-Key or a bearer token,
//     on the job, flag and history routes. Swagger is mounted before it and
//     stays public.
package middleware

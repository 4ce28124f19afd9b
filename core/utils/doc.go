// Package utils provides loose value conversion for data decoded from JSON
// or YAML, such as remote feature flag overrides and job files.
package utils

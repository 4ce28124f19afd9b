// Package config provides configuration management for mod-builder.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO mirror and publishing bucket
//   - Log: Logging level and format
//   - Database: optional MySQL job history
//   - Fetch: mirror retry and backoff
//   - Tools: external archive tool
//   - Generation: work dir, target root, extraction log
//   - Flags: remote feature flag source
//
// Every key can be overridden from the environment, e.g. FETCH_MAX_ATTEMPTS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config

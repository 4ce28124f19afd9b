// Package database handles the optional MySQL connection used for job history.
//
// It wraps GORM to configure the connection from application settings and
// offers a small schema inspector so the history table can be checked at
// startup.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Job history disabled", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "generation_jobs", []string{"id", "status"})
package database

// Package logger builds the zap logger shared by the server, the generate
// command and the pipeline.
//
// Level selects the minimum level (debug, info, warn, error); debug also
// switches to zap's development preset. Format picks json or console output.
//
// WithRayID tags a logger with the request's ray ID so the job log lines of
// one HTTP call can be correlated.
//
// # Usage
//
//	logg, _ := logger.New(&cfg.Log)
//	pipelineLog := logg.Named("pipeline")
//	pipelineLog.Info("Stage started", zap.String("stage", "Patching"))
//
//	// In a handler:
//	logger.WithRayID(logg, c).Info("Job accepted", zap.String("job_id", id))
package logger

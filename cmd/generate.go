package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mod-builder/core/config"
	"mod-builder/core/logger"
	"mod-builder/feature/generation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// generateCmd runs one job from a YAML file in the foreground.
var generateCmd = &cobra.Command{
	Use:   "generate <job.yaml>",
	Short: "Run a generation job from a YAML file",
	Long: `Reads a job definition (selections, auxiliary options, target root) from
YAML and runs it to completion. Interrupting cancels the job unless it has
already started installing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		job, err := readJob(args[0])
		if err != nil {
			return err
		}
		if target, _ := cmd.Flags().GetString("target"); target != "" {
			job.TargetRoot = target
		}

		comps, err := bootstrap(cfg, logg)
		if err != nil {
			return err
		}
		svc := generation.NewService(comps.pipeline, comps.flags, comps.recorder(), logg.Named("jobs"))
		defer svc.Close()

		status, err := svc.Submit(job)
		if err != nil {
			return err
		}
		logg.Info("Job started", zap.String("job_id", status.ID), zap.Int("selections", status.Selections))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		go func() {
			if _, ok := <-sig; ok {
				logg.Info("Interrupt received, cancelling job", zap.String("job_id", status.ID))
				_ = svc.Cancel(status.ID)
			}
		}()

		final, err := svc.Wait(context.Background(), status.ID)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(final, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if final.Result == nil || !final.Result.Success {
			return fmt.Errorf("job %s ended in stage %s", final.ID, final.Stage)
		}
		return nil
	},
}

func readJob(path string) (generation.Job, error) {
	var job generation.Job
	data, err := os.ReadFile(path)
	if err != nil {
		return job, fmt.Errorf("failed to read job file: %w", err)
	}
	if err := yaml.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return job, nil
}

func init() {
	RootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("target", "", "Override the install destination")
}

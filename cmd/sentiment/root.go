package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mlsentiment/internal/commander"
	"mlsentiment/internal/config"
	"mlsentiment/internal/history"
	"mlsentiment/internal/logging"
	"mlsentiment/internal/pipeline"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		req        commander.Request
	)

	root := &cobra.Command{
		Use:   "sentiment <train|predict>",
		Short: "Train and apply a binary sentiment classifier",
		Long: `sentiment trains a gradient-boosted tree classifier on tab-separated
text/label files, saves it, evaluates it on a held-out file, and predicts the
sentiment of a single piece of text with a saved model.

Paths and text are prompted for on standard input unless given as flags.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := commander.ParseAction(args)
			if err != nil {
				return reportUsage(cmd, err)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			logger, closeLog, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			defer closeLog()

			opts := commander.Options{
				In:                   cmd.InOrStdin(),
				Out:                  cmd.OutOrStdout(),
				Err:                  cmd.ErrOrStderr(),
				Logger:               logger,
				CrossValidationFolds: cfg.Evaluation.CrossValidationFolds,
				BatchSize:            cfg.Evaluation.BatchSize,
			}

			if cfg.History.Path != "" {
				store, err := history.Open(cfg.History.Path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return err
				}
				defer store.Close()
				opts.History = store
			}

			backend := pipeline.NewWorkflow(cfg.FeaturizerOptions(), cfg.ModelConfig(), logger)
			cmdr := commander.NewCommander(backend, opts)

			if err := cmdr.Run(cmd.Context(), action, req); err != nil {
				cmdr.ReportError(err)
				return err
			}
			return nil
		},
	}

	root.SetFlagErrorFunc(reportUsage)

	flags := root.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
	flags.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&req.TrainPath, "train-data", "", "training data file (skips the prompt)")
	flags.StringVar(&req.TestPath, "test-data", "", "test data file (skips the prompt)")
	flags.StringVarP(&req.ModelPath, "model", "m", "", "model file (skips the prompt)")
	flags.StringVar(&req.Text, "text", "", "text to analyze when predicting (skips the prompt)")

	return root
}

// reportUsage prints errors that occur before the commander exists.
func reportUsage(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	_ = cmd.Usage()
	return err
}

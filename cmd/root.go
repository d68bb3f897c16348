package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"recat/internal/config"
	"recat/internal/errors"
	"recat/internal/log"
)

// app carries the state of one invocation of the root command.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	runID  string
	logger *zap.Logger
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{
		cfg:    &config.Config{},
		stdout: stdout,
		logger: zap.NewNop(),
	}

	rootCmd := &cobra.Command{
		Use:   "recat [flags] [exercises.json]",
		Short: "Split broad exercise categories into specific muscle groups",
		Long: `Recat reads a JSON array of exercises and moves records out of broad
categories into more specific ones based on their primary muscles and names:
Arms becomes Biceps, Triceps or Forearms and Shoulders may become Neck.
Every other field is kept as is and the result is written to a new file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRecat(cmd.Context(), a)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stdout)

	cfg := a.cfg
	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.OutputFile, "output", "o", "", "Output file (default: updated_exercises.json)")
	flags.BoolVar(&cfg.DryRun, "dry-run", false, "Classify and report without writing the output file")
	flags.BoolVar(&cfg.NoBackup, "nobackup", false, "Do not back up an existing output file")
	flags.StringVar(&cfg.LogFile, "log", "", "Write every change to this file")
	flags.Var((*logFormatFlag)(&cfg.LogFormat), "log-format", "Change log format (json, csv)")
	flags.IntVar(&cfg.SampleSize, "sample", config.DefaultSampleSize, "Number of changes shown in the report")
	flags.IntVar(&cfg.Workers, "workers", 0, "Number of classification workers (default: number of CPUs, at most 8)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose mode")
	flags.BoolVar(&cfg.Debug, "debug", false, "Debug mode")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Quiet mode")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "quiet")

	return rootCmd
}

func (a *app) setup(args []string) error {
	if len(args) > 0 {
		a.cfg.InputFile = args[0]
	}

	if err := config.LoadEnv(); err != nil {
		return err
	}
	if err := a.cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.runID = uuid.NewString()
	logger, err := log.NewDiagnostics(a.cfg, a.runID)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// Execute runs the root command and exits with the code of the error class
// that stopped it.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		for _, line := range errors.UserMessage(err) {
			fmt.Fprintln(stdout, line)
		}
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

type logFormatFlag config.LogFormat

var _ pflag.Value = (*logFormatFlag)(nil)

func (f *logFormatFlag) String() string {
	return string(*f)
}

func (f *logFormatFlag) Set(v string) error {
	switch config.LogFormat(v) {
	case config.LogFormatJSON, config.LogFormatCSV:
		*f = logFormatFlag(v)
		return nil
	default:
		return fmt.Errorf("must be 'json' or 'csv'")
	}
}

func (f *logFormatFlag) Type() string {
	return "string"
}

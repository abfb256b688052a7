// Command dirlaunch is the CLI entrypoint for the directory batch launcher.
//
// It lists one directory, skips entries whose extension is excluded, and
// starts the configured executable once per remaining entry with the entry
// path as its only argument.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/dirlaunch/internal/check"
	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/display"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/logging"
	"github.com/backmassage/dirlaunch/internal/pipeline"
	"github.com/backmassage/dirlaunch/internal/report"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	code := 0
	cmd := newRootCmd(&code, stdout)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dirlaunch: %v\n", err)
		return 1
	}
	return code
}

func newRootCmd(code *int, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dirlaunch [flags] [directory]",
		Short:         "Launch a program once per file in a directory",
		Long:          "dirlaunch lists a directory, skips excluded extensions, and starts the\nconfigured executable with each remaining entry's path as its only argument.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       rootCmdExample,
	}
	cmd.SetOut(stdout)
	flags := config.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Bootstrap: the logger doesn't exist yet, so errors are returned
		// to run() and printed to stderr there.
		cfg := config.DefaultConfig()
		if err := flags.Apply(cmd.Flags(), &cfg, args); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err := logging.NewLogger(&cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		*code = execute(cmd.Context(), &cfg, log, stdout)
		return nil
	}
	return cmd
}

const rootCmdExample = `  # Decode every file in gray8bit with the default decoder, without waiting
  dirlaunch

  # Scan another directory with another program and wait for exit codes
  dirlaunch --exec ./huffman --wait images/

  # Show what would be launched
  dirlaunch --list images/

  # Keep a YAML record of the run
  dirlaunch --wait --report runs/latest.yaml`

// execute runs the selected mode with a ready logger and returns the exit code.
func execute(ctx context.Context, cfg *config.Config, log *logging.Logger, stdout io.Writer) int {
	display.PrintBanner(stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(cfg, log) {
			return 1
		}
		return 0
	}

	if cfg.ListOnly {
		if err := pipeline.Preview(cfg, log, stdout); err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	log.Info("=== dirlaunch v%s (%s) ===", version, commit)
	log.Info("In:   %s", cfg.Directory)
	log.Info("Exec: %s", cfg.Executable)
	if cfg.DryRun {
		log.Warn("DRY RUN: no process will be started")
	} else if err := check.CheckDeps(cfg); err != nil {
		// Fail fast before any launch if the executable or directory is unusable.
		log.Error("%v", err)
		return 1
	}

	// Cancel on SIGINT/SIGTERM so the loop stops issuing launches. Processes
	// already started are left running.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, no further launches")
			cancel()
		case <-ctx.Done():
		}
	}()

	runID := pipeline.NewRunID()
	runLog := log.With("run_id", runID)
	started := time.Now()

	stats, results, err := pipeline.Run(ctx, cfg, runLog, launch.NewExecStarter(cfg.DiscardOutput))
	if err != nil {
		runLog.Error("%v", err)
		return 1
	}

	if cfg.ReportPath != "" {
		r := report.New(runID, started, cfg, stats, results)
		if err := report.Write(cfg.ReportPath, r); err != nil {
			runLog.Error("%v", err)
			return 1
		}
		runLog.Info("Report: %s", cfg.ReportPath)
	}

	if stats.Failed > 0 {
		return 1
	}
	return 0
}

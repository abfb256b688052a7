package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/display"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/logging"
)

// Decision is what the batch does with one entry.
type Decision int

const (
	DecideLaunch Decision = iota
	DecideExcluded
	DecideSkipDir
)

// Decide returns the action for e. The exclusion set is consulted first, so
// a directory with an excluded extension counts as excluded. Directories are
// launched like files unless cfg.SkipDirs is set.
func Decide(cfg *config.Config, e Entry) Decision {
	if cfg.Exclude.Contains(e.Ext) {
		return DecideExcluded
	}
	if e.IsDir && cfg.SkipDirs {
		return DecideSkipDir
	}
	return DecideLaunch
}

// NewRunID returns a sortable identifier for one batch run.
func NewRunID() string {
	return ulid.Make().String()
}

// pending is a started process whose completion is still owed.
type pending struct {
	idx int
	h   launch.Handle
}

// Run is the top-level batch entry point. It lists cfg.Directory and makes
// exactly one launch attempt per entry that is not excluded (nor, with
// cfg.SkipDirs, a subdirectory). Launches are issued one after another without waiting
// for the previous process. With cfg.Wait every started process is awaited
// afterwards and its Result completed with exit code and duration.
//
// The returned error is non-nil only when the directory cannot be listed,
// in which case nothing was launched. Per-entry launch failures are carried
// in the Results and counted in RunStats.Failed.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, starter launch.Starter) (RunStats, []launch.Result, error) {
	var stats RunStats

	entries, err := Discover(cfg.Directory)
	if err != nil {
		return stats, nil, err
	}
	stats.Total = len(entries)
	logBatchHeader(cfg, log, &stats)

	var (
		results []launch.Result
		waits   []pending
	)
	for i, e := range entries {
		if ctx.Err() != nil {
			log.Warn("Interrupted, %d entries not processed", len(entries)-i)
			tallyUnvisited(cfg, entries[i:], &stats)
			break
		}

		switch Decide(cfg, e) {
		case DecideExcluded:
			stats.Excluded++
			log.Debug("Skip (excluded %s): %s", e.Ext, e.Name)
			continue
		case DecideSkipDir:
			stats.Skipped++
			log.Debug("Skip (directory): %s", e.Name)
			continue
		}

		stats.Attempted++
		stats.InputBytes += e.Size
		res, h := launchOne(ctx, cfg, log, starter, e, &stats)
		results = append(results, res)
		if h != nil {
			waits = append(waits, pending{idx: len(results) - 1, h: h})
		}

		if res.Err != nil && cfg.FailFast {
			log.Error("Stopping batch after first launch failure (--fail-fast)")
			tallyUnvisited(cfg, entries[i+1:], &stats)
			break
		}
	}

	if len(waits) > 0 {
		awaitAll(results, waits)
		for _, p := range waits {
			r := results[p.idx]
			logCompletion(log, r)
			if r.Failed() {
				stats.Failed++
			}
		}
	}

	logSummary(cfg, log, &stats)
	return stats, results, nil
}

// launchOne starts the executable for e. In wait mode the handle is
// returned so the caller can collect it; otherwise it is released here.
func launchOne(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	starter launch.Starter,
	e Entry,
	stats *RunStats,
) (launch.Result, launch.Handle) {
	argv := launch.Command(cfg.Executable, e.Path)
	res := launch.Result{Path: e.Path, ExitCode: -1}
	log.Info("[%d/%d] %s", stats.Excluded+stats.Skipped+stats.Attempted, stats.Total, e.Name)

	if cfg.DryRun {
		stats.Launched++
		log.Success("[DRY] Would launch: %s", strings.Join(argv, " "))
		return res, nil
	}

	h, err := starter.Start(ctx, argv[0], argv[1:])
	if err != nil {
		res.Err = err
		stats.Failed++
		log.Error("Launch failed (%s): %v", launch.Classify(err), err)
		return res, nil
	}

	res.Started = true
	res.PID = h.PID()
	stats.Launched++
	log.Zerolog().Debug().Str("path", e.Path).Int("pid", res.PID).Msg("process started")

	if cfg.Wait {
		return res, h
	}
	if err := h.Release(); err != nil {
		log.Debug("Release pid %d: %v", res.PID, err)
	}
	log.Success("Launched pid %d", res.PID)
	return res, nil
}

// awaitAll blocks until every pending process has exited. Each goroutine
// writes only its own slot of results.
func awaitAll(results []launch.Result, waits []pending) {
	var g errgroup.Group
	for _, p := range waits {
		p := p
		g.Go(func() error {
			r := p.h.Wait()
			r.Path = results[p.idx].Path
			results[p.idx] = r
			return nil
		})
	}
	_ = g.Wait()
}

// tallyUnvisited counts entries the loop never reached: excluded ones still
// count as excluded, everything else as skipped.
func tallyUnvisited(cfg *config.Config, rest []Entry, stats *RunStats) {
	for _, e := range rest {
		if Decide(cfg, e) == DecideExcluded {
			stats.Excluded++
		} else {
			stats.Skipped++
		}
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d entries in %s", stats.Total, cfg.Directory)
	log.Info("Executable: %s", cfg.Executable)
	log.Info("Excluded extensions: %s", strings.Join(cfg.Exclude.Sorted(), " "))
	if cfg.Wait {
		log.Info("Mode: wait for every process")
	} else {
		log.Info("Mode: fire-and-forget")
	}
	if cfg.FailFast {
		log.Info("Failure policy: stop at first launch failure")
	} else {
		log.Info("Failure policy: continue past launch failures")
	}
	if cfg.SkipDirs {
		log.Info("Subdirectories: skipped")
	}
}

func logCompletion(log *logging.Logger, r launch.Result) {
	switch {
	case r.Err != nil:
		log.Error("pid %d: wait failed: %v", r.PID, r.Err)
	case r.ExitCode != 0:
		log.Error("pid %d exited %d after %s: %s", r.PID, r.ExitCode, display.FormatDuration(r.Duration), r.Path)
	default:
		log.Success("pid %d finished in %s: %s", r.PID, display.FormatDuration(r.Duration), r.Path)
	}
	log.Zerolog().Debug().
		Str("path", r.Path).
		Int("pid", r.PID).
		Int("exit_code", r.ExitCode).
		Dur("duration", r.Duration).
		Msg("process finished")
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d launched, %d excluded, %d skipped, %d failed",
		stats.Launched, stats.Excluded, stats.Skipped, stats.Failed)
	log.Info("  Entries listed: %d", stats.Total)
	log.Info("  Launch attempts: %d (%s of input)", stats.Attempted, display.FormatBytes(stats.InputBytes))
	if cfg.DryRun {
		log.Info("  Nothing started (dry run)")
		return
	}
	if !cfg.Wait && stats.Launched > 0 {
		log.Info("  %s still owned by the OS; exit codes not collected", plural(stats.Launched, "process", "processes"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// Package report writes a YAML record of one batch run: which entries were
// launched, with which PID, and (in wait mode) how each process exited.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/pipeline"
)

// Report is the document written by [Write].
type Report struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	Directory  string    `yaml:"directory"`
	Executable string    `yaml:"executable"`
	Exclude    []string  `yaml:"exclude"`
	Mode       string    `yaml:"mode"`
	DryRun     bool      `yaml:"dry_run,omitempty"`
	Totals     Totals    `yaml:"totals"`
	Launches   []Launch  `yaml:"launches"`
}

// Totals mirrors pipeline.RunStats.
type Totals struct {
	Entries   int `yaml:"entries"`
	Excluded  int `yaml:"excluded"`
	Skipped   int `yaml:"skipped"`
	Attempted int `yaml:"attempted"`
	Launched  int `yaml:"launched"`
	Failed    int `yaml:"failed"`
}

// Launch is one launch attempt.
type Launch struct {
	Path     string `yaml:"path"`
	PID      int    `yaml:"pid,omitempty"`
	ExitCode *int   `yaml:"exit_code,omitempty"`
	Duration string `yaml:"duration,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Failure  string `yaml:"failure,omitempty"`
}

// New assembles a Report from a finished run.
func New(runID string, started time.Time, cfg *config.Config, stats pipeline.RunStats, results []launch.Result) Report {
	mode := "detach"
	if cfg.Wait {
		mode = "wait"
	}
	r := Report{
		RunID:      runID,
		StartedAt:  started.UTC(),
		Directory:  cfg.Directory,
		Executable: cfg.Executable,
		Exclude:    cfg.Exclude.Sorted(),
		Mode:       mode,
		DryRun:     cfg.DryRun,
		Totals: Totals{
			Entries:   stats.Total,
			Excluded:  stats.Excluded,
			Skipped:   stats.Skipped,
			Attempted: stats.Attempted,
			Launched:  stats.Launched,
			Failed:    stats.Failed,
		},
		Launches: make([]Launch, 0, len(results)),
	}
	for _, res := range results {
		l := Launch{Path: res.Path, PID: res.PID}
		if res.Waited {
			code := res.ExitCode
			l.ExitCode = &code
			l.Duration = res.Duration.Round(time.Millisecond).String()
		}
		if res.Err != nil {
			l.Error = res.Err.Error()
			l.Failure = launch.Classify(res.Err).String()
		}
		r.Launches = append(r.Launches, l)
	}
	return r
}

// Write encodes r as YAML to path, creating parent directories.
func Write(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: ensure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		f.Close()
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("report: encode: %w", err)
	}
	return f.Close()
}

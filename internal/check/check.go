// Package check provides system diagnostics (--check mode) and the
// pre-launch dependency validation (CheckDeps) for the scan directory and
// the external executable.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/pipeline"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrExecutableNotFound = errors.New("executable not found or not executable")
	ErrDirectoryNotFound  = errors.New("directory not found")
	ErrNotDirectory       = errors.New("path is not a directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// RunCheck runs the --check flow: reports whether the executable resolves,
// whether the directory can be listed, and how many entries would launch.
// It returns true when a run would be able to launch.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := true
	if path, err := resolveExecutable(cfg.Executable); err != nil {
		log.Error("Executable: %v", err)
		ok = false
	} else {
		log.Success("Executable: %s", path)
	}

	entries, err := pipeline.Discover(cfg.Directory)
	if err != nil {
		log.Error("Directory: %v", err)
		return false
	}
	log.Success("Directory: %s (%d entries)", cfg.Directory, len(entries))

	var launchable, excluded, dirs int
	for _, e := range entries {
		switch pipeline.Decide(cfg, e) {
		case pipeline.DecideExcluded:
			excluded++
		case pipeline.DecideSkipDir:
			dirs++
		default:
			launchable++
		}
	}
	log.Info("  %d would launch, %d excluded, %d directories skipped", launchable, excluded, dirs)
	if launchable == 0 {
		log.Warn("Nothing to launch in %s", cfg.Directory)
	}
	return ok
}

// CheckDeps is the pre-launch validation: the executable must resolve and
// the directory must exist and be a directory. Returns a wrapped sentinel
// error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := resolveExecutable(cfg.Executable); err != nil {
		return err
	}
	fi, err := os.Stat(cfg.Directory)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, cfg.Directory)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, cfg.Directory)
	}
	return nil
}

// resolveExecutable looks the executable up the way os/exec will when it is
// launched: on PATH for bare names, as a file path otherwise.
func resolveExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}
	return path, nil
}

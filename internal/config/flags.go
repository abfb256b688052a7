package config

// This file binds CLI flags onto a pflag.FlagSet (owned by the cobra root
// command) and applies them to a Config. Only flags the user actually set
// override values from defaults or the YAML file.

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags captures raw flag values until [Flags.Apply] copies the ones that
// were set into a Config.
type Flags struct {
	executable    string
	exclude       []string
	wait          bool
	failFast      bool
	skipDirs      bool
	discardOutput bool
	dryRun        bool
	list          bool
	check         bool
	report        string
	configFile    string
	verbose       bool
	logFile       string
	forceColor    bool
	noColor       bool
}

// BindFlags registers every dirlaunch flag on fs. Help text defaults are
// taken from [DefaultConfig].
func BindFlags(fs *pflag.FlagSet) *Flags {
	def := DefaultConfig()
	f := &Flags{}

	// Launch target.
	fs.StringVarP(&f.executable, "exec", "e", def.Executable, "External program launched once per entry")
	fs.StringSliceVarP(&f.exclude, "exclude", "x", def.Exclude.Sorted(), "Extensions to skip (case-sensitive, with leading dot)")

	// Behavior.
	fs.BoolVarP(&f.wait, "wait", "w", false, "Wait for every process and report exit codes")
	fs.BoolVar(&f.failFast, "fail-fast", false, "Stop the batch at the first launch failure")
	fs.BoolVar(&f.skipDirs, "skip-dirs", false, "Do not launch for subdirectories")
	fs.BoolVar(&f.discardOutput, "discard-output", false, "Do not pass child stdout/stderr through")
	fs.BoolVarP(&f.dryRun, "dry-run", "d", false, "Log launches without starting processes")
	fs.BoolVar(&f.list, "list", false, "Show the decision for every entry and exit")

	// Output and display.
	fs.StringVarP(&f.report, "report", "r", "", "Write a YAML run report to this path")
	fs.StringVar(&f.configFile, "config", "", "Read settings from a YAML file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&f.logFile, "log", "l", "", "Append logs to file")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&f.check, "check", "c", false, "Run diagnostics and exit")

	return f
}

// Apply loads the config file (if --config was given), then copies every
// flag the user set into cfg, then takes the directory from the optional
// positional argument.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config, args []string) error {
	if f.configFile != "" {
		cfg.ConfigFile = f.configFile
		if err := LoadFile(f.configFile, cfg); err != nil {
			return err
		}
	}

	if fs.Changed("exec") {
		cfg.Executable = f.executable
	}
	if fs.Changed("exclude") {
		cfg.Exclude = NewExclusionSet(f.exclude...)
	}
	if fs.Changed("wait") {
		cfg.Wait = f.wait
	}
	if fs.Changed("fail-fast") {
		cfg.FailFast = f.failFast
	}
	if fs.Changed("skip-dirs") {
		cfg.SkipDirs = f.skipDirs
	}
	if fs.Changed("discard-output") {
		cfg.DiscardOutput = f.discardOutput
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if fs.Changed("list") {
		cfg.ListOnly = f.list
	}
	if fs.Changed("check") {
		cfg.CheckOnly = f.check
	}
	if fs.Changed("report") {
		cfg.ReportPath = f.report
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("log") {
		cfg.LogFile = f.logFile
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}

	switch len(args) {
	case 0:
	case 1:
		cfg.Directory = NormalizeDirArg(args[0])
	default:
		return fmt.Errorf("expected at most one directory argument, got %d", len(args))
	}
	return nil
}

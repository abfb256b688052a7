// Package config holds runtime configuration: defaults, the optional YAML
// config file, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultDirectory and DefaultExclusions reproduce the launcher's historical
// hardcoded values.
const DefaultDirectory = "gray8bit"

// DefaultExclusions are the extensions that never trigger a launch: source
// images and the outputs of the arithmetic and run-length coders.
var DefaultExclusions = []string{".pgm", ".Arc", ".Rlc"}

// DefaultExecutable is the decoder binary relative to the invocation directory.
var DefaultExecutable = filepath.Join("ComputerGraphic", "x64", "Release", "Huffman.exe")

// ExclusionSet is a set of file extensions (with leading dot). Membership is
// case-sensitive and exact.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from the given extensions. Duplicates collapse.
func NewExclusionSet(exts ...string) ExclusionSet {
	s := make(ExclusionSet, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// Contains reports whether ext is excluded.
func (s ExclusionSet) Contains(ext string) bool {
	_, ok := s[ext]
	return ok
}

// Sorted returns the members in lexical order, for logging and reports.
func (s ExclusionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by an optional YAML file ([LoadFile]) and finally by explicitly set
// CLI flags ([BindFlags] / [ApplyFlags]).
type Config struct {
	// What to scan and what to run.
	Directory  string
	Executable string
	Exclude    ExclusionSet

	// Launch behavior.
	Wait          bool // Wait for every process and collect exit codes.
	FailFast      bool // Stop the batch at the first launch failure.
	SkipDirs      bool // Do not launch for subdirectories.
	DiscardOutput bool // Do not inherit child stdout/stderr.
	DryRun        bool

	// Modes that exit before launching.
	ListOnly  bool // --list preview.
	CheckOnly bool // --check diagnostics.

	// Output.
	ReportPath string // Optional YAML run report.
	ConfigFile string // Optional YAML config file (read before flags apply).

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config that behaves like the original launcher:
// scan gray8bit, skip .pgm/.Arc/.Rlc, run the Huffman decoder without waiting.
func DefaultConfig() Config {
	return Config{
		Directory:  DefaultDirectory,
		Executable: DefaultExecutable,
		Exclude:    NewExclusionSet(DefaultExclusions...),
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks the color mode, the required paths, and the shape of each
// excluded extension.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	for ext := range c.Exclude {
		if err := validateExtension(ext); err != nil {
			return err
		}
	}

	if c.CheckOnly {
		return nil
	}
	if c.Directory == "" {
		return errors.New("directory must not be empty")
	}
	if c.Executable == "" && !c.ListOnly {
		return errors.New("executable path must not be empty")
	}
	if c.ListOnly && c.Wait {
		return errors.New("--list and --wait are mutually exclusive")
	}
	return nil
}

// validateExtension requires a leading dot and forbids path separators.
func validateExtension(ext string) error {
	if !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("invalid exclusion %q (extensions start with '.')", ext)
	}
	if strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("invalid exclusion %q (must not contain a path separator)", ext)
	}
	return nil
}

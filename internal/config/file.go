package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk YAML shape. Pointer fields distinguish "absent"
// from the zero value so a file only overrides what it names.
type fileConfig struct {
	Directory     *string  `yaml:"directory"`
	Executable    *string  `yaml:"executable"`
	Exclude       []string `yaml:"exclude"`
	Wait          *bool    `yaml:"wait"`
	FailFast      *bool    `yaml:"fail_fast"`
	SkipDirs      *bool    `yaml:"skip_dirs"`
	DiscardOutput *bool    `yaml:"discard_output"`
	Report        *string  `yaml:"report"`
	Log           *string  `yaml:"log"`
	Color         *string  `yaml:"color"`
	Verbose       *bool    `yaml:"verbose"`
}

// LoadFile reads a YAML config file and applies its keys onto cfg. Unknown
// keys are rejected. An explicit empty exclude list clears the defaults. An
// empty or comment-only file changes nothing.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.Directory != nil {
		cfg.Directory = NormalizeDirArg(*fc.Directory)
	}
	if fc.Executable != nil {
		cfg.Executable = *fc.Executable
	}
	if fc.Exclude != nil {
		cfg.Exclude = NewExclusionSet(fc.Exclude...)
	}
	if fc.Wait != nil {
		cfg.Wait = *fc.Wait
	}
	if fc.FailFast != nil {
		cfg.FailFast = *fc.FailFast
	}
	if fc.SkipDirs != nil {
		cfg.SkipDirs = *fc.SkipDirs
	}
	if fc.DiscardOutput != nil {
		cfg.DiscardOutput = *fc.DiscardOutput
	}
	if fc.Report != nil {
		cfg.ReportPath = *fc.Report
	}
	if fc.Log != nil {
		cfg.LogFile = *fc.Log
	}
	if fc.Color != nil {
		cfg.ColorMode = ColorMode(*fc.Color)
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level configuration file.
const FileName = ".stagelens.yml"

// Config captures CLI options sourced from config files or flags.
type Config struct {
	Pipelines []string `yaml:"pipelines"`
	Stages    []string `yaml:"stages"`

	DryRun  bool   `yaml:"dry_run"`
	Verbose bool   `yaml:"verbose"`
	Format  string `yaml:"format" validate:"oneof=pretty json"`
	Jobs    int    `yaml:"jobs" validate:"min=1,max=64"`
	LogDir  string `yaml:"log_dir"`

	DVC DVC `yaml:"dvc"`

	Warn               WarnConfig `yaml:"warn"`
	RequiredDVCVersion string     `yaml:"required_dvc_version" validate:"omitempty,semver|numeric"`

	Serve ServeConfig `yaml:"serve"`
}

// DVC describes how the dvc executable is invoked.
type DVC struct {
	// CLIPath runs dvc from an explicit executable.
	CLIPath string `yaml:"cli_path"`
	// PythonBinPath runs dvc as `python -m dvc` when CLIPath is empty.
	PythonBinPath string `yaml:"python_bin_path"`
	// PythonPath is exported as PYTHONPATH to every invocation.
	PythonPath string `yaml:"pythonpath"`
}

// WarnConfig controls additional warning behaviour.
type WarnConfig struct {
	// VersionMismatch is nil when the file leaves it unset.
	VersionMismatch *bool `yaml:"version_mismatch"`
}

// VersionMismatchEnabled reports whether dvc version warnings are on. Unset
// means on.
func (w WarnConfig) VersionMismatchEnabled() bool {
	return w.VersionMismatch == nil || *w.VersionMismatch
}

// ServeConfig configures the HTTP sidecar.
type ServeConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"

	// DefaultJobs bounds concurrent pipeline file extraction.
	DefaultJobs = 4
	// DefaultServeAddr is where the sidecar listens by default.
	DefaultServeAddr = "127.0.0.1:7717"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Format: FormatPretty,
		Jobs:   DefaultJobs,
		Serve: ServeConfig{
			Addr: DefaultServeAddr,
		},
	}
}

// Load reads .stagelens.yml from the project root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints after merging.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %q fails %q", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return err
	}
	return nil
}

func merge(base, override Config) Config {
	out := base

	if len(override.Pipelines) > 0 {
		out.Pipelines = append([]string{}, override.Pipelines...)
	}
	if len(override.Stages) > 0 {
		out.Stages = append([]string{}, override.Stages...)
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.Jobs != 0 {
		out.Jobs = override.Jobs
	}
	if override.LogDir != "" {
		out.LogDir = override.LogDir
	}
	if override.DryRun {
		out.DryRun = true
	}
	if override.Verbose {
		out.Verbose = true
	}

	if override.DVC.CLIPath != "" {
		out.DVC.CLIPath = override.DVC.CLIPath
	}
	if override.DVC.PythonBinPath != "" {
		out.DVC.PythonBinPath = override.DVC.PythonBinPath
	}
	if override.DVC.PythonPath != "" {
		out.DVC.PythonPath = override.DVC.PythonPath
	}

	if override.Warn.VersionMismatch != nil {
		enabled := *override.Warn.VersionMismatch
		out.Warn.VersionMismatch = &enabled
	}
	if override.RequiredDVCVersion != "" {
		out.RequiredDVCVersion = override.RequiredDVCVersion
	}
	if override.Serve.Addr != "" {
		out.Serve.Addr = override.Serve.Addr
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if len(flags.Pipelines.Values) > 0 {
		cfg.Pipelines = append([]string{}, flags.Pipelines.Values...)
	}
	if len(flags.Stages.Values) > 0 {
		cfg.Stages = append([]string{}, flags.Stages.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.DryRun.Set {
		cfg.DryRun = flags.DryRun.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.Jobs.Set {
		cfg.Jobs = flags.Jobs.Value
	}
	if flags.LogDir.Set {
		cfg.LogDir = flags.LogDir.Value
	}
	if flags.DVCCLI.Set {
		cfg.DVC.CLIPath = flags.DVCCLI.Value
	}
	if flags.Python.Set {
		cfg.DVC.PythonBinPath = flags.Python.Value
	}
	if flags.Addr.Set {
		cfg.Serve.Addr = flags.Addr.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Pipelines SliceFlag
	Stages    SliceFlag
	Format    StringFlag
	DryRun    BoolFlag
	Verbose   BoolFlag
	Jobs      IntFlag
	LogDir    StringFlag
	DVCCLI    StringFlag
	Python    StringFlag
	Addr      StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

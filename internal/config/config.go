// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config resolves run settings from command-line flags, the
// environment, an optional .strip-hints.yaml, and the [tool.strip-hints]
// table of pyproject.toml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/stripper"
)

// Setting keys. They double as flag names.
const (
	KeyToEmpty             = "to-empty"
	KeyStripNL             = "strip-nl"
	KeyNoAST               = "no-ast"
	KeyNoColonMove         = "no-colon-move"
	KeyNoEqualMove         = "no-equal-move"
	KeyOnlyAssignsAndDefs  = "only-assigns-and-defs"
	KeyCommentDeclarations = "comment-declarations"
	KeyNoDirectives        = "no-directives"
	KeyOracle              = "oracle"
	KeyPython              = "python"
	KeyJobs                = "jobs"
	KeyGit                 = "git"
	KeyAllowDirty          = "allow-dirty"
	KeyReport              = "report"
	KeyLogLevel            = "log-level"
	KeyLogFormat           = "log-format"
)

// EnvPrefix prefixes environment variables: STRIP_HINTS_TO_EMPTY etc.
const EnvPrefix = "STRIP_HINTS"

const (
	configName    = ".strip-hints"
	pyprojectName = "pyproject.toml"
	toolTable     = "strip-hints"
)

// ErrInvalidConfig is returned for settings with unusable values.
var ErrInvalidConfig = errors.New("invalid config")

// Settings is the resolved configuration of a run.
type Settings struct {
	ToEmpty             bool   `mapstructure:"to-empty"`
	StripNL             bool   `mapstructure:"strip-nl"`
	NoAST               bool   `mapstructure:"no-ast"`
	NoColonMove         bool   `mapstructure:"no-colon-move"`
	NoEqualMove         bool   `mapstructure:"no-equal-move"`
	OnlyAssignsAndDefs  bool   `mapstructure:"only-assigns-and-defs"`
	CommentDeclarations bool   `mapstructure:"comment-declarations"`
	NoDirectives        bool   `mapstructure:"no-directives"`
	Oracle              string `mapstructure:"oracle"`
	Python              string `mapstructure:"python"`
	Jobs                int    `mapstructure:"jobs"`
	Git                 bool   `mapstructure:"git"`
	AllowDirty          bool   `mapstructure:"allow-dirty"`
	Report              string `mapstructure:"report"`
	LogLevel            string `mapstructure:"log-level"`
	LogFormat           string `mapstructure:"log-format"`
}

// defaults holds the built-in value of every key.
var defaults = map[string]any{
	KeyToEmpty:             false,
	KeyStripNL:             false,
	KeyNoAST:               false,
	KeyNoColonMove:         false,
	KeyNoEqualMove:         false,
	KeyOnlyAssignsAndDefs:  false,
	KeyCommentDeclarations: false,
	KeyNoDirectives:        false,
	KeyOracle:              oracle.KindTreeSitter,
	KeyPython:              "python3",
	KeyJobs:                0,
	KeyGit:                 false,
	KeyAllowDirty:          false,
	KeyReport:              "",
	KeyLogLevel:            "warn",
	KeyLogFormat:           "text",
}

// Setup prepares v: built-in defaults, then pyproject.toml values found
// in dir or a parent as defaults over those, then the environment and an
// optional .strip-hints.yaml in dir. Flags bound to v by the caller take
// precedence over all of these. It returns the pyproject.toml path that
// was applied, or "".
func Setup(v *viper.Viper, dir string) (string, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	pyproject, table, err := FindPyproject(dir)
	if err != nil {
		return "", err
	}
	for k, val := range table {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("reading %s.yaml: %w", configName, err)
		}
	}
	return pyproject, nil
}

// Load resolves v into Settings and validates them.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.validate(); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.Oracle {
	case oracle.KindTreeSitter, oracle.KindPython, oracle.KindNone:
	default:
		return fmt.Errorf("oracle must be %s, %s or %s, got %q",
			oracle.KindTreeSitter, oracle.KindPython, oracle.KindNone, s.Oracle)
	}
	switch s.Report {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("report must be json or yaml, got %q", s.Report)
	}
	if s.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", s.Jobs)
	}
	return nil
}

// StripOptions converts the settings into pipeline options. The oracle is
// left nil; see OracleConfig.
func (s Settings) StripOptions() stripper.Options {
	opts := stripper.DefaultOptions()
	if s.ToEmpty {
		opts.BlankMode = stripper.BlankEmpty
	}
	opts.ValidateOutput = !s.NoAST && s.Oracle != oracle.KindNone
	opts.RelocateColon = !s.NoColonMove
	opts.RelocateAssignment = !s.NoEqualMove
	opts.StripInternalNewlines = s.StripNL
	if s.OnlyAssignsAndDefs {
		opts.Scope = stripper.ScopeAssignmentsAndDeclOnly
	}
	opts.CommentDeclarations = s.CommentDeclarations
	opts.Directives = !s.NoDirectives
	return opts
}

// OracleConfig returns the oracle selection.
func (s Settings) OracleConfig() oracle.Config {
	return oracle.Config{Kind: s.Oracle, Python: s.Python}
}

// FindPyproject looks for pyproject.toml in dir and its parents and
// returns its path and the [tool.strip-hints] table with keys normalized
// to flag spelling. A missing file is not an error.
func FindPyproject(dir string) (string, map[string]any, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving directory: %w", err)
	}
	for {
		path := filepath.Join(abs, pyprojectName)
		if _, err := os.Stat(path); err == nil {
			table, err := readTool(path)
			if err != nil {
				return "", nil, err
			}
			return path, table, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil, nil
		}
		abs = parent
	}
}

func readTool(path string) (map[string]any, error) {
	var doc struct {
		Tool map[string]map[string]any `toml:"tool"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	table := make(map[string]any)
	for k, val := range doc.Tool[toolTable] {
		key := strings.ReplaceAll(strings.ToLower(k), "_", "-")
		if _, known := defaults[key]; !known {
			return nil, fmt.Errorf("%w: %s: unknown key %q in [tool.%s]", ErrInvalidConfig, path, k, toolTable)
		}
		table[key] = val
	}
	return table, nil
}

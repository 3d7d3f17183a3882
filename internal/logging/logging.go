// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logging builds the slog logger used by the command line: text
// or JSON output on stderr at a configurable level.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalid is returned for an unknown level or format name.
var ErrInvalid = errors.New("invalid logging setting")

// Config holds the logging configuration.
type Config struct {
	Level  string    // debug, info, warn, error (default warn)
	Format string    // text (default) or json
	Output io.Writer // Destination (default os.Stderr)
}

func (c *Config) applyDefaults() {
	if c.Level == "" {
		c.Level = "warn"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Output == nil {
		c.Output = os.Stderr
	}
}

// New returns a logger for cfg.
func New(cfg Config) (*slog.Logger, error) {
	cfg.applyDefaults()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case FormatText:
		handler = slog.NewTextHandler(cfg.Output, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrInvalid, cfg.Format)
	}
	return slog.New(handler), nil
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("%w: level %q", ErrInvalid, s)
}

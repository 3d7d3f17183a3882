// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command strip-hints removes type annotations from Python files while
// keeping line and column positions of the remaining code.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-striphints/internal/config"
	"github.com/petar-djukic/go-striphints/internal/logging"
)

const version = "0.1.0"

// Exit codes. With --only-test-for-changes, exitNoChanges reports that
// nothing would be stripped.
const (
	exitOK        = 0
	exitNoChanges = 1
	exitFailure   = 2
)

// errNoChanges ends a --only-test-for-changes run that found nothing.
var errNoChanges = errors.New("no changes")

// errReported marks failures whose details were already printed.
var errReported = errors.New("failures reported")

// app carries state shared by the commands of one invocation.
type app struct {
	v        *viper.Viper
	settings config.Settings
	logger   *slog.Logger
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errNoChanges):
		return exitNoChanges
	case errors.Is(err, errReported):
		return exitFailure
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}

// newRootCmd builds the command tree with a fresh configuration.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "strip-hints [flags] PATH...",
		Short: "Strip type hints from Python code",
		Long: "strip-hints removes type annotations from Python files. Removed text is " +
			"replaced by whitespace so that the remaining code keeps its line and column " +
			"positions.",
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE:              a.runStrip,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Stripping options, shared with watch.
	pf := rootCmd.PersistentFlags()
	pf.Bool(config.KeyToEmpty, false, "Replace removed code with nothing instead of spaces (columns are not kept)")
	pf.Bool(config.KeyStripNL, false, "Also drop line breaks inside annotations (line numbers are not kept)")
	pf.Bool(config.KeyNoAST, false, "Do not check that the output parses")
	pf.Bool(config.KeyNoColonMove, false, "Fail instead of moving a def's colon after a multi-line return annotation")
	pf.Bool(config.KeyNoEqualMove, false, "Fail instead of moving line breaks out of multi-line variable annotations")
	pf.Bool(config.KeyOnlyAssignsAndDefs, false, "Only strip annotated assignments and declarations, keep signatures")
	pf.Bool(config.KeyCommentDeclarations, false,
		"Comment out bare declarations like 'x: int'; blanking leaves 'x', which raises NameError when x is unbound")
	pf.Bool(config.KeyNoDirectives, false, "Ignore '# strip-hints: off' and '# strip-hints: on' comments")
	pf.String(config.KeyOracle, "treesitter", "Output checker: treesitter, python, or none")
	pf.String(config.KeyPython, "python3", "Interpreter used by the python checker")
	pf.IntP(config.KeyJobs, "j", 0, "Files processed in parallel (default number of CPUs)")
	pf.Bool(config.KeyGit, false, "Only process files tracked by git when walking directories")
	pf.Bool(config.KeyAllowDirty, false, "Rewrite files in place even if they have uncommitted changes")
	pf.String(config.KeyLogLevel, "warn", "Log level: debug, info, warn, error")
	pf.String(config.KeyLogFormat, "text", "Log format: text or json")

	// Output destinations, shared with watch.
	pf.Bool("inplace", false, "Replace each input file with its stripped code")
	pf.String("outdir", "", "Write stripped files below this directory")

	for _, key := range []string{
		config.KeyToEmpty, config.KeyStripNL, config.KeyNoAST, config.KeyNoColonMove,
		config.KeyNoEqualMove, config.KeyOnlyAssignsAndDefs, config.KeyCommentDeclarations,
		config.KeyNoDirectives, config.KeyOracle, config.KeyPython, config.KeyJobs,
		config.KeyGit, config.KeyAllowDirty, config.KeyLogLevel, config.KeyLogFormat,
	} {
		a.v.BindPFlag(key, pf.Lookup(key))
	}

	f := rootCmd.Flags()
	f.StringP("outfile", "o", "", "Write the stripped code of a single input to this file")
	f.Bool("only-test-for-changes", false, "Print True and exit 0 if anything would be stripped, else print False and exit 1")
	f.Bool("diff", false, "Print a unified diff instead of the stripped code")
	f.String(config.KeyReport, "", "Print a per-file summary: json or yaml")
	a.v.BindPFlag(config.KeyReport, f.Lookup(config.KeyReport))

	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// setup resolves settings and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	pyproject, err := config.Setup(a.v, ".")
	if err != nil {
		return err
	}
	a.settings, err = config.Load(a.v)
	if err != nil {
		return err
	}
	a.logger, err = logging.New(logging.Config{
		Level:  a.settings.LogLevel,
		Format: a.settings.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if pyproject != "" {
		a.logger.Debug("applied pyproject settings", "path", pyproject)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("applied config file", "path", used)
	}
	return nil
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print strip-hints version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strip-hints %s\n", version)
		},
	}
}

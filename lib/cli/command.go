// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the small command-line framework shared by the
// dirotp tools: a [Command] wrapper around a [pflag.FlagSet] with
// structured help output, alias normalization for flags with multiple
// accepted spellings, declarative argument rules ([CheckRules]), and the
// [ExitError] contract between commands and their main functions.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Command represents a CLI tool invocation.
type Command struct {
	// Name is the tool name as typed by the user.
	Name string

	// Summary is a one-line description shown at the top of help output.
	Summary string

	// Description is a detailed multi-line description shown in help
	// output. When empty, Summary is shown instead.
	Description string

	// Usage is the usage line (e.g., "register-otp-device [flags]").
	// If empty, it is synthesized from Name.
	Usage string

	// Examples are shown in the help output after the flags.
	Examples []Example

	// Flags returns the configured *pflag.FlagSet for this command.
	// Called once per Execute; the same instance is reused for help
	// output. If nil, the command accepts no flags.
	Flags func() *pflag.FlagSet

	// Run executes the command with the positional args remaining after
	// flag parsing.
	Run func(args []string) error
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and invokes Run. Help flags print usage to stderr
// and return nil. Flag parse failures are returned as validation-style
// errors pointing at --help; the pflag package's own error output is
// suppressed so the message is printed exactly once.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(os.Stderr, nil)
		return nil
	}

	var flagSet *pflag.FlagSet
	if c.Flags != nil {
		flagSet = c.Flags()
		flagSet.SetOutput(io.Discard)

		if err := flagSet.Parse(args); err != nil {
			if err == pflag.ErrHelp {
				c.printHelp(os.Stderr, flagSet)
				return nil
			}
			return fmt.Errorf("%s\n\nRun '%s --help' for usage.", err.Error(), c.Name)
		}
		args = flagSet.Args()
	}

	if c.Run == nil {
		c.printHelp(os.Stderr, flagSet)
		return fmt.Errorf("no action defined for %q", c.Name)
	}
	return c.Run(args)
}

// printHelp writes structured help output to w. flagSet may be nil, in
// which case a fresh one is created for the defaults listing.
func (c *Command) printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.Name)
	}

	if flagSet == nil && c.Flags != nil {
		flagSet = c.Flags()
	}
	if flagSet != nil {
		var flagHelp strings.Builder
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// NormalizeAliases returns a pflag normalization function that maps each
// alias spelling to its canonical flag name. Unlisted names pass through
// unchanged. This is how a flag accepts multiple long identifiers
// (e.g., --authID, --authenticationID, --auth-id, --authentication-id)
// without registering duplicate flags.
func NormalizeAliases(aliases map[string]string) func(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			return pflag.NormalizedName(canonical)
		}
		return pflag.NormalizedName(name)
	}
}

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// The register-otp-device command registers or deregisters a
// one-time-password hardware device for a directory account.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dirotp/dirotp/lib/otpdevice"
)

func main() {
	if err := run(); err != nil {
		// The tool prints its own messages and returns an exit error
		// carrying the directory result code. Don't add a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	tool := &otpdevice.Tool{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(),
		})),
	}
	return tool.Command().Execute(os.Args[1:])
}

// logLevel reads DIROTP_LOG_LEVEL; diagnostics default to warnings only
// so normal runs emit nothing but the tool's own messages.
func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("DIROTP_LOG_LEVEL"))); err != nil {
		return slog.LevelWarn
	}
	return level
}

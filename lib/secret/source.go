// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Source identifies where a static password comes from. Exactly one of
// the three constructors applies to an invocation; the zero Source means
// no password was provided (legitimate when deregistering all devices
// for an account). Resolution is the only side-effecting step: the
// callers decide which source applies from already-validated arguments.
type Source struct {
	kind   sourceKind
	value  string // inline password or file path
	authID string // account named in the interactive prompt
}

type sourceKind int

const (
	kindNone sourceKind = iota
	kindInline
	kindFile
	kindPrompt
)

// Inline returns a source whose password is the argument value itself.
func Inline(value string) Source {
	return Source{kind: kindInline, value: value}
}

// File returns a source that reads the first line of the named file.
func File(path string) Source {
	return Source{kind: kindFile, value: path}
}

// Prompt returns a source that interactively prompts for the password of
// the named account, without echoing the typed characters.
func Prompt(authID string) Source {
	return Source{kind: kindPrompt, authID: authID}
}

// IsNone reports whether no password source was selected.
func (s Source) IsNone() bool {
	return s.kind == kindNone
}

// Resolve acquires the password into a protected Buffer. in and out are
// the invocation's interactive input and output; they are only touched
// by the prompt source. All failures are local errors — resolution never
// performs network I/O, and callers report these before any connection
// is attempted. Resolving the zero Source is a programming error.
func (s Source) Resolve(in io.Reader, out io.Writer) (*Buffer, error) {
	switch s.kind {
	case kindInline:
		return NewFromBytes([]byte(s.value))
	case kindFile:
		return readFirstLine(s.value)
	case kindPrompt:
		return promptPassword(s.authID, in, out)
	default:
		return nil, fmt.Errorf("secret: no password source selected")
	}
}

// readFirstLine reads exactly the first line of the file at path. The
// file handle is released on every path out of this function. Later
// lines are intentionally ignored: password files commonly end with
// commentary or a trailing newline.
func readFirstLine(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening password file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading password file %s: %w", path, err)
		}
		return nil, fmt.Errorf("password file %s is empty", path)
	}

	line := strings.TrimSuffix(scanner.Text(), "\r")
	if line == "" {
		return nil, fmt.Errorf("password file %s has an empty first line", path)
	}
	return NewFromBytes([]byte(line))
}

// promptPassword writes a prompt naming the account, then reads the
// password. When in is a real terminal the read is done with echo
// disabled; otherwise (piped input, tests) a single line is read from in.
func promptPassword(authID string, in io.Reader, out io.Writer) (*Buffer, error) {
	fmt.Fprintf(out, "Enter the static password for user %s: ", authID)

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		passwordBytes, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return nil, fmt.Errorf("reading password from terminal: %w", err)
		}
		if len(passwordBytes) == 0 {
			return nil, fmt.Errorf("no password provided")
		}
		return NewFromBytes(passwordBytes)
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return nil, fmt.Errorf("no password provided")
	}
	line := strings.TrimSuffix(scanner.Text(), "\r")
	if line == "" {
		return nil, fmt.Errorf("no password provided")
	}
	return NewFromBytes([]byte(line))
}

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Present reports whether the named flag was provided on the command
// line (not merely left at its default value).
type Present func(name string) bool

// Rule is a declarative constraint over the parsed argument state. Rules
// are pure: they only query flag presence and never touch flag values or
// perform I/O. They run after flag parsing and before any side effect,
// so a violated rule is always reported without contacting the network.
type Rule interface {
	check(has Present) error
}

// AtMostOne declares an exclusivity group: at most one of the named
// flags may be provided. A violation names the whole group.
func AtMostOne(flags ...string) Rule {
	return exclusiveRule(flags)
}

type exclusiveRule []string

func (r exclusiveRule) check(has Present) error {
	var provided []string
	for _, name := range r {
		if has(name) {
			provided = append(provided, "--"+name)
		}
	}
	if len(provided) > 1 {
		return fmt.Errorf("at most one of %s may be provided (got %s)",
			flagList(r), strings.Join(provided, ", "))
	}
	return nil
}

// Requires declares a dependency pair: if the dependent flag is
// provided, the prerequisite flag must be provided too.
func Requires(dependent, prerequisite string) Rule {
	return dependencyRule{dependent: dependent, prerequisite: prerequisite}
}

type dependencyRule struct {
	dependent    string
	prerequisite string
}

func (r dependencyRule) check(has Present) error {
	if has(r.dependent) && !has(r.prerequisite) {
		return fmt.Errorf("--%s requires --%s", r.dependent, r.prerequisite)
	}
	return nil
}

// RuleFunc adapts a function to the Rule interface, for tool-specific
// constraints that exclusivity and dependency cannot express.
type RuleFunc func(has Present) error

func (f RuleFunc) check(has Present) error {
	return f(has)
}

// CheckRules evaluates rules against the parsed flagSet in declaration
// order and returns the first violation. Presentation shows only one
// failure per invocation, so later rules are not evaluated once one
// fails.
func CheckRules(flagSet *pflag.FlagSet, rules ...Rule) error {
	has := func(name string) bool {
		flag := flagSet.Lookup(name)
		return flag != nil && flag.Changed
	}
	for _, rule := range rules {
		if err := rule.check(has); err != nil {
			return err
		}
	}
	return nil
}

func flagList(names []string) string {
	prefixed := make([]string, len(names))
	for i, name := range names {
		prefixed[i] = "--" + name
	}
	return strings.Join(prefixed, ", ")
}

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// Package flexname provides registries of named, integer-coded constants
// with flexible name resolution.
//
// Directory-protocol enumerations (result codes, security modes, change
// types) are closed sets of constants, each pairing a canonical symbolic
// name with an integer code. Operators type these names in configuration
// files and on the command line with inconsistent casing and separator
// conventions: "start-tls", "START_TLS", and "starttls" all mean the same
// constant. A [Registry] precomputes, at registration time, the full
// acceptance set of spellings for each constant — the cross product of
// {as-is, upper, lower} casing with {as-is, dashes, underscores, stripped}
// separator treatment — so lookups are a single map probe with no
// per-query normalization.
package flexname

import (
	"fmt"
	"strings"
)

// Registry is a closed set of constants of type T, each registered under
// a canonical name and a unique integer code. Registries are built once
// at package initialization and are read-only afterwards; the lookup
// methods are safe for concurrent use once registration is complete.
type Registry[T any] struct {
	// kind names the enumeration in error messages ("result code",
	// "security mode").
	kind string

	names    []string
	byName   map[string]T
	byCode   map[int]T
	accepted map[string]acceptedEntry[T]
}

// acceptedEntry records which canonical constant a normalized spelling
// belongs to, so collisions between distinct constants are caught at
// registration time.
type acceptedEntry[T any] struct {
	canonical string
	value     T
}

// NewRegistry creates an empty registry. kind is the human-readable name
// of the enumeration, used in strict-lookup error messages.
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		byName:   make(map[string]T),
		byCode:   make(map[int]T),
		accepted: make(map[string]acceptedEntry[T]),
	}
}

// Register adds a constant under its canonical name and code, and extends
// the acceptance set with every spelling variant of the name. Panics on a
// duplicate name, a duplicate code, or a variant spelling that collides
// with a different constant — all programming errors in the constant
// table, not runtime conditions.
func (r *Registry[T]) Register(name string, code int, value T) {
	if name == "" {
		panic(fmt.Sprintf("flexname: empty %s name", r.kind))
	}
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("flexname: duplicate %s name %q", r.kind, name))
	}
	if _, exists := r.byCode[code]; exists {
		panic(fmt.Sprintf("flexname: duplicate %s code %d (name %q)", r.kind, code, name))
	}

	r.names = append(r.names, name)
	r.byName[name] = value
	r.byCode[code] = value

	for _, variant := range Variants(name) {
		if existing, exists := r.accepted[variant]; exists && existing.canonical != name {
			panic(fmt.Sprintf("flexname: %s spelling %q is ambiguous between %q and %q",
				r.kind, variant, existing.canonical, name))
		}
		r.accepted[variant] = acceptedEntry[T]{canonical: name, value: value}
	}
}

// ByName looks up a constant by its exact canonical name. The second
// return value reports whether the name is declared; absence is not an
// error — callers for whom an undeclared name is fatal should use
// [Registry.ParseName].
func (r *Registry[T]) ByName(name string) (T, bool) {
	value, ok := r.byName[name]
	return value, ok
}

// ByCode looks up a constant by its exact integer code. Absence is
// reported, not an error.
func (r *Registry[T]) ByCode(code int) (T, bool) {
	value, ok := r.byCode[code]
	return value, ok
}

// ByFlexibleName looks up a constant by any spelling in its acceptance
// set. Matching is exact string equality against the precomputed set:
// the input is not case-folded or otherwise normalized at lookup time.
// An input outside every constant's acceptance set yields (zero, false).
func (r *Registry[T]) ByFlexibleName(name string) (T, bool) {
	entry, ok := r.accepted[name]
	return entry.value, ok
}

// ParseName is the strict form of [Registry.ByName]: an undeclared name
// is an unrecognized-token error rather than a legitimate branch.
func (r *Registry[T]) ParseName(name string) (T, error) {
	value, ok := r.byName[name]
	if !ok {
		return value, fmt.Errorf("unrecognized %s name %q", r.kind, name)
	}
	return value, nil
}

// ParseCode is the strict form of [Registry.ByCode].
func (r *Registry[T]) ParseCode(code int) (T, error) {
	value, ok := r.byCode[code]
	if !ok {
		return value, fmt.Errorf("unrecognized %s %d", r.kind, code)
	}
	return value, nil
}

// Names returns the canonical names in registration order.
func (r *Registry[T]) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Variants generates the acceptance set for a canonical name: every
// combination of casing (as-is, upper, lower) and separator treatment
// (as-is, underscores replaced with dashes, dashes replaced with
// underscores, both separators stripped). Duplicates are collapsed; the
// canonical name is always first.
func Variants(name string) []string {
	separatorForms := []string{
		name,
		strings.ReplaceAll(name, "_", "-"),
		strings.ReplaceAll(name, "-", "_"),
		strings.NewReplacer("_", "", "-", "").Replace(name),
	}

	seen := make(map[string]bool, len(separatorForms)*3)
	variants := make([]string, 0, len(separatorForms)*3)
	for _, form := range separatorForms {
		for _, cased := range []string{form, strings.ToUpper(form), strings.ToLower(form)} {
			if !seen[cased] {
				seen[cased] = true
				variants = append(variants, cased)
			}
		}
	}
	return variants
}

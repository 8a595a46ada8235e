// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// Package otpdevice implements the register-otp-device tool: it
// registers a one-time-password hardware token against a directory
// account, or deregisters one (or all) of an account's tokens.
//
// One invocation is one pass through a fixed pipeline: validate the
// argument constraints, acquire the static password from its single
// selected source, open a directory session, submit exactly one
// extended request, and map the structured result to a user-facing
// message and process exit status. The exit status equals the
// directory result code, so calling scripts can branch on it.
package otpdevice

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// Package directory models the directory server's admin channel: the
// result-code taxonomy, the opaque extended-operation request/response
// contract ([Conn], [Connector]), the OTP-device register/deregister
// request builders, and the YAML connection profile.
//
// The tools in this repository treat the channel as a single round trip:
// connect, submit one extended request, interpret the result, close.
// [NetConnector] is the shipped implementation, speaking CBOR envelopes
// over TCP (optionally TLS or StartTLS) with a bind on connect. Tests
// and embedders may substitute any [Connector].
package directory

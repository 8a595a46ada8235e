// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"context"
	"errors"
	"fmt"
)

// ExtendedRequest is a single non-standard operation submitted over the
// admin channel: a protocol-assigned request name (an OID) and an opaque
// encoded value. Requests are immutable once built.
type ExtendedRequest struct {
	// Name identifies the operation (e.g. the register-OTP-device OID).
	Name string

	// Value is the encoded request payload. Its format is private to
	// the operation named by Name.
	Value []byte
}

// Result is the tagged outcome of one extended operation: a result code
// and, for failures, a descriptive diagnostic from the server (or from
// the client when the failure was synthesized locally).
type Result struct {
	Code              ResultCode
	DiagnosticMessage string
}

func (r *Result) String() string {
	if r.DiagnosticMessage == "" {
		return r.Code.String()
	}
	return fmt.Sprintf("%s: %s", r.Code, r.DiagnosticMessage)
}

// Conn is an established admin-channel session. A Conn is owned by a
// single invocation and is not safe for concurrent use.
type Conn interface {
	// Extended submits one request and returns its result. A returned
	// error means the round trip itself failed (the server's answer,
	// if any, was not received); callers convert it to a failure
	// Result via [ResultFromError] rather than letting it propagate.
	Extended(ctx context.Context, request *ExtendedRequest) (*Result, error)

	// Close releases the session. Safe to call after a failed Extended.
	Close() error
}

// Connector establishes admin-channel sessions. Implementations carry
// the endpoint and bind credentials; Connect performs exactly one
// connection attempt.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Conn, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Conn, error) {
	return f(ctx)
}

// Error is a coded failure from the admin channel. Connection and
// transport failures carry the result code that the invocation should
// exit with.
type Error struct {
	Code    ResultCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ResultFromError converts a transport error into a synthetic failure
// Result, so downstream rendering and exit-code mapping consume one
// uniform shape for protocol-level and transport-level failures alike.
// Coded errors keep their code; anything else maps to [Other].
func ResultFromError(err error) *Result {
	var directoryError *Error
	if errors.As(err, &directoryError) {
		return &Result{
			Code:              directoryError.Code,
			DiagnosticMessage: directoryError.Message,
		}
	}
	return &Result{
		Code:              Other,
		DiagnosticMessage: err.Error(),
	}
}

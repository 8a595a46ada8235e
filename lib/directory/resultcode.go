// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"

	"github.com/dirotp/dirotp/lib/flexname"
)

// ResultCode is a coded outcome in the directory protocol's result
// taxonomy. The integer values are wire values and process exit
// statuses; they follow the protocol's historical numbering rather than
// a dense ordinal sequence.
type ResultCode int

// The declared result codes. Codes at or above 80 are client-side:
// they are produced locally (I/O failures, argument errors, connection
// failures) rather than returned by the server.
const (
	Success                  ResultCode = 0
	OperationsError          ResultCode = 1
	ProtocolError            ResultCode = 2
	TimeLimitExceeded        ResultCode = 3
	SizeLimitExceeded        ResultCode = 4
	AuthMethodNotSupported   ResultCode = 7
	NoSuchObject             ResultCode = 32
	InvalidCredentials       ResultCode = 49
	InsufficientAccessRights ResultCode = 50
	Busy                     ResultCode = 51
	Unavailable              ResultCode = 52
	UnwillingToPerform       ResultCode = 53
	Other                    ResultCode = 80
	ServerDown               ResultCode = 81
	LocalError               ResultCode = 82
	EncodingError            ResultCode = 83
	DecodingError            ResultCode = 84
	Timeout                  ResultCode = 85
	ParamError               ResultCode = 89
	ConnectError             ResultCode = 91
)

var resultCodes = flexname.NewRegistry[ResultCode]("result code")

var resultCodeNames = make(map[ResultCode]string)

func init() {
	for _, entry := range []struct {
		name string
		code ResultCode
	}{
		{"success", Success},
		{"operations-error", OperationsError},
		{"protocol-error", ProtocolError},
		{"time-limit-exceeded", TimeLimitExceeded},
		{"size-limit-exceeded", SizeLimitExceeded},
		{"auth-method-not-supported", AuthMethodNotSupported},
		{"no-such-object", NoSuchObject},
		{"invalid-credentials", InvalidCredentials},
		{"insufficient-access-rights", InsufficientAccessRights},
		{"busy", Busy},
		{"unavailable", Unavailable},
		{"unwilling-to-perform", UnwillingToPerform},
		{"other", Other},
		{"server-down", ServerDown},
		{"local-error", LocalError},
		{"encoding-error", EncodingError},
		{"decoding-error", DecodingError},
		{"timeout", Timeout},
		{"param-error", ParamError},
		{"connect-error", ConnectError},
	} {
		resultCodes.Register(entry.name, int(entry.code), entry.code)
		resultCodeNames[entry.code] = entry.name
	}
}

// ResultCodeByCode looks up a declared result code by its integer value.
// Undeclared values are reported as absent, not as errors — transit of
// unknown codes from newer servers is legitimate.
func ResultCodeByCode(code int) (ResultCode, bool) {
	return resultCodes.ByCode(code)
}

// ResultCodeByName looks up a result code by its exact canonical name.
func ResultCodeByName(name string) (ResultCode, bool) {
	return resultCodes.ByName(name)
}

// ResultCodeForName looks up a result code by any accepted spelling of
// its name: "local-error", "LOCAL_ERROR", "localerror", and the other
// variants defined by the flexname acceptance set.
func ResultCodeForName(name string) (ResultCode, bool) {
	return resultCodes.ByFlexibleName(name)
}

// ParseResultCode is the strict form of [ResultCodeByName]: an
// undeclared name is an unrecognized-token error.
func ParseResultCode(name string) (ResultCode, error) {
	return resultCodes.ParseName(name)
}

// ParseResultCodeValue is the strict form of [ResultCodeByCode].
func ParseResultCodeValue(code int) (ResultCode, error) {
	return resultCodes.ParseCode(code)
}

// Name returns the canonical name for a declared code and "" otherwise.
func (rc ResultCode) Name() string {
	return resultCodeNames[rc]
}

// Int returns the integer value, which doubles as the process exit
// status for failed invocations.
func (rc ResultCode) Int() int {
	return int(rc)
}

func (rc ResultCode) String() string {
	if name := rc.Name(); name != "" {
		return fmt.Sprintf("%s (%d)", name, int(rc))
	}
	return fmt.Sprintf("result code %d", int(rc))
}

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"

	"github.com/dirotp/dirotp/lib/codec"
)

// Extended-operation names (OIDs) for OTP device management.
const (
	// RegisterOTPDeviceRequestName registers a new OTP device for an
	// account, validated by a one-time password from the device.
	RegisterOTPDeviceRequestName = "1.3.6.1.4.1.61595.2.1"

	// DeregisterOTPDeviceRequestName removes one registered device
	// (when a one-time password is supplied) or all of an account's
	// devices (when it is not).
	DeregisterOTPDeviceRequestName = "1.3.6.1.4.1.61595.2.2"
)

// DevicePayload is the CBOR value carried by both OTP-device requests.
//
// AuthenticationID names the target account, either as "dn:<dn>" or
// "u:<username>"; when empty, the operation applies to the account that
// performed the bind. StaticPassword authorizes the change with the
// account's standing credential; the server may waive it for
// sufficiently privileged bound identities. OTP is the device-generated
// one-time password: required to register, optional to deregister.
type DevicePayload struct {
	AuthenticationID string `cbor:"authentication_id,omitempty"`
	StaticPassword   []byte `cbor:"static_password,omitempty"`
	OTP              string `cbor:"otp,omitempty"`
}

// NewRegisterOTPDeviceRequest builds the extended request that registers
// an OTP device. otp must be non-empty: registration proves possession
// of the device with a freshly generated one-time password.
func NewRegisterOTPDeviceRequest(authID string, staticPassword []byte, otp string) (*ExtendedRequest, error) {
	if otp == "" {
		return nil, fmt.Errorf("a one-time password is required to register a device")
	}
	return newDeviceRequest(RegisterOTPDeviceRequestName, authID, staticPassword, otp)
}

// NewDeregisterOTPDeviceRequest builds the extended request that
// deregisters OTP devices. With a non-empty otp, only the device that
// generated it is removed; with an empty otp, all of the account's
// devices are removed.
func NewDeregisterOTPDeviceRequest(authID string, staticPassword []byte, otp string) (*ExtendedRequest, error) {
	return newDeviceRequest(DeregisterOTPDeviceRequestName, authID, staticPassword, otp)
}

func newDeviceRequest(name, authID string, staticPassword []byte, otp string) (*ExtendedRequest, error) {
	value, err := codec.Marshal(DevicePayload{
		AuthenticationID: authID,
		StaticPassword:   staticPassword,
		OTP:              otp,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request value: %w", err)
	}
	return &ExtendedRequest{Name: name, Value: value}, nil
}

// ParseDevicePayload decodes the value of an OTP-device request. Used by
// servers and tests; the client side only builds payloads.
func ParseDevicePayload(value []byte) (*DevicePayload, error) {
	var payload DevicePayload
	if err := codec.Unmarshal(value, &payload); err != nil {
		return nil, fmt.Errorf("decoding request value: %w", err)
	}
	return &payload, nil
}

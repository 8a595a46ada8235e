// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"bytes"
	"testing"
)

func TestNewRegisterOTPDeviceRequest(t *testing.T) {
	request, err := NewRegisterOTPDeviceRequest("u:test.user", []byte("p@ss"), "cccccccccccc")
	if err != nil {
		t.Fatalf("NewRegisterOTPDeviceRequest failed: %v", err)
	}
	if request.Name != RegisterOTPDeviceRequestName {
		t.Errorf("request name = %q, want %q", request.Name, RegisterOTPDeviceRequestName)
	}

	payload, err := ParseDevicePayload(request.Value)
	if err != nil {
		t.Fatalf("ParseDevicePayload failed: %v", err)
	}
	if payload.AuthenticationID != "u:test.user" {
		t.Errorf("authentication ID = %q", payload.AuthenticationID)
	}
	if !bytes.Equal(payload.StaticPassword, []byte("p@ss")) {
		t.Errorf("static password = %q", payload.StaticPassword)
	}
	if payload.OTP != "cccccccccccc" {
		t.Errorf("otp = %q", payload.OTP)
	}
}

func TestNewRegisterOTPDeviceRequest_RequiresOTP(t *testing.T) {
	if _, err := NewRegisterOTPDeviceRequest("u:test.user", []byte("p@ss"), ""); err == nil {
		t.Error("expected error for register without an OTP")
	}
}

func TestNewDeregisterOTPDeviceRequest_AllDevices(t *testing.T) {
	// No OTP and no static password: deregister everything for the
	// account, authorized by the bound identity alone.
	request, err := NewDeregisterOTPDeviceRequest("dn:uid=test.user,ou=People,dc=example,dc=com", nil, "")
	if err != nil {
		t.Fatalf("NewDeregisterOTPDeviceRequest failed: %v", err)
	}
	if request.Name != DeregisterOTPDeviceRequestName {
		t.Errorf("request name = %q, want %q", request.Name, DeregisterOTPDeviceRequestName)
	}

	payload, err := ParseDevicePayload(request.Value)
	if err != nil {
		t.Fatalf("ParseDevicePayload failed: %v", err)
	}
	if payload.OTP != "" {
		t.Errorf("otp = %q, want empty (deregister all)", payload.OTP)
	}
	if payload.StaticPassword != nil {
		t.Errorf("static password = %q, want absent", payload.StaticPassword)
	}
}

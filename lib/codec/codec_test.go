// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshal_Deterministic(t *testing.T) {
	// Map iteration order varies between marshals; deterministic
	// encoding must still produce identical bytes.
	payload := map[string]any{
		"authentication_id": "u:test.user",
		"otp":               "cccccccccccc",
		"static_password":   []byte("pw"),
	}

	first, err := Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("deterministic encoding produced differing bytes")
		}
	}
}

func TestStreamRoundTrip(t *testing.T) {
	type envelope struct {
		Kind  string `cbor:"kind"`
		Value []byte `cbor:"value,omitempty"`
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)

	sent := []envelope{
		{Kind: "bind"},
		{Kind: "extended", Value: []byte{0x01, 0x02}},
	}
	for _, e := range sent {
		if err := encoder.Encode(e); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range sent {
		var got envelope
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if got.Kind != want.Kind || !bytes.Equal(got.Value, want.Value) {
			t.Errorf("envelope %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestUnmarshal_IgnoresUnknownFields(t *testing.T) {
	encoded, err := Marshal(map[string]any{"kind": "bind", "future_field": 7})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Kind string `cbor:"kind"`
	}
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Kind != "bind" {
		t.Errorf("Kind = %q, want %q", decoded.Kind, "bind")
	}
}

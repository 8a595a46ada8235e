// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline_Resolve(t *testing.T) {
	buffer, err := Inline("hunter2").Resolve(strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "hunter2" {
		t.Errorf("resolved secret = %q, want %q", got, "hunter2")
	}
}

func TestFile_FirstLineOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("p@ss\nsecond line is ignored\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	buffer, err := File(path).Resolve(strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "p@ss" {
		t.Errorf("resolved secret = %q, want %q", got, "p@ss")
	}
}

func TestFile_SingleLineNoNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("p@ss"), 0o600); err != nil {
		t.Fatal(err)
	}

	buffer, err := File(path).Resolve(strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "p@ss" {
		t.Errorf("resolved secret = %q, want %q", got, "p@ss")
	}
}

func TestFile_CRLFStripped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("p@ss\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	buffer, err := File(path).Resolve(strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "p@ss" {
		t.Errorf("resolved secret = %q, want %q", got, "p@ss")
	}
}

func TestFile_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := File(missing).Resolve(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing password file")
	}
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := File(path).Resolve(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty password file")
	}
}

func TestPrompt_NamesAccountAndReadsLine(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("hunter2\n")

	buffer, err := Prompt("u:test.user").Resolve(in, &out)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "hunter2" {
		t.Errorf("resolved secret = %q, want %q", got, "hunter2")
	}
	if !strings.Contains(out.String(), "u:test.user") {
		t.Errorf("prompt %q does not name the account", out.String())
	}
	if strings.Contains(out.String(), "hunter2") {
		t.Errorf("prompt output %q echoes the password", out.String())
	}
}

func TestPrompt_EmptyInput(t *testing.T) {
	if _, err := Prompt("u:test.user").Resolve(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error when no password is provided")
	}
}

func TestNoneSource(t *testing.T) {
	var none Source
	if !none.IsNone() {
		t.Error("zero Source should report IsNone")
	}
	if Inline("x").IsNone() {
		t.Error("Inline source should not report IsNone")
	}
	if _, err := none.Resolve(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("resolving the zero Source should fail")
	}
}

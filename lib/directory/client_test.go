// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/dirotp/dirotp/lib/codec"
)

// fakeAdminServer accepts one connection and answers envelopes with
// canned replies. It records what it received for assertions.
type fakeAdminServer struct {
	listener net.Listener

	bindReply     reply
	extendedReply reply

	received struct {
		bind     *envelope
		extended *envelope
	}

	done chan struct{}
}

func startFakeAdminServer(t *testing.T, bindReply, extendedReply reply) *fakeAdminServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := &fakeAdminServer{
		listener:      listener,
		bindReply:     bindReply,
		extendedReply: extendedReply,
		done:          make(chan struct{}),
	}
	t.Cleanup(func() { listener.Close() })

	go server.serveOne()
	return server
}

func (s *fakeAdminServer) serveOne() {
	defer close(s.done)

	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	decoder := codec.NewDecoder(conn)
	encoder := codec.NewEncoder(conn)

	for {
		var request envelope
		if err := decoder.Decode(&request); err != nil {
			return
		}

		switch request.Kind {
		case "bind":
			s.received.bind = &request
			if err := encoder.Encode(s.bindReply); err != nil {
				return
			}
			if s.bindReply.Code != 0 {
				return
			}
		case "extended":
			s.received.extended = &request
			encoder.Encode(s.extendedReply)
			return
		default:
			encoder.Encode(reply{Code: int(ProtocolError), Diagnostic: "unexpected envelope"})
			return
		}
	}
}

func (s *fakeAdminServer) profile(t *testing.T) *Profile {
	t.Helper()

	passwordPath := filepath.Join(t.TempDir(), "bind-password")
	if err := os.WriteFile(passwordPath, []byte("bind-pw\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	address := s.listener.Addr().(*net.TCPAddr)
	return &Profile{
		Host:             "127.0.0.1",
		Port:             address.Port,
		BindDN:           "cn=Directory Manager",
		BindPasswordFile: passwordPath,
	}
}

func TestNetConnector_RoundTrip(t *testing.T) {
	server := startFakeAdminServer(t,
		reply{Code: 0},
		reply{Code: 0},
	)

	connector := NewNetConnector(server.profile(t))
	conn, err := connector.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	request, err := NewRegisterOTPDeviceRequest("u:test.user", []byte("p@ss"), "cccccccccccc")
	if err != nil {
		t.Fatal(err)
	}
	result, err := conn.Extended(context.Background(), request)
	if err != nil {
		t.Fatalf("Extended failed: %v", err)
	}
	if result.Code != Success {
		t.Errorf("result = %v, want success", result)
	}

	<-server.done
	if server.received.bind == nil {
		t.Fatal("server never saw a bind")
	}
	if server.received.bind.BindDN != "cn=Directory Manager" {
		t.Errorf("bind DN = %q", server.received.bind.BindDN)
	}
	if !bytes.Equal(server.received.bind.BindPassword, []byte("bind-pw")) {
		t.Errorf("bind password = %q", server.received.bind.BindPassword)
	}
	if server.received.extended == nil {
		t.Fatal("server never saw the extended request")
	}
	if server.received.extended.Name != RegisterOTPDeviceRequestName {
		t.Errorf("extended request name = %q", server.received.extended.Name)
	}
}

func TestNetConnector_FailureResultPassesThrough(t *testing.T) {
	server := startFakeAdminServer(t,
		reply{Code: 0},
		reply{Code: int(UnwillingToPerform), Diagnostic: "device limit reached"},
	)

	connector := NewNetConnector(server.profile(t))
	conn, err := connector.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	request, _ := NewDeregisterOTPDeviceRequest("u:test.user", nil, "")
	result, err := conn.Extended(context.Background(), request)
	if err != nil {
		t.Fatalf("Extended failed: %v", err)
	}
	if result.Code != UnwillingToPerform {
		t.Errorf("result code = %v, want unwilling-to-perform", result.Code)
	}
	if result.DiagnosticMessage != "device limit reached" {
		t.Errorf("diagnostic = %q", result.DiagnosticMessage)
	}
}

func TestNetConnector_BindRejected(t *testing.T) {
	server := startFakeAdminServer(t,
		reply{Code: int(InvalidCredentials), Diagnostic: "wrong password"},
		reply{},
	)

	connector := NewNetConnector(server.profile(t))
	_, err := connector.Connect(context.Background())
	if err == nil {
		t.Fatal("expected bind rejection")
	}

	var directoryError *Error
	if !errors.As(err, &directoryError) {
		t.Fatalf("error %T is not a coded directory error", err)
	}
	if directoryError.Code != InvalidCredentials {
		t.Errorf("code = %v, want invalid-credentials", directoryError.Code)
	}
}

func TestNetConnector_ConnectRefused(t *testing.T) {
	// Grab a port and close the listener so the dial is refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	connector := NewNetConnector(&Profile{Host: "127.0.0.1", Port: port})
	_, err = connector.Connect(context.Background())
	if err == nil {
		t.Fatal("expected connection failure")
	}

	var directoryError *Error
	if !errors.As(err, &directoryError) {
		t.Fatalf("error %T is not a coded directory error", err)
	}
	if directoryError.Code != ConnectError {
		t.Errorf("code = %v, want connect-error", directoryError.Code)
	}
}

func TestNetConnector_MissingBindPasswordFile(t *testing.T) {
	server := startFakeAdminServer(t, reply{Code: 0}, reply{Code: 0})

	profile := server.profile(t)
	profile.BindPasswordFile = filepath.Join(t.TempDir(), "absent")

	_, err := NewNetConnector(profile).Connect(context.Background())
	if err == nil {
		t.Fatal("expected local error for missing bind password file")
	}

	var directoryError *Error
	if !errors.As(err, &directoryError) {
		t.Fatalf("error %T is not a coded directory error", err)
	}
	if directoryError.Code != LocalError {
		t.Errorf("code = %v, want local-error", directoryError.Code)
	}
}

// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/dirotp/dirotp/lib/codec"
	"github.com/dirotp/dirotp/lib/secret"
)

// dialTimeout bounds the connect phase only. The extended round trip
// itself is bounded by the caller's context deadline, if any; the core
// deliberately layers no timeout of its own on the single request.
const dialTimeout = 10 * time.Second

// envelope is one client-to-server frame on the admin channel. Frames
// are CBOR items written back to back on the connection; Kind selects
// which other fields are meaningful.
type envelope struct {
	// Kind is "starttls", "bind", or "extended".
	Kind string `cbor:"kind"`

	// Bind fields.
	BindDN       string `cbor:"bind_dn,omitempty"`
	BindPassword []byte `cbor:"bind_password,omitempty"`

	// Extended-operation fields.
	Name  string `cbor:"name,omitempty"`
	Value []byte `cbor:"value,omitempty"`
}

// reply is one server-to-client frame: a result code and an optional
// diagnostic. Every envelope is answered by exactly one reply.
type reply struct {
	Code       int    `cbor:"code"`
	Diagnostic string `cbor:"diagnostic,omitempty"`
}

// NetConnector establishes admin-channel sessions over the network
// according to a connection profile. Each Connect performs exactly one
// attempt: dial, optional TLS upgrade, bind. There is no retry and no
// pooling; a session serves one invocation.
type NetConnector struct {
	profile *Profile
}

// NewNetConnector creates a connector for the profile's endpoint.
func NewNetConnector(profile *Profile) *NetConnector {
	return &NetConnector{profile: profile}
}

// Connect dials the server, upgrades to TLS when the profile asks for
// it, and binds. All failures are returned as coded [*Error]s: dial and
// handshake failures as [ConnectError], bind rejections with the
// server's own code.
func (c *NetConnector) Connect(ctx context.Context) (Conn, error) {
	tlsConfig, err := c.tlsConfig()
	if err != nil {
		return nil, &Error{Code: ConnectError, Message: err.Error()}
	}

	address := c.profile.Address()
	dialer := &net.Dialer{Timeout: dialTimeout}

	var rawConn net.Conn
	if c.profile.Security == SecurityTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: tlsConfig}
		rawConn, err = tlsDialer.DialContext(ctx, "tcp", address)
	} else {
		rawConn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, &Error{
			Code:    ConnectError,
			Message: fmt.Sprintf("connecting to %s: %v", address, err),
		}
	}

	session := newNetConn(rawConn)

	if c.profile.Security == SecurityStartTLS {
		if err := session.upgradeTLS(ctx, tlsConfig); err != nil {
			rawConn.Close()
			return nil, err
		}
	}

	if err := session.bind(c.profile); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

// tlsConfig builds the TLS client configuration from the profile.
// Returns nil for SecurityNone.
func (c *NetConnector) tlsConfig() (*tls.Config, error) {
	if c.profile.Security == SecurityNone {
		return nil, nil
	}

	config := &tls.Config{ServerName: c.profile.Host}
	if c.profile.CACertificateFile != "" {
		pem, err := os.ReadFile(c.profile.CACertificateFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.profile.CACertificateFile)
		}
		config.RootCAs = pool
	}
	return config, nil
}

// netConn is an established admin-channel session.
type netConn struct {
	conn    net.Conn
	encoder *cbor.Encoder
	decoder *cbor.Decoder
}

func newNetConn(conn net.Conn) *netConn {
	return &netConn{
		conn:    conn,
		encoder: codec.NewEncoder(conn),
		decoder: codec.NewDecoder(conn),
	}
}

// upgradeTLS performs the StartTLS exchange: ask the server to upgrade,
// then run the TLS handshake over the same connection.
func (s *netConn) upgradeTLS(ctx context.Context, config *tls.Config) error {
	answer, err := s.roundTrip(&envelope{Kind: "starttls"})
	if err != nil {
		return &Error{Code: ConnectError, Message: fmt.Sprintf("starttls: %v", err)}
	}
	if answer.Code != int(Success) {
		return &Error{
			Code:    ResultCode(answer.Code),
			Message: fmt.Sprintf("server refused starttls: %s", answer.Diagnostic),
		}
	}

	tlsConn := tls.Client(s.conn, config)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return &Error{Code: ConnectError, Message: fmt.Sprintf("tls handshake: %v", err)}
	}

	s.conn = tlsConn
	s.encoder = codec.NewEncoder(tlsConn)
	s.decoder = codec.NewDecoder(tlsConn)
	return nil
}

// bind authenticates the session using the profile's bind DN and
// password file. An empty bind DN binds anonymously.
func (s *netConn) bind(profile *Profile) error {
	request := &envelope{Kind: "bind", BindDN: profile.BindDN}

	if profile.BindPasswordFile != "" {
		passwordBuffer, err := secret.File(profile.BindPasswordFile).Resolve(nil, nil)
		if err != nil {
			return &Error{Code: LocalError, Message: fmt.Sprintf("bind password: %v", err)}
		}
		defer passwordBuffer.Close()
		request.BindPassword = passwordBuffer.Bytes()
	}

	answer, err := s.roundTrip(request)
	if err != nil {
		return &Error{Code: ConnectError, Message: fmt.Sprintf("bind: %v", err)}
	}
	if answer.Code != int(Success) {
		return &Error{
			Code:    ResultCode(answer.Code),
			Message: fmt.Sprintf("bind as %q failed: %s", profile.BindDN, answer.Diagnostic),
		}
	}
	return nil
}

// Extended submits one extended operation. Round-trip failures are
// returned as [ServerDown]-coded errors; a received reply, whatever its
// code, is a Result.
func (s *netConn) Extended(ctx context.Context, request *ExtendedRequest) (*Result, error) {
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(deadline)
		defer s.conn.SetDeadline(time.Time{})
	}

	answer, err := s.roundTrip(&envelope{
		Kind:  "extended",
		Name:  request.Name,
		Value: request.Value,
	})
	if err != nil {
		return nil, &Error{
			Code:    ServerDown,
			Message: fmt.Sprintf("extended operation %s: %v", request.Name, err),
		}
	}

	return &Result{
		Code:              ResultCode(answer.Code),
		DiagnosticMessage: answer.Diagnostic,
	}, nil
}

// Close releases the connection.
func (s *netConn) Close() error {
	return s.conn.Close()
}

// roundTrip writes one envelope and reads one reply.
func (s *netConn) roundTrip(request *envelope) (*reply, error) {
	if err := s.encoder.Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	var answer reply
	if err := s.decoder.Decode(&answer); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &answer, nil
}

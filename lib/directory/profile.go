// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dirotp/dirotp/lib/flexname"
)

// SecurityMode selects the transport security for the admin channel.
type SecurityMode int

const (
	// SecurityNone uses plain TCP. Suitable only for loopback and test
	// deployments.
	SecurityNone SecurityMode = 0

	// SecurityStartTLS connects over plain TCP and upgrades to TLS
	// before binding.
	SecurityStartTLS SecurityMode = 1

	// SecurityTLS connects over TLS from the first byte.
	SecurityTLS SecurityMode = 2
)

var securityModes = flexname.NewRegistry[SecurityMode]("security mode")

func init() {
	securityModes.Register("none", 0, SecurityNone)
	securityModes.Register("start-tls", 1, SecurityStartTLS)
	securityModes.Register("tls", 2, SecurityTLS)
}

// SecurityModeForName resolves a security mode from any accepted
// spelling ("start-tls", "START_TLS", "starttls", ...).
func SecurityModeForName(name string) (SecurityMode, bool) {
	return securityModes.ByFlexibleName(name)
}

// SecurityModeByCode looks up a security mode by its integer code.
func SecurityModeByCode(code int) (SecurityMode, bool) {
	return securityModes.ByCode(code)
}

func (m SecurityMode) String() string {
	switch m {
	case SecurityStartTLS:
		return "start-tls"
	case SecurityTLS:
		return "tls"
	default:
		return "none"
	}
}

// UnmarshalYAML resolves the profile's security field through the
// flexible-name acceptance set, so operator spelling conventions
// ("START_TLS", "starttls") all parse to the same mode.
func (m *SecurityMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	mode, ok := securityModes.ByFlexibleName(name)
	if !ok {
		return fmt.Errorf("unrecognized security mode %q (accepted: none, start-tls, tls)", name)
	}
	*m = mode
	return nil
}

// MarshalYAML emits the canonical name.
func (m SecurityMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// Profile is the connection profile for a directory server's admin
// channel, loaded from an explicit YAML file path — no search paths, no
// merged overrides, so the effective endpoint is always auditable.
type Profile struct {
	// Host is the server's hostname or address. Required.
	Host string `yaml:"host"`

	// Port is the admin channel port. Defaults to 8389, or 8636 when
	// Security is "tls".
	Port int `yaml:"port,omitempty"`

	// Security selects plain TCP, StartTLS, or TLS. Defaults to none.
	Security SecurityMode `yaml:"security,omitempty"`

	// CACertificateFile is a PEM bundle that pins the server
	// certificate chain for TLS and StartTLS. When empty, the system
	// trust store is used.
	CACertificateFile string `yaml:"ca_certificate_file,omitempty"`

	// BindDN is the identity to authenticate the channel as. When
	// empty, the channel is anonymous (the server decides what, if
	// anything, anonymous sessions may do).
	BindDN string `yaml:"bind_dn,omitempty"`

	// BindPasswordFile is the path of a file whose first line is the
	// bind password. The password never appears in the profile itself.
	BindPasswordFile string `yaml:"bind_password_file,omitempty"`
}

// Default admin-channel ports.
const (
	defaultPort    = 8389
	defaultTLSPort = 8636
)

// LoadProfile reads and validates a connection profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading connection profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing connection profile %s: %w", path, err)
	}

	if profile.Host == "" {
		return nil, fmt.Errorf("connection profile %s: host is required", path)
	}
	if profile.Port < 0 || profile.Port > 65535 {
		return nil, fmt.Errorf("connection profile %s: invalid port %d", path, profile.Port)
	}
	if profile.Port == 0 {
		if profile.Security == SecurityTLS {
			profile.Port = defaultTLSPort
		} else {
			profile.Port = defaultPort
		}
	}
	if profile.BindPasswordFile != "" && profile.BindDN == "" {
		return nil, fmt.Errorf("connection profile %s: bind_password_file requires bind_dn", path)
	}

	return &profile, nil
}

// Address returns the host:port endpoint.
func (p *Profile) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

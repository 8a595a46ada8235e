// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package otpdevice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dirotp/dirotp/lib/cli"
	"github.com/dirotp/dirotp/lib/directory"
	"github.com/dirotp/dirotp/lib/secret"
)

// Tool is one register-otp-device invocation's environment. The zero
// value is not usable; fill in the streams and, for production use,
// leave Connector nil so the connection profile drives it. A Tool is
// not safe for concurrent runs: params are scoped to one Execute.
type Tool struct {
	// Stdin supplies the interactive password when
	// --promptForUserPassword is given.
	Stdin io.Reader

	// Stdout receives success messages; Stderr receives prompts and
	// everything that is not the success line.
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger

	// Connector overrides the profile-driven network connector.
	// Tests inject fakes here.
	Connector directory.Connector
}

// params holds the parsed flag values for one run.
type params struct {
	deregister            bool
	otp                   string
	authID                string
	userPassword          string
	userPasswordFile      string
	promptForUserPassword bool
	profile               string
}

// flagAliases maps every accepted alternate spelling to its canonical
// flag name.
var flagAliases = map[string]string{
	"de-register":              "deregister",
	"authenticationID":         "authID",
	"auth-id":                  "authID",
	"authentication-id":        "authID",
	"user-password":            "userPassword",
	"user-password-file":       "userPasswordFile",
	"prompt-for-user-password": "promptForUserPassword",
}

func (p *params) flagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("register-otp-device", pflag.ContinueOnError)
	flagSet.SetNormalizeFunc(cli.NormalizeAliases(flagAliases))

	flagSet.BoolVar(&p.deregister, "deregister", false,
		"Deregister a device instead of registering one. Without --otp, all of the account's devices are deregistered.")
	flagSet.StringVar(&p.otp, "otp", "",
		"A one-time password generated by the device. Required to register; selects a single device to deregister.")
	flagSet.StringVar(&p.authID, "authID", "",
		"The account the device belongs to, as an authentication ID (e.g., u:jdoe or dn:uid=jdoe,ou=People,dc=example,dc=com). Defaults to the authenticated user.")
	flagSet.StringVar(&p.userPassword, "userPassword", "",
		"The static password for the account named by --authID.")
	flagSet.StringVar(&p.userPasswordFile, "userPasswordFile", "",
		"A file whose first line is the static password for the account named by --authID.")
	flagSet.BoolVar(&p.promptForUserPassword, "promptForUserPassword", false,
		"Interactively prompt for the static password of the account named by --authID.")
	flagSet.StringVar(&p.profile, "profile", "",
		"Path to the YAML connection profile for the directory server.")

	return flagSet
}

// rules is the declarative constraint set checked before any I/O.
func rules() []cli.Rule {
	return []cli.Rule{
		cli.AtMostOne("userPassword", "userPasswordFile", "promptForUserPassword"),
		cli.Requires("userPassword", "authID"),
		cli.Requires("userPasswordFile", "authID"),
		cli.Requires("promptForUserPassword", "authID"),
		cli.RuleFunc(func(has cli.Present) error {
			if !has("deregister") && !has("otp") {
				return fmt.Errorf("a one-time password (--otp) is required to register a device; use --deregister to remove devices instead")
			}
			return nil
		}),
	}
}

// Command builds the CLI command for this tool. The returned command
// owns a fresh params instance, so each call yields an independent
// invocation.
func (t *Tool) Command() *cli.Command {
	p := &params{}
	var flagSet *pflag.FlagSet
	return &cli.Command{
		Name:    "register-otp-device",
		Summary: "Register or deregister a one-time-password device for a directory account.",
		Usage:   "register-otp-device [flags]",
		Examples: []cli.Example{
			{
				Description: "Register a device for a user, proving the static password inline",
				Command:     "register-otp-device --authID u:jdoe --userPassword secret --otp <generated-otp> --profile ds.yaml",
			},
			{
				Description: "Deregister every device for a user",
				Command:     "register-otp-device --deregister --authID u:jdoe --profile ds.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = p.flagSet()
			return flagSet
		},
		Run: func(args []string) error {
			return t.run(flagSet, p, args)
		},
	}
}

// run is the dispatcher: validate, acquire the secret, connect, submit
// one request, render the outcome. Validation and local failures never
// touch the network.
func (t *Tool) run(flagSet *pflag.FlagSet, p *params, args []string) error {
	if len(args) > 0 {
		fmt.Fprintf(t.Stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return cli.Exit(directory.ParamError.Int())
	}
	if err := cli.CheckRules(flagSet, rules()...); err != nil {
		fmt.Fprintln(t.Stderr, err)
		return cli.Exit(directory.ParamError.Int())
	}

	var staticPassword []byte
	if source := passwordSource(flagSet, p); !source.IsNone() {
		buffer, err := source.Resolve(t.Stdin, t.Stderr)
		if err != nil {
			fmt.Fprintf(t.Stderr, "Unable to obtain the static password for %s: %v\n", subject(p.authID), err)
			return cli.Exit(directory.LocalError.Int())
		}
		defer buffer.Close()
		staticPassword = buffer.Bytes()
	}

	connector := t.Connector
	if connector == nil {
		if p.profile == "" {
			fmt.Fprintln(t.Stderr, "no connection profile provided (--profile)")
			return cli.Exit(directory.ParamError.Int())
		}
		profile, err := directory.LoadProfile(p.profile)
		if err != nil {
			fmt.Fprintf(t.Stderr, "invalid connection profile: %v\n", err)
			return cli.Exit(directory.ParamError.Int())
		}
		connector = directory.NewNetConnector(profile)
	}

	ctx := context.Background()
	conn, err := connector.Connect(ctx)
	if err != nil {
		fmt.Fprintf(t.Stderr, "An error occurred while attempting to connect to the directory server: %v\n", err)
		return cli.Exit(directory.ResultFromError(err).Code.Int())
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.logger().Debug("closing directory connection", "error", closeErr)
		}
	}()

	var request *directory.ExtendedRequest
	if p.deregister {
		request, err = directory.NewDeregisterOTPDeviceRequest(p.authID, staticPassword, p.otp)
	} else {
		request, err = directory.NewRegisterOTPDeviceRequest(p.authID, staticPassword, p.otp)
	}
	if err != nil {
		fmt.Fprintf(t.Stderr, "unable to build the %s request: %v\n", intent(p.deregister), err)
		return cli.Exit(directory.EncodingError.Int())
	}
	t.logger().Debug("submitting extended request",
		"name", request.Name, "deregister", p.deregister)

	// A transport fault during submission becomes a failure result,
	// never an uncaught error: the render path below is the single
	// consumer of both protocol and transport failures.
	result, err := conn.Extended(ctx, request)
	if err != nil {
		result = directory.ResultFromError(err)
	}

	if result.Code != directory.Success {
		fmt.Fprintf(t.Stderr, "An error occurred while attempting to %s the OTP device for %s: %s\n",
			intent(p.deregister), subject(p.authID), result)
		return cli.Exit(result.Code.Int())
	}

	switch {
	case !p.deregister:
		fmt.Fprintf(t.Stdout, "Successfully registered the OTP device for %s.\n", subject(p.authID))
	case p.otp != "":
		fmt.Fprintf(t.Stdout, "Successfully deregistered the OTP device for %s.\n", subject(p.authID))
	default:
		fmt.Fprintf(t.Stdout, "Successfully deregistered all OTP devices for %s.\n", subject(p.authID))
	}
	return nil
}

// passwordSource maps the exclusive password flags (already validated)
// to the one selected source, or the zero Source when none was given.
func passwordSource(flagSet *pflag.FlagSet, p *params) secret.Source {
	switch {
	case flagSet.Lookup("userPassword").Changed:
		return secret.Inline(p.userPassword)
	case flagSet.Lookup("userPasswordFile").Changed:
		return secret.File(p.userPasswordFile)
	case p.promptForUserPassword:
		return secret.Prompt(p.authID)
	default:
		return secret.Source{}
	}
}

// subject names the account in user-facing messages.
func subject(authID string) string {
	if authID == "" {
		return "the authenticated user"
	}
	return "user " + authID
}

func intent(deregister bool) string {
	if deregister {
		return "deregister"
	}
	return "register"
}

func (t *Tool) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

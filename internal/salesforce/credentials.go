package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrAuthFailed is returned when credentials cannot be obtained: the CLI is
// missing, exits non-zero, or emits malformed or incomplete JSON. Callers
// abort immediately; there is no retry.
var ErrAuthFailed = errors.New("salesforce: authentication failed")

// Credentials holds an authenticated org session.
type Credentials struct {
	AccessToken string
	InstanceURL string
	Username    string
}

// CredentialProvider supplies org credentials. The CLI-backed implementation
// is the production path; tests substitute a fake without spawning processes.
type CredentialProvider interface {
	Fetch(ctx context.Context) (Credentials, error)
}

// CLIProvider obtains credentials from the Salesforce CLI by running
// "<command> org display --json" and parsing its JSON output.
type CLIProvider struct {
	// Command is the CLI binary to invoke.
	// Default: "sf"
	Command string
}

// orgDisplay mirrors the JSON document emitted by "sf org display --json".
type orgDisplay struct {
	Status int `json:"status"`
	Result struct {
		AccessToken string `json:"accessToken"`
		InstanceURL string `json:"instanceUrl"`
		Username    string `json:"username"`
	} `json:"result"`
}

// Fetch runs the CLI and parses its output.
func (p CLIProvider) Fetch(ctx context.Context) (Credentials, error) {
	command := p.Command
	if command == "" {
		command = "sf"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "org", "display", "--json")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Credentials{}, fmt.Errorf("%w: %s org display: %v: %s", ErrAuthFailed, command, err, msg)
		}
		return Credentials{}, fmt.Errorf("%w: %s org display: %v", ErrAuthFailed, command, err)
	}

	return ParseOrgDisplay(stdout.Bytes())
}

// ParseOrgDisplay extracts credentials from the CLI's JSON output. The
// document must report status 0 and carry both an access token and an
// instance URL.
func ParseOrgDisplay(data []byte) (Credentials, error) {
	var doc orgDisplay
	if err := json.Unmarshal(data, &doc); err != nil {
		return Credentials{}, fmt.Errorf("%w: malformed CLI output: %v", ErrAuthFailed, err)
	}

	if doc.Status != 0 {
		return Credentials{}, fmt.Errorf("%w: CLI reported status %d", ErrAuthFailed, doc.Status)
	}
	if doc.Result.AccessToken == "" || doc.Result.InstanceURL == "" {
		return Credentials{}, fmt.Errorf("%w: CLI output missing access token or instance URL", ErrAuthFailed)
	}

	return Credentials{
		AccessToken: doc.Result.AccessToken,
		InstanceURL: strings.TrimRight(doc.Result.InstanceURL, "/"),
		Username:    doc.Result.Username,
	}, nil
}

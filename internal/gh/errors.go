package gh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInstalled indicates the gh binary could not be found.
var ErrNotInstalled = errors.New("gh CLI is not installed\nInstall: https://cli.github.com/")

// ErrNotAuthenticated indicates the gh CLI has no usable credentials.
var ErrNotAuthenticated = errors.New("gh CLI is not authenticated\nRun: gh auth login")

// DiscoveryError indicates a gh invocation failed while listing repositories.
// Discovery failures abort the whole run since no jobs can be produced.
type DiscoveryError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *DiscoveryError) Error() string {
	msg := fmt.Sprintf("gh %s failed: %v", e.Op, e.Err)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}

	return msg
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// MalformedOutputError indicates gh produced output that did not match the
// requested schema. It is a strict parse boundary, not a best-effort scrape.
type MalformedOutputError struct {
	Op  string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("gh %s returned malformed output: %v", e.Op, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

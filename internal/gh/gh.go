// Package gh wraps the GitHub CLI for repository discovery and cloning.
// Authentication is delegated entirely to the gh binary; this package never
// speaks the GitHub wire protocol itself.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	gogh "github.com/cli/go-gh/v2"
)

// repoListFields are the JSON fields requested from `gh repo list`.
const repoListFields = "nameWithOwner,sshUrl,url,isFork,isArchived,visibility,defaultBranchRef"

// repoListLimit caps how many repositories a single owner listing returns.
const repoListLimit = "1000"

// Runner executes the gh binary with the given arguments.
// The default Runner is go-gh's ExecContext; tests inject their own.
type Runner func(ctx context.Context, args ...string) (stdout, stderr bytes.Buffer, err error)

// Client shells out to the gh CLI.
type Client struct {
	run Runner
}

// NewClient creates a client backed by the installed gh binary.
func NewClient() *Client {
	return &Client{run: gogh.ExecContext}
}

// NewClientWithRunner creates a client with a custom Runner.
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

// CheckAuth verifies that the gh CLI is installed and authenticated.
func (c *Client) CheckAuth(ctx context.Context) error {
	_, stderr, err := c.run(ctx, "auth", "status")
	if err == nil {
		return nil
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ErrNotInstalled
	}

	if strings.Contains(err.Error(), "executable file not found") {
		return ErrNotInstalled
	}

	return fmt.Errorf("%w\n%s", ErrNotAuthenticated, strings.TrimSpace(stderr.String()))
}

// Username returns the login of the authenticated user.
func (c *Client) Username(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "api", "user", "--jq", ".login")
	if err != nil {
		return "", &DiscoveryError{Op: "api user", Stderr: stderr.String(), Err: err}
	}

	login := strings.TrimSpace(stdout.String())
	if login == "" {
		return "", &MalformedOutputError{Op: "api user", Err: errors.New("empty login")}
	}

	return login, nil
}

// Organizations returns the logins of all organizations the user belongs to.
func (c *Client) Organizations(ctx context.Context) ([]string, error) {
	stdout, stderr, err := c.run(ctx, "api", "user/orgs", "--paginate", "--jq", ".[].login")
	if err != nil {
		return nil, &DiscoveryError{Op: "api user/orgs", Stderr: stderr.String(), Err: err}
	}

	var orgs []string

	for line := range strings.Lines(stdout.String()) {
		if login := strings.TrimSpace(line); login != "" {
			orgs = append(orgs, login)
		}
	}

	return orgs, nil
}

// ListRepos returns all repositories owned by the given user or organization.
func (c *Client) ListRepos(ctx context.Context, owner string) ([]Repository, error) {
	stdout, stderr, err := c.run(ctx, "repo", "list", owner,
		"--limit", repoListLimit,
		"--json", repoListFields,
	)
	if err != nil {
		return nil, &DiscoveryError{Op: "repo list " + owner, Stderr: stderr.String(), Err: err}
	}

	var repos []Repository
	if err := json.Unmarshal(stdout.Bytes(), &repos); err != nil {
		return nil, &MalformedOutputError{Op: "repo list " + owner, Err: err}
	}

	return repos, nil
}

// Clone clones a repository through the gh CLI, which handles credentials.
// Extra git arguments after "--" request a mirror clone when asked for.
func (c *Client) Clone(ctx context.Context, nameWithOwner, path string, mirror bool) error {
	args := []string{"repo", "clone", nameWithOwner, path}
	if mirror {
		args = append(args, "--", "--mirror")
	}

	_, stderr, err := c.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("gh repo clone %s failed: %w: %s",
			nameWithOwner, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// Package git shells out to the git binary for backup maintenance
// operations. Pattern inspired by github.com/cli/cli
package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Client wraps git operations for a single repository directory.
type Client struct {
	GitPath string // Path to git executable
	RepoDir string // Repository directory
}

// NewClient creates a new git client.
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")

	return &Client{GitPath: gitPath}
}

// NewClientForRepo creates a client for a specific repository.
func NewClientForRepo(repoDir string) *Client {
	c := NewClient()
	c.RepoDir = repoDir

	return c
}

// Command creates a git command scoped to the client's repository directory.
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	if c.RepoDir != "" {
		cmd.Dir = c.RepoDir
	}

	return cmd
}

// RemoteUpdate refreshes all remotes of a mirror repository.
func (c *Client) RemoteUpdate(ctx context.Context) error {
	cmd := c.Command(ctx, "remote", "update", "--prune")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &GitError{Stderr: string(output), err: err}
	}

	return nil
}

// FetchAll fetches every remote of a regular (non-mirror) clone.
func (c *Client) FetchAll(ctx context.Context) error {
	cmd := c.Command(ctx, "fetch", "--all", "--tags")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &GitError{Stderr: string(output), err: err}
	}

	return nil
}

// RemoteURL returns the origin remote URL of the repository.
func (c *Client) RemoteURL(ctx context.Context) (string, error) {
	cmd := c.Command(ctx, "remote", "get-url", "origin")

	output, err := cmd.Output()
	if err != nil {
		return "", &GitError{err: err}
	}

	return strings.TrimSpace(string(output)), nil
}

// IsRepoDir reports whether path holds a git repository, bare or not.
// Mirror clones are bare, so a .git subdirectory check alone is not enough.
func IsRepoDir(path string) bool {
	if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
		return true
	}

	// Bare repository layout: HEAD file plus objects directory at the top
	if info, err := os.Stat(filepath.Join(path, "HEAD")); err != nil || info.IsDir() {
		return false
	}

	info, err := os.Stat(filepath.Join(path, "objects"))

	return err == nil && info.IsDir()
}

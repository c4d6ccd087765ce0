package core

import (
	"errors"
	"testing"
)

func TestNetworkError(t *testing.T) {
	innerErr := errors.New("connection refused")
	err := &NetworkError{
		Operation: "backup of octocat/hello",
		Err:       innerErr,
		Attempts:  3,
	}

	expected := "backup of octocat/hello failed after 3 attempts: connection refused"
	if err.Error() != expected {
		t.Errorf("NetworkError.Error() = %q, want %q", err.Error(), expected)
	}

	if !errors.Is(err, innerErr) {
		t.Error("errors.Is should find the inner error")
	}
}

func TestPathCollisionError(t *testing.T) {
	err := &PathCollisionError{
		Path:        "/backup/user/repo",
		ExpectedURL: "https://github.com/user/repo",
		ActualURL:   "https://github.com/other/repo",
	}

	expected := "path collision: /backup/user/repo contains https://github.com/other/repo, expected https://github.com/user/repo"
	if err.Error() != expected {
		t.Errorf("PathCollisionError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("dial tcp: i/o timeout"), true},
		{"connection refused", errors.New("connect: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"no such host", errors.New("dial tcp: lookup github.com: no such host"), true},
		{"could not resolve", errors.New("fatal: could not resolve host: github.com"), true},
		{"bad gateway", errors.New("HTTP 502 Bad Gateway"), true},
		{"rate limit", errors.New("API rate limit exceeded"), true},
		{"auth", errors.New("fatal: Authentication failed for repo"), false},
		{"not found", errors.New("GraphQL: Could not resolve to a Repository"), false},
		{"plain", errors.New("something else entirely"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsPermanentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"auth failed", errors.New("fatal: Authentication failed"), true},
		{"username prompt", errors.New("fatal: could not read Username for 'https://github.com'"), true},
		{"permission", errors.New("ERROR: Permission denied (publickey)"), true},
		{"repo missing", errors.New("ERROR: Repository not found"), true},
		{"forbidden", errors.New("HTTP 403"), true},
		{"timeout", errors.New("i/o timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanentError(tt.err); got != tt.want {
				t.Errorf("IsPermanentError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package git

import "strings"

// GitError carries the stderr of a failed git invocation.
type GitError struct {
	Stderr string
	err    error
}

func (e *GitError) Error() string {
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		return "git: " + e.err.Error() + ": " + detail
	}

	return "git: " + e.err.Error()
}

func (e *GitError) Unwrap() error {
	return e.err
}

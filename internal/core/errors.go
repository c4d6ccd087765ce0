package core

import (
	"fmt"
	"strings"
)

// NetworkError wraps a transient failure that survived every retry.
type NetworkError struct {
	Operation string
	Err       error
	Attempts  int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v",
		e.Operation, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PathCollisionError indicates the target path holds a different repository.
type PathCollisionError struct {
	Path        string
	ExpectedURL string
	ActualURL   string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path collision: %s contains %s, expected %s",
		e.Path, e.ActualURL, e.ExpectedURL)
}

// IsTransientError checks if an error is transient and retryable.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"network is unreachable",
		"no such host",
		"could not resolve host",
		"early eof",
		"rate limit",
		"503",
		"502",
		"504",
	}

	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsPermanentError checks if an error is fatal for the job, such as an
// authorization or not-found failure. Permanent errors are never retried.
func IsPermanentError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	permanentIndicators := []string{
		"authentication failed",
		"could not read username",
		"could not read password",
		"permission denied",
		"repository not found",
		"not found",
		"invalid credentials",
		"bad credentials",
		"403",
		"404",
	}

	for _, indicator := range permanentIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

package core

import (
	"fmt"
	"os"

	"github.com/cli/go-gh/v2/pkg/auth"
)

// TokenSource indicates where the token was found
type TokenSource string

const (
	TokenSourceFlag      TokenSource = "flag"
	TokenSourceEnvGitHub TokenSource = "GITHUB_TOKEN"
	TokenSourceEnvGH     TokenSource = "GH_TOKEN"
	TokenSourceGHCLI     TokenSource = "gh-cli"
	TokenSourceNone      TokenSource = "none"
)

// ResolveToken attempts to find a GitHub token for API discovery.
// Priority order:
//  1. flagToken (explicit --token flag)
//  2. GITHUB_TOKEN environment variable
//  3. GH_TOKEN environment variable
//  4. gh CLI auth (keyring + config file)
func ResolveToken(flagToken string) (token string, source TokenSource, err error) {
	if flagToken != "" {
		return flagToken, TokenSourceFlag, nil
	}

	if token = os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, TokenSourceEnvGitHub, nil
	}

	if token = os.Getenv("GH_TOKEN"); token != "" {
		return token, TokenSourceEnvGH, nil
	}

	if token, _ = auth.TokenForHost("github.com"); token != "" {
		return token, TokenSourceGHCLI, nil
	}

	return "", TokenSourceNone, fmt.Errorf(`GitHub token required for API discovery

Provide a token via one of:
  * gh auth login             (auto-detected from gh CLI)
  * GITHUB_TOKEN env var
  * --token flag

Create a token at: https://github.com/settings/tokens`)
}

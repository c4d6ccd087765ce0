// Package giturl normalizes git remote URLs so remotes written in
// different forms (https, ssh, scp-like) can be compared.
package giturl

import (
	"net/url"
	"strings"
)

func isSupportedProtocol(u string) bool {
	return strings.HasPrefix(u, "ssh:") ||
		strings.HasPrefix(u, "git+ssh:") ||
		strings.HasPrefix(u, "git:") ||
		strings.HasPrefix(u, "http:") ||
		strings.HasPrefix(u, "git+https:") ||
		strings.HasPrefix(u, "https:")
}

func isPossibleProtocol(u string) bool {
	return isSupportedProtocol(u) ||
		strings.HasPrefix(u, "ftp:") ||
		strings.HasPrefix(u, "ftps:") ||
		strings.HasPrefix(u, "file:")
}

// Parse normalizes git remote urls, including scp-like syntax (git@github.com:owner/repo)
func Parse(rawURL string) (*url.URL, error) {
	if !isPossibleProtocol(rawURL) &&
		strings.ContainsRune(rawURL, ':') &&
		// not a Windows path
		!strings.ContainsRune(rawURL, '\\') {
		// support scp-like syntax for ssh protocol
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "git+https":
		u.Scheme = "https"
	case "git+ssh":
		u.Scheme = "ssh"
	}

	return u, nil
}

// Normalize reduces a remote URL to a canonical "host/owner/repo" form,
// dropping scheme, credentials, and the .git suffix.
func Normalize(rawURL string) string {
	u, err := Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return strings.ToLower(rawURL)
	}

	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")

	return strings.ToLower(u.Hostname() + "/" + path)
}

// Same reports whether two remote URLs point at the same repository.
func Same(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

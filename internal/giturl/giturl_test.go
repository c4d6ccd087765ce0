package giturl

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantScheme string
		wantHost   string
		wantPath   string
	}{
		{"https", "https://github.com/owner/repo.git", "https", "github.com", "/owner/repo.git"},
		{"ssh", "ssh://git@github.com/owner/repo.git", "ssh", "github.com", "/owner/repo.git"},
		{"scp-like", "git@github.com:owner/repo.git", "ssh", "github.com", "/owner/repo.git"},
		{"git+https", "git+https://github.com/owner/repo", "https", "github.com", "/owner/repo"},
		{"git+ssh", "git+ssh://git@github.com/owner/repo", "ssh", "github.com", "/owner/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}

			if u.Scheme != tt.wantScheme {
				t.Errorf("Scheme = %q, want %q", u.Scheme, tt.wantScheme)
			}

			if u.Hostname() != tt.wantHost {
				t.Errorf("Host = %q, want %q", u.Hostname(), tt.wantHost)
			}

			if u.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", u.Path, tt.wantPath)
			}
		})
	}
}

func TestSame(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "https://github.com/user/repo", "https://github.com/user/repo", true},
		{"git suffix", "https://github.com/user/repo.git", "https://github.com/user/repo", true},
		{"scp-like vs https", "git@github.com:user/repo.git", "https://github.com/user/repo", true},
		{"ssh scheme vs https", "ssh://git@github.com/user/repo.git", "https://github.com/user/repo", true},
		{"case differs", "https://github.com/User/Repo", "https://github.com/user/repo", true},
		{"trailing slash", "https://github.com/user/repo/", "https://github.com/user/repo", true},
		{"different repo", "https://github.com/user/other", "https://github.com/user/repo", false},
		{"different owner", "https://github.com/other/repo", "https://github.com/user/repo", false},
		{"different host", "https://gitlab.com/user/repo", "https://github.com/user/repo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

package gh

import "strings"

// OwnerKind distinguishes personal repositories from organization ones.
type OwnerKind string

const (
	OwnerPersonal     OwnerKind = "personal"
	OwnerOrganization OwnerKind = "organization"
)

// Repository is a single entry from `gh repo list --json`.
// Field tags match the gh CLI's JSON output exactly; the record is
// immutable once listed.
type Repository struct {
	NameWithOwner string `json:"nameWithOwner"`
	SSHURL        string `json:"sshUrl"`
	HTTPURL       string `json:"url"`
	IsFork        bool   `json:"isFork"`
	IsArchived    bool   `json:"isArchived"`
	Visibility    string `json:"visibility"`

	DefaultBranchRef struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`

	// OwnerKind is set during discovery, not by the CLI
	OwnerKind OwnerKind `json:"-"`
}

// Owner returns the owner half of the canonical identifier.
func (r Repository) Owner() string {
	owner, _, _ := strings.Cut(r.NameWithOwner, "/")
	return owner
}

// Name returns the repository half of the canonical identifier.
func (r Repository) Name() string {
	_, name, ok := strings.Cut(r.NameWithOwner, "/")
	if !ok {
		return r.NameWithOwner
	}

	return name
}

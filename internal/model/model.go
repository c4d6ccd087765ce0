package model

import "time"

// Repository is a backed-up repository as persisted in the history store.
type Repository struct {
	// UID is the unique identifier for the record
	UID string `json:"uid"`

	// NameWithOwner is the canonical owner/name identifier
	NameWithOwner string `json:"name_with_owner"`

	// URL is the remote repository URL
	URL string `json:"url"`

	// Path is the local path the repository was mirrored into
	Path string `json:"path"`

	// ClonedAt is when the repository was first backed up
	ClonedAt time.Time `json:"cloned_at"`

	// SyncedAt is the last time the backup completed
	SyncedAt time.Time `json:"synced_at"`

	// LastOutcome is the outcome of the last sync ("success", "skipped", "failed")
	LastOutcome string `json:"last_outcome"`
}

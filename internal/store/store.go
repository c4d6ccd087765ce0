// Package store persists backup history so repeated runs can report what
// changed since the last sync. Two interchangeable backends exist: bbolt
// (default) and sqlite (behind the sqlite build tag).
package store

import (
	"sync"

	"github.com/inovacc/ghsync/internal/model"
)

// Store defines the history operations used by the app.
type Store interface {
	Ping() error
	InsertRepoIfNotExists(nameWithOwner, url, path string) error
	RecordSync(nameWithOwner, outcome string) error
	GetRepo(nameWithOwner string) (*model.Repository, error)
	GetAllRepos() ([]model.Repository, error)
	Close() error
}

var (
	once sync.Once
	db   Store
)

// GetDB returns the initialized history store.
func GetDB() Store {
	once.Do(lazyInit)

	return db
}

func lazyInit() {
	instance, err := initDB()
	if err != nil {
		panic(err)
	}

	_ = instance.Ping()
	db = instance
}

//go:build !sqlite

package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/ghsync/internal/model"
	"github.com/inovacc/ghsync/internal/params"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRepos = "repos" // key: nameWithOwner -> Repository JSON
)

// ErrRepoNotFound indicates the repository has no history record yet.
var ErrRepoNotFound = errors.New("repository not found in history")

type Bolt struct {
	db *bbolt.DB
}

func initDB() (Store, error) {
	return NewBolt(filepath.Join(params.AppdataDir, "ghsync.bolt"))
}

// NewBolt creates a Bolt history store at the specified path.
// Exposed for tests.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketRepos))

		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Ping() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) InsertRepoIfNotExists(nameWithOwner, url, path string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketRepos))

		if bucket.Get([]byte(nameWithOwner)) != nil {
			return nil
		}

		repo := model.Repository{
			UID:           uuid.New().String(),
			NameWithOwner: nameWithOwner,
			URL:           url,
			Path:          path,
			ClonedAt:      time.Now(),
		}

		data, err := json.Marshal(repo)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(nameWithOwner), data)
	})
}

func (b *Bolt) RecordSync(nameWithOwner, outcome string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketRepos))

		data := bucket.Get([]byte(nameWithOwner))
		if data == nil {
			return ErrRepoNotFound
		}

		var repo model.Repository
		if err := json.Unmarshal(data, &repo); err != nil {
			return err
		}

		repo.SyncedAt = time.Now()
		repo.LastOutcome = outcome

		updated, err := json.Marshal(repo)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(nameWithOwner), updated)
	})
}

func (b *Bolt) GetRepo(nameWithOwner string) (*model.Repository, error) {
	var repo *model.Repository

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(boltBucketRepos)).Get([]byte(nameWithOwner))
		if data == nil {
			return ErrRepoNotFound
		}

		repo = new(model.Repository)

		return json.Unmarshal(data, repo)
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (b *Bolt) GetAllRepos() ([]model.Repository, error) {
	var repos []model.Repository

	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketRepos)).ForEach(func(_, v []byte) error {
			var repo model.Repository
			if err := json.Unmarshal(v, &repo); err != nil {
				return err
			}

			repos = append(repos, repo)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return repos, nil
}

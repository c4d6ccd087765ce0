//go:build sqlite

package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/ghsync/internal/model"
	"github.com/inovacc/ghsync/internal/params"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrRepoNotFound indicates the repository has no history record yet.
var ErrRepoNotFound = errors.New("repository not found in history")

const schema = `
CREATE TABLE IF NOT EXISTS repos (
	uid             TEXT NOT NULL,
	name_with_owner TEXT PRIMARY KEY,
	url             TEXT NOT NULL,
	path            TEXT NOT NULL,
	cloned_at       TIMESTAMP NOT NULL,
	synced_at       TIMESTAMP,
	last_outcome    TEXT NOT NULL DEFAULT ''
);`

type SQLite struct {
	db *sql.DB
}

func initDB() (Store, error) {
	return NewSQLite(filepath.Join(params.AppdataDir, "ghsync.db"))
}

// NewSQLite creates a SQLite history store at the specified path.
// Exposed for tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Ping() error {
	return s.db.Ping()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) InsertRepoIfNotExists(nameWithOwner, url, path string) error {
	_, err := s.db.Exec(`
		INSERT INTO repos (uid, name_with_owner, url, path, cloned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name_with_owner) DO NOTHING`,
		uuid.New().String(), nameWithOwner, url, path, time.Now())

	return err
}

func (s *SQLite) RecordSync(nameWithOwner, outcome string) error {
	res, err := s.db.Exec(`
		UPDATE repos SET synced_at = ?, last_outcome = ?
		WHERE name_with_owner = ?`,
		time.Now(), outcome, nameWithOwner)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrRepoNotFound
	}

	return nil
}

func (s *SQLite) GetRepo(nameWithOwner string) (*model.Repository, error) {
	row := s.db.QueryRow(`
		SELECT uid, name_with_owner, url, path, cloned_at, synced_at, last_outcome
		FROM repos WHERE name_with_owner = ?`, nameWithOwner)

	repo, err := scanRepo(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRepoNotFound
	}

	return repo, err
}

func (s *SQLite) GetAllRepos() ([]model.Repository, error) {
	rows, err := s.db.Query(`
		SELECT uid, name_with_owner, url, path, cloned_at, synced_at, last_outcome
		FROM repos ORDER BY name_with_owner`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var repos []model.Repository

	for rows.Next() {
		repo, err := scanRepo(rows.Scan)
		if err != nil {
			return nil, err
		}

		repos = append(repos, *repo)
	}

	return repos, rows.Err()
}

func scanRepo(scan func(dest ...any) error) (*model.Repository, error) {
	var (
		repo     model.Repository
		syncedAt sql.NullTime
	)

	if err := scan(&repo.UID, &repo.NameWithOwner, &repo.URL, &repo.Path,
		&repo.ClonedAt, &syncedAt, &repo.LastOutcome); err != nil {
		return nil, err
	}

	if syncedAt.Valid {
		repo.SyncedAt = syncedAt.Time
	}

	return &repo, nil
}

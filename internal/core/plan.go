package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inovacc/ghsync/internal/gh"
	"github.com/inovacc/ghsync/internal/git"
	"github.com/inovacc/ghsync/internal/giturl"
)

// Action is what the executor will do for a job.
type Action string

const (
	ActionClone  Action = "clone"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// BackupJob pairs a discovered repository with its target path and planned
// action. A job is mutated only by the executor that owns it.
type BackupJob struct {
	Repo       gh.Repository
	TargetPath string
	Action     Action
	Reason     string // reason for skip
}

// BackupPlan is the prepared backup operation.
type BackupPlan struct {
	Dest           string
	Mirror         bool
	Jobs           []BackupJob
	Workers        int
	NetworkRetries int
	Logger         *slog.Logger
}

// PlanOptions configures plan preparation.
type PlanOptions struct {
	Dest           string
	Mirror         bool
	Workers        int
	NetworkRetries int
	Logger         *slog.Logger
}

// PreparePlan creates the destination directory and determines the action
// for every discovered repository: clone when the target is absent, update
// when it already holds the same repository, skip on collisions.
func PreparePlan(ctx context.Context, repos []gh.Repository, opts PlanOptions) (*BackupPlan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(opts.Dest, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	dest, err := filepath.Abs(opts.Dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	jobs := make([]BackupJob, len(repos))
	for i, repo := range repos {
		path := filepath.Join(dest, repo.Owner(), repo.Name())
		action, reason := determineAction(ctx, repo, path, logger)

		jobs[i] = BackupJob{
			Repo:       repo,
			TargetPath: path,
			Action:     action,
			Reason:     reason,
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}

	retries := opts.NetworkRetries
	if retries < 1 {
		retries = 3
	}

	return &BackupPlan{
		Dest:           dest,
		Mirror:         opts.Mirror,
		Jobs:           jobs,
		Workers:        workers,
		NetworkRetries: retries,
		Logger:         logger,
	}, nil
}

// determineAction decides whether to clone, update, or skip.
func determineAction(ctx context.Context, repo gh.Repository, path string, logger *slog.Logger) (action Action, reason string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ActionClone, ""
	}

	if !git.IsRepoDir(path) {
		return ActionSkip, "path exists but is not a git repository"
	}

	existingURL, err := git.NewClientForRepo(path).RemoteURL(ctx)
	if err != nil {
		logger.Warn("could not determine remote URL",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return ActionSkip, "could not verify remote URL"
	}

	if !repoMatchesRemote(repo, existingURL) {
		collision := &PathCollisionError{
			Path:        path,
			ExpectedURL: repo.HTTPURL,
			ActualURL:   existingURL,
		}

		logger.Warn("path collision detected",
			slog.String("path", path),
			slog.String("expected", repo.HTTPURL),
			slog.String("actual", existingURL),
		)

		return ActionSkip, collision.Error()
	}

	return ActionUpdate, ""
}

// repoMatchesRemote reports whether the existing remote points at the same
// repository, regardless of whether gh cloned it over ssh or https.
func repoMatchesRemote(repo gh.Repository, remoteURL string) bool {
	return giturl.Same(remoteURL, repo.SSHURL) || giturl.Same(remoteURL, repo.HTTPURL)
}

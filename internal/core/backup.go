package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/inovacc/ghsync/internal/gh"
	"github.com/inovacc/ghsync/internal/git"
	"github.com/inovacc/ghsync/internal/store"
)

// Outcome is the terminal state of a backup job.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// BackupResult captures the terminal state of one job. Results are
// append-only and owned by the aggregator.
type BackupResult struct {
	Repo     gh.Repository
	Action   Action
	Outcome  Outcome
	Err      error
	Duration time.Duration
	Attempts int
}

// Executor drains the work queue with a bounded pool of workers.
type Executor struct {
	plan    *BackupPlan
	logger  *slog.Logger
	stdout  io.Writer
	history store.Store // nil disables history recording

	clone  func(ctx context.Context, job BackupJob) error
	update func(ctx context.Context, job BackupJob) error

	backoffInitial time.Duration
	backoffMax     time.Duration
}

// NewExecutor creates an executor that clones through the gh CLI and
// updates through git directly, matching how each repository was created.
func NewExecutor(plan *BackupPlan, ghc *gh.Client, history store.Store) *Executor {
	e := &Executor{
		plan:           plan,
		logger:         plan.Logger,
		stdout:         os.Stdout,
		history:        history,
		backoffInitial: 1 * time.Second,
		backoffMax:     30 * time.Second,
	}

	e.clone = func(ctx context.Context, job BackupJob) error {
		return ghc.Clone(ctx, job.Repo.NameWithOwner, job.TargetPath, plan.Mirror)
	}

	e.update = func(ctx context.Context, job BackupJob) error {
		client := git.NewClientForRepo(job.TargetPath)
		if plan.Mirror {
			return client.RemoteUpdate(ctx)
		}

		return client.FetchAll(ctx)
	}

	return e
}

// Run executes the plan. Cancellation stops dispatch of pending jobs and
// aborts in-flight ones; every job still yields exactly one result.
func (e *Executor) Run(ctx context.Context) *BackupSummary {
	start := time.Now()
	total := len(e.plan.Jobs)

	var (
		cloned, updated, skipped, failed atomic.Int32
		current                          atomic.Int32
	)

	results := make([]BackupResult, 0, total)

	var resultsMu sync.Mutex

	printProgress := func(res BackupResult) {
		curr := current.Add(1)
		pct := float64(curr) / float64(total) * 100

		var (
			status string
			detail string
		)

		switch res.Outcome {
		case OutcomeSkipped:
			status = "SKIP"

			skipped.Add(1)
		case OutcomeSuccess:
			status = "OK"

			if res.Action == ActionClone {
				cloned.Add(1)
			} else {
				updated.Add(1)
			}
		default:
			status = "FAIL"

			failed.Add(1)

			if res.Err != nil {
				detail = fmt.Sprintf(" - %s", res.Err.Error())
				if len(detail) > 60 {
					detail = detail[:57] + "..."
				}
			}
		}

		retryInfo := ""
		if res.Attempts > 1 {
			retryInfo = fmt.Sprintf(" (attempts: %d)", res.Attempts)
		}

		_, _ = fmt.Fprintf(e.stdout, "[%3.0f%%] [%-5s] %-40s%s%s\n",
			pct, status, res.Repo.NameWithOwner, detail, retryInfo)
	}

	workQueue := make(chan BackupJob, total)

	var wg sync.WaitGroup

	for range e.plan.Workers {
		wg.Go(func() {
			for job := range workQueue {
				var result BackupResult
				if ctx.Err() != nil {
					result = BackupResult{
						Repo:    job.Repo,
						Action:  ActionSkip,
						Outcome: OutcomeSkipped,
						Err:     ctx.Err(),
					}
				} else {
					result = e.processJob(ctx, job)
				}

				printProgress(result)

				resultsMu.Lock()

				results = append(results, result)

				resultsMu.Unlock()
			}
		})
	}

	for _, job := range e.plan.Jobs {
		workQueue <- job
	}

	close(workQueue)
	wg.Wait()

	return &BackupSummary{
		Results:  results,
		Cloned:   int(cloned.Load()),
		Updated:  int(updated.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
}

// processJob runs a single job to its terminal state.
func (e *Executor) processJob(ctx context.Context, job BackupJob) BackupResult {
	start := time.Now()
	attempts := 0

	var err error

	switch job.Action {
	case ActionSkip:
		e.logger.Info("skipping repository",
			slog.String("repo", job.Repo.NameWithOwner),
			slog.String("reason", job.Reason),
		)

		return BackupResult{
			Repo:    job.Repo,
			Action:  ActionSkip,
			Outcome: OutcomeSkipped,
		}

	case ActionClone:
		err = e.withRetry(ctx, job.Repo.NameWithOwner, &attempts, func() error {
			cloneErr := e.clone(ctx, job)
			if cloneErr != nil {
				// A failed clone leaves a partial directory behind, which
				// would also make the retry fail.
				_ = os.RemoveAll(job.TargetPath)
			}

			return cloneErr
		})

	case ActionUpdate:
		err = e.withRetry(ctx, job.Repo.NameWithOwner, &attempts, func() error {
			return e.update(ctx, job)
		})
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	} else {
		e.recordHistory(job, outcome)
	}

	return BackupResult{
		Repo:     job.Repo,
		Action:   job.Action,
		Outcome:  outcome,
		Err:      err,
		Duration: time.Since(start),
		Attempts: attempts,
	}
}

// withRetry retries transient failures with exponential backoff up to the
// plan's retry bound. Permanent failures (auth, not found) stop immediately.
func (e *Executor) withRetry(ctx context.Context, repo string, attempts *int, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.backoffInitial
	bo.MaxInterval = e.backoffMax

	wrapped := func() error {
		*attempts++

		err := op()
		if err == nil {
			return nil
		}

		if ctx.Err() != nil || !IsTransientError(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		e.logger.Warn("transient failure, retrying",
			slog.String("repo", repo),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.plan.NetworkRetries)), ctx)

	err := backoff.RetryNotify(wrapped, b, notify)
	if err != nil && IsTransientError(err) {
		return &NetworkError{Operation: "backup of " + repo, Err: err, Attempts: *attempts}
	}

	return err
}

// recordHistory persists the outcome. History failures are logged, never
// promoted to job failures.
func (e *Executor) recordHistory(job BackupJob, outcome Outcome) {
	if e.history == nil {
		return
	}

	url := job.Repo.HTTPURL
	if url == "" {
		url = job.Repo.SSHURL
	}

	if err := e.history.InsertRepoIfNotExists(job.Repo.NameWithOwner, url, job.TargetPath); err != nil {
		e.logger.Warn("failed to record repository",
			slog.String("repo", job.Repo.NameWithOwner),
			slog.String("error", err.Error()),
		)

		return
	}

	if err := e.history.RecordSync(job.Repo.NameWithOwner, string(outcome)); err != nil {
		e.logger.Warn("failed to record sync outcome",
			slog.String("repo", job.Repo.NameWithOwner),
			slog.String("error", err.Error()),
		)
	}
}

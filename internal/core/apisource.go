package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"
	"github.com/inovacc/ghsync/internal/gh"
	"golang.org/x/oauth2"
)

// RateLimitConfig contains settings for GitHub API rate limiting
type RateLimitConfig struct {
	MaxRetries        int           // Maximum retry attempts (default: 5)
	InitialBackoff    time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff        time.Duration // Maximum backoff duration (default: 2min)
	BackoffMultiplier float64       // Multiplier for exponential backoff (default: 2.0)
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRetries:        5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        2 * time.Minute,
		BackoffMultiplier: 2.0,
	}
}

// APISource discovers repositories through the GitHub REST API instead of
// the gh CLI subprocess. It is rate-limit aware: primary and abuse rate
// limits honor the server-provided reset times, transient errors back off
// exponentially with jitter.
type APISource struct {
	client  *github.Client
	rateCfg RateLimitConfig
	logger  *slog.Logger
}

// NewAPISource creates a rate-limit-aware API discovery source.
func NewAPISource(token string, cfg RateLimitConfig, logger *slog.Logger) *APISource {
	if cfg.MaxRetries == 0 {
		cfg = DefaultRateLimitConfig()
	}

	if logger == nil {
		logger = slog.Default()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &APISource{
		client:  github.NewClient(tc),
		rateCfg: cfg,
		logger:  logger,
	}
}

// Username returns the login of the authenticated user.
func (s *APISource) Username(ctx context.Context) (string, error) {
	var user *github.User

	err := s.withRateLimitRetry(ctx, func() error {
		var err error
		user, _, err = s.client.Users.Get(ctx, "")

		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	return user.GetLogin(), nil
}

// Organizations returns the logins of all organizations the user belongs to.
func (s *APISource) Organizations(ctx context.Context) ([]string, error) {
	opt := &github.ListOptions{PerPage: 100}

	var logins []string

	for {
		var (
			orgs []*github.Organization
			resp *github.Response
		)

		err := s.withRateLimitRetry(ctx, func() error {
			var err error
			orgs, resp, err = s.client.Organizations.List(ctx, "", opt)

			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list organizations: %w", err)
		}

		for _, org := range orgs {
			logins = append(logins, org.GetLogin())
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opt.Page = resp.NextPage
	}

	return logins, nil
}

// ListRepos returns all repositories owned by the given user or organization.
// The owner is tried as an organization first, then as a user on 404.
func (s *APISource) ListRepos(ctx context.Context, name string) ([]gh.Repository, error) {
	repos, err := s.listByOrg(ctx, name)
	if err != nil {
		if !strings.Contains(err.Error(), "404") {
			return nil, err
		}

		s.logger.Info("not found as organization, trying as user",
			slog.String("name", name),
		)

		repos, err = s.listByUser(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch repos (tried org and user): %w", err)
		}
	}

	records := make([]gh.Repository, len(repos))
	for i, repo := range repos {
		records[i] = toRecord(repo)
	}

	return records, nil
}

func (s *APISource) listByOrg(ctx context.Context, orgName string) ([]*github.Repository, error) {
	opt := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRepos []*github.Repository

	for {
		var (
			repos []*github.Repository
			resp  *github.Response
		)

		err := s.withRateLimitRetry(ctx, func() error {
			var err error
			repos, resp, err = s.client.Repositories.ListByOrg(ctx, orgName, opt)

			return err
		})
		if err != nil {
			return nil, err
		}

		allRepos = append(allRepos, repos...)

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opt.Page = resp.NextPage
	}

	return allRepos, nil
}

func (s *APISource) listByUser(ctx context.Context, username string) ([]*github.Repository, error) {
	opt := &github.RepositoryListByUserOptions{
		Type:        "owner", // only repos owned by the user, not collaborations
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRepos []*github.Repository

	for {
		var (
			repos []*github.Repository
			resp  *github.Response
		)

		err := s.withRateLimitRetry(ctx, func() error {
			var err error
			repos, resp, err = s.client.Repositories.ListByUser(ctx, username, opt)

			return err
		})
		if err != nil {
			return nil, err
		}

		allRepos = append(allRepos, repos...)

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opt.Page = resp.NextPage
	}

	return allRepos, nil
}

// withRateLimitRetry runs one API call, waiting out rate limits and backing
// off on transient errors up to the configured retry bound.
func (s *APISource) withRateLimitRetry(ctx context.Context, call func() error) error {
	var lastErr error

	for attempt := 0; attempt <= s.rateCfg.MaxRetries; attempt++ {
		err := call()
		if err == nil {
			return nil
		}

		var rateLimitErr *github.RateLimitError
		if errors.As(err, &rateLimitErr) {
			resetTime := rateLimitErr.Rate.Reset.Time
			waitDuration := time.Until(resetTime) + time.Second // add 1s buffer

			s.logger.Warn("rate limited by GitHub API",
				slog.Int("attempt", attempt+1),
				slog.Duration("wait_duration", waitDuration),
				slog.Time("reset_at", resetTime),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				lastErr = err

				continue
			}
		}

		var abuseErr *github.AbuseRateLimitError
		if errors.As(err, &abuseErr) {
			retryAfter := abuseErr.GetRetryAfter()

			s.logger.Warn("abuse rate limit hit",
				slog.Int("attempt", attempt+1),
				slog.Duration("retry_after", retryAfter),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
				lastErr = err

				continue
			}
		}

		// Rate limits carry typed errors and were handled above, so a
		// permanent indicator here means a real 403/404.
		if IsPermanentError(err) {
			return err
		}

		if IsTransientError(err) {
			backoff := s.calculateBackoff(attempt)

			s.logger.Warn("transient error, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				lastErr = err

				continue
			}
		}

		return err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// calculateBackoff computes exponential backoff with jitter
func (s *APISource) calculateBackoff(attempt int) time.Duration {
	backoff := float64(s.rateCfg.InitialBackoff) * math.Pow(s.rateCfg.BackoffMultiplier, float64(attempt))

	if backoff > float64(s.rateCfg.MaxBackoff) {
		backoff = float64(s.rateCfg.MaxBackoff)
	}

	// Add jitter (10%)
	jitter := backoff * 0.1 * (rand.Float64()*2 - 1)
	backoff += jitter

	return time.Duration(backoff)
}

// toRecord converts an API repository to the record shape gh repo list
// produces, so both discovery sources feed the same pipeline.
func toRecord(repo *github.Repository) gh.Repository {
	r := gh.Repository{
		NameWithOwner: repo.GetFullName(),
		SSHURL:        repo.GetSSHURL(),
		HTTPURL:       repo.GetCloneURL(),
		IsFork:        repo.GetFork(),
		IsArchived:    repo.GetArchived(),
		Visibility:    repo.GetVisibility(),
	}
	r.DefaultBranchRef.Name = repo.GetDefaultBranch()

	return r
}

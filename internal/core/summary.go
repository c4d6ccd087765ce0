package core

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/inovacc/ghsync/internal/gh"
)

// BackupSummary aggregates the per-repository outcomes of a run.
type BackupSummary struct {
	Results  []BackupResult
	Cloned   int
	Updated  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// ExitError returns a non-nil error when any repository failed, so the
// process exits non-zero.
func (s *BackupSummary) ExitError() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d repositories failed to back up", s.Failed)
	}

	return nil
}

// PrintSummary prints the final summary after a backup run.
func PrintSummary(w io.Writer, s *BackupSummary) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = fmt.Fprintln(w, "                    Backup Complete")
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = fmt.Fprintf(w, "  Cloned:   %d\n", s.Cloned)
	_, _ = fmt.Fprintf(w, "  Updated:  %d\n", s.Updated)
	_, _ = fmt.Fprintf(w, "  Skipped:  %d\n", s.Skipped)
	_, _ = fmt.Fprintf(w, "  Failed:   %d\n", s.Failed)
	_, _ = fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	_, _ = fmt.Fprintf(w, "  Total:    %d repositories in %s\n",
		len(s.Results), s.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")

	if s.Failed > 0 {
		_, _ = fmt.Fprintln(w, "\nFailed repositories:")

		for _, r := range s.Results {
			if r.Outcome != OutcomeFailed {
				continue
			}

			errMsg := "unknown error"
			if r.Err != nil {
				errMsg = r.Err.Error()
				if len(errMsg) > 70 {
					errMsg = errMsg[:67] + "..."
				}
			}

			_, _ = fmt.Fprintf(w, "  - %s: %s\n", r.Repo.NameWithOwner, errMsg)
		}
	}
}

// LogSummary logs the final summary, for JSON log consumers.
func LogSummary(s *BackupSummary, logger *slog.Logger) {
	logger.Info("backup complete",
		slog.Int("cloned", s.Cloned),
		slog.Int("updated", s.Updated),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
		slog.Duration("duration", s.Duration),
	)

	for _, r := range s.Results {
		if r.Outcome != OutcomeFailed {
			continue
		}

		logger.Error("repository failed",
			slog.String("repo", r.Repo.NameWithOwner),
			slog.String("action", string(r.Action)),
			slog.String("error", r.Err.Error()),
			slog.Int("attempts", r.Attempts),
		)
	}
}

// PrintDryRun lists what a run would back up, without touching anything.
func PrintDryRun(w io.Writer, repos []gh.Repository) {
	_, _ = fmt.Fprintln(w, "\n--- Dry run ---")

	total := len(repos)

	for i, r := range repos {
		var tags []string

		if r.IsFork {
			tags = append(tags, "fork")
		}

		if r.IsArchived {
			tags = append(tags, "archived")
		}

		if vis := strings.ToLower(r.Visibility); vis != "" {
			tags = append(tags, vis)
		}

		suffix := ""
		if len(tags) > 0 {
			suffix = fmt.Sprintf("  (%s)", strings.Join(tags, ", "))
		}

		_, _ = fmt.Fprintf(w, "  [%d/%d] %s%s\n", i+1, total, r.NameWithOwner, suffix)
	}

	_, _ = fmt.Fprintf(w, "\nTotal: %d repos\n", total)
}

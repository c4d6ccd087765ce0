package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/inovacc/ghsync/internal/core"
	"github.com/inovacc/ghsync/internal/gh"
	"github.com/inovacc/ghsync/internal/store"
	"github.com/spf13/cobra"
)

func runSync(cmd *cobra.Command, args []string) error {
	orgFlags, _ := cmd.Flags().GetStringArray("org")
	orgsOnly, _ := cmd.Flags().GetBool("orgs-only")
	personalOnly, _ := cmd.Flags().GetBool("personal-only")
	listOrgs, _ := cmd.Flags().GetBool("list-orgs")

	noForks, _ := cmd.Flags().GetBool("no-forks")
	forksOnly, _ := cmd.Flags().GetBool("forks-only")
	noArchived, _ := cmd.Flags().GetBool("no-archived")
	archivedOnly, _ := cmd.Flags().GetBool("archived-only")
	visibility, _ := cmd.Flags().GetString("visibility")
	match, _ := cmd.Flags().GetStringArray("match")
	exclude, _ := cmd.Flags().GetStringArray("exclude")

	dest, _ := cmd.Flags().GetString("dest")
	noMirror, _ := cmd.Flags().GetBool("no-mirror")
	jobs, _ := cmd.Flags().GetInt("jobs")

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	useAPI, _ := cmd.Flags().GetBool("api")
	token, _ := cmd.Flags().GetString("token")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	networkRetries, _ := cmd.Flags().GetInt("network-retries")

	logLevel, _ := cmd.Flags().GetString("log-level")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if jobs < 1 || jobs > 32 {
		return fmt.Errorf("jobs must be between 1 and 32")
	}

	if networkRetries < 1 || networkRetries > 10 {
		return fmt.Errorf("network-retries must be between 1 and 10")
	}

	if visibility != "" && !slices.Contains([]string{"public", "private", "internal"}, strings.ToLower(visibility)) {
		return fmt.Errorf("visibility must be public, private or internal")
	}

	logger := setupLogger(logLevel, jsonOutput)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ghc := gh.NewClient()

	// With API discovery the gh binary is only invoked once cloning starts,
	// so --dry-run and --list-orgs stay usable without it.
	if ghAuthRequired(useAPI, dryRun, listOrgs) {
		if err := ghc.CheckAuth(ctx); err != nil {
			return err
		}
	}

	var src core.Source = ghc

	if useAPI {
		token, tokenSource, err := core.ResolveToken(token)
		if err != nil {
			return err
		}

		logger.Debug("token resolved", slog.String("source", string(tokenSource)))

		src = core.NewAPISource(token, core.DefaultRateLimitConfig(), logger)
	}

	username, err := src.Username(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Authenticated as: %s\n", username)

	orgs, err := src.Organizations(ctx)
	if err != nil {
		return err
	}

	if listOrgs {
		return printOrgs(ctx, src, orgs)
	}

	scope := core.Scope{
		Orgs:         orgFlags,
		OrgsOnly:     orgsOnly,
		PersonalOnly: personalOnly,
	}

	filters := core.Filters{
		NoForks:      noForks,
		ForksOnly:    forksOnly,
		NoArchived:   noArchived,
		ArchivedOnly: archivedOnly,
		Visibility:   visibility,
		Match:        match,
		Exclude:      exclude,
	}

	repos, err := core.Discover(ctx, src, username, orgs, scope, filters, logger)
	if err != nil {
		return err
	}

	if len(repos) == 0 {
		fmt.Println("No repos matched.")
		return nil
	}

	fmt.Printf("Found %d repo(s)\n", len(repos))

	if dryRun {
		core.PrintDryRun(os.Stdout, repos)
		return nil
	}

	plan, err := core.PreparePlan(ctx, repos, core.PlanOptions{
		Dest:           dest,
		Mirror:         !noMirror,
		Workers:        jobs,
		NetworkRetries: networkRetries,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	mode := "mirror"
	if noMirror {
		mode = "regular"
	}

	fmt.Printf("\nBacking up to: %s (mode: %s, workers: %d)\n\n", plan.Dest, mode, plan.Workers)

	var history store.Store
	if !noHistory {
		history = store.GetDB()
	}

	summary := core.NewExecutor(plan, ghc, history).Run(ctx)

	core.PrintSummary(os.Stdout, summary)

	if jsonOutput {
		core.LogSummary(summary, logger)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backup interrupted: %w", err)
	}

	return summary.ExitError()
}

// ghAuthRequired reports whether the run will invoke the gh binary.
// Discovery through the gh CLI always does; API discovery only needs gh
// when repositories will actually be cloned.
func ghAuthRequired(useAPI, dryRun, listOrgs bool) bool {
	if !useAPI {
		return true
	}

	return !dryRun && !listOrgs
}

// printOrgs lists the user's organizations with their repo counts.
func printOrgs(ctx context.Context, src core.Source, orgs []string) error {
	sorted := slices.Clone(orgs)
	slices.SortFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	fmt.Printf("\nOrgs (%d):\n", len(sorted))

	for _, org := range sorted {
		repos, err := src.ListRepos(ctx, org)
		if err != nil {
			return err
		}

		fmt.Printf("  %s (%d repos)\n", org, len(repos))
	}

	return nil
}

// setupLogger creates a configured slog.Logger
func setupLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level

	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

package cmd

import (
	"os"
	"strings"

	"github.com/inovacc/ghsync/internal/application"
	"github.com/inovacc/ghsync/internal/buildinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Back up all GitHub repos (personal + org)",
	Long: `Ghsync backs up every GitHub repository you can reach - your personal
repositories and those of all organizations you belong to - by mirror-cloning
them through the gh CLI into a local directory tree named <owner>/<repo>.

Repositories that already exist locally are updated in place. Authentication
stays with the gh CLI; run 'gh auth login' first.`,
	Example: `  ghsync --dry-run                          List all repos
  ghsync --dest ~/backup                    Mirror-clone everything
  ghsync --org tdacorp --org tdaorg         Only these orgs
  ghsync --orgs-only --no-forks             All orgs, skip forks
  ghsync --personal-only                    Only personal repos
  ghsync --match "tda-*"                    Repos matching glob
  ghsync --exclude "poc-*" --no-archived    Skip POCs and archived
  ghsync --visibility private               Only private repos
  ghsync --list-orgs                        Show orgs and exit`,
	Version:      buildinfo.Version,
	SilenceUsage: true,
	RunE:         runSync,
}

func Execute() {
	rootCmd.SetVersionTemplate(buildinfo.String() + "\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// accept underscore spellings like --no_forks
	rootCmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Scope
	rootCmd.Flags().StringArray("org", nil, "Back up specific org(s) only (repeatable)")
	rootCmd.Flags().Bool("orgs-only", false, "Back up org repos only, skip personal")
	rootCmd.Flags().Bool("personal-only", false, "Back up personal repos only, skip orgs")
	rootCmd.Flags().Bool("list-orgs", false, "List orgs and exit")

	// Filters
	rootCmd.Flags().Bool("no-forks", false, "Exclude forked repos")
	rootCmd.Flags().Bool("forks-only", false, "Only forked repos")
	rootCmd.Flags().Bool("no-archived", false, "Exclude archived repos")
	rootCmd.Flags().Bool("archived-only", false, "Only archived repos")
	rootCmd.Flags().String("visibility", "", "Filter by visibility: public, private, internal")
	rootCmd.Flags().StringArray("match", nil, "Only repos matching glob pattern (repeatable)")
	rootCmd.Flags().StringArray("exclude", nil, "Exclude repos matching glob pattern (repeatable)")

	// Clone options
	rootCmd.Flags().String("dest", ".", "Destination directory")
	rootCmd.Flags().Bool("no-mirror", false, "Use regular clone instead of --mirror")
	rootCmd.Flags().Int("jobs", 4, "Parallel workers (1-32)")

	// Operation mode
	rootCmd.Flags().Bool("dry-run", false, "List repos without cloning")
	rootCmd.Flags().Bool("api", false, "Discover repos via the GitHub API instead of the gh CLI")
	rootCmd.Flags().String("token", "", "GitHub token for --api (default: auto-detect)")
	rootCmd.Flags().Bool("no-history", false, "Do not record outcomes in the local history store")

	// Error recovery
	rootCmd.Flags().Int("network-retries", 3, "Max transient retry attempts per repo (1-10)")

	// Logging
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().Bool("json", false, "Output logs in JSON format")

	rootCmd.MarkFlagsMutuallyExclusive("orgs-only", "personal-only")
	rootCmd.MarkFlagsMutuallyExclusive("org", "personal-only")
	rootCmd.MarkFlagsMutuallyExclusive("no-forks", "forks-only")
	rootCmd.MarkFlagsMutuallyExclusive("no-archived", "archived-only")
}

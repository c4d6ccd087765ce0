package core

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/inovacc/ghsync/internal/gh"
	"github.com/stretchr/testify/require"
)

func TestRepoMatchesRemote(t *testing.T) {
	r := repo("tdacorp/tda-api")

	require.True(t, repoMatchesRemote(r, "git@github.com:tdacorp/tda-api.git"))
	require.True(t, repoMatchesRemote(r, "https://github.com/tdacorp/tda-api.git"))
	require.False(t, repoMatchesRemote(r, "https://github.com/tdacorp/other.git"))
}

func TestPreparePlan(t *testing.T) {
	dest := t.TempDir()

	// pre-existing directory that is not a git repository
	collision := filepath.Join(dest, "o", "taken")
	require.NoError(t, os.MkdirAll(collision, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(collision, "file.txt"), []byte("x"), 0o644))

	repos := []gh.Repository{repo("o/fresh"), repo("o/taken")}

	plan, err := PreparePlan(context.Background(), repos, PlanOptions{
		Dest:           dest,
		Mirror:         true,
		Workers:        2,
		NetworkRetries: 3,
		Logger:         quietLogger(),
	})
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 2)
	require.True(t, filepath.IsAbs(plan.Dest))

	byName := make(map[string]BackupJob)
	for _, j := range plan.Jobs {
		byName[j.Repo.NameWithOwner] = j
	}

	fresh := byName["o/fresh"]
	require.Equal(t, ActionClone, fresh.Action)
	require.Equal(t, filepath.Join(plan.Dest, "o", "fresh"), fresh.TargetPath)

	taken := byName["o/taken"]
	require.Equal(t, ActionSkip, taken.Action)
	require.Contains(t, taken.Reason, "not a git repository")
}

func TestPreparePlan_Defaults(t *testing.T) {
	plan, err := PreparePlan(context.Background(), nil, PlanOptions{
		Dest:   t.TempDir(),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	require.Equal(t, 4, plan.Workers)
	require.Equal(t, 3, plan.NetworkRetries)
	require.Empty(t, plan.Jobs)
}

// runGit runs a git command in dir for test fixtures
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestPreparePlan_ExistingClone(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	t.Run("same remote plans update", func(t *testing.T) {
		dest := t.TempDir()
		r := repo("o/mirrored")

		// a mirror clone left behind by an earlier run
		target := filepath.Join(dest, "o", "mirrored")
		require.NoError(t, os.MkdirAll(target, 0o755))
		runGit(t, target, "init", "--bare")
		runGit(t, target, "remote", "add", "origin", r.SSHURL)

		plan, err := PreparePlan(context.Background(), []gh.Repository{r}, PlanOptions{
			Dest:   dest,
			Mirror: true,
			Logger: quietLogger(),
		})
		require.NoError(t, err)
		require.Len(t, plan.Jobs, 1)
		require.Equal(t, ActionUpdate, plan.Jobs[0].Action)
		require.Empty(t, plan.Jobs[0].Reason)
	})

	t.Run("different remote plans skip", func(t *testing.T) {
		dest := t.TempDir()
		r := repo("o/mirrored")

		target := filepath.Join(dest, "o", "mirrored")
		require.NoError(t, os.MkdirAll(target, 0o755))
		runGit(t, target, "init", "--bare")
		runGit(t, target, "remote", "add", "origin", "git@github.com:other/mirrored.git")

		plan, err := PreparePlan(context.Background(), []gh.Repository{r}, PlanOptions{
			Dest:   dest,
			Mirror: true,
			Logger: quietLogger(),
		})
		require.NoError(t, err)
		require.Len(t, plan.Jobs, 1)
		require.Equal(t, ActionSkip, plan.Jobs[0].Action)
		require.Contains(t, plan.Jobs[0].Reason, "path collision")
	})
}

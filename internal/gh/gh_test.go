package gh

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner returns canned output for the gh invocations a test expects,
// keyed by the joined argument list.
func fakeRunner(t *testing.T, responses map[string]string) Runner {
	t.Helper()

	return func(ctx context.Context, args ...string) (bytes.Buffer, bytes.Buffer, error) {
		var stdout, stderr bytes.Buffer

		key := strings.Join(args, " ")

		out, ok := responses[key]
		if !ok {
			t.Fatalf("unexpected gh invocation: %q", key)
		}

		stdout.WriteString(out)

		return stdout, stderr, nil
	}
}

func failingRunner(err error, stderrText string) Runner {
	return func(ctx context.Context, args ...string) (bytes.Buffer, bytes.Buffer, error) {
		var stdout, stderr bytes.Buffer

		stderr.WriteString(stderrText)

		return stdout, stderr, err
	}
}

func TestUsername(t *testing.T) {
	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"api user --jq .login": "octocat\n",
	}))

	login, err := c.Username(context.Background())
	require.NoError(t, err)
	require.Equal(t, "octocat", login)
}

func TestUsername_Empty(t *testing.T) {
	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"api user --jq .login": "\n",
	}))

	_, err := c.Username(context.Background())

	var malformed *MalformedOutputError

	require.ErrorAs(t, err, &malformed)
}

func TestUsername_CommandFailure(t *testing.T) {
	c := NewClientWithRunner(failingRunner(errors.New("exit status 1"), "HTTP 401"))

	_, err := c.Username(context.Background())

	var discovery *DiscoveryError

	require.ErrorAs(t, err, &discovery)
	require.Contains(t, err.Error(), "HTTP 401")
}

func TestOrganizations(t *testing.T) {
	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"api user/orgs --paginate --jq .[].login": "tdacorp\ntdaorg\n\n",
	}))

	orgs, err := c.Organizations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"tdacorp", "tdaorg"}, orgs)
}

func TestOrganizations_None(t *testing.T) {
	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"api user/orgs --paginate --jq .[].login": "",
	}))

	orgs, err := c.Organizations(context.Background())
	require.NoError(t, err)
	require.Empty(t, orgs)
}

func TestListRepos(t *testing.T) {
	payload := `[
		{
			"nameWithOwner": "octocat/hello",
			"sshUrl": "git@github.com:octocat/hello.git",
			"url": "https://github.com/octocat/hello",
			"isFork": false,
			"isArchived": true,
			"visibility": "PUBLIC",
			"defaultBranchRef": {"name": "main"}
		},
		{
			"nameWithOwner": "octocat/fork",
			"sshUrl": "git@github.com:octocat/fork.git",
			"url": "https://github.com/octocat/fork",
			"isFork": true,
			"isArchived": false,
			"visibility": "PRIVATE",
			"defaultBranchRef": {"name": "master"}
		}
	]`

	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"repo list octocat --limit 1000 --json " + repoListFields: payload,
	}))

	repos, err := c.ListRepos(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 2)

	require.Equal(t, "octocat/hello", repos[0].NameWithOwner)
	require.Equal(t, "git@github.com:octocat/hello.git", repos[0].SSHURL)
	require.True(t, repos[0].IsArchived)
	require.False(t, repos[0].IsFork)
	require.Equal(t, "main", repos[0].DefaultBranchRef.Name)

	require.True(t, repos[1].IsFork)
	require.Equal(t, "PRIVATE", repos[1].Visibility)
}

func TestListRepos_MalformedOutput(t *testing.T) {
	c := NewClientWithRunner(fakeRunner(t, map[string]string{
		"repo list octocat --limit 1000 --json " + repoListFields: "not json at all",
	}))

	_, err := c.ListRepos(context.Background(), "octocat")

	var malformed *MalformedOutputError

	require.ErrorAs(t, err, &malformed)
}

func TestCheckAuth_NotInstalled(t *testing.T) {
	c := NewClientWithRunner(failingRunner(&exec.Error{Name: "gh", Err: exec.ErrNotFound}, ""))

	err := c.CheckAuth(context.Background())
	require.ErrorIs(t, err, ErrNotInstalled)
}

func TestCheckAuth_NotAuthenticated(t *testing.T) {
	c := NewClientWithRunner(failingRunner(errors.New("exit status 1"), "You are not logged into any GitHub hosts"))

	err := c.CheckAuth(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Contains(t, err.Error(), "not logged into")
}

func TestClone_MirrorArgs(t *testing.T) {
	var captured []string

	run := func(ctx context.Context, args ...string) (bytes.Buffer, bytes.Buffer, error) {
		captured = args

		return bytes.Buffer{}, bytes.Buffer{}, nil
	}

	c := NewClientWithRunner(run)

	require.NoError(t, c.Clone(context.Background(), "octocat/hello", "/tmp/dest", true))
	require.Equal(t, []string{"repo", "clone", "octocat/hello", "/tmp/dest", "--", "--mirror"}, captured)

	require.NoError(t, c.Clone(context.Background(), "octocat/hello", "/tmp/dest", false))
	require.Equal(t, []string{"repo", "clone", "octocat/hello", "/tmp/dest"}, captured)
}

func TestRepository_OwnerName(t *testing.T) {
	r := Repository{NameWithOwner: "tdacorp/tda-api"}
	require.Equal(t, "tdacorp", r.Owner())
	require.Equal(t, "tda-api", r.Name())

	r = Repository{NameWithOwner: "noslash"}
	require.Equal(t, "noslash", r.Owner())
	require.Equal(t, "noslash", r.Name())
}

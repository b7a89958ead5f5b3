package download

import (
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/commands/commandtest"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/urfave/cli/v3"
)

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitCmd(t, dir, "init")
	gitCmd(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "user.name", "Test User")
	return dir
}

func commitFile(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+"\n"), 0644))
	gitCmd(t, dir, "add", name)
	gitCmd(t, dir, "commit", "-m", "add "+name)
	return gitCmd(t, dir, "rev-parse", "HEAD")
}

// setupWorkspace returns a clone whose origin carries refs/changes/42/42/3.
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	server := initRepo(t)
	commitFile(t, server, "README.md")
	gitCmd(t, server, "checkout", "-b", "work")
	commit := commitFile(t, server, "feature.go")
	gitCmd(t, server, "update-ref", "refs/changes/42/42/3", commit)
	gitCmd(t, server, "checkout", "main")

	local := initRepo(t)
	gitCmd(t, local, "remote", "add", "origin", server)
	gitCmd(t, local, "fetch", "origin", "main")
	gitCmd(t, local, "reset", "--hard", "origin/main")
	return local, commit
}

const changeJSON = `{
  "project": "demo", "branch": "main", "topic": "feature-x",
  "change_id": "Iaaa", "subject": "Feature", "status": "NEW",
  "_number": 42,
  "owner": {"_account_id": 7, "username": "j.doe"},
  "current_revision": "abc",
  "revisions": {"abc": {"_number": 3, "ref": "refs/changes/42/42/3"}}
}`

func newCommand(env *commandtest.Env) *cli.Command {
	return NewDownloadCommandFactory(env.Container).CreateCommand(env.Translations, env.Config)
}

func TestDownloadCommand(t *testing.T) {
	t.Run("creates the review branch", func(t *testing.T) {
		local, commit := setupWorkspace(t)
		env := commandtest.NewEnv(t, local)
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)

		err := env.Run(newCommand(env), "download", "42")

		require.NoError(t, err)
		assert.Equal(t, "o=CURRENT_REVISION&o=DETAILED_ACCOUNTS", env.Server.Requests()[0].Query)
		assert.Equal(t, "review/j_doe/feature-x", gitCmd(t, local, "rev-parse", "--abbrev-ref", "HEAD"))
		assert.Equal(t, commit, gitCmd(t, local, "rev-parse", "HEAD"))
		assert.Equal(t, "origin", gitCmd(t, local, "config", "branch.review/j_doe/feature-x.remote"))
		assert.Equal(t, "refs/heads/main", gitCmd(t, local, "config", "branch.review/j_doe/feature-x.merge"))
		assert.Contains(t, env.Out.String(), "Created branch review/j_doe/feature-x")
	})

	t.Run("moves an existing branch with the same upstream", func(t *testing.T) {
		local, commit := setupWorkspace(t)
		env := commandtest.NewEnv(t, local)
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)
		gitCmd(t, local, "branch", "review/j_doe/feature-x", "main")
		gitCmd(t, local, "config", "branch.review/j_doe/feature-x.remote", "origin")
		gitCmd(t, local, "config", "branch.review/j_doe/feature-x.merge", "refs/heads/main")

		err := env.Run(newCommand(env), "download", "42")

		require.NoError(t, err)
		assert.Equal(t, commit, gitCmd(t, local, "rev-parse", "review/j_doe/feature-x"))
		assert.Contains(t, env.Out.String(), "Updated branch review/j_doe/feature-x")
	})

	t.Run("refuses a branch tracking something else", func(t *testing.T) {
		local, _ := setupWorkspace(t)
		env := commandtest.NewEnv(t, local)
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)
		before := gitCmd(t, local, "rev-parse", "main")
		gitCmd(t, local, "branch", "review/j_doe/feature-x", "main")
		gitCmd(t, local, "config", "branch.review/j_doe/feature-x.remote", "origin")
		gitCmd(t, local, "config", "branch.review/j_doe/feature-x.merge", "refs/heads/develop")

		err := env.Run(newCommand(env), "download", "42")

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainErrors.ErrTrackingConflict))
		assert.Equal(t, before, gitCmd(t, local, "rev-parse", "review/j_doe/feature-x"))
		assert.Equal(t, "main", gitCmd(t, local, "rev-parse", "--abbrev-ref", "HEAD"))
		assert.Contains(t, env.Out.String(), "actual: origin/develop")
	})

	t.Run("change without current revision", func(t *testing.T) {
		env := commandtest.NewEnv(t, t.TempDir())
		env.Server.Handle(http.MethodGet, "/changes/42", `{
  "project": "demo", "branch": "main", "change_id": "Iaaa",
  "_number": 42, "owner": {"_account_id": 7, "username": "jdoe"}
}`)

		err := env.Run(newCommand(env), "download", "42")

		assert.True(t, errors.Is(err, domainErrors.ErrMissingCurrentRevision))
	})
}

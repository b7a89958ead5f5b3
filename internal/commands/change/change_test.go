package change

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/commands/commandtest"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/urfave/cli/v3"
)

const changeJSON = `{
  "id": "demo~main~I8473b95934b5732ac55d26311a706c9c2bde9940",
  "project": "demo",
  "branch": "main",
  "topic": "feature-x",
  "change_id": "I8473b95934b5732ac55d26311a706c9c2bde9940",
  "subject": "Implementing Feature X",
  "status": "NEW",
  "updated": "2013-02-21 11:16:36.775000000",
  "insertions": 34,
  "deletions": 101,
  "_number": 42,
  "owner": {"_account_id": 1000096, "name": "John Doe", "username": "jdoe"},
  "labels": {
    "Code-Review": {
      "all": [
        {"_account_id": 1000097, "name": "Jane Roe", "value": 2},
        {"_account_id": 1000098, "name": "Max Mustermann", "value": -1}
      ]
    }
  },
  "current_revision": "184ebe53805e102605d11f6b143486d15c23a09c",
  "revisions": {
    "184ebe53805e102605d11f6b143486d15c23a09c": {"_number": 3, "ref": "refs/changes/42/42/3"}
  }
}`

func newCommand(env *commandtest.Env) *cli.Command {
	return NewChangeCommandFactory(env.Container).CreateCommand(env.Translations, env.Config)
}

func TestShowCommand(t *testing.T) {
	t.Run("prints the change with votes", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)

		err := env.Run(newCommand(env), "change", "show", "42")

		require.NoError(t, err)
		out := env.Out.String()
		assert.Contains(t, out, "42: Implementing Feature X")
		assert.Contains(t, out, "feature-x")
		assert.Contains(t, out, "John Doe")
		assert.Contains(t, out, "3 (refs/changes/42/42/3)")
		assert.Contains(t, out, "+2 Jane Roe")
		assert.Contains(t, out, "-1 Max Mustermann")

		reqs := env.Server.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "o=CURRENT_REVISION&o=DETAILED_LABELS&o=DETAILED_ACCOUNTS", reqs[0].Query)
	})

	t.Run("explicit options are sent in canonical order", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)

		err := env.Run(newCommand(env), "change", "show", "-o", "messages", "-o", "download_commands", "42")

		require.NoError(t, err)
		assert.Equal(t, "o=DOWNLOAD_COMMANDS&o=MESSAGES", env.Server.Requests()[0].Query)
	})

	t.Run("unknown option", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")

		err := env.Run(newCommand(env), "change", "show", "-o", "everything", "42")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidArgument))
		assert.Empty(t, env.Server.Requests())
	})

	t.Run("not found", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")

		err := env.Run(newCommand(env), "change", "show", "7")

		assert.True(t, errors.Is(err, domainErrors.ErrNotFound))
		assert.Contains(t, env.Out.String(), "status: 404")
	})

	t.Run("invalid id", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")

		err := env.Run(newCommand(env), "change", "show", "0")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidChangeID))
	})

	t.Run("missing argument", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")

		err := env.Run(newCommand(env), "change", "show")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidArgument))
	})

	t.Run("host not configured", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Config.Host = ""

		err := env.Run(newCommand(env), "change", "show", "42")

		assert.True(t, errors.Is(err, domainErrors.ErrHostMissing))
	})
}

func TestQueryCommand(t *testing.T) {
	t.Run("lists results", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/", "["+changeJSON+"]")

		err := env.Run(newCommand(env), "change", "query", "-n", "5", "status:open", "project:demo")

		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "Implementing Feature X")
		assert.Equal(t, "q=status%3Aopen+project%3Ademo&n=5", env.Server.Requests()[0].Query)
	})

	t.Run("no results", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/", "[]")

		err := env.Run(newCommand(env), "change", "query", "status:merged")

		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "No changes found")
	})
}

func TestReviewerCommands(t *testing.T) {
	t.Run("adds each reviewer", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPost, "/changes/42/reviewers", `{"input": "x"}`)

		err := env.Run(newCommand(env), "change", "reviewer", "add", "42", "alice", "bob@example.com")

		require.NoError(t, err)
		reqs := env.Server.Requests()
		require.Len(t, reqs, 2)
		assert.JSONEq(t, `{"reviewer":"alice"}`, reqs[0].Body)
		assert.JSONEq(t, `{"reviewer":"bob@example.com"}`, reqs[1].Body)
		assert.Contains(t, env.Out.String(), "bob@example.com")
	})

	t.Run("removes a reviewer", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.HandleStatus(http.MethodDelete, "/changes/42/reviewers/alice", http.StatusNoContent, "")

		err := env.Run(newCommand(env), "change", "reviewer", "rm", "42", "alice")

		require.NoError(t, err)
		assert.Equal(t, "/a/changes/42/reviewers/alice", env.Server.Requests()[0].Path)
	})
}

func TestVoteCommand(t *testing.T) {
	t.Run("posts the vote with a message", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPost, "/changes/42/revisions/current/review", `{"labels": {"Code-Review": 2}}`)

		err := env.Run(newCommand(env), "change", "vote", "-m", "LGTM", "42", "Code-Review=+2")

		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"LGTM","labels":{"Code-Review":2}}`, env.Server.Requests()[0].Body)
		assert.Contains(t, env.Out.String(), "Code-Review +2")
	})

	t.Run("malformed vote", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")

		err := env.Run(newCommand(env), "change", "vote", "42", "Code-Review=yes")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidArgument))
		assert.Empty(t, env.Server.Requests())
	})
}

func TestWorkflowCommands(t *testing.T) {
	t.Run("wip with empty response", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPost, "/changes/42/wip", "")

		err := env.Run(newCommand(env), "change", "wip", "42")

		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"Set work in progress"}`, env.Server.Requests()[0].Body)
	})

	t.Run("ready", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPost, "/changes/42/ready", "")

		err := env.Run(newCommand(env), "change", "ready", "42")

		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"Set ready for review"}`, env.Server.Requests()[0].Body)
	})

	t.Run("topic set", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPut, "/changes/42/topic", `"feature-x"`)

		err := env.Run(newCommand(env), "change", "topic", "set", "42", "feature-x")

		require.NoError(t, err)
		assert.JSONEq(t, `{"topic":"feature-x"}`, env.Server.Requests()[0].Body)
		assert.Contains(t, env.Out.String(), "feature-x")
	})

	t.Run("comment joins the words", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPost, "/changes/42/revisions/current/review", "{}")

		err := env.Run(newCommand(env), "change", "comment", "42", "please", "rebase")

		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"please rebase"}`, env.Server.Requests()[0].Body)
	})

	t.Run("assign", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodPut, "/changes/42/assignee", `{"_account_id": 1000097, "name": "Jane Roe"}`)

		err := env.Run(newCommand(env), "change", "assign", "42", "jroe")

		require.NoError(t, err)
		assert.JSONEq(t, `{"assignee":"jroe"}`, env.Server.Requests()[0].Body)
		assert.Contains(t, env.Out.String(), "Jane Roe")
	})
}

func TestReadCommands(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/42/messages", `[
  {"id": "m1", "author": {"_account_id": 1, "name": "Jane Roe"}, "date": "2013-03-23 21:34:02.419000000", "message": "Patch Set 1:\n\nLooks good"}
]`)

		err := env.Run(newCommand(env), "change", "messages", "42")

		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "Jane Roe")
		assert.Contains(t, env.Out.String(), "   Looks good")
	})

	t.Run("comments sorted by path", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/42/comments", `{
  "z.go": [{"id": "c2", "patch_set": 1, "line": 3, "message": "nit", "author": {"_account_id": 1, "name": "Jane"}}],
  "a.go": [{"id": "c1", "patch_set": 2, "message": "file comment", "author": {"_account_id": 2, "name": "Max"}}]
}`)

		err := env.Run(newCommand(env), "change", "comments", "42")

		require.NoError(t, err)
		out := env.Out.String()
		assert.Less(t, strings.Index(out, "a.go"), strings.Index(out, "z.go"))
		assert.Contains(t, out, "PS1:3 Jane: nit")
		assert.Contains(t, out, "PS2 Max: file comment")
	})

	t.Run("labels", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.Handle(http.MethodGet, "/changes/42", changeJSON)

		err := env.Run(newCommand(env), "change", "labels", "42")

		require.NoError(t, err)
		assert.Equal(t, "o=DETAILED_LABELS&o=DETAILED_ACCOUNTS", env.Server.Requests()[0].Query)
		assert.Contains(t, env.Out.String(), "+2 Jane Roe")
	})
}

const patchText = `From 184ebe53805e102605d11f6b143486d15c23a09c Mon Sep 17 00:00:00 2001
From: John Doe <john@example.com>
Subject: [PATCH] Implementing Feature X

---
 main.go | 2 +-
 1 file changed, 1 insertion(+), 1 deletion(-)

diff --git a/cmd/main.go b/cmd/main.go
index 1111111..2222222 100644
--- a/cmd/main.go
+++ b/cmd/main.go
@@ -1,2 +1,2 @@
 package main
-var x = 1
+var x = 2
` + "-- \n2.39.0\n"

func TestPatchCommand(t *testing.T) {
	t.Run("raw patch", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.HandleRaw(http.MethodGet, "/changes/42/revisions/current/patch", base64.StdEncoding.EncodeToString([]byte(patchText)))

		err := env.Run(newCommand(env), "change", "patch", "42")

		require.NoError(t, err)
		assert.Equal(t, patchText, env.Out.String())
	})

	t.Run("stat", func(t *testing.T) {
		env := commandtest.NewEnv(t, "")
		env.Server.HandleRaw(http.MethodGet, "/changes/42/revisions/current/patch", base64.StdEncoding.EncodeToString([]byte(patchText)))

		err := env.Run(newCommand(env), "change", "patch", "--stat", "42")

		require.NoError(t, err)
		out := env.Out.String()
		assert.Contains(t, out, "main.go (+1, -1)")
		assert.Contains(t, out, "1 file(s), +1 -1")
	})
}

package cache

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/commands/commandtest"
)

func TestCacheClean(t *testing.T) {
	env := commandtest.NewEnv(t, "")
	env.Server.Handle(http.MethodGet, "/accounts/?q=is:active&o=DETAILS&S=0", `[{"_account_id": 1, "username": "alice"}]`)

	dir, err := env.Container.Accounts()
	require.NoError(t, err)
	require.Len(t, dir.List(context.Background()), 1)

	store, err := env.Container.Cache()
	require.NoError(t, err)
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.NotEmpty(t, entries, "the directory list is persisted")

	err = env.Run(NewCacheCommandFactory(env.Container).CreateCommand(env.Translations, env.Config), "cache", "clean")

	require.NoError(t, err)
	_, statErr := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, env.Out.String(), "Cache cleaned")
}

package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/cache"
	"github.com/thomas-vilte/matereview/internal/models"
)

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Sync(ctx context.Context, method, path string, body, out interface{}) error {
	args := m.Called(ctx, method, path, body, out)
	return args.Error(0)
}

func page(t *testing.T, payload string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		require.NoError(t, json.Unmarshal([]byte(payload), args.Get(4)))
	}
}

func TestDirectory_ListIsLazyAndCached(t *testing.T) {
	client := new(MockSyncer)
	client.On("Sync", mock.Anything, http.MethodGet, "/accounts/?q=is:active&o=DETAILS&S=0", nil, mock.Anything).
		Run(page(t, `[{"_account_id": 1, "username": "alice"}, {"_account_id": 2, "email": "bob@example.com"}]`)).
		Return(nil).Once()
	dir := NewDirectory(client)

	client.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	first := dir.List(context.Background())
	second := dir.List(context.Background())

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alice", "bob@example.com"}, dir.Identifiers(context.Background()))
	client.AssertNumberOfCalls(t, "Sync", 1)
}

func TestDirectory_Pagination(t *testing.T) {
	client := new(MockSyncer)
	client.On("Sync", mock.Anything, http.MethodGet, "/accounts/?q=is:active&o=DETAILS&S=0", nil, mock.Anything).
		Run(page(t, `[{"_account_id": 1}, {"_account_id": 2, "_more_accounts": true}]`)).Return(nil).Once()
	client.On("Sync", mock.Anything, http.MethodGet, "/accounts/?q=is:active&o=DETAILS&S=2", nil, mock.Anything).
		Run(page(t, `[{"_account_id": 3}]`)).Return(nil).Once()
	dir := NewDirectory(client)

	accounts := dir.List(context.Background())

	require.Len(t, accounts, 3)
	assert.False(t, accounts[1].MoreAccounts)
	client.AssertExpectations(t)
}

func TestDirectory_FailureDegradesToEmpty(t *testing.T) {
	client := new(MockSyncer)
	client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
		Return(errors.New("boom")).Once()
	client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
		Run(page(t, `[{"_account_id": 5, "username": "eve"}]`)).Return(nil).Once()
	dir := NewDirectory(client)

	assert.Empty(t, dir.List(context.Background()))

	acct, ok := dir.ByID(context.Background(), 5)
	assert.True(t, ok, "a failed load is retried")
	assert.Equal(t, "eve", acct.Username)
}

func TestDirectory_RefreshAndInvalidate(t *testing.T) {
	client := new(MockSyncer)
	client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
		Run(page(t, `[{"_account_id": 1}]`)).Return(nil).Once()
	client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
		Run(page(t, `[{"_account_id": 1}, {"_account_id": 2}]`)).Return(nil).Once()
	client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
		Run(page(t, `[]`)).Return(nil).Once()
	dir := NewDirectory(client)

	assert.Len(t, dir.List(context.Background()), 1)
	assert.Len(t, dir.Refresh(context.Background()), 2)
	assert.Len(t, dir.List(context.Background()), 2)

	dir.Invalidate()
	assert.Empty(t, dir.List(context.Background()))

	_, ok := dir.ByID(context.Background(), 1)
	assert.False(t, ok)
	client.AssertNumberOfCalls(t, "Sync", 3)
}

func TestDirectory_Store(t *testing.T) {
	store, err := cache.NewCache(filepath.Join(t.TempDir(), "cache"), time.Hour)
	require.NoError(t, err)
	key := cache.Key("accounts", "review.example.com")

	t.Run("a fresh process reads the persisted list", func(t *testing.T) {
		client := new(MockSyncer)
		client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
			Run(page(t, `[{"_account_id": 1, "username": "alice"}]`)).Return(nil).Once()

		first := NewDirectory(client, WithStore(store, key))
		assert.Equal(t, []string{"alice"}, first.Identifiers(context.Background()))

		second := NewDirectory(client, WithStore(store, key))
		assert.Equal(t, []string{"alice"}, second.Identifiers(context.Background()))
		client.AssertNumberOfCalls(t, "Sync", 1)
	})

	t.Run("refresh replaces the persisted list", func(t *testing.T) {
		client := new(MockSyncer)
		client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
			Run(page(t, `[{"_account_id": 2, "username": "bob"}]`)).Return(nil).Once()

		dir := NewDirectory(client, WithStore(store, key))
		assert.Len(t, dir.Refresh(context.Background()), 1)

		var persisted []models.AccountInfo
		found, err := store.Get(key, &persisted)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "bob", persisted[0].Username)
	})

	t.Run("invalidate drops the persisted list", func(t *testing.T) {
		dir := NewDirectory(new(MockSyncer), WithStore(store, key))
		dir.Invalidate()

		var persisted []models.AccountInfo
		found, err := store.Get(key, &persisted)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("failed loads are not persisted", func(t *testing.T) {
		client := new(MockSyncer)
		client.On("Sync", mock.Anything, http.MethodGet, mock.Anything, nil, mock.Anything).
			Return(errors.New("boom")).Once()

		dir := NewDirectory(client, WithStore(store, key))
		assert.Empty(t, dir.List(context.Background()))

		var persisted []models.AccountInfo
		found, _ := store.Get(key, &persisted)
		assert.False(t, found)
	})
}

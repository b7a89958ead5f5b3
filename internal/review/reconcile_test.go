package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/models"
)

type MockWorkspace struct {
	mock.Mock
}

func (m *MockWorkspace) Fetch(ctx context.Context, remote, refspec string) (string, error) {
	args := m.Called(ctx, remote, refspec)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspace) BranchExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspace) ReadUpstream(ctx context.Context, name string) (TrackingState, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(TrackingState), args.Bool(1), args.Error(2)
}

func (m *MockWorkspace) CreateAndCheckout(ctx context.Context, name, commit string) error {
	return m.Called(ctx, name, commit).Error(0)
}

func (m *MockWorkspace) SetUpstream(ctx context.Context, name string, upstream TrackingState) error {
	return m.Called(ctx, name, upstream).Error(0)
}

func (m *MockWorkspace) ResetHard(ctx context.Context, name, commit string) error {
	return m.Called(ctx, name, commit).Error(0)
}

func (m *MockWorkspace) Checkout(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type MockOwnerResolver struct {
	mock.Mock
}

func (m *MockOwnerResolver) ByID(ctx context.Context, id int) (models.AccountInfo, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.AccountInfo), args.Bool(1)
}

func newChange() *models.ChangeInfo {
	return &models.ChangeInfo{
		Project:         "tools/gerrit",
		Branch:          "develop",
		ChangeID:        "I1",
		Number:          42,
		Owner:           &models.AccountInfo{AccountID: 7, Username: "alice"},
		CurrentRevision: "r1",
		Revisions: map[string]models.RevisionInfo{
			"r1": {Ref: "refs/changes/16/35216/2"},
		},
	}
}

func TestRefspec(t *testing.T) {
	ref, err := Refspec(newChange())

	require.NoError(t, err)
	assert.Equal(t, "refs/changes/16/35216/2", ref)
}

func TestRefspec_MetadataErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.ChangeInfo)
		want   *domainErrors.AppError
	}{
		{name: "no current revision", mutate: func(c *models.ChangeInfo) { c.CurrentRevision = "" }, want: domainErrors.ErrMissingCurrentRevision},
		{name: "revision not listed", mutate: func(c *models.ChangeInfo) { c.CurrentRevision = "r2" }, want: domainErrors.ErrUnknownRevision},
		{name: "no revisions at all", mutate: func(c *models.ChangeInfo) { c.Revisions = nil }, want: domainErrors.ErrUnknownRevision},
		{name: "empty ref", mutate: func(c *models.ChangeInfo) { c.Revisions["r1"] = models.RevisionInfo{} }, want: domainErrors.ErrMissingRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChange()
			tt.mutate(c)

			_, err := Refspec(c)

			assert.True(t, errors.Is(err, tt.want))
			var appErr *domainErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, domainErrors.TypeMetadata, appErr.Type)
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "alice", want: "alice"},
		{in: "john.doe", want: "john_doe"},
		{in: "a--b..c", want: "a_b_c"},
		{in: "x@example.com", want: "x_example_com"},
		{in: "under_score", want: "under_score"},
		{in: ".lead", want: "_lead"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestBranchName(t *testing.T) {
	c := newChange()
	assert.Equal(t, "review/john_doe/42", BranchName("john.doe", c))

	c.Topic = "feature-x"
	assert.Equal(t, "review/john_doe/feature-x", BranchName("john.doe", c))
}

func TestReconcile_CreatesNewBranch(t *testing.T) {
	ws := new(MockWorkspace)
	ctx := context.Background()
	ws.On("Fetch", ctx, "origin", "refs/changes/16/35216/2").Return("abc123", nil).Once()
	ws.On("BranchExists", ctx, "review/alice/42").Return(false, nil).Once()
	ws.On("CreateAndCheckout", ctx, "review/alice/42", "abc123").Return(nil).Once()
	ws.On("SetUpstream", ctx, "review/alice/42", TrackingState{Remote: "origin", Branch: "develop"}).Return(nil).Once()

	result, err := NewReconciler(ws, "origin").Reconcile(ctx, newChange())

	require.NoError(t, err)
	assert.Equal(t, Reconciled, result.State)
	assert.Equal(t, "review/alice/42", result.Branch)
	assert.Equal(t, "abc123", result.Commit)
	assert.True(t, result.Created)
	ws.AssertExpectations(t)
	ws.AssertNotCalled(t, "ResetHard", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_MovesMatchingBranch(t *testing.T) {
	ws := new(MockWorkspace)
	ctx := context.Background()
	ws.On("Fetch", ctx, "origin", "refs/changes/16/35216/2").Return("def456", nil).Once()
	ws.On("BranchExists", ctx, "review/alice/42").Return(true, nil).Once()
	ws.On("ReadUpstream", ctx, "review/alice/42").Return(TrackingState{Remote: "origin", Branch: "develop"}, true, nil).Once()
	ws.On("ResetHard", ctx, "review/alice/42", "def456").Return(nil).Once()
	ws.On("Checkout", ctx, "review/alice/42").Return(nil).Once()

	result, err := NewReconciler(ws, "origin").Reconcile(ctx, newChange())

	require.NoError(t, err)
	assert.Equal(t, Reconciled, result.State)
	assert.False(t, result.Created)
	ws.AssertExpectations(t)
	ws.AssertNotCalled(t, "SetUpstream", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_TrackingConflict(t *testing.T) {
	tests := []struct {
		name     string
		upstream TrackingState
		ok       bool
	}{
		{name: "tracks other branch", upstream: TrackingState{Remote: "origin", Branch: "main"}, ok: true},
		{name: "tracks other remote", upstream: TrackingState{Remote: "fork", Branch: "develop"}, ok: true},
		{name: "tracks nothing", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := new(MockWorkspace)
			ws.On("Fetch", mock.Anything, "origin", mock.Anything).Return("abc123", nil).Once()
			ws.On("BranchExists", mock.Anything, "review/alice/42").Return(true, nil).Once()
			ws.On("ReadUpstream", mock.Anything, "review/alice/42").Return(tt.upstream, tt.ok, nil).Once()

			result, err := NewReconciler(ws, "origin").Reconcile(context.Background(), newChange())

			require.Error(t, err)
			assert.True(t, errors.Is(err, domainErrors.ErrTrackingConflict))
			assert.Equal(t, Conflict, result.State)
			var appErr *domainErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "review/alice/42", appErr.Context["branch"])
			assert.Equal(t, "origin/develop", appErr.Context["expected"])

			ws.AssertNotCalled(t, "ResetHard", mock.Anything, mock.Anything, mock.Anything)
			ws.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
			ws.AssertNotCalled(t, "SetUpstream", mock.Anything, mock.Anything, mock.Anything)
			ws.AssertNotCalled(t, "CreateAndCheckout", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconcile_FetchFailure(t *testing.T) {
	ws := new(MockWorkspace)
	ws.On("Fetch", mock.Anything, "origin", mock.Anything).Return("", domainErrors.ErrFetch).Once()

	result, err := NewReconciler(ws, "origin").Reconcile(context.Background(), newChange())

	assert.True(t, errors.Is(err, domainErrors.ErrFetch))
	assert.Equal(t, NotFetched, result.State)
	ws.AssertNotCalled(t, "BranchExists", mock.Anything, mock.Anything)
}

func TestReconcile_MetadataErrorSkipsFetch(t *testing.T) {
	ws := new(MockWorkspace)
	c := newChange()
	c.CurrentRevision = "missing"

	_, err := NewReconciler(ws, "origin").Reconcile(context.Background(), c)

	assert.True(t, errors.Is(err, domainErrors.ErrUnknownRevision))
	ws.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_OwnerFromResolver(t *testing.T) {
	ws := new(MockWorkspace)
	owners := new(MockOwnerResolver)
	owners.On("ByID", mock.Anything, 7).Return(models.AccountInfo{AccountID: 7, Username: "bob.smith"}, true).Once()
	ws.On("Fetch", mock.Anything, "gerrit", mock.Anything).Return("abc", nil).Once()
	ws.On("BranchExists", mock.Anything, "review/bob_smith/topic-1").Return(false, nil).Once()
	ws.On("CreateAndCheckout", mock.Anything, "review/bob_smith/topic-1", "abc").Return(nil).Once()
	ws.On("SetUpstream", mock.Anything, "review/bob_smith/topic-1", TrackingState{Remote: "gerrit", Branch: "develop"}).Return(nil).Once()
	c := newChange()
	c.Owner = &models.AccountInfo{AccountID: 7}
	c.Topic = "topic-1"

	result, err := NewReconciler(ws, "gerrit", WithOwnerResolver(owners)).Reconcile(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, "review/bob_smith/topic-1", result.Branch)
	ws.AssertExpectations(t)
}

func TestReconcile_MissingOwner(t *testing.T) {
	ws := new(MockWorkspace)
	c := newChange()
	c.Owner = &models.AccountInfo{AccountID: 7}

	_, err := NewReconciler(ws, "origin").Reconcile(context.Background(), c)

	assert.True(t, errors.Is(err, domainErrors.ErrMissingOwner))
	ws.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not-fetched", NotFetched.String())
	assert.Equal(t, "conflict", Conflict.String())
	assert.Equal(t, "unknown", State(9).String())
}

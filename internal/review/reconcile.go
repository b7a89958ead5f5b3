// Package review maps a remote change onto a local tracking branch.
package review

import (
	"context"
	"strconv"
	"time"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/regex"
)

// TrackingState is the (remote, branch) pair a local branch follows.
type TrackingState struct {
	Remote string
	Branch string
}

// Workspace is the local repository the reconciler drives.
type Workspace interface {
	Fetch(ctx context.Context, remote, refspec string) (commit string, err error)
	BranchExists(ctx context.Context, name string) (bool, error)
	ReadUpstream(ctx context.Context, name string) (TrackingState, bool, error)
	CreateAndCheckout(ctx context.Context, name, commit string) error
	SetUpstream(ctx context.Context, name string, upstream TrackingState) error
	ResetHard(ctx context.Context, name, commit string) error
	Checkout(ctx context.Context, name string) error
}

// OwnerResolver looks up an account when the change only carries its id.
type OwnerResolver interface {
	ByID(ctx context.Context, id int) (models.AccountInfo, bool)
}

type State int

const (
	NotFetched State = iota
	Fetched
	Reconciled
	Conflict
)

func (s State) String() string {
	switch s {
	case NotFetched:
		return "not-fetched"
	case Fetched:
		return "fetched"
	case Reconciled:
		return "reconciled"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Result describes a reconciliation, successful or not.
type Result struct {
	State   State
	Branch  string
	Refspec string
	Commit  string
	// Created is false when an existing branch was moved.
	Created bool
}

type Reconciler struct {
	ws     Workspace
	remote string
	owners OwnerResolver
}

type Option func(*Reconciler)

// WithOwnerResolver sets where owner usernames come from when the change
// was fetched without DETAILED_ACCOUNTS.
func WithOwnerResolver(o OwnerResolver) Option {
	return func(r *Reconciler) {
		r.owners = o
	}
}

func NewReconciler(ws Workspace, remote string, opts ...Option) *Reconciler {
	r := &Reconciler{ws: ws, remote: remote}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile fetches the current revision of change and checks it out on
// its review branch. An existing branch that tracks anything other than
// (remote, change.Branch) is left untouched and a TRACKING error returned.
func (r *Reconciler) Reconcile(ctx context.Context, change *models.ChangeInfo) (*Result, error) {
	log := logger.FromContext(ctx).With("change", change.Number)
	start := time.Now()
	result := &Result{State: NotFetched}

	refspec, err := Refspec(change)
	if err != nil {
		return result, err
	}
	result.Refspec = refspec

	owner, err := r.ownerUsername(ctx, change)
	if err != nil {
		return result, err
	}
	result.Branch = BranchName(owner, change)

	commit, err := r.ws.Fetch(ctx, r.remote, refspec)
	if err != nil {
		return result, err
	}
	result.Commit = commit
	result.State = Fetched
	log.Debug("fetched", "refspec", refspec, "commit", commit)

	expected := TrackingState{Remote: r.remote, Branch: change.Branch}

	exists, err := r.ws.BranchExists(ctx, result.Branch)
	if err != nil {
		return result, err
	}

	if exists {
		current, ok, err := r.ws.ReadUpstream(ctx, result.Branch)
		if err != nil {
			return result, err
		}
		if !ok || current != expected {
			result.State = Conflict
			log.Warn("branch tracks a different upstream",
				"branch", result.Branch,
				"expected", expected.Remote+"/"+expected.Branch,
				"actual", formatTracking(current, ok))
			return result, domainErrors.ErrTrackingConflict.
				WithContext("branch", result.Branch).
				WithContext("expected", expected.Remote+"/"+expected.Branch).
				WithContext("actual", formatTracking(current, ok))
		}
		if err := r.ws.ResetHard(ctx, result.Branch, commit); err != nil {
			return result, err
		}
		if err := r.ws.Checkout(ctx, result.Branch); err != nil {
			return result, err
		}
	} else {
		if err := r.ws.CreateAndCheckout(ctx, result.Branch, commit); err != nil {
			return result, err
		}
		if err := r.ws.SetUpstream(ctx, result.Branch, expected); err != nil {
			return result, err
		}
		result.Created = true
	}

	result.State = Reconciled
	log.Debug("reconciled",
		"branch", result.Branch,
		"created", result.Created,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// Refspec returns the fetch ref of the change's current revision.
func Refspec(change *models.ChangeInfo) (string, error) {
	if change.CurrentRevision == "" {
		return "", domainErrors.ErrMissingCurrentRevision.WithContext("change", change.Number)
	}
	rev, ok := change.CurrentRevisionInfo()
	if !ok {
		return "", domainErrors.ErrUnknownRevision.
			WithContext("change", change.Number).
			WithContext("revision", change.CurrentRevision)
	}
	if rev.Ref == "" {
		return "", domainErrors.ErrMissingRef.
			WithContext("change", change.Number).
			WithContext("revision", change.CurrentRevision)
	}
	return rev.Ref, nil
}

// Sanitize replaces every run of non-word characters with "_".
func Sanitize(s string) string {
	return regex.NonWord.ReplaceAllString(s, "_")
}

// BranchName is review/<owner>/<topic>, or review/<owner>/<number> for a
// change without a topic.
func BranchName(owner string, change *models.ChangeInfo) string {
	suffix := change.Topic
	if suffix == "" {
		suffix = strconv.Itoa(change.Number)
	}
	return "review/" + Sanitize(owner) + "/" + suffix
}

func (r *Reconciler) ownerUsername(ctx context.Context, change *models.ChangeInfo) (string, error) {
	if change.Owner == nil {
		return "", domainErrors.ErrMissingOwner.WithContext("change", change.Number)
	}
	if change.Owner.Username != "" {
		return change.Owner.Username, nil
	}
	if r.owners != nil {
		if acct, ok := r.owners.ByID(ctx, change.Owner.AccountID); ok && acct.Username != "" {
			return acct.Username, nil
		}
	}
	return "", domainErrors.ErrMissingOwner.
		WithContext("change", change.Number).
		WithContext("account", change.Owner.AccountID)
}

func formatTracking(t TrackingState, ok bool) string {
	if !ok {
		return "(none)"
	}
	return t.Remote + "/" + t.Branch
}

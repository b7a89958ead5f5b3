package topic

import (
	"context"

	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
)

// ChangeOps is the subset of changes.Service the topic commands fan out.
type ChangeOps interface {
	AddReviewer(ctx context.Context, id changes.ChangeID, reviewer string) error
	RemoveReviewer(ctx context.Context, id changes.ChangeID, reviewer string) error
	SetLabelVote(ctx context.Context, id changes.ChangeID, vote changes.LabelVote, message string) error
	SetWorkInProgress(ctx context.Context, id changes.ChangeID) error
	SetReadyForReview(ctx context.Context, id changes.ChangeID) error
	AddComment(ctx context.Context, id changes.ChangeID, message string) error
}

// Operations binds topic-wide commands to a change service.
type Operations struct {
	fanout *Fanout
	ops    ChangeOps
}

func NewOperations(fanout *Fanout, ops ChangeOps) *Operations {
	return &Operations{fanout: fanout, ops: ops}
}

// SetReviewers adds every reviewer to every change, in order. Reviewer
// identifiers are sent unchecked; the first rejection stops the run.
func (o *Operations) SetReviewers(ctx context.Context, topic string, reviewers []string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, func(ctx context.Context, id changes.ChangeID) error {
		for _, r := range reviewers {
			if err := o.ops.AddReviewer(ctx, id, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (o *Operations) RemoveReviewer(ctx context.Context, topic, reviewer string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, func(ctx context.Context, id changes.ChangeID) error {
		return o.ops.RemoveReviewer(ctx, id, reviewer)
	})
}

func (o *Operations) SetLabelVote(ctx context.Context, topic string, vote changes.LabelVote, message string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, func(ctx context.Context, id changes.ChangeID) error {
		return o.ops.SetLabelVote(ctx, id, vote, message)
	})
}

func (o *Operations) SetWorkInProgress(ctx context.Context, topic string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, o.ops.SetWorkInProgress)
}

func (o *Operations) SetReadyForReview(ctx context.Context, topic string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, o.ops.SetReadyForReview)
}

func (o *Operations) AddComment(ctx context.Context, topic, message string) ([]ItemResult, error) {
	return o.fanout.ApplyToTopic(ctx, topic, func(ctx context.Context, id changes.ChangeID) error {
		return o.ops.AddComment(ctx, id, message)
	})
}

// Package changes implements the typed per-change operations under
// /changes/ on top of the REST session layer.
package changes

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
)

const (
	wipMessage   = "Set work in progress"
	readyMessage = "Set ready for review"
)

// Requester is the part of rest.Client the operations need.
type Requester interface {
	Sync(ctx context.Context, method, path string, body, out interface{}) error
	SyncRaw(ctx context.Context, method, path string) ([]byte, error)
}

// LabelVote is a vote on one label. Value is forwarded as is.
type LabelVote struct {
	Label string
	Value int
}

type Service struct {
	client Requester
}

func NewService(client Requester) *Service {
	return &Service{client: client}
}

// Get fetches one change with the given options.
func (s *Service) Get(ctx context.Context, id ChangeID, opts ...QueryOption) (*models.ChangeInfo, error) {
	canonical, err := Canonical(opts...)
	if err != nil {
		return nil, err
	}

	var change models.ChangeInfo
	if err := s.client.Sync(ctx, http.MethodGet, id.path(queryString("", canonical, 0)), nil, &change); err != nil {
		return nil, err
	}
	if err := models.Validate(&change); err != nil {
		return nil, err
	}
	return &change, nil
}

// Query runs a search expression. limit <= 0 leaves the server default.
func (s *Service) Query(ctx context.Context, expr string, limit int, opts ...QueryOption) ([]models.ChangeInfo, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(expr) == "" {
		return nil, domainErrors.ErrInvalidArgument.WithContext("query", expr)
	}
	canonical, err := Canonical(opts...)
	if err != nil {
		return nil, err
	}

	var result []models.ChangeInfo
	if err := s.client.Sync(ctx, http.MethodGet, "/changes/"+queryString(expr, canonical, limit), nil, &result); err != nil {
		return nil, err
	}
	if err := models.Validate(result); err != nil {
		return nil, err
	}

	log.Debug("query completed", "query", expr, "count", len(result))
	return result, nil
}

// FindByCommits returns the caller's own changes whose current revision is
// one of commits.
func (s *Service) FindByCommits(ctx context.Context, commits []string, opts ...QueryOption) ([]models.ChangeInfo, error) {
	if len(commits) == 0 {
		return nil, nil
	}
	terms := make([]string, len(commits))
	for i, c := range commits {
		terms[i] = "commit:" + c
	}
	expr := "owner:self (" + strings.Join(terms, " OR ") + ")"
	return s.Query(ctx, expr, len(commits), opts...)
}

func (s *Service) SetAssignee(ctx context.Context, id ChangeID, assignee string) (*models.AccountInfo, error) {
	var account models.AccountInfo
	body := models.AssigneeInput{Assignee: assignee}
	if err := s.client.Sync(ctx, http.MethodPut, id.path("/assignee"), body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// AddReviewer adds one account or group. The identifier is passed to the
// server unchecked.
func (s *Service) AddReviewer(ctx context.Context, id ChangeID, reviewer string) error {
	body := models.ReviewerInput{Reviewer: reviewer}
	return s.client.Sync(ctx, http.MethodPost, id.path("/reviewers"), body, nil)
}

func (s *Service) RemoveReviewer(ctx context.Context, id ChangeID, reviewer string) error {
	return s.client.Sync(ctx, http.MethodDelete, id.path("/reviewers/"+url.PathEscape(reviewer)), nil, nil)
}

// SetTopic returns the topic as stored by the server.
func (s *Service) SetTopic(ctx context.Context, id ChangeID, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", domainErrors.ErrEmptyTopic
	}
	var stored string
	if err := s.client.Sync(ctx, http.MethodPut, id.path("/topic"), models.TopicInput{Topic: topic}, &stored); err != nil {
		return "", err
	}
	return stored, nil
}

func (s *Service) DeleteTopic(ctx context.Context, id ChangeID) error {
	return s.client.Sync(ctx, http.MethodDelete, id.path("/topic"), nil, nil)
}

// SetLabelVote posts a review on the current revision carrying one vote.
func (s *Service) SetLabelVote(ctx context.Context, id ChangeID, vote LabelVote, message string) error {
	if strings.TrimSpace(vote.Label) == "" {
		return domainErrors.ErrInvalidArgument.WithContext("label", vote.Label)
	}
	body := models.ReviewInput{
		Message: message,
		Labels:  map[string]int{vote.Label: vote.Value},
	}
	return s.client.Sync(ctx, http.MethodPost, id.path("/revisions/current/review"), body, nil)
}

func (s *Service) SetWorkInProgress(ctx context.Context, id ChangeID) error {
	body := models.WorkInProgressInput{Message: wipMessage}
	return s.client.Sync(ctx, http.MethodPost, id.path("/wip"), body, nil)
}

func (s *Service) SetReadyForReview(ctx context.Context, id ChangeID) error {
	body := models.WorkInProgressInput{Message: readyMessage}
	return s.client.Sync(ctx, http.MethodPost, id.path("/ready"), body, nil)
}

// AddComment posts a change-level message on the current revision.
func (s *Service) AddComment(ctx context.Context, id ChangeID, message string) error {
	if strings.TrimSpace(message) == "" {
		return domainErrors.ErrInvalidArgument.WithContext("message", message)
	}
	return s.client.Sync(ctx, http.MethodPost, id.path("/revisions/current/review"), models.ReviewInput{Message: message}, nil)
}

func (s *Service) GetMessages(ctx context.Context, id ChangeID) ([]models.ChangeMessageInfo, error) {
	var messages []models.ChangeMessageInfo
	if err := s.client.Sync(ctx, http.MethodGet, id.path("/messages"), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetComments returns published inline comments keyed by file path.
func (s *Service) GetComments(ctx context.Context, id ChangeID) (map[string][]models.CommentInfo, error) {
	var comments map[string][]models.CommentInfo
	if err := s.client.Sync(ctx, http.MethodGet, id.path("/comments"), nil, &comments); err != nil {
		return nil, err
	}
	for path, list := range comments {
		for i := range list {
			if list[i].Path == "" {
				list[i].Path = path
			}
		}
	}
	return comments, nil
}

// GetCurrentLabels returns the labels of the current patch set with every
// vote.
func (s *Service) GetCurrentLabels(ctx context.Context, id ChangeID) (models.LabelSet, error) {
	change, err := s.Get(ctx, id, DetailedLabels, DetailedAccounts)
	if err != nil {
		return nil, err
	}
	return models.LabelSet(change.Labels), nil
}

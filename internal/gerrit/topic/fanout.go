// Package topic applies change operations to every open change in a topic.
//
// Application is sequential and not transactional: the first failure stops
// the run, changes before it stay mutated and changes after it are never
// touched. Callers get one ItemResult per attempted change.
package topic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
)

// Querier runs change searches.
type Querier interface {
	Query(ctx context.Context, expr string, limit int, opts ...changes.QueryOption) ([]models.ChangeInfo, error)
}

// Operation mutates one change.
type Operation func(ctx context.Context, id changes.ChangeID) error

// ItemResult is the outcome for one change. Err is nil on success.
type ItemResult struct {
	ID     changes.ChangeID
	Number int
	Err    error
}

type Fanout struct {
	query Querier
	limit int
}

// NewFanout creates a fan-out over q. limit bounds the member query; 0
// leaves the server default.
func NewFanout(q Querier, limit int) *Fanout {
	return &Fanout{query: q, limit: limit}
}

// Members lists the open changes of topic in server order.
func (f *Fanout) Members(ctx context.Context, topic string) ([]models.ChangeInfo, error) {
	term, err := topicTerm(topic)
	if err != nil {
		return nil, err
	}
	return f.query.Query(ctx, "is:open "+term, f.limit)
}

// Info lists every change of topic with download commands, current
// revision, commit, labels and accounts.
func (f *Fanout) Info(ctx context.Context, topic string) ([]models.ChangeInfo, error) {
	term, err := topicTerm(topic)
	if err != nil {
		return nil, err
	}
	return f.query.Query(ctx, term, f.limit, changes.TopicOptions...)
}

// ApplyToTopic runs op on each open change of topic, in query order,
// stopping at the first failure. The results cover every change attempted,
// the failing one last; the returned error wraps its failure.
func (f *Fanout) ApplyToTopic(ctx context.Context, topic string, op Operation) ([]ItemResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	members, err := f.Members(ctx, topic)
	if err != nil {
		return nil, err
	}

	results := make([]ItemResult, 0, len(members))
	for i := range members {
		id := changes.FromChange(&members[i])
		item := ItemResult{ID: id, Number: members[i].Number}

		if err := op(ctx, id); err != nil {
			item.Err = err
			results = append(results, item)
			log.Warn("topic operation stopped",
				"topic", topic,
				"change", members[i].Number,
				"applied", i,
				"total", len(members),
				"error", err)
			return results, itemError(topic, item, i, len(members))
		}

		results = append(results, item)
		log.Debug("topic operation applied", "topic", topic, "change", members[i].Number)
	}

	log.Debug("topic operation finished",
		"topic", topic,
		"count", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// Succeeded returns the results without an error.
func Succeeded(results []ItemResult) []ItemResult {
	var out []ItemResult
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}

func itemError(topic string, item ItemResult, applied, total int) error {
	var appErr *domainErrors.AppError
	if errors.As(item.Err, &appErr) {
		return appErr.
			WithContext("topic", topic).
			WithContext("change", item.ID.String()).
			WithContext("applied", applied).
			WithContext("total", total)
	}
	return fmt.Errorf("topic %s: change %s (%d of %d applied): %w", topic, item.ID, applied, total, item.Err)
}

// topicTerm quotes the topic when it contains characters the query
// language would split on.
func topicTerm(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", domainErrors.ErrEmptyTopic
	}
	if strings.ContainsAny(topic, " \t\"(){}:") {
		return `topic:"` + strings.ReplaceAll(topic, `"`, `\"`) + `"`, nil
	}
	return "topic:" + topic, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhq/task-manager-api/internal/api/metrics"
	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, taskID, action string, ts time.Time) (bool, error)
	Mark(ctx context.Context, taskID, action string, ts time.Time) error
}

type activityService struct {
	repo  ports.ActivityRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewActivityService returns an ActivityService implementation.
func NewActivityService(repo ports.ActivityRepository, dedup DedupChecker, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, dedup: dedup, log: log}
}

// Process deduplicates and persists a single activity record.
func (s *activityService) Process(ctx context.Context, in ports.TaskActivityInput) error {
	// Idempotency check — silently skip duplicates.
	isDup, err := s.dedup.IsDuplicate(ctx, in.TaskID, in.Action, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("task_id", in.TaskID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.ActivityDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("task_id", in.TaskID).Str("action", in.Action).Msg("duplicate activity skipped")
		return nil
	}
	metrics.ActivityDedupTotal.WithLabelValues("miss").Inc()

	// Mark as processed before writing (prevents duplicate processing on retry).
	if markErr := s.dedup.Mark(ctx, in.TaskID, in.Action, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("task_id", in.TaskID).Msg("failed to set dedup key")
	}

	activity := &domain.TaskActivity{
		TaskID:    in.TaskID,
		ActorID:   in.ActorID,
		Action:    domain.ActivityAction(in.Action),
		Detail:    in.Detail,
		Timestamp: in.Timestamp,
	}
	if err := s.repo.Insert(ctx, activity); err != nil {
		metrics.ActivityErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("process activity: %w", err)
	}

	metrics.ActivityProcessedTotal.WithLabelValues(in.Action).Inc()
	return nil
}

func (s *activityService) ListByTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error) {
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return s.repo.ListByTask(ctx, taskID, limit)
}

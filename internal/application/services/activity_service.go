package services

import (
	"context"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// ActivityService exposes login history and app session tracking
type ActivityService struct {
	repo repositories.ActivityRepository
}

// NewActivityService creates a new activity service
func NewActivityService(repo repositories.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// RecordSession stores a session of the client app. Sessions not longer
// than MinSessionDuration are dropped and nil is returned.
func (s *ActivityService) RecordSession(ctx context.Context, userID int64, start, end time.Time) (*entities.UserSession, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.NewValidationError("session start and end are required")
	}
	if end.Before(start) {
		return nil, apperrors.NewValidationError("session end is before its start")
	}
	duration := end.Sub(start)
	if duration <= entities.MinSessionDuration {
		return nil, nil
	}

	session := &entities.UserSession{
		UserID:          userID,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: int64(duration / time.Second),
	}
	if err := s.repo.AppendSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions lists a user's sessions; zero lists all users
func (s *ActivityService) ListSessions(ctx context.Context, userID int64) ([]*entities.UserSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

// ListAuthLogs lists the retained login and logout entries
func (s *ActivityService) ListAuthLogs(ctx context.Context) ([]*entities.AuthLog, error) {
	return s.repo.ListAuthLogs(ctx)
}

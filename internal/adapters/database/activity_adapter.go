package database

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// ActivityAdapter implements the ActivityRepository interface
type ActivityAdapter struct {
	authLogs *collection[entities.AuthLog]
	sessions *collection[entities.UserSession]
}

// NewActivityAdapter creates a new activity adapter
func NewActivityAdapter(store providers.StorageProvider) repositories.ActivityRepository {
	return &ActivityAdapter{
		authLogs: newCollection(store, storage.KeyAuthLogs, "auth log",
			func(l *entities.AuthLog) int64 { return l.ID },
			func(l *entities.AuthLog, id int64) { l.ID = id }),
		sessions: newCollection(store, storage.KeyUserSessions, "session",
			func(s *entities.UserSession) int64 { return s.ID },
			func(s *entities.UserSession, id int64) { s.ID = id }),
	}
}

// AppendAuthLog stores an auth event and trims to MaxAuthLogs
func (a *ActivityAdapter) AppendAuthLog(ctx context.Context, entry *entities.AuthLog) error {
	return a.authLogs.appendCapped(ctx, entry, entities.MaxAuthLogs)
}

// ListAuthLogs returns auth events newest first
func (a *ActivityAdapter) ListAuthLogs(ctx context.Context) ([]*entities.AuthLog, error) {
	logs, err := a.authLogs.all(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(logs), nil
}

// AppendSession stores a session and trims to MaxUserSessions
func (a *ActivityAdapter) AppendSession(ctx context.Context, session *entities.UserSession) error {
	return a.sessions.appendCapped(ctx, session, entities.MaxUserSessions)
}

// ListSessions returns sessions newest first; userID 0 lists everyone
func (a *ActivityAdapter) ListSessions(ctx context.Context, userID int64) ([]*entities.UserSession, error) {
	sessions, err := a.sessions.all(ctx)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		sessions = filterItems(sessions, func(s *entities.UserSession) bool { return s.UserID == userID })
	}
	return newestFirst(sessions), nil
}

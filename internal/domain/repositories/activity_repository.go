package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// ActivityRepository keeps the capped auth and session logs
type ActivityRepository interface {
	// AppendAuthLog stores the entry, dropping the oldest beyond MaxAuthLogs
	AppendAuthLog(ctx context.Context, entry *entities.AuthLog) error
	ListAuthLogs(ctx context.Context) ([]*entities.AuthLog, error)

	// AppendSession stores the session, dropping the oldest beyond MaxUserSessions
	AppendSession(ctx context.Context, session *entities.UserSession) error
	ListSessions(ctx context.Context, userID int64) ([]*entities.UserSession, error)
}

package services

import (
	"context"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// Requester identifies who is calling a service operation
type Requester struct {
	UserID int64
	Role   entities.Role
}

// CanAccess reports whether the requester may see a record owned by ownerID
func (r Requester) CanAccess(ownerID int64) bool {
	return r.Role.IsStaff() || (r.UserID != 0 && r.UserID == ownerID)
}

type requesterKey struct{}

// WithRequester returns a context carrying the authenticated caller
func WithRequester(ctx context.Context, req Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, req)
}

// RequesterFromContext returns the caller stored by WithRequester
func RequesterFromContext(ctx context.Context) (Requester, bool) {
	req, ok := ctx.Value(requesterKey{}).(Requester)
	return req, ok
}

// notFoundFor hides records of other users behind a NotFound error
func notFoundFor(entity string) error {
	return apperrors.NewNotFoundError(entity + " not found")
}

// lifecycle holds the collaborators shared by the booking services
type lifecycle struct {
	now      func() time.Time
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

func newLifecycle() lifecycle {
	return lifecycle{now: time.Now}
}

// SetClock overrides the time source
func (l *lifecycle) SetClock(now func() time.Time) {
	l.now = now
}

// SetEventBus sets the event bus used to publish order events
func (l *lifecycle) SetEventBus(eventBus providers.EventBus) {
	l.eventBus = eventBus
}

// SetMetrics sets the metrics recorder
func (l *lifecycle) SetMetrics(metrics *observability.Metrics) {
	l.metrics = metrics
}

// publish sends event on the record's channel and the global updates channel.
// Failures are logged; the change itself is already persisted.
func (l *lifecycle) publish(ctx context.Context, event *entities.OrderEvent) {
	if l.eventBus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)
	channels := []string{
		providers.GetOrderChannel(event.Kind, event.RecordID),
		providers.EventChannelOrderUpdates,
	}
	for _, channel := range channels {
		if err := l.eventBus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Str("event_id", event.ID).Msg("failed to publish order event")
		}
	}
}

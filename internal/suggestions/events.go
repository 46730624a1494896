package suggestions

import (
	"context"

	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/eventbus"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/validation"
	"go.uber.org/zap"
)

const trendingConsumer = "suggestions-trending"

// Subscriber delivers bus events to a handler.
type Subscriber interface {
	Subscribe(ctx context.Context, subject, consumerName string, handler eventbus.HandlerFunc) error
}

var _ Subscriber = (*eventbus.Bus)(nil)

// EventListener drops cached trending counts whenever a request changes.
type EventListener struct {
	cache *cache.Manager
}

// NewEventListener creates a listener over cacheManager.
func NewEventListener(cacheManager *cache.Manager) *EventListener {
	return &EventListener{cache: cacheManager}
}

// Start subscribes to every request lifecycle subject.
func (l *EventListener) Start(ctx context.Context, sub Subscriber) error {
	return sub.Subscribe(ctx, eventbus.SubjectRequestsAll, trendingConsumer, l.HandleEvent)
}

// HandleEvent invalidates the trending cache. Undecodable or invalid
// payloads are acked and logged so they are not redelivered forever.
func (l *EventListener) HandleEvent(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.RequestLifecycleData
	if err := event.Decode(&data); err != nil {
		logger.WarnContext(ctx, "dropping malformed request event",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return nil
	}
	if err := validation.ValidateStruct(data); err != nil {
		logger.WarnContext(ctx, "dropping invalid request event",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return nil
	}

	removed, err := l.cache.Invalidate(ctx, cache.Keys.TrendingPattern())
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "trending cache invalidated",
		zap.String("type", event.Type),
		zap.String("request_id", data.RequestID.String()),
		zap.String("category", data.Category),
		zap.Int("keys_removed", removed),
	)
	return nil
}

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is a single audit record describing a mutating business operation.
type Event struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"` // e.g. "order.created", "product.stock_adjusted"
	Entity    string    `json:"entity"` // "order", "product", "customer"
	EntityID  int64     `json:"entity_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink records audit events. Implementations are fire-and-forget: a failing
// sink must never fail the business operation that produced the event.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// NewEvent fills in the generated ID and timestamp.
func NewEvent(orgID, actorID int64, action, entity string, entityID int64, detail string) Event {
	return Event{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
}

// redisSink publishes events to a redis channel. Subscribers (audit writers,
// dashboards) consume them out of band.
type redisSink struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisSink returns a Sink publishing JSON events to the given channel.
func NewRedisSink(client *redis.Client, channel string, log *zap.Logger) Sink {
	return &redisSink{client: client, channel: channel, log: log}
}

func (s *redisSink) Record(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("audit event marshal failed", zap.String("action", ev.Action), zap.Error(err))
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.log.Warn("audit event publish failed",
			zap.String("action", ev.Action),
			zap.Int64("entity_id", ev.EntityID),
			zap.Error(err))
	}
}

// nopSink drops all events. Used when redis is not configured.
type nopSink struct{}

// NewNopSink returns a Sink that discards everything.
func NewNopSink() Sink { return nopSink{} }

func (nopSink) Record(context.Context, Event) {}

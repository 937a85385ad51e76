package livequery

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

// Refresher is anything that re-reads on demand, usually a *Feed.
type Refresher interface {
	Refresh()
}

// Notifier tells feeds that a topic changed.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// Bus routes notifications to the feeds of this process.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]Refresher
}

func NewBus() *Bus {
	return &Bus{topics: make(map[string][]Refresher)}
}

func (b *Bus) Register(topic string, r Refresher) {
	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], r)
	b.mu.Unlock()
}

func (b *Bus) Notify(_ context.Context, topic string) {
	b.mu.RLock()
	refreshers := b.topics[topic]
	b.mu.RUnlock()
	for _, r := range refreshers {
		r.Refresh()
	}
}

type fanoutMessage struct {
	Topic  string `json:"topic"`
	Origin string `json:"origin"`
}

// RedisFanout notifies the local bus and every other instance subscribed to
// the same channel.
type RedisFanout struct {
	bus     *Bus
	rc      *redis.Client
	channel string
	origin  string
	logger  *zap.Logger
}

func NewRedisFanout(bus *Bus, rc *redis.Client, logger *zap.Logger) *RedisFanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFanout{
		bus:     bus,
		rc:      rc,
		channel: rc.Key("livequery"),
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

func (r *RedisFanout) Notify(ctx context.Context, topic string) {
	r.bus.Notify(ctx, topic)

	data, err := json.Marshal(fanoutMessage{Topic: topic, Origin: r.origin})
	if err != nil {
		return
	}
	if err := r.rc.Publish(ctx, r.channel, string(data)); err != nil {
		r.logger.Warn("livequery publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Run relays notifications published by other instances until ctx is done.
func (r *RedisFanout) Run(ctx context.Context) {
	pubsub := r.rc.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg fanoutMessage
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == r.origin || msg.Topic == "" {
				continue
			}
			r.bus.Notify(ctx, msg.Topic)
		}
	}
}

package auth

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

// StateChange says a browser session signed in or out.
type StateChange struct {
	SessionID string     `json:"sid"`
	State     gate.State `json:"state"`
}

type stateMessage struct {
	StateChange
	Origin string `json:"origin"`
}

// StateBus pushes auth-state changes to listeners, usually the socket
// gateway. With Redis it also reaches listeners on other instances.
type StateBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(StateChange)

	rc      *pkgredis.Client
	channel string
	origin  string
	logger  *zap.Logger
}

// NewStateBus returns a bus. rc may be nil for a single instance.
func NewStateBus(rc *pkgredis.Client, logger *zap.Logger) *StateBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &StateBus{
		subs:   make(map[int]func(StateChange)),
		rc:     rc,
		origin: uuid.NewString(),
		logger: logger,
	}
	if rc != nil {
		b.channel = rc.Key("auth-state")
	}
	return b
}

// Subscribe registers fn and returns its cancel func. fn must not block.
func (b *StateBus) Subscribe(fn func(StateChange)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *StateBus) Publish(ctx context.Context, change StateChange) {
	b.deliver(change)
	if b.rc == nil {
		return
	}
	data, err := json.Marshal(stateMessage{StateChange: change, Origin: b.origin})
	if err != nil {
		return
	}
	if err := b.rc.Publish(ctx, b.channel, string(data)); err != nil {
		b.logger.Warn("auth state publish failed", zap.Error(err))
	}
}

func (b *StateBus) deliver(change StateChange) {
	b.mu.RLock()
	subs := make([]func(StateChange), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(change)
	}
}

// Run relays changes published by other instances until ctx is done.
func (b *StateBus) Run(ctx context.Context) {
	if b.rc == nil {
		<-ctx.Done()
		return
	}
	pubsub := b.rc.Subscribe(ctx, b.channel)
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
			var msg stateMessage
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == b.origin || msg.SessionID == "" {
				continue
			}
			b.deliver(msg.StateChange)
		}
	}
}

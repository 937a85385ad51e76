// Package livequery turns store reads into push streams. A Feed re-reads its
// collection whenever its topic is notified and hands the ordered snapshot
// to every subscriber.
package livequery

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topics, one per watched collection or path.
const (
	TopicPrograms   = "programs"
	TopicEvents     = "events"
	TopicGallery    = "gallery"
	TopicSiteConfig = "site_config"
	TopicActivity   = "activity_logs"
)

var ErrClosed = errors.New("livequery: feed closed")

// Snapshot is one complete, ordered read. Err is set when the read failed;
// Items then still holds the last good read, empty if there was none.
type Snapshot[T any] struct {
	Items []T
	Err   error
	At    time.Time
}

// Fetcher reads the full ordered snapshot of a collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Feed owns the subscriber set of one topic. All state lives in the Run
// goroutine; other goroutines talk to it over channels.
type Feed[T any] struct {
	topic  string
	fetch  Fetcher[T]
	logger *zap.Logger

	subscribe   chan *Subscription[T]
	unsubscribe chan *Subscription[T]
	refresh     chan struct{}
	latest      chan chan Snapshot[T]
	done        chan struct{}
}

func NewFeed[T any](topic string, fetch Fetcher[T], logger *zap.Logger) *Feed[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed[T]{
		topic:       topic,
		fetch:       fetch,
		logger:      logger,
		subscribe:   make(chan *Subscription[T]),
		unsubscribe: make(chan *Subscription[T]),
		refresh:     make(chan struct{}, 1),
		latest:      make(chan chan Snapshot[T]),
		done:        make(chan struct{}),
	}
}

func (f *Feed[T]) Topic() string { return f.topic }

// Run reads the first snapshot and then serves subscribers until ctx is done.
func (f *Feed[T]) Run(ctx context.Context) {
	defer close(f.done)

	subs := make(map[*Subscription[T]]struct{})
	current := f.read(ctx, Snapshot[T]{})

	for {
		select {
		case <-ctx.Done():
			for sub := range subs {
				close(sub.ch)
			}
			return

		case sub := <-f.subscribe:
			subs[sub] = struct{}{}
			sub.offer(current)

		case sub := <-f.unsubscribe:
			if _, ok := subs[sub]; ok {
				delete(subs, sub)
				close(sub.ch)
			}

		case <-f.refresh:
			current = f.read(ctx, current)
			for sub := range subs {
				sub.offer(current)
			}

		case reply := <-f.latest:
			// A refresh requested before this call is served first.
			select {
			case <-f.refresh:
				current = f.read(ctx, current)
				for sub := range subs {
					sub.offer(current)
				}
			default:
			}
			reply <- current
		}
	}
}

// read fetches a fresh snapshot. A failed fetch carries prev's items.
func (f *Feed[T]) read(ctx context.Context, prev Snapshot[T]) Snapshot[T] {
	items, err := f.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.logger.Warn("live query read failed", zap.String("topic", f.topic), zap.Error(err))
		}
		return Snapshot[T]{Items: prev.Items, Err: err, At: time.Now()}
	}
	return Snapshot[T]{Items: items, At: time.Now()}
}

// Refresh schedules a re-read. Calls made while one is pending coalesce.
func (f *Feed[T]) Refresh() {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// Subscribe registers a subscriber. Its channel receives the current
// snapshot at once and every later one.
func (f *Feed[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	sub := &Subscription[T]{feed: f, ch: make(chan Snapshot[T], 1)}
	select {
	case f.subscribe <- sub:
		return sub, nil
	case <-f.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Latest returns the newest snapshot, re-reading first if a refresh is
// pending.
func (f *Feed[T]) Latest(ctx context.Context) (Snapshot[T], error) {
	reply := make(chan Snapshot[T], 1)
	select {
	case f.latest <- reply:
	case <-f.done:
		return Snapshot[T]{}, ErrClosed
	case <-ctx.Done():
		return Snapshot[T]{}, ctx.Err()
	}
	return <-reply, nil
}

// Subscription is a handle on a feed. A slow reader only ever sees the
// newest snapshot; the feed never blocks on it.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan Snapshot[T]
	once sync.Once
}

// C is closed after Cancel or when the feed stops.
func (s *Subscription[T]) C() <-chan Snapshot[T] { return s.ch }

func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		select {
		case s.feed.unsubscribe <- s:
		case <-s.feed.done:
		}
	})
}

// offer replaces any undelivered snapshot with snap. Only Run calls it.
func (s *Subscription[T]) offer(snap Snapshot[T]) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

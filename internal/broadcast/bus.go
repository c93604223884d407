package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus is an in-process group broadcaster. Subscribers get a buffered
// channel per subscription; a full channel drops the message for that
// subscriber rather than stall the publisher.
type Bus struct {
	mu         sync.RWMutex
	subs       map[string]map[string]chan interface{}
	bufferSize int
	closed     bool
	log        *zap.Logger
}

// Subscription is a live attachment to a group.
type Subscription struct {
	id    string
	group string
	ch    chan interface{}
	bus   *Bus
}

// C returns the subscription's receive channel.
func (s *Subscription) C() <-chan interface{} { return s.ch }

// Unsubscribe detaches from the group and closes the channel.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s.group, s.id)
}

// NewBus creates an in-process broadcaster.
func NewBus(log *zap.Logger, bufferSize int) *Bus {
	return &Bus{
		subs:       make(map[string]map[string]chan interface{}),
		bufferSize: bufferSize,
		log:        log.Named("broadcast_bus"),
	}
}

// Subscribe attaches to a group.
func (b *Bus) Subscribe(group string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan interface{}, b.bufferSize)

	if b.subs[group] == nil {
		b.subs[group] = make(map[string]chan interface{})
	}
	b.subs[group][id] = ch

	b.log.Debug("subscriber attached",
		zap.String("group", group),
		zap.String("subscription_id", id))

	return &Subscription{id: id, group: group, ch: ch, bus: b}
}

// Publish implements Broadcaster.
func (b *Bus) Publish(_ context.Context, group string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	for id, ch := range b.subs[group] {
		select {
		case ch <- payload:
		default:
			b.log.Warn("subscriber channel full, dropping message",
				zap.String("group", group),
				zap.String("subscription_id", id))
		}
	}
	return nil
}

// Close detaches every subscriber and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, group := range b.subs {
		for _, ch := range group {
			close(ch)
		}
	}
	b.subs = make(map[string]map[string]chan interface{})
}

func (b *Bus) unsubscribe(group, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if chans, ok := b.subs[group]; ok {
		if ch, ok := chans[id]; ok {
			delete(chans, id)
			close(ch)
		}
		if len(chans) == 0 {
			delete(b.subs, group)
		}
	}
}

var _ Broadcaster = (*Bus)(nil)

// LogEvents attaches a logging consumer to each group and drains it until
// ctx is canceled. It gives a bus-backed deployment a default subscriber
// so published events surface in the logs without an external broker.
func LogEvents(ctx context.Context, bus *Bus, log *zap.Logger, groups ...string) {
	for _, group := range groups {
		sub := bus.Subscribe(group)
		go func(group string, sub *Subscription) {
			defer sub.Unsubscribe()
			for {
				select {
				case <-ctx.Done():
					return
				case payload, ok := <-sub.C():
					if !ok {
						return
					}
					log.Debug("event published",
						zap.String("group", group),
						zap.Any("payload", payload))
				}
			}
		}(group, sub)
	}
}

package notify

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/platform/metrics"
)

const (
	DefaultWorkers          = 8
	DefaultSubscriberBuffer = 16
)

// Event is what subscribers receive. Reason mirrors payload["reason"].
type Event struct {
	Name    string         `json:"event"`
	Reason  string         `json:"reason,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// Broker fans league notifications out to in-process subscribers. Publish
// never blocks the caller; a subscriber whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	nextID  uint64
	closed  bool
	pool    *ants.Pool
	logger  *logging.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

func NewBroker(workers int, logger *logging.Logger, m *metrics.Manager) (*Broker, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("notify")

	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			logger.Error("notification delivery panicked", "panic", p)
		}),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "create notification worker pool")
	}

	return &Broker{
		subs:    make(map[uint64]*subscriber),
		pool:    pool,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener stops reading; the channel itself is never closed.
func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	sub := &subscriber{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.closed {
		close(sub.done)
	} else {
		b.subs[id] = sub
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.done)
			}
			b.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) Publish(ctx context.Context, event string, payload map[string]any) {
	reason, _ := payload["reason"].(string)
	b.metrics.ObserveNotification(reason)

	b.mu.RLock()
	if b.closed || len(b.subs) == 0 {
		b.mu.RUnlock()
		return
	}
	targets := make([]*subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	ev := Event{
		Name:    event,
		Reason:  reason,
		Payload: payload,
		At:      b.now().UTC(),
	}
	deliver := func() {
		for _, sub := range targets {
			select {
			case <-sub.done:
			case sub.ch <- ev:
			default:
				b.logger.Debug("subscriber buffer full, event dropped", "event", ev.Name, "reason", ev.Reason)
			}
		}
	}

	if err := b.pool.Submit(deliver); err != nil {
		b.logger.WarnContext(ctx, "notification pool saturated, delivering inline",
			"event", event,
			"error", err,
		)
		deliver()
	}
}

// Close detaches every subscriber and stops the worker pool.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.done)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if err := b.pool.ReleaseTimeout(3 * time.Second); err != nil {
		b.logger.Warn("release notification pool", "error", err)
	}
}

package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"hirelink/internal/middleware"
	"hirelink/internal/models"

	"github.com/redis/go-redis/v9"
)

// SubscriberState tracks where a party subscriber is in its lifecycle.
type SubscriberState int32

const (
	StateDisconnected SubscriberState = iota
	StateConnecting
	StateConnected
)

func (s SubscriberState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "disconnected"
}

// DefaultMaxReconnectAttempts bounds how many times a subscriber retries a
// lost connection before giving up for good.
const DefaultMaxReconnectAttempts = 5

// DefaultBackoff doubles the wait per attempt: 2s, 4s, 8s, ...
func DefaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Subscriber consumes one party's event channel and hands decoded events to
// a handler. A dropped connection is retried with backoff; after the attempt
// budget is spent the subscriber stays disconnected until restarted.
type Subscriber struct {
	rdb     *redis.Client
	party   models.Party
	handler func(Event)

	backoff     func(attempt int) time.Duration
	maxAttempts int

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// SubscriberOption customizes reconnect behavior.
type SubscriberOption func(*Subscriber)

// WithBackoff replaces the reconnect delay schedule.
func WithBackoff(f func(attempt int) time.Duration) SubscriberOption {
	return func(s *Subscriber) { s.backoff = f }
}

// WithMaxReconnectAttempts replaces the reconnect budget.
func WithMaxReconnectAttempts(n int) SubscriberOption {
	return func(s *Subscriber) { s.maxAttempts = n }
}

// NewSubscriber creates a subscriber for the party's channel.
func NewSubscriber(rdb *redis.Client, party models.Party, handler func(Event), opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		rdb:         rdb,
		party:       party,
		handler:     handler,
		backoff:     DefaultBackoff,
		maxAttempts: DefaultMaxReconnectAttempts,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the subscriber's current lifecycle state.
func (s *Subscriber) State() SubscriberState {
	return SubscriberState(s.state.Load())
}

// Start begins consuming in a background goroutine. It returns immediately;
// Stop tears the subscription down.
func (s *Subscriber) Start(ctx context.Context) error {
	if !s.party.Valid() {
		return models.NewInvalidRecipientError("Subscriber requires exactly one party")
	}
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Stop cancels the subscription and waits for the consume loop to exit.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.done
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)
	defer s.state.Store(int32(StateDisconnected))

	channel := PartyChannel(s.party)
	attempts := 0

	for {
		s.state.Store(int32(StateConnecting))

		sub := s.rdb.Subscribe(ctx, channel)
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			attempts++
			if attempts > s.maxAttempts {
				middleware.Logger.WarnContext(ctx, "subscriber gave up after reconnect budget",
					"channel", channel, "attempts", attempts-1)
				return
			}
			s.state.Store(int32(StateDisconnected))
			if !sleepCtx(ctx, s.backoff(attempts)) {
				return
			}
			continue
		}

		s.state.Store(int32(StateConnected))
		attempts = 0

		if !s.consume(ctx, sub) {
			_ = sub.Close()
			return
		}
		_ = sub.Close()

		// Connection dropped; fall through to reconnect.
		attempts++
		if attempts > s.maxAttempts {
			middleware.Logger.WarnContext(ctx, "subscriber gave up after reconnect budget",
				"channel", channel, "attempts", attempts-1)
			return
		}
		s.state.Store(int32(StateDisconnected))
		if !sleepCtx(ctx, s.backoff(attempts)) {
			return
		}
	}
}

// consume reads until the context ends (returns false) or the message
// channel closes (returns true, meaning reconnect).
func (s *Subscriber) consume(ctx context.Context, sub *redis.PubSub) bool {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-ch:
			if !ok {
				return true
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				middleware.Logger.WarnContext(ctx, "dropping undecodable event",
					"channel", msg.Channel, "error", err)
				continue
			}
			s.handler(event)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

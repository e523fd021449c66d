package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/metrics"
	"github.com/mcdev12/gameday/go/internal/models"
)

// unknownEventLabel is the metric label for every event name the hub does not know
const unknownEventLabel = "unknown"

var (
	ErrClosed         = errors.New("live connection closed")
	ErrAlreadyStarted = errors.New("live connection already started")
)

// Handlers are the callbacks a listener registers on the shared connection.
// Either may be nil.
type Handlers struct {
	OnGamesReplaced   func(games []models.Game)
	OnConnectionError func(err error)
}

// Subscription is a listener registration. Unsubscribe is idempotent and never
// affects other listeners.
type Subscription interface {
	ID() string
	Unsubscribe()
}

// Sink receives decoded traffic from a Transport
type Sink interface {
	HandleEvent(event EventType, data []byte)
	HandleConnectionError(err error)
}

// Transport runs a persistent connection until ctx is cancelled, feeding events
// into sink in arrival order.
type Transport interface {
	Run(ctx context.Context, sink Sink) error
}

// Stats is a point-in-time view of the hub
type Stats struct {
	Listeners        int    `json:"listeners"`
	Running          bool   `json:"running"`
	EventsDelivered  uint64 `json:"events_delivered"`
	EventsDropped    uint64 `json:"events_dropped"`
	ConnectionErrors uint64 `json:"connection_errors"`
}

// Hub is the shared push-update connection. Every screen registers a listener on
// the same Hub; the number of listeners is its reference count.
type Hub struct {
	transport Transport
	metrics   metrics.Collector

	mu        sync.RWMutex
	listeners map[uuid.UUID]*listener
	running   bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
	connErrs  atomic.Uint64
}

type listener struct {
	id       uuid.UUID
	handlers Handlers
	hub      *Hub
	active   atomic.Bool
	once     sync.Once
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics sets the metrics collector
func WithMetrics(c metrics.Collector) HubOption {
	return func(h *Hub) {
		h.metrics = metrics.OrNoOp(c)
	}
}

// NewHub creates a hub over transport. Call Start to open the connection.
func NewHub(transport Transport, opts ...HubOption) *Hub {
	h := &Hub{
		transport: transport,
		metrics:   metrics.NoOpCollector{},
		listeners: make(map[uuid.UUID]*listener),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the transport and blocks until ctx is cancelled or Close is called
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	if h.running {
		h.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.running = true
	h.cancel = cancel
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	log.Info().Msg("live connection started")
	defer func() {
		cancel()
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
		close(done)
		log.Info().Msg("live connection stopped")
	}()

	if h.transport == nil {
		<-runCtx.Done()
		return nil
	}

	err := h.transport.Run(runCtx, h)
	if err != nil && runCtx.Err() == nil {
		// The transport gave up; listeners keep their data but must know it is no longer live
		h.HandleConnectionError(fmt.Errorf("live transport stopped: %w", err))
	}
	return err
}

// Close stops the transport and drops every listener. Safe to call more than once.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	cancel, done, running := h.cancel, h.done, h.running
	for id, l := range h.listeners {
		l.active.Store(false)
		delete(h.listeners, id)
	}
	h.mu.Unlock()

	h.metrics.RecordListeners(0)
	if running && cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// Subscribe registers a listener on the shared connection
func (h *Hub) Subscribe(handlers Handlers) (Subscription, error) {
	l := &listener{
		id:       uuid.New(),
		handlers: handlers,
		hub:      h,
	}
	l.active.Store(true)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.listeners[l.id] = l
	count := len(h.listeners)
	h.mu.Unlock()

	h.metrics.RecordListeners(count)
	log.Debug().
		Str("listener_id", l.id.String()).
		Int("total_listeners", count).
		Msg("listener registered")

	return l, nil
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	if _, exists := h.listeners[id]; !exists {
		h.mu.Unlock()
		return
	}
	delete(h.listeners, id)
	count := len(h.listeners)
	h.mu.Unlock()

	h.metrics.RecordListeners(count)
	log.Debug().
		Str("listener_id", id.String()).
		Int("total_listeners", count).
		Msg("listener unregistered")
}

// snapshot copies the listener set so callbacks run without holding the lock
func (h *Hub) snapshot() []*listener {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make([]*listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	return targets
}

// HandleEvent decodes a push event and fans it out to every listener. Malformed and
// unknown events are dropped.
func (h *Hub) HandleEvent(event EventType, data []byte) {
	switch event {
	case EventTypeGamesUpdate:
		games, err := DecodeGamesUpdate(data)
		if err != nil {
			h.dropped.Add(1)
			h.metrics.RecordPushEvent(string(event), false)
			log.Warn().Err(err).Str("event", string(event)).Msg("dropping malformed push event")
			return
		}
		h.delivered.Add(1)
		h.metrics.RecordPushEvent(string(event), true)
		h.broadcastGames(games)

	default:
		h.dropped.Add(1)
		h.metrics.RecordPushEvent(unknownEventLabel, false)
		log.Debug().Str("event", string(event)).Msg("ignoring unknown push event")
	}
}

func (h *Hub) broadcastGames(games []models.Game) {
	targets := h.snapshot()
	for _, l := range targets {
		if l.handlers.OnGamesReplaced == nil || !l.active.Load() {
			continue
		}
		// Each listener gets its own slice; games themselves are never mutated in place
		l.handlers.OnGamesReplaced(models.CloneGames(games))
	}

	log.Debug().
		Str("event", string(EventTypeGamesUpdate)).
		Int("games", len(games)).
		Int("listeners", len(targets)).
		Msg("push event delivered")
}

// HandleConnectionError reports a transport failure to every listener
func (h *Hub) HandleConnectionError(err error) {
	h.connErrs.Add(1)
	h.metrics.RecordConnectionError()
	log.Error().Err(err).Msg("live connection error")

	for _, l := range h.snapshot() {
		if l.handlers.OnConnectionError == nil || !l.active.Load() {
			continue
		}
		l.handlers.OnConnectionError(err)
	}
}

// Stats returns statistics about the hub
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return Stats{
		Listeners:        len(h.listeners),
		Running:          h.running,
		EventsDelivered:  h.delivered.Load(),
		EventsDropped:    h.dropped.Load(),
		ConnectionErrors: h.connErrs.Load(),
	}
}

func (l *listener) ID() string {
	return l.id.String()
}

func (l *listener) Unsubscribe() {
	l.once.Do(func() {
		l.active.Store(false)
		l.hub.unregister(l.id)
	})
}

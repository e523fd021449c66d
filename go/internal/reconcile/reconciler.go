package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/live"
	"github.com/mcdev12/gameday/go/internal/metrics"
	"github.com/mcdev12/gameday/go/internal/models"
)

// DefaultLoadingTimeout is how long a view waits for its first data before giving up
// on the loading indicator
const DefaultLoadingTimeout = 8 * time.Second

var (
	ErrAlreadyMounted = errors.New("reconciler already mounted")
	ErrUnmounted      = errors.New("reconciler unmounted")
)

// LiveSource is where a reconciler registers for push updates. *live.Hub satisfies it.
type LiveSource interface {
	Subscribe(handlers live.Handlers) (live.Subscription, error)
}

// Config describes one reconciled view
type Config[T any] struct {
	// Name identifies the view in logs and metrics
	Name string

	// Fetch performs the one-shot snapshot request
	Fetch func(ctx context.Context) (T, error)

	// Project maps a full-list push to the view's value. Returning false ignores
	// the update.
	Project func(games []models.Game) (T, bool)

	// Fallback supplies the value shown when the snapshot fails or times out before
	// any data arrived. Defaults to the zero value.
	Fallback func() T

	// Settled reports that the value can no longer change. Once it returns true the
	// reconciler releases its live subscription.
	Settled func(value T) bool

	// Observe is called after every change of value, outside the reconciler lock
	Observe func(state State[T])

	Live           LiveSource
	LoadingTimeout time.Duration
	Clock          clockwork.Clock
	Metrics        metrics.Collector
}

// Reconciler merges a one-shot snapshot with a stream of push updates into the single
// value a view displays. Push data always wins: a snapshot that resolves after any
// push update is discarded.
type Reconciler[T any] struct {
	cfg Config[T]

	mu        sync.Mutex
	phase     Phase
	source    Source
	stale     bool
	value     T
	liveSeen  bool
	settled   bool
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	sub       live.Subscription
	timer     clockwork.Timer

	changed chan struct{}
}

// New creates an idle reconciler
func New[T any](cfg Config[T]) *Reconciler[T] {
	if cfg.Name == "" {
		cfg.Name = "view"
	}
	if cfg.LoadingTimeout <= 0 {
		cfg.LoadingTimeout = DefaultLoadingTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Fallback == nil {
		cfg.Fallback = func() T {
			var zero T
			return zero
		}
	}
	cfg.Metrics = metrics.OrNoOp(cfg.Metrics)

	return &Reconciler[T]{
		cfg:     cfg,
		changed: make(chan struct{}, 1),
	}
}

// Mount starts loading: it registers for push updates, arms the loading timeout and
// issues the snapshot request. A reconciler can be mounted once.
func (r *Reconciler[T]) Mount(ctx context.Context) error {
	r.mu.Lock()
	if r.unmounted {
		r.mu.Unlock()
		return ErrUnmounted
	}
	if r.mounted {
		r.mu.Unlock()
		return ErrAlreadyMounted
	}
	r.mounted = true
	r.phase = PhaseLoading

	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if r.cfg.Live != nil {
		sub, err := r.cfg.Live.Subscribe(live.Handlers{
			OnGamesReplaced:   r.onLive,
			OnConnectionError: r.onConnectionError,
		})
		if err != nil {
			// Snapshot-only; flag it so the view can show that data may be old
			log.Warn().Err(err).Str("view", r.cfg.Name).Msg("live updates unavailable")
			r.stale = true
		} else {
			r.sub = sub
		}
	}

	r.timer = r.cfg.Clock.AfterFunc(r.cfg.LoadingTimeout, r.onLoadingTimeout)
	r.mu.Unlock()

	log.Debug().Str("view", r.cfg.Name).Msg("view mounted")
	r.notify()

	if r.cfg.Fetch == nil {
		return nil
	}
	go r.fetch(fetchCtx)
	return nil
}

// Unmount stops all activity. Late snapshot results and push updates are ignored
// afterwards. Safe to call more than once and before Mount.
func (r *Reconciler[T]) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unmounted {
		return
	}
	r.unmounted = true

	if r.cancel != nil {
		r.cancel()
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.releaseLocked()

	log.Debug().Str("view", r.cfg.Name).Msg("view unmounted")
}

// State returns a copy of the current state
func (r *Reconciler[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// Changed signals after every state change. Signals coalesce: a receiver that falls
// behind sees one pending signal and should read State.
func (r *Reconciler[T]) Changed() <-chan struct{} {
	return r.changed
}

// Name returns the view name
func (r *Reconciler[T]) Name() string {
	return r.cfg.Name
}

func (r *Reconciler[T]) fetch(ctx context.Context) {
	value, err := r.cfg.Fetch(ctx)
	r.applySnapshot(ctx, value, err)
}

func (r *Reconciler[T]) applySnapshot(ctx context.Context, value T, err error) {
	r.mu.Lock()
	if r.unmounted || ctx.Err() != nil {
		r.mu.Unlock()
		r.cfg.Metrics.RecordSnapshot(r.cfg.Name, metrics.SnapshotCancelled)
		return
	}

	if err != nil {
		r.cfg.Metrics.RecordSnapshot(r.cfg.Name, metrics.SnapshotFailed)
		log.Warn().Err(err).Str("view", r.cfg.Name).Msg("snapshot request failed")

		if r.phase != PhaseLoading {
			// Live data or the loading timeout already settled the view
			r.mu.Unlock()
			return
		}
		r.timer.Stop()
		r.setLocked(r.cfg.Fallback(), SourceFallback)
		state := r.stateLocked()
		r.mu.Unlock()

		r.publish(state)
		return
	}

	if r.liveSeen {
		r.mu.Unlock()
		r.cfg.Metrics.RecordSnapshot(r.cfg.Name, metrics.SnapshotDiscarded)
		log.Debug().Str("view", r.cfg.Name).Msg("discarding snapshot older than live data")
		return
	}

	r.timer.Stop()
	r.setLocked(value, SourceSnapshot)
	state := r.stateLocked()
	r.mu.Unlock()

	r.cfg.Metrics.RecordSnapshot(r.cfg.Name, metrics.SnapshotApplied)
	r.publish(state)
}

func (r *Reconciler[T]) onLive(games []models.Game) {
	r.mu.Lock()
	if !r.mounted || r.unmounted || r.settled {
		r.mu.Unlock()
		return
	}

	value := r.projectLocked(games)
	if value == nil {
		r.mu.Unlock()
		return
	}

	r.liveSeen = true
	r.stale = false
	r.timer.Stop()
	r.setLocked(*value, SourceLive)
	state := r.stateLocked()
	r.mu.Unlock()

	r.cfg.Metrics.RecordLiveApplied(r.cfg.Name)
	r.publish(state)
}

func (r *Reconciler[T]) projectLocked(games []models.Game) *T {
	if r.cfg.Project == nil {
		return nil
	}
	value, ok := r.cfg.Project(games)
	if !ok {
		return nil
	}
	return &value
}

func (r *Reconciler[T]) onConnectionError(err error) {
	r.mu.Lock()
	if r.unmounted || r.settled {
		r.mu.Unlock()
		return
	}
	r.stale = true
	r.mu.Unlock()

	log.Warn().Err(err).Str("view", r.cfg.Name).Msg("live updates interrupted, keeping current data")
	r.notify()
}

func (r *Reconciler[T]) onLoadingTimeout() {
	r.mu.Lock()
	if r.unmounted || r.phase != PhaseLoading {
		r.mu.Unlock()
		return
	}
	r.setLocked(r.cfg.Fallback(), SourceFallback)
	state := r.stateLocked()
	r.mu.Unlock()

	r.cfg.Metrics.RecordLoadingTimeout(r.cfg.Name)
	log.Warn().
		Str("view", r.cfg.Name).
		Dur("timeout", r.cfg.LoadingTimeout).
		Msg("no data before loading timeout")
	r.publish(state)
}

// setLocked replaces the value and moves to ready
func (r *Reconciler[T]) setLocked(value T, source Source) {
	r.value = value
	r.source = source
	r.phase = PhaseReady

	if r.cfg.Settled != nil && source != SourceFallback && r.cfg.Settled(value) {
		r.settled = true
		r.releaseLocked()
		log.Debug().Str("view", r.cfg.Name).Msg("view settled, live updates released")
	}
}

func (r *Reconciler[T]) releaseLocked() {
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}
}

func (r *Reconciler[T]) stateLocked() State[T] {
	return State[T]{
		Phase:  r.phase,
		Source: r.source,
		Stale:  r.stale,
		Value:  r.value,
	}
}

func (r *Reconciler[T]) publish(state State[T]) {
	if r.cfg.Observe != nil {
		r.cfg.Observe(state)
	}
	r.notify()
}

func (r *Reconciler[T]) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

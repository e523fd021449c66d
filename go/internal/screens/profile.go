package screens

import (
	"context"
	"sync"

	"github.com/mcdev12/gameday/go/internal/models"
	"github.com/mcdev12/gameday/go/internal/predictions"
	"github.com/mcdev12/gameday/go/internal/reconcile"
)

// Profile shows the prediction history of a user. History has no push channel, so
// only the snapshot feeds it.
type Profile struct {
	userID string
	app    *predictions.App
	opts   Options

	mu         sync.RWMutex
	reconciler *reconcile.Reconciler[[]models.Prediction] // displayed
	pending    *reconcile.Reconciler[[]models.Prediction] // refresh in flight
	ctx        context.Context                            // set while mounted
	forwardCtx context.Context
	stop       context.CancelFunc

	changed chan struct{}
}

// ProfileView is the JSON form of the profile screen
type ProfileView struct {
	ViewState
	UserID      string              `json:"user_id"`
	Refreshing  bool                `json:"refreshing"`
	Stats       predictions.Stats   `json:"stats"`
	Predictions []models.Prediction `json:"predictions"`
}

func NewProfile(userID string, app *predictions.App, opts Options) *Profile {
	p := &Profile{
		userID:  userID,
		app:     app,
		opts:    opts,
		changed: make(chan struct{}, 1),
	}
	p.reconciler = p.newReconciler()
	return p
}

func (p *Profile) newReconciler() *reconcile.Reconciler[[]models.Prediction] {
	return reconcile.New(reconcile.Config[[]models.Prediction]{
		Name: "profile",
		Fetch: func(ctx context.Context) ([]models.Prediction, error) {
			return p.app.History(ctx, p.userID)
		},
		Fallback:       func() []models.Prediction { return []models.Prediction{} },
		LoadingTimeout: p.opts.LoadingTimeout,
		Clock:          p.opts.Clock,
		Metrics:        p.opts.Metrics,
	})
}

func (p *Profile) current() *reconcile.Reconciler[[]models.Prediction] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reconciler
}

func (p *Profile) Mount(ctx context.Context) error {
	p.mu.Lock()
	r := p.reconciler
	if err := r.Mount(ctx); err != nil {
		p.mu.Unlock()
		return err
	}
	p.ctx = ctx
	p.forwardCtx, p.stop = context.WithCancel(ctx)
	forwardCtx := p.forwardCtx
	p.mu.Unlock()

	go p.forward(forwardCtx, r)
	return nil
}

func (p *Profile) Unmount() {
	p.mu.Lock()
	p.ctx = nil
	stop := p.stop
	p.stop = nil
	r, pending := p.reconciler, p.pending
	p.pending = nil
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
	r.Unmount()
	if pending != nil {
		pending.Unmount()
	}
}

// Refresh re-reads the history, e.g. after a submission. The current history stays on
// screen until the new read settles. A refresh still in flight is discarded.
func (p *Profile) Refresh() error {
	p.mu.Lock()
	ctx, forwardCtx := p.ctx, p.forwardCtx
	if ctx == nil {
		p.mu.Unlock()
		return reconcile.ErrUnmounted
	}
	superseded := p.pending
	r := p.newReconciler()
	p.pending = r
	p.mu.Unlock()

	if superseded != nil {
		superseded.Unmount()
	}
	if err := r.Mount(ctx); err != nil {
		return err
	}
	go p.forward(forwardCtx, r)
	return nil
}

// forward relays changes of r to the profile's own channel and promotes r once a
// refresh settles
func (p *Profile) forward(ctx context.Context, r *reconcile.Reconciler[[]models.Prediction]) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.Changed():
		}

		p.mu.Lock()
		var retired *reconcile.Reconciler[[]models.Prediction]
		switch {
		case p.pending == r && r.State().Ready():
			retired = p.reconciler
			p.reconciler, p.pending = r, nil
		case p.pending != r && p.reconciler != r:
			// superseded by a newer refresh
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		if retired != nil {
			retired.Unmount()
		}
		select {
		case p.changed <- struct{}{}:
		default:
		}
	}
}

func (p *Profile) Name() string {
	return "profile"
}

func (p *Profile) State() reconcile.State[[]models.Prediction] {
	return p.current().State()
}

// Changed signals every change of the displayed state, refreshes included
func (p *Profile) Changed() <-chan struct{} {
	return p.changed
}

// Refreshing reports whether a refresh is in flight
func (p *Profile) Refreshing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pending != nil
}

// History returns the predictions to display; empty while loading or after a failure
func (p *Profile) History() []models.Prediction {
	state := p.State()
	if state.Value == nil {
		return []models.Prediction{}
	}
	return state.Value
}

func (p *Profile) Stats() predictions.Stats {
	return predictions.Summarize(p.History())
}

func (p *Profile) Describe() any {
	state := p.State()
	history := p.History()
	return ProfileView{
		ViewState:   viewState(p.Name(), state),
		UserID:      p.userID,
		Refreshing:  p.Refreshing(),
		Stats:       predictions.Summarize(history),
		Predictions: history,
	}
}

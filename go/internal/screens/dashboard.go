package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/models"
	"github.com/mcdev12/gameday/go/internal/reconcile"
)

const cacheTimeout = 2 * time.Second

// StatusFilter selects which games the dashboard shows
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterScheduled  StatusFilter = "scheduled"
	FilterInProgress StatusFilter = "inProgress"
	FilterFinal      StatusFilter = "final"
)

// Filters lists the filters in display order
var Filters = []StatusFilter{FilterAll, FilterScheduled, FilterInProgress, FilterFinal}

// ParseStatusFilter parses a filter name
func ParseStatusFilter(v string) (StatusFilter, error) {
	for _, f := range Filters {
		if string(f) == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q", v)
}

// Matches reports whether game passes the filter
func (f StatusFilter) Matches(game *models.Game) bool {
	switch f {
	case FilterAll:
		return true
	case FilterScheduled:
		return game.Status == models.StatusScheduled
	case FilterInProgress:
		return game.Status == models.StatusInProgress
	case FilterFinal:
		return game.Status == models.StatusFinal
	default:
		return false
	}
}

// Dashboard lists every game with live scores
type Dashboard struct {
	opts       Options
	reconciler *reconcile.Reconciler[[]models.Game]

	mu        sync.RWMutex
	filter    StatusFilter
	lastKnown []models.Game
}

// DashboardView is the JSON form of the dashboard
type DashboardView struct {
	ViewState
	Filter StatusFilter  `json:"filter"`
	Games  []models.Game `json:"games"`
}

func NewDashboard(fetcher GamesFetcher, opts Options) *Dashboard {
	d := &Dashboard{
		opts:   opts,
		filter: FilterAll,
	}
	d.reconciler = reconcile.New(reconcile.Config[[]models.Game]{
		Name:  "dashboard",
		Fetch: fetcher.FetchAll,
		Project: func(games []models.Game) ([]models.Game, bool) {
			return games, true
		},
		Fallback:       d.fallback,
		Observe:        d.remember,
		Live:           opts.Live,
		LoadingTimeout: opts.LoadingTimeout,
		Clock:          opts.Clock,
		Metrics:        opts.Metrics,
	})
	return d
}

// Mount loads the last known list, if a cache is configured, and starts reconciling
func (d *Dashboard) Mount(ctx context.Context) error {
	if d.opts.Cache != nil {
		loadCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
		games, found, err := d.opts.Cache.Load(loadCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load last known games")
		} else if found {
			d.mu.Lock()
			d.lastKnown = games
			d.mu.Unlock()
		}
	}
	return d.reconciler.Mount(ctx)
}

func (d *Dashboard) Unmount() {
	d.reconciler.Unmount()
}

func (d *Dashboard) Name() string {
	return d.reconciler.Name()
}

func (d *Dashboard) State() reconcile.State[[]models.Game] {
	return d.reconciler.State()
}

func (d *Dashboard) Changed() <-chan struct{} {
	return d.reconciler.Changed()
}

func (d *Dashboard) SetFilter(f StatusFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
}

func (d *Dashboard) Filter() StatusFilter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

// Visible derives the displayed games from the current data and filter. It is nil
// until the dashboard is ready.
func (d *Dashboard) Visible() []models.Game {
	state := d.reconciler.State()
	if !state.Ready() {
		return nil
	}
	filter := d.Filter()

	visible := make([]models.Game, 0, len(state.Value))
	for i := range state.Value {
		if filter.Matches(&state.Value[i]) {
			visible = append(visible, state.Value[i])
		}
	}
	return visible
}

func (d *Dashboard) Describe() any {
	state := d.reconciler.State()
	return DashboardView{
		ViewState: viewState(d.Name(), state),
		Filter:    d.Filter(),
		Games:     d.Visible(),
	}
}

func (d *Dashboard) fallback() []models.Game {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lastKnown == nil {
		return []models.Game{}
	}
	return models.CloneGames(d.lastKnown)
}

// remember keeps every reconciled list as the last known one
func (d *Dashboard) remember(state reconcile.State[[]models.Game]) {
	if state.Source == reconcile.SourceFallback {
		return
	}

	d.mu.Lock()
	d.lastKnown = state.Value
	d.mu.Unlock()

	if d.opts.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := d.opts.Cache.Store(ctx, state.Value); err != nil {
		log.Warn().Err(err).Msg("failed to store last known games")
	}
}

package screens

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/gameday/go/internal/cache"
	"github.com/mcdev12/gameday/go/internal/metrics"
	"github.com/mcdev12/gameday/go/internal/models"
	"github.com/mcdev12/gameday/go/internal/reconcile"
)

// GamesFetcher defines what the screens need from the snapshot API
type GamesFetcher interface {
	FetchAll(ctx context.Context) ([]models.Game, error)
	FetchOne(ctx context.Context, id string) (*models.Game, error)
}

// Options are shared by every screen
type Options struct {
	Live           reconcile.LiveSource
	Clock          clockwork.Clock
	LoadingTimeout time.Duration
	Metrics        metrics.Collector
	Cache          cache.GameListCache // optional, dashboard only
}

// ViewState is the JSON form of a reconciled view
type ViewState struct {
	Name    string `json:"name"`
	Phase   string `json:"phase"`
	Source  string `json:"source"`
	Loading bool   `json:"loading"`
	Stale   bool   `json:"stale"`
}

func viewState[T any](name string, s reconcile.State[T]) ViewState {
	return ViewState{
		Name:    name,
		Phase:   s.Phase.String(),
		Source:  s.Source.String(),
		Loading: s.Loading(),
		Stale:   s.Stale,
	}
}

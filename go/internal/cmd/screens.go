package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/config"
	"github.com/mcdev12/gameday/go/internal/inspect"
	"github.com/mcdev12/gameday/go/internal/live"
	"github.com/mcdev12/gameday/go/internal/screens"
)

// screen is what the binary needs from every mounted view
type screen interface {
	inspect.View
	Mount(ctx context.Context) error
	Unmount()
	Changed() <-chan struct{}
}

type mountedScreens struct {
	screens []screen
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func mountScreens(ctx context.Context, cfg *config.Config, services *Services, hub *live.Hub, state *inspect.StateHandler) (*mountedScreens, error) {
	opts := screens.Options{
		Live:           hub,
		Clock:          services.Clock,
		LoadingTimeout: cfg.Screens.LoadingTimeout,
		Metrics:        services.Metrics,
		Cache:          services.Cache,
	}

	filter, err := screens.ParseStatusFilter(cfg.Screens.Filter)
	if err != nil {
		return nil, err
	}
	dashboard := screens.NewDashboard(services.Client, opts)
	dashboard.SetFilter(filter)

	all := []screen{
		dashboard,
		screens.NewProfile(cfg.Screens.UserID, services.Predictions, opts),
	}
	for _, id := range cfg.Screens.GameIDs {
		all = append(all, screens.NewGameDetail(id, services.Client, services.Predictions, opts))
	}

	renderCtx, cancel := context.WithCancel(ctx)
	m := &mountedScreens{cancel: cancel}
	for _, s := range all {
		if err := s.Mount(ctx); err != nil {
			m.unmountAll()
			return nil, fmt.Errorf("failed to mount %s: %w", s.Name(), err)
		}
		m.screens = append(m.screens, s)
		state.Add(s)

		m.wg.Add(1)
		go func(s screen) {
			defer m.wg.Done()
			render(renderCtx, s)
		}(s)
	}
	return m, nil
}

func (m *mountedScreens) unmountAll() {
	m.cancel()
	for _, s := range m.screens {
		s.Unmount()
	}
	m.wg.Wait()
}

// render logs every state change of a screen
func render(ctx context.Context, s screen) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Changed():
			log.Info().
				Str("view", s.Name()).
				Interface("state", s.Describe()).
				Msg("view updated")
		}
	}
}

package cache

import (
	"context"
	"sync"

	"github.com/mcdev12/gameday/go/internal/models"
)

// GameListCache keeps the last game list a view reconciled, so a failed snapshot can
// fall back to it instead of an empty list
type GameListCache interface {
	// Load returns the stored list and whether one was found
	Load(ctx context.Context) ([]models.Game, bool, error)
	Store(ctx context.Context, games []models.Game) error
}

// Memory is a process-local GameListCache
type Memory struct {
	mu    sync.RWMutex
	games []models.Game
	set   bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]models.Game, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return nil, false, nil
	}
	return models.CloneGames(m.games), true, nil
}

func (m *Memory) Store(ctx context.Context, games []models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = models.CloneGames(games)
	if m.games == nil {
		m.games = []models.Game{}
	}
	m.set = true
	return nil
}

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/gameday/go/internal/models"
)

func sampleGames() []models.Game {
	score := 14
	return []models.Game{
		{ID: "G1", Status: models.StatusScheduled, HomeTeam: models.Team{Abbreviation: "KC"}, AwayTeam: models.Team{Abbreviation: "BUF"}},
		{ID: "G2", Status: models.StatusInProgress, HomeTeam: models.Team{Abbreviation: "PHI", Score: &score}, AwayTeam: models.Team{Abbreviation: "DAL", Score: &score}},
	}
}

func exerciseCache(t *testing.T, c GameListCache) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := c.Load(ctx); err != nil || found {
		t.Fatalf("Load() on empty cache = found %v, err %v", found, err)
	}

	if err := c.Store(ctx, sampleGames()); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	games, found, err := c.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load() = found %v, err %v", found, err)
	}
	if len(games) != 2 || games[1].ID != "G2" || *games[1].HomeTeam.Score != 14 {
		t.Errorf("Load() = %+v", games)
	}

	if err := c.Store(ctx, nil); err != nil {
		t.Fatalf("Store(nil) error = %v", err)
	}
	games, found, _ = c.Load(ctx)
	if !found || games == nil || len(games) != 0 {
		t.Errorf("Load() after storing empty list = %v, found %v", games, found)
	}
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory())
}

func TestMemoryOwnsItsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	games := sampleGames()
	m.Store(ctx, games)

	games[0].ID = "changed"
	got, _, _ := m.Load(ctx)
	if got[0].ID != "G1" {
		t.Errorf("cache aliases caller slice")
	}
}

// Requires a running Redis, e.g. REDIS_ADDR=localhost:6379
func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	key := "gameday:test:" + time.Now().Format("150405.000000")
	defer client.Del(context.Background(), key)

	exerciseCache(t, NewRedis(client, key, time.Minute))
}

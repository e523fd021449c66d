package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/gameday/go/internal/models"
)

// TTL constants
const (
	DefaultKey     = "gameday:games:last"
	DefaultListTTL = 24 * time.Hour
)

// Redis stores the last game list as JSON so it survives restarts
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed cache. An empty key or zero ttl uses the defaults.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &Redis{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (r *Redis) Load(ctx context.Context) ([]models.Game, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", r.key, err)
	}

	var games []models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached games: %w", err)
	}
	if err := models.ValidateGames(games); err != nil {
		return nil, false, fmt.Errorf("cached games: %w", err)
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, true, nil
}

func (r *Redis) Store(ctx context.Context, games []models.Game) error {
	if games == nil {
		games = []models.Game{}
	}
	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("marshaling games: %w", err)
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

package gameday_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mcdev12/gameday/go/clients"
	"github.com/mcdev12/gameday/go/internal/models"
)

type GamesResponse struct {
	Games []models.Game `json:"games"`
}

// FetchAll returns the current list of games
func (c *Client) FetchAll(ctx context.Context) ([]models.Game, error) {
	body, err := c.Get(ctx, GamesEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	var response GamesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal games: %v", clients.ErrMalformedPayload, err)
	}
	if err := models.ValidateGames(response.Games); err != nil {
		return nil, fmt.Errorf("%w: %v", clients.ErrMalformedPayload, err)
	}
	if response.Games == nil {
		response.Games = []models.Game{}
	}

	return response.Games, nil
}

// FetchOne returns a single game by id
func (c *Client) FetchOne(ctx context.Context, id string) (*models.Game, error) {
	if id == "" {
		return nil, fmt.Errorf("game id is required")
	}

	body, err := c.Get(ctx, fmt.Sprintf(GameEndpoint, url.PathEscape(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	var game models.Game
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal game: %v", clients.ErrMalformedPayload, err)
	}
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", clients.ErrMalformedPayload, err)
	}
	if game.ID != id {
		return nil, fmt.Errorf("%w: requested game %s, got %s", clients.ErrMalformedPayload, id, game.ID)
	}

	return &game, nil
}

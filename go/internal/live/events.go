package live

import (
	"encoding/json"
	"fmt"

	"github.com/mcdev12/gameday/go/internal/models"
)

// EventType is the name of a push event
type EventType string

const (
	// EventTypeGamesUpdate carries the complete updated list of games
	EventTypeGamesUpdate EventType = "gamesUpdate"
)

// Envelope is the wire frame of a push event
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ParseEnvelope decodes a raw frame into an envelope
func ParseEnvelope(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("event envelope has no event name")
	}
	return &env, nil
}

// DecodeGamesUpdate parses and validates a gamesUpdate payload. A single invalid game
// rejects the whole event, since the payload replaces the full list.
func DecodeGamesUpdate(data []byte) ([]models.Game, error) {
	var games []models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("unmarshal games: %w", err)
	}
	if games == nil {
		return nil, fmt.Errorf("gamesUpdate payload is not a list")
	}
	if err := models.ValidateGames(games); err != nil {
		return nil, err
	}
	return games, nil
}

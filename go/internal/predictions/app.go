package predictions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/clients/gameday_client"
	"github.com/mcdev12/gameday/go/internal/models"
)

// MaxStake is the largest amount accepted for a single prediction
const MaxStake = 99999

var (
	ErrBettingClosed = errors.New("betting is closed for this game")
	ErrInvalidPick   = errors.New("pick must be one of the two teams")
	ErrInvalidAmount = errors.New("amount must be greater than 0 and at most 99999")
)

// PredictionsClient defines what the app layer needs from the API client
type PredictionsClient interface {
	FetchPredictionsFor(ctx context.Context, userID string) ([]models.Prediction, error)
	SubmitPrediction(ctx context.Context, gameID, pick string, amount float64) (*gameday_client.SubmitResult, error)
}

// SubmitRequest is a validated-on-submit pick with a stake
type SubmitRequest struct {
	Game   *models.Game
	Pick   string
	Amount float64
}

// App handles prediction business logic
type App struct {
	client PredictionsClient
}

// NewApp creates a new predictions App
func NewApp(client PredictionsClient) *App {
	return &App{client: client}
}

// Submit validates a pick against the game it targets and sends it. Nothing is
// recorded locally; history is only ever re-read from the server.
func (a *App) Submit(ctx context.Context, req SubmitRequest) (*gameday_client.SubmitResult, error) {
	if err := a.validateSubmitRequest(req); err != nil {
		return nil, err
	}

	result, err := a.client.SubmitPrediction(ctx, req.Game.ID, req.Pick, req.Amount)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", req.Game.ID).
		Str("pick", req.Pick).
		Float64("amount", req.Amount).
		Str("message", result.Message).
		Msg("prediction submitted")
	return result, nil
}

// History returns the prediction history of a user
func (a *App) History(ctx context.Context, userID string) ([]models.Prediction, error) {
	history, err := a.client.FetchPredictionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction history: %w", err)
	}
	return history, nil
}

func (a *App) validateSubmitRequest(req SubmitRequest) error {
	if req.Game == nil {
		return fmt.Errorf("game is required")
	}
	if !BettingOpen(req.Game) {
		return ErrBettingClosed
	}
	if !req.Game.HasTeam(req.Pick) {
		return ErrInvalidPick
	}
	if req.Amount <= 0 || req.Amount > MaxStake {
		return ErrInvalidAmount
	}
	return nil
}

// BettingOpen reports whether picks are still accepted for game
func BettingOpen(game *models.Game) bool {
	switch game.Status {
	case models.StatusScheduled:
		return true
	case models.StatusInProgress, models.StatusFinal:
		return false
	default:
		return false
	}
}

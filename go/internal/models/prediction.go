package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PredictionResult is the server classification of a prediction
type PredictionResult uint8

const (
	ResultPending PredictionResult = iota + 1
	ResultWin
	ResultLoss
)

// ErrInvalidPrediction is returned when a prediction violates a data model invariant
var ErrInvalidPrediction = errors.New("invalid prediction")

func (r PredictionResult) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	default:
		return fmt.Sprintf("PredictionResult(%d)", uint8(r))
	}
}

// IsTerminal reports whether the result can no longer change
func (r PredictionResult) IsTerminal() bool {
	switch r {
	case ResultWin, ResultLoss:
		return true
	case ResultPending:
		return false
	default:
		return false
	}
}

func (r PredictionResult) MarshalJSON() ([]byte, error) {
	switch r {
	case ResultPending, ResultWin, ResultLoss:
		return json.Marshal(r.String())
	default:
		return nil, fmt.Errorf("%w: unknown result %d", ErrInvalidPrediction, uint8(r))
	}
}

func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("prediction result must be a string: %w", err)
	}
	switch raw {
	case "pending":
		*r = ResultPending
	case "win":
		*r = ResultWin
	case "loss":
		*r = ResultLoss
	default:
		return fmt.Errorf("%w: unknown result %q", ErrInvalidPrediction, raw)
	}
	return nil
}

// Prediction is a user's pick on a game. After submission only the server updates it.
type Prediction struct {
	GameID string           `json:"gameId"`
	Pick   string           `json:"pick"`
	Amount float64          `json:"amount"`
	Result PredictionResult `json:"result"`
	Payout *float64         `json:"payout,omitempty"` // Present only for wins
}

// Validate checks the data model invariants of a prediction
func (p *Prediction) Validate() error {
	if p.GameID == "" {
		return fmt.Errorf("%w: missing game id", ErrInvalidPrediction)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: game %s stake must be positive", ErrInvalidPrediction, p.GameID)
	}
	switch p.Result {
	case ResultPending, ResultWin, ResultLoss:
	default:
		return fmt.Errorf("%w: game %s: unknown result", ErrInvalidPrediction, p.GameID)
	}
	if p.Payout != nil && p.Result != ResultWin {
		return fmt.Errorf("%w: game %s has a payout but result is %s", ErrInvalidPrediction, p.GameID, p.Result)
	}
	return nil
}

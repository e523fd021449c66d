package gameday_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mcdev12/gameday/go/clients"
	"github.com/mcdev12/gameday/go/internal/models"
)

type PredictionsResponse struct {
	Predictions []models.Prediction `json:"predictions"`
}

// SubmitRequest is the body of a prediction submission
type SubmitRequest struct {
	GameID string  `json:"gameId"`
	Pick   string  `json:"pick"`
	Amount float64 `json:"amount"`
}

// SubmitResult is the server acknowledgement of a submission. Extra holds any
// additional fields the server returned.
type SubmitResult struct {
	Message string                     `json:"message"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// FetchPredictionsFor returns the prediction history of a user
func (c *Client) FetchPredictionsFor(ctx context.Context, userID string) ([]models.Prediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	query := url.Values{}
	query.Set(UserIDParam, userID)
	body, err := c.Get(ctx, PredictionsEndpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions: %w", err)
	}

	var response PredictionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal predictions: %v", clients.ErrMalformedPayload, err)
	}
	for i := range response.Predictions {
		if err := response.Predictions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", clients.ErrMalformedPayload, err)
		}
	}
	if response.Predictions == nil {
		response.Predictions = []models.Prediction{}
	}

	return response.Predictions, nil
}

// SubmitPrediction sends a pick with a stake. Failures are returned as-is so the
// caller can surface the server message.
func (c *Client) SubmitPrediction(ctx context.Context, gameID, pick string, amount float64) (*SubmitResult, error) {
	payload, err := json.Marshal(SubmitRequest{GameID: gameID, Pick: pick, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction: %w", err)
	}

	body, err := c.Post(ctx, c.predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to submit prediction: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal submission result: %v", clients.ErrMalformedPayload, err)
	}

	result := &SubmitResult{Extra: make(map[string]json.RawMessage)}
	for key, value := range raw {
		if key == "message" {
			if err := json.Unmarshal(value, &result.Message); err != nil {
				return nil, fmt.Errorf("%w: message must be a string", clients.ErrMalformedPayload)
			}
			continue
		}
		result.Extra[key] = value
	}

	return result, nil
}

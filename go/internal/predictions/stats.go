package predictions

import "github.com/mcdev12/gameday/go/internal/models"

// StartingBalance is the display balance before any settled prediction
const StartingBalance = 1000

// Stats summarizes a prediction history for display
type Stats struct {
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pending int     `json:"pending"`
	Balance float64 `json:"balance"`
}

// WinRate returns wins over settled predictions, or 0 when nothing has settled
func (s Stats) WinRate() float64 {
	settled := s.Wins + s.Losses
	if settled == 0 {
		return 0
	}
	return float64(s.Wins) / float64(settled)
}

// Summarize counts results and derives the balance: payouts of wins are added and
// stakes of losses subtracted. Pending stakes are not deducted.
func Summarize(history []models.Prediction) Stats {
	stats := Stats{Total: len(history), Balance: StartingBalance}
	for _, p := range history {
		switch p.Result {
		case models.ResultWin:
			stats.Wins++
			if p.Payout != nil {
				stats.Balance += *p.Payout
			}
		case models.ResultLoss:
			stats.Losses++
			stats.Balance -= p.Amount
		case models.ResultPending:
			stats.Pending++
		}
	}
	return stats
}

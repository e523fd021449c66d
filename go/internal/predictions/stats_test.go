package predictions

import (
	"testing"

	"github.com/mcdev12/gameday/go/internal/models"
)

func payout(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		history []models.Prediction
		want    Stats
	}{
		{
			name: "empty",
			want: Stats{Balance: StartingBalance},
		},
		{
			name: "mixed results",
			history: []models.Prediction{
				{GameID: "G1", Pick: "KC", Amount: 100, Result: models.ResultWin, Payout: payout(190.91)},
				{GameID: "G2", Pick: "BUF", Amount: 50, Result: models.ResultLoss},
				{GameID: "G3", Pick: "DAL", Amount: 75, Result: models.ResultPending},
				{GameID: "G4", Pick: "PHI", Amount: 20, Result: models.ResultLoss},
			},
			want: Stats{Total: 4, Wins: 1, Losses: 2, Pending: 1, Balance: 1000 + 190.91 - 50 - 20},
		},
		{
			name: "win without payout",
			history: []models.Prediction{
				{GameID: "G1", Pick: "KC", Amount: 100, Result: models.ResultWin},
			},
			want: Stats{Total: 1, Wins: 1, Balance: StartingBalance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.history)
			if got.Total != tt.want.Total || got.Wins != tt.want.Wins || got.Losses != tt.want.Losses || got.Pending != tt.want.Pending {
				t.Errorf("Summarize() counts = %+v, want %+v", got, tt.want)
			}
			if diff := got.Balance - tt.want.Balance; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Summarize() balance = %v, want %v", got.Balance, tt.want.Balance)
			}
		})
	}
}

func TestStats_WinRate(t *testing.T) {
	if got := (Stats{}).WinRate(); got != 0 {
		t.Errorf("WinRate() with nothing settled = %v, want 0", got)
	}
	if got := (Stats{Wins: 3, Losses: 1, Pending: 5}).WinRate(); got != 0.75 {
		t.Errorf("WinRate() = %v, want 0.75", got)
	}
}

package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestGameStatus_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    GameStatus
		wantErr bool
	}{
		{name: "scheduled", input: `"scheduled"`, want: StatusScheduled},
		{name: "camel case in progress", input: `"inProgress"`, want: StatusInProgress},
		{name: "snake case in progress", input: `"in_progress"`, want: StatusInProgress},
		{name: "final", input: `"final"`, want: StatusFinal},
		{name: "unknown value", input: `"postponed"`, wantErr: true},
		{name: "not a string", input: `3`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got GameStatus
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got status %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGameStatus_MarshalUnknown(t *testing.T) {
	_, err := json.Marshal(GameStatus(0))
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestGameStatus_Exhaustive(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
		parsed, err := ParseGameStatus(s.String())
		if err != nil || parsed != s {
			t.Errorf("round trip of %v gave %v, %v", s, parsed, err)
		}
	}
	if !StatusFinal.IsTerminal() || StatusInProgress.IsTerminal() || StatusScheduled.IsTerminal() {
		t.Error("only final should be terminal")
	}
}

func TestGame_Validate(t *testing.T) {
	base := func() Game {
		return Game{
			ID:       "G1",
			Status:   StatusScheduled,
			HomeTeam: Team{Name: "Boston Celtics", Abbreviation: "BOS", Record: "10-2"},
			AwayTeam: Team{Name: "New York Knicks", Abbreviation: "NYK", Record: "8-4"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(g *Game)
		wantErr bool
	}{
		{name: "valid scheduled game", mutate: func(g *Game) {}},
		{name: "missing id", mutate: func(g *Game) { g.ID = "" }, wantErr: true},
		{name: "unknown status", mutate: func(g *Game) { g.Status = 0 }, wantErr: true},
		{name: "scheduled with score", mutate: func(g *Game) { g.HomeTeam.Score = intPtr(1) }, wantErr: true},
		{name: "in progress with scores", mutate: func(g *Game) {
			g.Status = StatusInProgress
			g.HomeTeam.Score = intPtr(1)
			g.AwayTeam.Score = intPtr(3)
		}},
		{name: "final with winner", mutate: func(g *Game) {
			g.Status = StatusFinal
			g.HomeTeam.Score = intPtr(100)
			g.AwayTeam.Score = intPtr(90)
			g.Winner = "BOS"
		}},
		{name: "winner not a participant", mutate: func(g *Game) {
			g.Status = StatusFinal
			g.Winner = "LAL"
		}, wantErr: true},
		{name: "winner before final", mutate: func(g *Game) {
			g.Status = StatusInProgress
			g.Winner = "BOS"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base()
			tt.mutate(&g)
			err := g.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidGame) {
				t.Fatalf("expected ErrInvalidGame, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateGames_Duplicate(t *testing.T) {
	games := []Game{
		{ID: "G1", Status: StatusScheduled},
		{ID: "G1", Status: StatusScheduled},
	}
	if err := ValidateGames(games); !errors.Is(err, ErrInvalidGame) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestGame_Leading(t *testing.T) {
	tests := []struct {
		name       string
		status     GameStatus
		away, home *int
		want       string
	}{
		{name: "scheduled", status: StatusScheduled, want: ""},
		{name: "away ahead", status: StatusInProgress, away: intPtr(3), home: intPtr(1), want: "NYK"},
		{name: "home ahead", status: StatusFinal, away: intPtr(0), home: intPtr(2), want: "BOS"},
		{name: "tie", status: StatusInProgress, away: intPtr(2), home: intPtr(2), want: ""},
		{name: "missing score", status: StatusInProgress, away: intPtr(2), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Game{
				ID:       "G1",
				Status:   tt.status,
				HomeTeam: Team{Abbreviation: "BOS", Score: tt.home},
				AwayTeam: Team{Abbreviation: "NYK", Score: tt.away},
			}
			if got := g.Leading(); got != tt.want {
				t.Errorf("Leading() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGame_DecodeScenarioPayload(t *testing.T) {
	payload := `{"id":"G1","status":"inProgress","awayTeam":{"abbreviation":"NYK","score":3},"homeTeam":{"abbreviation":"BOS","score":1}}`
	var g Game
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if g.Matchup() != "NYK @ BOS" {
		t.Errorf("Matchup() = %q", g.Matchup())
	}
	if *g.AwayTeam.Score != 3 || *g.HomeTeam.Score != 1 {
		t.Errorf("unexpected scores %d-%d", *g.AwayTeam.Score, *g.HomeTeam.Score)
	}
}

func TestCloneGames(t *testing.T) {
	if CloneGames(nil) != nil {
		t.Error("CloneGames(nil) should stay nil")
	}

	games := []Game{{ID: "G1", Status: StatusInProgress}}
	games[0].AwayTeam.Score = intPtr(7)

	clone := CloneGames(games)
	clone[0].ID = "G2"
	if games[0].ID != "G1" {
		t.Errorf("original ID = %q after changing the clone", games[0].ID)
	}
	// scores are shared; callers swap the pointer instead of writing through it
	if clone[0].AwayTeam.Score != games[0].AwayTeam.Score {
		t.Error("clone does not share the score pointer")
	}
	clone[0].AwayTeam.Score = intPtr(14)
	if *games[0].AwayTeam.Score != 7 {
		t.Errorf("original score = %d after replacing the clone's", *games[0].AwayTeam.Score)
	}
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GameStatus is the lifecycle state of a game. The set is closed: every switch over
// a GameStatus must handle all three values.
type GameStatus uint8

const (
	StatusScheduled GameStatus = iota + 1
	StatusInProgress
	StatusFinal
)

// Statuses lists every valid status in lifecycle order
var Statuses = []GameStatus{StatusScheduled, StatusInProgress, StatusFinal}

var (
	// ErrUnknownStatus is returned when a status value is outside the closed set
	ErrUnknownStatus = errors.New("unknown game status")
	// ErrInvalidGame is returned when a game violates a data model invariant
	ErrInvalidGame = errors.New("invalid game")
)

// String returns the wire form of the status
func (s GameStatus) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusInProgress:
		return "inProgress"
	case StatusFinal:
		return "final"
	default:
		return fmt.Sprintf("GameStatus(%d)", uint8(s))
	}
}

// ParseGameStatus converts a wire value into a GameStatus. Both the camel case form
// sent by the API and the snake case form are accepted.
func ParseGameStatus(v string) (GameStatus, error) {
	switch v {
	case "scheduled":
		return StatusScheduled, nil
	case "inProgress", "in_progress":
		return StatusInProgress, nil
	case "final":
		return StatusFinal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, v)
	}
}

// Valid reports whether s is one of the known statuses
func (s GameStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusFinal:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further lifecycle transition can happen
func (s GameStatus) IsTerminal() bool {
	switch s {
	case StatusFinal:
		return true
	case StatusScheduled, StatusInProgress:
		return false
	default:
		return false
	}
}

// HasScores reports whether games in this status carry scores
func (s GameStatus) HasScores() bool {
	switch s {
	case StatusInProgress, StatusFinal:
		return true
	case StatusScheduled:
		return false
	default:
		return false
	}
}

func (s GameStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *GameStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("game status must be a string: %w", err)
	}
	parsed, err := ParseGameStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Game is the client-side projection of a game. The client never originates one.
type Game struct {
	ID        string     `json:"id"`
	Status    GameStatus `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	Period    string     `json:"period,omitempty"`
	Clock     string     `json:"clock,omitempty"`
	HomeTeam  Team       `json:"homeTeam"`
	AwayTeam  Team       `json:"awayTeam"`
	Odds      *Odds      `json:"odds,omitempty"`
	Winner    string     `json:"winner,omitempty"` // Only meaningful when final
}

// Validate checks the data model invariants of a game
func (g *Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidGame)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: game %s: %v", ErrInvalidGame, g.ID, ErrUnknownStatus)
	}
	if g.Winner != "" {
		if g.Status != StatusFinal {
			return fmt.Errorf("%w: game %s has a winner but is %s", ErrInvalidGame, g.ID, g.Status)
		}
		if g.Winner != g.HomeTeam.Abbreviation && g.Winner != g.AwayTeam.Abbreviation {
			return fmt.Errorf("%w: game %s winner %q is not a participant", ErrInvalidGame, g.ID, g.Winner)
		}
	}
	if !g.Status.HasScores() && (g.HomeTeam.HasScore() || g.AwayTeam.HasScore()) {
		return fmt.Errorf("%w: game %s is %s but carries scores", ErrInvalidGame, g.ID, g.Status)
	}
	return nil
}

// HasTeam reports whether abbr names one of the two participants
func (g *Game) HasTeam(abbr string) bool {
	return abbr != "" && (abbr == g.HomeTeam.Abbreviation || abbr == g.AwayTeam.Abbreviation)
}

// Matchup returns the "AWY @ HOM" title of the game
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.AwayTeam.Abbreviation, g.HomeTeam.Abbreviation)
}

// Leading returns the abbreviation of the team currently ahead. It is empty for
// scheduled games, when either score is missing, and on a tie.
func (g *Game) Leading() string {
	switch g.Status {
	case StatusScheduled:
		return ""
	case StatusInProgress, StatusFinal:
	default:
		return ""
	}
	if !g.AwayTeam.HasScore() || !g.HomeTeam.HasScore() {
		return ""
	}
	away, home := *g.AwayTeam.Score, *g.HomeTeam.Score
	switch {
	case away > home:
		return g.AwayTeam.Abbreviation
	case home > away:
		return g.HomeTeam.Abbreviation
	default:
		return ""
	}
}

// ValidateGames validates every game of a list and rejects duplicate ids
func ValidateGames(games []Game) error {
	seen := make(map[string]struct{}, len(games))
	for i := range games {
		if err := games[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[games[i].ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidGame, games[i].ID)
		}
		seen[games[i].ID] = struct{}{}
	}
	return nil
}

// FindGame returns the game with the given id, or nil
func FindGame(games []Game, id string) *Game {
	for i := range games {
		if games[i].ID == id {
			g := games[i]
			return &g
		}
	}
	return nil
}

// CloneGames returns a copy of the list that shares no backing array with games.
// Pointer fields (scores, odds, start time) are shared, so games must be replaced
// rather than modified in place.
func CloneGames(games []Game) []Game {
	if games == nil {
		return nil
	}
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

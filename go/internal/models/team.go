package models

// Team represents one side of a game as shown to the user
type Team struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Record       string `json:"record"`
	Score        *int   `json:"score,omitempty"` // Only set once the game has started
}

// Odds holds the point spread published for a game
type Odds struct {
	Spread   string `json:"spread"`
	Favorite string `json:"favorite"` // Abbreviation of the favored team
}

// HasScore reports whether the team carries a current score
func (t Team) HasScore() bool {
	return t.Score != nil
}

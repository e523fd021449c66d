package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/clients"
	"github.com/mcdev12/gameday/go/internal/models"
	"github.com/mcdev12/gameday/go/internal/predictions"
	"github.com/mcdev12/gameday/go/internal/reconcile"
)

// UnknownErrorMessage is shown when a failed submission carries no server message
const UnknownErrorMessage = "An unknown error occurred"

var (
	ErrNoGame           = errors.New("game not loaded")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

// SubmitError is a failed submission. Message is what the user should see.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// GameDetail shows a single game and accepts a pick while betting is open
type GameDetail struct {
	gameID     string
	app        *predictions.App
	reconciler *reconcile.Reconciler[*models.Game]

	mu         sync.Mutex
	pick       string
	submitting bool
}

// GameDetailView is the JSON form of the detail screen
type GameDetailView struct {
	ViewState
	Game        *models.Game `json:"game,omitempty"`
	Title       string       `json:"title"`
	Leading     string       `json:"leading,omitempty"`
	BettingOpen bool         `json:"betting_open"`
	Pick        string       `json:"pick,omitempty"`
	Submitting  bool         `json:"submitting"`
}

func NewGameDetail(gameID string, fetcher GamesFetcher, app *predictions.App, opts Options) *GameDetail {
	d := &GameDetail{
		gameID: gameID,
		app:    app,
	}
	d.reconciler = reconcile.New(reconcile.Config[*models.Game]{
		Name: "game:" + gameID,
		Fetch: func(ctx context.Context) (*models.Game, error) {
			return fetcher.FetchOne(ctx, gameID)
		},
		Project: func(games []models.Game) (*models.Game, bool) {
			game := models.FindGame(games, gameID)
			return game, game != nil
		},
		// Live updates only matter until the game is over
		Settled: func(game *models.Game) bool {
			return game != nil && game.Status.IsTerminal()
		},
		Live:           opts.Live,
		LoadingTimeout: opts.LoadingTimeout,
		Clock:          opts.Clock,
		Metrics:        opts.Metrics,
	})
	return d
}

func (d *GameDetail) Mount(ctx context.Context) error {
	return d.reconciler.Mount(ctx)
}

func (d *GameDetail) Unmount() {
	d.reconciler.Unmount()
}

func (d *GameDetail) Name() string {
	return d.reconciler.Name()
}

func (d *GameDetail) GameID() string {
	return d.gameID
}

func (d *GameDetail) State() reconcile.State[*models.Game] {
	return d.reconciler.State()
}

func (d *GameDetail) Changed() <-chan struct{} {
	return d.reconciler.Changed()
}

// Game returns the current game, or nil when none is loaded
func (d *GameDetail) Game() *models.Game {
	return d.reconciler.State().Value
}

// Title returns "AWY @ HOM", or an empty string when no game is loaded
func (d *GameDetail) Title() string {
	game := d.Game()
	if game == nil {
		return ""
	}
	return game.Matchup()
}

func (d *GameDetail) Leading() string {
	game := d.Game()
	if game == nil {
		return ""
	}
	return game.Leading()
}

func (d *GameDetail) BettingOpen() bool {
	game := d.Game()
	return game != nil && predictions.BettingOpen(game)
}

// IsFavorite reports whether abbr is the favored team in the current odds
func (d *GameDetail) IsFavorite(abbr string) bool {
	game := d.Game()
	return game != nil && game.Odds != nil && abbr != "" && game.Odds.Favorite == abbr
}

// SelectPick chooses the team to back
func (d *GameDetail) SelectPick(abbr string) error {
	game := d.Game()
	if game == nil {
		return ErrNoGame
	}
	if !predictions.BettingOpen(game) {
		return predictions.ErrBettingClosed
	}
	if !game.HasTeam(abbr) {
		return predictions.ErrInvalidPick
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pick = abbr
	return nil
}

func (d *GameDetail) Pick() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pick
}

func (d *GameDetail) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

// Submit sends the selected pick with amount and returns the server message. On
// failure the returned *SubmitError carries the message to show and the selection is
// kept so the user can retry.
func (d *GameDetail) Submit(ctx context.Context, amount float64) (string, error) {
	game := d.Game()
	if game == nil {
		return "", &SubmitError{Message: ErrNoGame.Error(), Err: ErrNoGame}
	}

	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return "", &SubmitError{Message: ErrSubmitInProgress.Error(), Err: ErrSubmitInProgress}
	}
	d.submitting = true
	pick := d.pick
	d.mu.Unlock()

	result, err := d.app.Submit(ctx, predictions.SubmitRequest{
		Game:   game,
		Pick:   pick,
		Amount: amount,
	})

	d.mu.Lock()
	d.submitting = false
	if err == nil {
		d.pick = ""
	}
	d.mu.Unlock()

	if err != nil {
		message := submitErrorMessage(err)
		log.Warn().Err(err).Str("game_id", d.gameID).Msg("prediction submission failed")
		return "", &SubmitError{Message: message, Err: err}
	}
	return result.Message, nil
}

func submitErrorMessage(err error) string {
	if message, ok := clients.ServerMessage(err); ok {
		return message
	}
	switch {
	case errors.Is(err, predictions.ErrBettingClosed),
		errors.Is(err, predictions.ErrInvalidPick),
		errors.Is(err, predictions.ErrInvalidAmount):
		return err.Error()
	}
	return UnknownErrorMessage
}

func (d *GameDetail) Describe() any {
	state := d.reconciler.State()
	view := GameDetailView{
		ViewState:  viewState(d.Name(), state),
		Game:       state.Value,
		Pick:       d.Pick(),
		Submitting: d.Submitting(),
	}
	if state.Value != nil {
		view.Title = state.Value.Matchup()
		view.Leading = state.Value.Leading()
		view.BettingOpen = predictions.BettingOpen(state.Value)
	}
	return view
}

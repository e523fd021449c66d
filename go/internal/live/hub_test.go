package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mcdev12/gameday/go/internal/metrics"
	"github.com/mcdev12/gameday/go/internal/models"
)

const twoGames = `[
	{"id":"g1","status":"scheduled","homeTeam":{"name":"Chiefs","abbreviation":"KC","record":"10-2"},"awayTeam":{"name":"Bills","abbreviation":"BUF","record":"9-3"}},
	{"id":"g2","status":"inProgress","period":"Q3","clock":"4:12","homeTeam":{"name":"Eagles","abbreviation":"PHI","record":"8-4","score":21},"awayTeam":{"name":"Cowboys","abbreviation":"DAL","record":"7-5","score":17}}
]`

type recorder struct {
	mu     sync.Mutex
	lists  [][]models.Game
	errors []error
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnGamesReplaced: func(games []models.Game) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.lists = append(r.lists, games)
		},
		OnConnectionError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errors = append(r.errors, err)
		},
	}
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists), len(r.errors)
}

func TestHubFansOutToEveryListener(t *testing.T) {
	hub := NewHub(nil)
	a, b := &recorder{}, &recorder{}

	if _, err := hub.Subscribe(a.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if _, err := hub.Subscribe(b.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if got := hub.Stats().Listeners; got != 2 {
		t.Fatalf("Listeners = %d, want 2", got)
	}

	hub.HandleEvent(EventTypeGamesUpdate, []byte(twoGames))

	for name, r := range map[string]*recorder{"a": a, "b": b} {
		lists, _ := r.counts()
		if lists != 1 {
			t.Fatalf("listener %s got %d updates, want 1", name, lists)
		}
		if len(r.lists[0]) != 2 {
			t.Errorf("listener %s got %d games, want 2", name, len(r.lists[0]))
		}
	}

	// Listeners get separate slices
	a.lists[0][0].ID = "changed"
	if b.lists[0][0].ID != "g1" {
		t.Errorf("listeners share a backing array")
	}
}

func TestHubUnsubscribeIsIsolatedAndIdempotent(t *testing.T) {
	hub := NewHub(nil)
	a, b := &recorder{}, &recorder{}

	subA, _ := hub.Subscribe(a.handlers())
	subB, _ := hub.Subscribe(b.handlers())
	if subA.ID() == subB.ID() {
		t.Fatalf("subscriptions share id %s", subA.ID())
	}

	subA.Unsubscribe()
	subA.Unsubscribe()

	if got := hub.Stats().Listeners; got != 1 {
		t.Fatalf("Listeners = %d, want 1", got)
	}

	hub.HandleEvent(EventTypeGamesUpdate, []byte(twoGames))

	if lists, _ := a.counts(); lists != 0 {
		t.Errorf("unsubscribed listener got %d updates", lists)
	}
	if lists, _ := b.counts(); lists != 1 {
		t.Errorf("remaining listener got %d updates, want 1", lists)
	}

	subB.Unsubscribe()
	if got := hub.Stats().Listeners; got != 0 {
		t.Errorf("Listeners = %d, want 0", got)
	}
}

func TestHubDropsBadEvents(t *testing.T) {
	tests := []struct {
		name  string
		event EventType
		data  string
	}{
		{name: "invalid json", event: EventTypeGamesUpdate, data: `[{"id":`},
		{name: "not a list", event: EventTypeGamesUpdate, data: `null`},
		{name: "unknown status", event: EventTypeGamesUpdate, data: `[{"id":"g1","status":"postponed","homeTeam":{},"awayTeam":{}}]`},
		{name: "one bad game", event: EventTypeGamesUpdate, data: `[{"id":"g1","status":"scheduled","homeTeam":{},"awayTeam":{}},{"id":"","status":"final","homeTeam":{},"awayTeam":{}}]`},
		{name: "scores before kickoff", event: EventTypeGamesUpdate, data: `[{"id":"g1","status":"scheduled","homeTeam":{"score":3},"awayTeam":{}}]`},
		{name: "unknown event", event: "oddsUpdate", data: twoGames},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil)
			r := &recorder{}
			hub.Subscribe(r.handlers())

			hub.HandleEvent(tt.event, []byte(tt.data))

			if lists, _ := r.counts(); lists != 0 {
				t.Errorf("listener got %d updates, want 0", lists)
			}
			stats := hub.Stats()
			if stats.EventsDropped != 1 || stats.EventsDelivered != 0 {
				t.Errorf("stats = %+v, want one dropped event", stats)
			}
		})
	}
}

func TestHubEmptyListIsDelivered(t *testing.T) {
	hub := NewHub(nil)
	r := &recorder{}
	if _, err := hub.Subscribe(r.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	hub.HandleEvent(EventTypeGamesUpdate, []byte(`[]`))

	if lists, _ := r.counts(); lists != 1 {
		t.Fatalf("listener got %d updates, want 1", lists)
	}
	if r.lists[0] == nil || len(r.lists[0]) != 0 {
		t.Errorf("got %v, want empty non-nil list", r.lists[0])
	}
}

func TestHubConnectionErrorFanOut(t *testing.T) {
	hub := NewHub(nil)
	a, b := &recorder{}, &recorder{}
	hub.Subscribe(a.handlers())
	hub.Subscribe(Handlers{}) // nil callbacks are skipped
	hub.Subscribe(b.handlers())

	hub.HandleConnectionError(errors.New("connection refused"))

	for _, r := range []*recorder{a, b} {
		if _, errs := r.counts(); errs != 1 {
			t.Errorf("listener got %d errors, want 1", errs)
		}
	}
	if got := hub.Stats().ConnectionErrors; got != 1 {
		t.Errorf("ConnectionErrors = %d, want 1", got)
	}
}

type stubTransport struct {
	started chan Sink
}

func (s *stubTransport) Run(ctx context.Context, sink Sink) error {
	s.started <- sink
	<-ctx.Done()
	return nil
}

func TestHubStartAndClose(t *testing.T) {
	transport := &stubTransport{started: make(chan Sink, 1)}
	hub := NewHub(transport)
	r := &recorder{}
	if _, err := hub.Subscribe(r.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- hub.Start(context.Background()) }()

	var sink Sink
	select {
	case sink = <-transport.started:
	case <-time.After(time.Second):
		t.Fatal("transport was not started")
	}
	if !hub.Stats().Running {
		t.Error("hub not running after start")
	}

	sink.HandleEvent(EventTypeGamesUpdate, []byte(twoGames))
	if lists, _ := r.counts(); lists != 1 {
		t.Errorf("listener got %d updates, want 1", lists)
	}

	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := hub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := hub.Subscribe(r.handlers()); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() after close error = %v, want ErrClosed", err)
	}
	if err := hub.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after close error = %v, want ErrClosed", err)
	}
	if got := hub.Stats(); got.Listeners != 0 || got.Running {
		t.Errorf("stats after close = %+v", got)
	}
}

func TestSharedLifecycle(t *testing.T) {
	if _, err := Shared(); !errors.Is(err, ErrSharedNotInitialized) {
		t.Fatalf("Shared() before init error = %v", err)
	}

	hub, err := InitShared(context.Background(), nil)
	if err != nil {
		t.Fatalf("InitShared() error = %v", err)
	}
	if _, err := InitShared(context.Background(), nil); !errors.Is(err, ErrSharedInitialized) {
		t.Errorf("second InitShared() error = %v", err)
	}

	got, err := Shared()
	if err != nil || got != hub {
		t.Fatalf("Shared() = %p, %v; want %p", got, err, hub)
	}

	if err := ShutdownShared(); err != nil {
		t.Fatalf("ShutdownShared() error = %v", err)
	}
	if err := ShutdownShared(); !errors.Is(err, ErrSharedNotInitialized) {
		t.Errorf("second ShutdownShared() error = %v", err)
	}
}

type failingTransport struct {
	err error
}

func (f failingTransport) Run(ctx context.Context, sink Sink) error {
	return f.err
}

func TestHubReportsTransportFailure(t *testing.T) {
	denied := errors.New("permission denied")
	hub := NewHub(failingTransport{err: denied})
	r := &recorder{}
	if _, err := hub.Subscribe(r.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := hub.Start(context.Background()); !errors.Is(err, denied) {
		t.Fatalf("Start() error = %v, want %v", err, denied)
	}

	if _, errs := r.counts(); errs != 1 {
		t.Fatalf("listener got %d errors, want 1", errs)
	}
	if !errors.Is(r.errors[0], denied) {
		t.Errorf("listener error = %v, want wrapped %v", r.errors[0], denied)
	}
	stats := hub.Stats()
	if stats.ConnectionErrors != 1 || stats.Running {
		t.Errorf("stats = %+v, want one connection error and not running", stats)
	}
}

func TestHubTransportStoppedByCancelIsNotAnError(t *testing.T) {
	hub := NewHub(failingTransport{err: context.Canceled})
	r := &recorder{}
	if _, err := hub.Subscribe(r.handlers()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Start(ctx)

	if _, errs := r.counts(); errs != 0 {
		t.Errorf("listener got %d errors after cancel, want 0", errs)
	}
}

type eventLabels struct {
	metrics.NoOpCollector
	mu     sync.Mutex
	events []string
}

func (e *eventLabels) RecordPushEvent(event string, accepted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func TestHubCollapsesUnknownEventLabels(t *testing.T) {
	labels := &eventLabels{}
	hub := NewHub(nil, WithMetrics(labels))

	hub.HandleEvent("oddsUpdate", []byte(`{}`))
	hub.HandleEvent("x-"+EventType(strings.Repeat("a", 64)), []byte(`{}`))
	hub.HandleEvent(EventTypeGamesUpdate, []byte(`[]`))

	want := []string{"unknown", "unknown", "gamesUpdate"}
	if len(labels.events) != len(want) {
		t.Fatalf("recorded %v, want %v", labels.events, want)
	}
	for i := range want {
		if labels.events[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels.events[i], want[i])
		}
	}
}

package live

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// The process holds at most one shared connection. It is created at start-up with
// InitShared and torn down at exit with ShutdownShared; screens only ever register
// listeners on it.
var (
	sharedMu   sync.Mutex
	shared     *Hub
	sharedDone chan struct{}

	ErrSharedInitialized    = errors.New("shared live connection already initialized")
	ErrSharedNotInitialized = errors.New("shared live connection not initialized")
)

// InitShared creates the process-wide hub and starts it in the background
func InitShared(ctx context.Context, transport Transport, opts ...HubOption) (*Hub, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return nil, ErrSharedInitialized
	}

	hub := NewHub(transport, opts...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := hub.Start(ctx); err != nil {
			log.Error().Err(err).Msg("shared live connection failed")
		}
	}()

	shared = hub
	sharedDone = done
	return hub, nil
}

// Shared returns the process-wide hub
func Shared() (*Hub, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		return nil, ErrSharedNotInitialized
	}
	return shared, nil
}

// ShutdownShared closes the process-wide hub and waits for its transport to stop
func ShutdownShared() error {
	sharedMu.Lock()
	hub, done := shared, sharedDone
	shared, sharedDone = nil, nil
	sharedMu.Unlock()

	if hub == nil {
		return ErrSharedNotInitialized
	}
	err := hub.Close()
	<-done
	return err
}

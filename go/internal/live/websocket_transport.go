package live

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// WebSocketConfig holds configuration for the push socket
type WebSocketConfig struct {
	URL            string
	Header         http.Header
	HandshakeWait  time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	ReconnectWait  time.Duration
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns default push socket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		URL:            "ws://localhost:4000/ws",
		HandshakeWait:  10 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   30 * time.Second,
		ReconnectWait:  2 * time.Second,
		MaxMessageSize: 1 << 20, // full game lists can be large
	}
}

// WebSocketTransport keeps a single socket to the push server open, reconnecting
// after failures
type WebSocketTransport struct {
	config WebSocketConfig
	dialer *websocket.Dialer
	clock  clockwork.Clock
}

// NewWebSocketTransport creates a transport. A nil clock uses the real clock.
func NewWebSocketTransport(config WebSocketConfig, clock clockwork.Clock) *WebSocketTransport {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WebSocketTransport{
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeWait,
		},
		clock: clock,
	}
}

// Run connects and listens until ctx is cancelled. Connection failures are reported
// to sink and retried after ReconnectWait.
func (t *WebSocketTransport) Run(ctx context.Context, sink Sink) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := t.connectAndListen(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			sink.HandleConnectionError(err)
		}

		timer := t.clock.NewTimer(t.config.ReconnectWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.Chan():
			log.Debug().Str("url", t.config.URL).Msg("reconnecting push socket")
		}
	}
}

func (t *WebSocketTransport) connectAndListen(ctx context.Context, sink Sink) error {
	conn, _, err := t.dialer.DialContext(ctx, t.config.URL, t.config.Header)
	if err != nil {
		return fmt.Errorf("dial push socket: %w", err)
	}
	defer conn.Close()

	log.Info().Str("url", t.config.URL).Msg("push socket connected")

	// Closing the socket unblocks ReadMessage on shutdown
	stop := make(chan struct{})
	defer close(stop)
	go t.keepAlive(ctx, conn, stop)

	if t.config.MaxMessageSize > 0 {
		conn.SetReadLimit(t.config.MaxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))
		return nil
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read push socket: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))

		env, err := ParseEnvelope(frame)
		if err != nil {
			log.Warn().Err(err).Msg("dropping unreadable push frame")
			continue
		}
		sink.HandleEvent(env.Event, env.Data)
	}
}

// keepAlive pings the server and closes the socket when ctx is done
func (t *WebSocketTransport) keepAlive(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	ticker := t.clock.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			deadline := time.Now().Add(t.config.WriteTimeout)
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			conn.Close()
			return
		case <-ticker.Chan():
			deadline := time.Now().Add(t.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Warn().Err(err).Msg("failed to ping push socket")
				return
			}
		}
	}
}

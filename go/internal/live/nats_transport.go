package live

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for receiving push events from a NATS subject tree
type NATSConfig struct {
	URL           string
	SubjectPrefix string // events arrive on <prefix>.<event name>
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "gameday.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSTransport delivers push events published on NATS. The message body is the
// event data; the event name is the last subject token.
type NATSTransport struct {
	config NATSConfig
	clock  clockwork.Clock
}

func NewNATSTransport(config NATSConfig, clock clockwork.Clock) *NATSTransport {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &NATSTransport{config: config, clock: clock}
}

// Run subscribes until ctx is cancelled. Failures to connect or subscribe are
// reported to sink and retried after ReconnectWait; once connected, the client
// library handles reconnects.
func (t *NATSTransport) Run(ctx context.Context, sink Sink) error {
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
			log.Debug().Str("url", t.config.URL).Msg("retrying NATS subscription")
		}
	}
}

func (t *NATSTransport) connectAndListen(ctx context.Context, sink Sink) error {
	nc, err := t.connect(sink)
	if err != nil {
		return err
	}
	return t.listen(ctx, nc, sink)
}

func (t *NATSTransport) connect(sink Sink) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("gameday-live"),
		nats.MaxReconnects(t.config.MaxReconnects),
		nats.ReconnectWait(t.config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				sink.HandleConnectionError(fmt.Errorf("NATS disconnected: %w", err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			sink.HandleConnectionError(fmt.Errorf("NATS error: %w", err))
		}),
	}

	nc, err := nats.Connect(t.config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func (t *NATSTransport) listen(ctx context.Context, nc *nats.Conn, sink Sink) error {
	defer nc.Close()

	prefix := strings.TrimSuffix(t.config.SubjectPrefix, ".")
	subject := prefix + ".>"
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		event := EventType(strings.TrimPrefix(msg.Subject, prefix+"."))
		sink.HandleEvent(event, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("subject", subject).
		Msg("listening for push events on NATS")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Warn().Err(err).Msg("failed to unsubscribe from NATS")
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/clients/gameday_client"
	"github.com/mcdev12/gameday/go/internal/cache"
	"github.com/mcdev12/gameday/go/internal/config"
	"github.com/mcdev12/gameday/go/internal/live"
	"github.com/mcdev12/gameday/go/internal/metrics"
	"github.com/mcdev12/gameday/go/internal/predictions"
)

type Services struct {
	Client      *gameday_client.Client
	Predictions *predictions.App
	Cache       cache.GameListCache
	Transport   live.Transport
	Metrics     *metrics.Prometheus
	Registry    *prometheus.Registry
	Clock       clockwork.Clock

	redis *redis.Client
}

func setupServices(cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// HTTP client → App layer → Screens

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := gameday_client.NewClient(cfg.API.BaseURL,
		gameday_client.WithTimeout(cfg.API.Timeout),
		gameday_client.WithPredictPath(cfg.API.PredictPath),
	)

	s := &Services{
		Client:      client,
		Predictions: predictions.NewApp(client),
		Metrics:     metrics.NewPrometheus(registry),
		Registry:    registry,
		Clock:       clockwork.NewRealClock(),
	}

	switch cfg.Cache.Backend {
	case config.CacheMemory:
		s.Cache = cache.NewMemory()
	case config.CacheRedis:
		s.redis = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		s.Cache = cache.NewRedis(s.redis, cfg.Cache.Key, cfg.Cache.TTL)
	case config.CacheNone:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	switch cfg.Live.Transport {
	case config.TransportWebSocket:
		wsConfig := live.DefaultWebSocketConfig()
		wsConfig.URL = cfg.Live.URL
		wsConfig.ReconnectWait = cfg.Live.ReconnectWait
		if cfg.Live.PingInterval > 0 {
			wsConfig.PingInterval = cfg.Live.PingInterval
		}
		if cfg.Live.ReadTimeout > 0 {
			wsConfig.ReadTimeout = cfg.Live.ReadTimeout
		}
		s.Transport = live.NewWebSocketTransport(wsConfig, s.Clock)
	case config.TransportNATS:
		natsConfig := live.DefaultNATSConfig()
		natsConfig.URL = cfg.Live.NATSURL
		natsConfig.SubjectPrefix = cfg.Live.Subject
		natsConfig.ReconnectWait = cfg.Live.ReconnectWait
		s.Transport = live.NewNATSTransport(natsConfig, s.Clock)
	case config.TransportNone:
		log.Warn().Msg("live updates disabled")
	default:
		return nil, fmt.Errorf("unknown live transport %q", cfg.Live.Transport)
	}

	return s, nil
}

func (s *Services) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

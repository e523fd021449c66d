package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport names
const (
	TransportWebSocket = "websocket"
	TransportNATS      = "nats"
	TransportNone      = "none"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Live    LiveConfig    `yaml:"live"`
	Screens ScreensConfig `yaml:"screens"`
	Cache   CacheConfig   `yaml:"cache"`
	Debug   DebugConfig   `yaml:"debug"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	PredictPath string        `yaml:"predict_path"`
}

type LiveConfig struct {
	Transport     string        `yaml:"transport"`
	URL           string        `yaml:"url"`
	NATSURL       string        `yaml:"nats_url"`
	Subject       string        `yaml:"subject"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	PingInterval  time.Duration `yaml:"ping_interval"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
}

type ScreensConfig struct {
	LoadingTimeout time.Duration `yaml:"loading_timeout"`
	UserID         string        `yaml:"user_id"`
	GameIDs        []string      `yaml:"game_ids"` // detail screens to mount at start
	Filter         string        `yaml:"filter"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	Key       string        `yaml:"key"`
	TTL       time.Duration `yaml:"ttl"`
}

type DebugConfig struct {
	Port string `yaml:"port"` // empty disables the inspection server
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:4000/api",
			Timeout:     30 * time.Second,
			PredictPath: "/games/predict",
		},
		Live: LiveConfig{
			Transport:     TransportWebSocket,
			URL:           "ws://localhost:4000/ws",
			NATSURL:       "nats://localhost:4222",
			Subject:       "gameday.events",
			ReconnectWait: 2 * time.Second,
			PingInterval:  30 * time.Second,
			ReadTimeout:   60 * time.Second,
		},
		Screens: ScreensConfig{
			LoadingTimeout: 8 * time.Second,
			UserID:         "usr123",
			Filter:         "all",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			Key:     "gameday:games:last",
			TTL:     24 * time.Hour,
		},
		Debug: DebugConfig{Port: "8080"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("GAMEDAY_API_URL", c.API.BaseURL)
	c.API.PredictPath = getEnv("GAMEDAY_PREDICT_PATH", c.API.PredictPath)
	c.Live.Transport = getEnv("GAMEDAY_LIVE_TRANSPORT", c.Live.Transport)
	c.Live.URL = getEnv("GAMEDAY_LIVE_URL", c.Live.URL)
	c.Live.NATSURL = getEnv("NATS_URL", c.Live.NATSURL)
	c.Screens.UserID = getEnv("GAMEDAY_USER_ID", c.Screens.UserID)
	c.Screens.LoadingTimeout = getEnvAsDuration("GAMEDAY_LOADING_TIMEOUT", c.Screens.LoadingTimeout)
	c.Cache.Backend = getEnv("GAMEDAY_CACHE", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisDB = getEnvAsInt("REDIS_DB", c.Cache.RedisDB)
	c.Debug.Port = getEnv("PORT", c.Debug.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate checks option values
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Live.Transport {
	case TransportWebSocket:
		if c.Live.URL == "" {
			return fmt.Errorf("live.url is required for the websocket transport")
		}
	case TransportNATS:
		if c.Live.NATSURL == "" || c.Live.Subject == "" {
			return fmt.Errorf("live.nats_url and live.subject are required for the nats transport")
		}
	case TransportNone:
	default:
		return fmt.Errorf("unknown live transport %q", c.Live.Transport)
	}
	if c.Live.Transport != TransportNone && c.Live.ReconnectWait <= 0 {
		return fmt.Errorf("live.reconnect_wait must be positive")
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Screens.LoadingTimeout <= 0 {
		return fmt.Errorf("screens.loading_timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

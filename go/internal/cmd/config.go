package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/config"
)

func loadConfig() (*config.Config, error) {
	path := os.Getenv("GAMEDAY_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	return config.Load(path)
}

func setupLogging(cfg config.LogConfig) {
	if !cfg.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

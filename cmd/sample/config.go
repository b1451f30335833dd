package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Addr     string  `env:"DOCROUTE_ADDR" envDefault:":8080"`
	Title    string  `env:"DOCROUTE_TITLE" envDefault:"Sample API"`
	Version  string  `env:"DOCROUTE_VERSION" envDefault:"1.0.0"`
	LogLevel string  `env:"DOCROUTE_LOG_LEVEL" envDefault:"info"`
	Rate     float64 `env:"DOCROUTE_RATE" envDefault:"50"`
	Burst    int     `env:"DOCROUTE_BURST" envDefault:"100"`
}

// loadConfig reads an optional .env file and then the environment.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c config) level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

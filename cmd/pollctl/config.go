// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type config struct {
	StoreURL    string        `env:"STORE_URL" env-default:"http://localhost:3318"`
	MailerURL   string        `env:"MAILER_URL"`
	VoteBaseURL string        `env:"VOTE_BASE_URL" env-default:"http://localhost:3000/vote"`
	OrganizerID string        `env:"ORGANIZER_ID"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`

	Env       string `env:"ENV" env-default:"prod"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return config{}, errors.New("HTTP_TIMEOUT must be positive")
	}
	return cfg, nil
}

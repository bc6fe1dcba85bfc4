package config

import (
	"encoding/json"
	"errors"
	"os"
)

// Config is an application configuration struct.
type Config struct {
	Discord *Discord `json:"discord"`
	Store   *Store   `json:"store"`
	Sentry  string   `json:"sentry"`
}

// Discord stores Discord bot configuration. Acquire bot token on Discord's Developer Portal.
// AuthorID is required for the feedback command. Prefixes must be below 5 characters each.
type Discord struct {
	Token    string   `json:"token"`
	AuthorID string   `json:"author_id"`
	Prefixes []string `json:"prefixes"`
}

// Store configures the persisted state document. Path defaults to stats.json
// in the working directory.
type Store struct {
	Path string `json:"path"`
}

func FromFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = json.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Discord == nil || cfg.Discord.Token == "" {
		return nil, errors.New("discord token is required")
	}

	if len(cfg.Discord.Prefixes) == 0 {
		cfg.Discord.Prefixes = []string{"kz!", "kz ", "kz."}
	}

	if cfg.Store == nil {
		cfg.Store = &Store{}
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "stats.json"
	}

	return &cfg, nil
}

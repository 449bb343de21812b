package main

import "github.com/kelseyhightower/envconfig"

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:5000/ws"`
	// CHAT_ORIGIN is sent as the Origin header and must be allowed by the server
	Origin   string `envconfig:"CHAT_ORIGIN" default:"http://localhost:5000"`
	Username string `envconfig:"CHAT_USERNAME"`
	// CHAT_COLOURS enables colorized output
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

package main

import (
	"github.com/lox/cardroom/cmd/cardroom/shared"
	"github.com/lox/cardroom/internal/server"
)

// ServerCmd runs the websocket server
type ServerCmd struct {
	Config   string `kong:"default='cardroom.hcl',help='Path to HCL config file'"`
	Addr     string `kong:"help='Listen address, overrides config'"`
	Port     int    `kong:"help='Listen port, overrides config'"`
	LogLevel string `kong:"help='Log level, overrides config'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Server.Seed = *c.Seed
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)
	logger.Info("starting card room server",
		"addr", cfg.GetServerAddress(),
		"stakes", len(cfg.Stakes))

	ctx := shared.SetupSignalHandler(logger)

	s := server.NewServer(cfg, logger)
	return s.Start(ctx)
}

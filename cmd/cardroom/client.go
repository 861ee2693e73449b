package main

import (
	"strings"

	"github.com/lox/cardroom/internal/client"
)

// ClientCmd connects to a running server as an interactive player
type ClientCmd struct {
	Server  string `kong:"default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Name    string `kong:"default='',help='Display name (defaults to $USER or \"Player\")'"`
	Table   string `kong:"default='default',help='Table identifier to join'"`
	Stakes  string `kong:"default='',help='Stakes preset for a newly created table'"`
	LogFile string `kong:"default='',help='Write debug logs to this file'"`
}

func (c *ClientCmd) Run() error {
	return client.Run(client.Config{
		Server:  strings.TrimSpace(c.Server),
		Name:    strings.TrimSpace(c.Name),
		Table:   strings.TrimSpace(c.Table),
		Stakes:  strings.TrimSpace(c.Stakes),
		LogFile: strings.TrimSpace(c.LogFile),
	})
}

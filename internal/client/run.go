package client

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/cardroom/internal/server"
)

// Config holds terminal client settings
type Config struct {
	Server  string // server URL, ws:// or http://
	Name    string // display name
	Table   string // table identifier to join
	Stakes  string // stakes preset, optional
	LogFile string // debug log destination, optional
}

// Run connects to the server, joins the requested table and hands the
// terminal to the interactive UI until the user quits.
func Run(cfg Config) error {
	if cfg.Name == "" {
		cfg.Name = os.Getenv("USER")
	}
	if cfg.Name == "" {
		cfg.Name = "Player"
	}

	// The UI owns the terminal, so logs go to a file or nowhere
	var logWriter io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logWriter = f
	}
	logger := log.NewWithOptions(logWriter, log.Options{ReportTimestamp: true})

	c := NewClient(cfg.Server, logger)
	if err := c.Connect(); err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.Send(server.MessageTypeJoin, server.JoinData{
		TableID: cfg.Table,
		Name:    cfg.Name,
		Stakes:  cfg.Stakes,
	}); err != nil {
		return err
	}

	program := tea.NewProgram(newModel(c, logger, cfg.Table, cfg.Name), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

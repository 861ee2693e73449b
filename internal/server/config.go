package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cardroom/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Stakes []StakesConfig `hcl:"stakes,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Seed     int64  `hcl:"seed,optional"` // 0 means seed from entropy
}

// StakesConfig defines a named stakes preset that tables can be
// created with via the join message
type StakesConfig struct {
	Name          string `hcl:"name,label"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	StartingChips int    `hcl:"starting_chips,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Stakes: []StakesConfig{
			{
				Name:          "default",
				SmallBlind:    10,
				BigBlind:      20,
				StartingChips: 1000,
				MaxPlayers:    10,
			},
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	for i := range config.Stakes {
		if config.Stakes[i].StartingChips == 0 {
			config.Stakes[i].StartingChips = config.Stakes[i].BigBlind * 50
		}
		if config.Stakes[i].MaxPlayers == 0 {
			config.Stakes[i].MaxPlayers = 10
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	for _, stakes := range c.Stakes {
		if stakes.SmallBlind <= 0 {
			return fmt.Errorf("stakes %s: small blind must be positive", stakes.Name)
		}
		if stakes.BigBlind <= stakes.SmallBlind {
			return fmt.Errorf("stakes %s: big blind must be greater than small blind", stakes.Name)
		}
		if stakes.MaxPlayers < 2 || stakes.MaxPlayers > 10 {
			return fmt.Errorf("stakes %s: max players must be between 2 and 10", stakes.Name)
		}
		if stakes.StartingChips < stakes.BigBlind {
			return fmt.Errorf("stakes %s: starting chips must cover the big blind", stakes.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetStakesByName returns a stakes preset by name, or nil if it
// does not exist
func (c *ServerConfig) GetStakesByName(name string) *StakesConfig {
	for i := range c.Stakes {
		if c.Stakes[i].Name == name {
			return &c.Stakes[i]
		}
	}
	return nil
}

// TableConfig converts a stakes preset to a table configuration
func (s *StakesConfig) TableConfig() game.Config {
	return game.Config{
		SmallBlind:    s.SmallBlind,
		BigBlind:      s.BigBlind,
		StartingChips: s.StartingChips,
		MaxPlayers:    s.MaxPlayers,
	}
}

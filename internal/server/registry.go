package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardroom/internal/game"
	"github.com/lox/cardroom/internal/gameid"
	"github.com/lox/cardroom/internal/randutil"
)

// Sender delivers outbound messages to a single client. Connections
// implement it with a buffered channel; tests implement it with a
// slice.
type Sender interface {
	Send(msg *Message)
}

// Registry owns every live table and routes client commands to the
// right table. Tables are created on first join and deleted when the
// last player leaves.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*game.Table
	subs   map[string]map[string]Sender // tableID -> playerID -> sender

	config *ServerConfig
	clock  quartz.Clock
	logger *log.Logger
	seed   int64
	seq    int64
}

// NewRegistry creates a registry using the stakes presets from config
func NewRegistry(config *ServerConfig, clock quartz.Clock, logger *log.Logger) *Registry {
	return &Registry{
		tables: make(map[string]*game.Table),
		subs:   make(map[string]map[string]Sender),
		config: config,
		clock:  clock,
		logger: logger.WithPrefix("registry"),
		seed:   config.Server.Seed,
	}
}

// Join adds a player to a table, creating the table on first join.
// The stakes argument names a preset from the server config; empty
// means the default preset.
func (r *Registry) Join(tableID, playerID, name, stakes string, sender Sender) (*game.Player, error) {
	r.mu.Lock()

	table, ok := r.tables[tableID]
	if !ok {
		table = r.createTable(tableID, stakes)
	}

	player, err := table.AddPlayer(playerID, name, table.StartingChips)
	if err != nil {
		if table.Empty() {
			table.Close()
			delete(r.tables, tableID)
			delete(r.subs, tableID)
		}
		r.mu.Unlock()
		return nil, err
	}

	if r.subs[tableID] == nil {
		r.subs[tableID] = make(map[string]Sender)
	}
	r.subs[tableID][playerID] = sender
	r.mu.Unlock()

	r.logger.Info("player joined", "table", tableID, "player", playerID, "name", name)
	r.broadcastTable(tableID)
	return player, nil
}

// createTable builds a table from the named stakes preset. Caller
// holds r.mu.
func (r *Registry) createTable(tableID, stakes string) *game.Table {
	cfg := game.DefaultConfig()
	preset := r.config.GetStakesByName(stakes)
	if preset == nil && stakes != "" {
		r.logger.Warn("unknown stakes preset, using default", "stakes", stakes)
	}
	if preset == nil {
		preset = r.config.GetStakesByName("default")
	}
	if preset != nil {
		cfg = preset.TableConfig()
	}

	rng := randutil.NewFromEntropy()
	if r.seed != 0 {
		r.seq++
		rng = randutil.New(r.seed + r.seq)
	}

	table := game.NewTable(tableID, cfg, rng, r.clock, r.logger)
	table.SetOnUpdate(func() { r.broadcastTable(tableID) })
	r.tables[tableID] = table
	r.logger.Info("table created", "table", tableID,
		"smallBlind", cfg.SmallBlind, "bigBlind", cfg.BigBlind)
	return table
}

// Leave removes a player from a table. The table is deleted once the
// last player leaves.
func (r *Registry) Leave(tableID, playerID string) error {
	r.mu.Lock()
	table, ok := r.tables[tableID]
	if !ok {
		r.mu.Unlock()
		return &game.RuleError{Code: game.CodePlayerNotFound, Message: "no such table"}
	}

	if !table.RemovePlayer(playerID) {
		r.mu.Unlock()
		return &game.RuleError{Code: game.CodePlayerNotFound, Message: "player not at table"}
	}
	delete(r.subs[tableID], playerID)

	if table.Empty() {
		table.Close()
		delete(r.tables, tableID)
		delete(r.subs, tableID)
		r.mu.Unlock()
		r.logger.Info("table deleted", "table", tableID)
		return nil
	}
	r.mu.Unlock()

	r.broadcast(tableID, MessageTypePlayerLeft, PlayerLeftData{
		TableID:  tableID,
		PlayerID: playerID,
	})
	r.broadcastTable(tableID)
	return nil
}

// Start begins the first hand at a table
func (r *Registry) Start(tableID string) error {
	table := r.table(tableID)
	if table == nil {
		return &game.RuleError{Code: game.CodePlayerNotFound, Message: "no such table"}
	}
	if err := table.StartHand(); err != nil {
		return err
	}
	r.logger.Info("hand started", "table", tableID)
	r.broadcastTable(tableID)
	return nil
}

// Action applies a betting action on behalf of a player
func (r *Registry) Action(tableID, playerID string, action game.Action, amount int) (*game.ActionResult, error) {
	table := r.table(tableID)
	if table == nil {
		return nil, &game.RuleError{Code: game.CodePlayerNotFound, Message: "no such table"}
	}

	result, err := table.Apply(playerID, action, amount)
	if err != nil {
		return nil, err
	}

	r.broadcast(tableID, MessageTypeActionPerformed, ActionPerformedData{
		TableID:    tableID,
		PlayerID:   result.PlayerID,
		PlayerName: result.PlayerName,
		Action:     result.Action.String(),
		Amount:     result.Amount,
	})
	r.broadcastTable(tableID)
	return result, nil
}

// Chat relays a chat message to everyone at the table
func (r *Registry) Chat(tableID, playerID, text string) error {
	table := r.table(tableID)
	if table == nil {
		return &game.RuleError{Code: game.CodePlayerNotFound, Message: "no such table"}
	}
	player := table.PlayerByID(playerID)
	if player == nil {
		return &game.RuleError{Code: game.CodePlayerNotFound, Message: "player not at table"}
	}

	r.broadcast(tableID, MessageTypeChatMessage, ChatMessageData{
		ID:        gameid.New(),
		TableID:   tableID,
		PlayerID:  playerID,
		Name:      player.Name,
		Text:      text,
		Timestamp: time.Now(),
	})
	return nil
}

// Disconnect removes a player from every table they occupy
func (r *Registry) Disconnect(playerID string) {
	r.mu.Lock()
	var tableIDs []string
	for tableID, members := range r.subs {
		if _, ok := members[playerID]; ok {
			tableIDs = append(tableIDs, tableID)
		}
	}
	r.mu.Unlock()

	for _, tableID := range tableIDs {
		if err := r.Leave(tableID, playerID); err != nil {
			r.logger.Warn("disconnect cleanup failed", "table", tableID,
				"player", playerID, "error", err)
		}
	}
}

// Table returns the live table with the given id, or nil
func (r *Registry) Table(tableID string) *game.Table {
	return r.table(tableID)
}

func (r *Registry) table(tableID string) *game.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tables[tableID]
}

// broadcastTable sends each subscriber their own redacted view of the
// table. Hole cards of other players are never on the wire before
// showdown.
func (r *Registry) broadcastTable(tableID string) {
	r.mu.Lock()
	table, ok := r.tables[tableID]
	if !ok {
		r.mu.Unlock()
		return
	}
	members := make(map[string]Sender, len(r.subs[tableID]))
	for playerID, sender := range r.subs[tableID] {
		members[playerID] = sender
	}
	r.mu.Unlock()

	for playerID, sender := range members {
		msg, err := NewMessage(MessageTypeTableUpdated, TableUpdatedData{
			Table: table.Snapshot(playerID),
		})
		if err != nil {
			r.logger.Error("failed to encode table update", "error", err)
			return
		}
		sender.Send(msg)
	}
}

// broadcast sends the same message to every subscriber of a table
func (r *Registry) broadcast(tableID string, messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		r.logger.Error("failed to encode message", "type", messageType, "error", err)
		return
	}

	r.mu.Lock()
	senders := make([]Sender, 0, len(r.subs[tableID]))
	for _, sender := range r.subs[tableID] {
		senders = append(senders, sender)
	}
	r.mu.Unlock()

	for _, sender := range senders {
		sender.Send(msg)
	}
}

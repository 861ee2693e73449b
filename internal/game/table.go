package game

import (
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardroom/internal/deck"
)

// Phase represents the table's position in the hand state machine.
// The terminal phase Ended loops back to Preflop after the countdown.
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	ShowdownPhase
	Ended
)

// String returns the wire representation of a phase
func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case ShowdownPhase:
		return "showdown"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Winner records one pot award at hand end
type Winner struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Hand     string `json:"hand"`
}

// Config carries the stakes for a new table
type Config struct {
	SmallBlind    int
	BigBlind      int
	StartingChips int
	MaxPlayers    int
}

// DefaultConfig returns the stakes used when a join names no preset
func DefaultConfig() Config {
	return Config{
		SmallBlind:    10,
		BigBlind:      20,
		StartingChips: 1000,
		MaxPlayers:    10,
	}
}

// Table holds the full state of one game table. All mutations are
// serialized under mu: the betting engine's validate-then-mutate
// sequence is not atomic by construction, so no two operations for
// the same table may interleave. There is no cross-table lock.
type Table struct {
	ID string

	Players   []*Player // seat order
	Community []deck.Card

	Pot        int
	CurrentBet int
	MinRaise   int
	LastRaise  int

	Dealer     int
	Current    int // index of the acting player
	RoundStart int

	Phase         Phase
	SmallBlind    int
	BigBlind      int
	StartingChips int
	MaxPlayers    int
	Started       bool

	Winners   []Winner
	Countdown int

	// Repairs counts invariant corrections applied by the corruption
	// guard. Observable so tests can assert the guard never fires
	// under serialized operation.
	Repairs int

	mu        sync.Mutex
	revealed  bool
	deck      *deck.Deck
	rng       *rand.Rand
	clock     quartz.Clock
	countdown *quartz.Timer
	onUpdate  func()
	logger    *log.Logger
}

// NewTable creates an empty table in the waiting phase
func NewTable(id string, cfg Config, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Table {
	return &Table{
		ID:            id,
		Phase:         Waiting,
		SmallBlind:    cfg.SmallBlind,
		BigBlind:      cfg.BigBlind,
		StartingChips: cfg.StartingChips,
		MaxPlayers:    cfg.MaxPlayers,
		MinRaise:      cfg.BigBlind,
		Current:       -1,
		rng:           rng,
		clock:         clock,
		logger:        logger.WithPrefix("table").With("table", id),
	}
}

// SetOnUpdate registers a hook invoked after timer-driven mutations
// (countdown ticks and automatic hand restarts) so the gateway can
// rebroadcast state it did not itself trigger. The hook runs outside
// the table lock.
func (t *Table) SetOnUpdate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

// AddPlayer seats a player at the next position. Rejects when the
// table is full or a hand is already running.
func (t *Table) AddPlayer(id, name string, chips int) (*Player, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.Players) >= t.MaxPlayers {
		return nil, ruleErrorf(CodeTableFull, "table %s is full", t.ID)
	}
	if t.Started {
		return nil, ruleErrorf(CodeGameAlreadyStarted, "hand already in progress")
	}

	p := &Player{
		ID:       id,
		Name:     name,
		Chips:    chips,
		Active:   true,
		Position: len(t.Players),
	}
	t.Players = append(t.Players, p)
	t.logger.Info("player joined", "player", name, "chips", chips, "seat", p.Position)
	return p, nil
}

// RemovePlayer unseats a player and compacts the remaining seat
// positions to 0..n-1 in current order. If a hand is running and only
// one non-folded player remains they win immediately; if none remain
// the table falls back to waiting.
func (t *Table) RemovePlayer(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i, p := range t.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	leaving := t.Players[idx]
	t.Players = append(t.Players[:idx], t.Players[idx+1:]...)
	for i, p := range t.Players {
		p.Position = i
	}

	if t.Current > idx {
		t.Current--
	}
	if t.Current >= len(t.Players) {
		t.Current = 0
	}
	if t.Dealer > idx {
		t.Dealer--
	}
	if t.Dealer >= len(t.Players) {
		t.Dealer = 0
	}

	t.logger.Info("player left", "player", leaving.Name, "remaining", len(t.Players))

	if len(t.Players) == 0 {
		t.stopCountdownLocked()
		return true
	}

	if t.Started {
		remaining := t.nonFolded()
		switch len(remaining) {
		case 0:
			t.Started = false
			t.Phase = Waiting
			t.stopCountdownLocked()
		case 1:
			if t.Phase != Ended {
				t.winByFold(remaining[0])
			}
		default:
			if t.Phase != Ended && t.Current >= 0 && t.Current < len(t.Players) {
				if !t.Players[t.Current].CanAct() {
					t.advanceTurn()
				}
				if t.roundComplete() {
					t.advancePhase()
				}
			}
		}
	}
	return true
}

// PlayerByID returns the seated player with the given id
func (t *Table) PlayerByID(id string) *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerByID(id)
}

func (t *Table) playerByID(id string) *Player {
	for _, p := range t.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Empty reports whether no players remain seated
func (t *Table) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Players) == 0
}

// Close cancels any pending countdown timer. Called on table teardown.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopCountdownLocked()
}

// nonFolded returns the players still contesting the hand
func (t *Table) nonFolded() []*Player {
	var out []*Player
	for _, p := range t.Players {
		if !p.Folded {
			out = append(out, p)
		}
	}
	return out
}

// canActPlayers returns non-folded, non-all-in players
func (t *Table) canActPlayers() []*Player {
	var out []*Player
	for _, p := range t.Players {
		if p.CanAct() {
			out = append(out, p)
		}
	}
	return out
}

// notifyUpdate invokes the update hook outside the table lock
func (t *Table) notifyUpdate() {
	t.mu.Lock()
	fn := t.onUpdate
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

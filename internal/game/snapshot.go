package game

import "github.com/lox/cardroom/internal/deck"

// PlayerSnapshot is one player's state as seen by a particular viewer
type PlayerSnapshot struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Chips             int         `json:"chips"`
	HoleCards         []deck.Card `json:"holeCards,omitempty"`
	HoleCardCount     int         `json:"holeCardCount"`
	RoundBet          int         `json:"inPotThisRound"`
	TotalContribution int         `json:"totalPotContribution"`
	Folded            bool        `json:"isFolded"`
	AllIn             bool        `json:"isAllIn"`
	Acted             bool        `json:"hasActedThisRound"`
	Active            bool        `json:"isActive"`
	Position          int         `json:"position"`
}

// Snapshot is the full table state broadcast to clients after every
// mutation. Clients are stateless re-renderers of the latest snapshot;
// no deltas are sent.
type Snapshot struct {
	ID         string           `json:"id"`
	Players    []PlayerSnapshot `json:"players"`
	Community  []deck.Card      `json:"communityCards"`
	Pot        int              `json:"pot"`
	CurrentBet int              `json:"currentBet"`
	MinRaise   int              `json:"minimumRaise"`
	LastRaise  int              `json:"lastRaiseAmount"`
	Dealer     int              `json:"dealerPosition"`
	Current    int              `json:"currentPlayerIndex"`
	Phase      string           `json:"gamePhase"`
	SmallBlind int              `json:"smallBlind"`
	BigBlind   int              `json:"bigBlind"`
	MaxPlayers int              `json:"maxPlayers"`
	Started    bool             `json:"isStarted"`
	Winners    []Winner         `json:"winners,omitempty"`
	Countdown  int              `json:"nextHandCountdown,omitempty"`
}

// Snapshot builds a redacted view of the table for one recipient: the
// viewer sees their own hole cards, and everyone's once the hand has
// reached showdown. Opponents' concealed cards are conveyed only as a
// count.
func (t *Table) Snapshot(viewerID string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	players := make([]PlayerSnapshot, len(t.Players))
	for i, p := range t.Players {
		ps := PlayerSnapshot{
			ID:                p.ID,
			Name:              p.Name,
			Chips:             p.Chips,
			HoleCardCount:     len(p.HoleCards),
			RoundBet:          p.RoundBet,
			TotalContribution: p.TotalContribution,
			Folded:            p.Folded,
			AllIn:             p.AllIn,
			Acted:             p.Acted,
			Active:            p.Active,
			Position:          p.Position,
		}
		if p.ID == viewerID || (t.revealed && !p.Folded) {
			ps.HoleCards = p.HoleCards
		}
		players[i] = ps
	}

	return Snapshot{
		ID:         t.ID,
		Players:    players,
		Community:  t.Community,
		Pot:        t.Pot,
		CurrentBet: t.CurrentBet,
		MinRaise:   t.MinRaise,
		LastRaise:  t.LastRaise,
		Dealer:     t.Dealer,
		Current:    t.Current,
		Phase:      t.Phase.String(),
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
		MaxPlayers: t.MaxPlayers,
		Started:    t.Started,
		Winners:    t.Winners,
		Countdown:  t.Countdown,
	}
}

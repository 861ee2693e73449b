package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardroom/internal/game"
)

// fakeSender records every message delivered to one client
type fakeSender struct {
	mu       sync.Mutex
	messages []*Message
}

func (f *fakeSender) Send(msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeSender) byType(messageType MessageType) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Message
	for _, m := range f.messages {
		if m.Type == messageType {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) lastSnapshot(t *testing.T) game.Snapshot {
	t.Helper()
	updates := f.byType(MessageTypeTableUpdated)
	require.NotEmpty(t, updates, "no table-updated messages received")

	var data TableUpdatedData
	require.NoError(t, json.Unmarshal(updates[len(updates)-1].Data, &data))
	return data.Table
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Server.Seed = 42
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return NewRegistry(cfg, quartz.NewMock(t), logger)
}

func TestJoinCreatesTableOnFirstJoin(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}

	player, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", player.Name)
	assert.Equal(t, 1000, player.Chips, "default preset funds the player")
	assert.Equal(t, 0, player.Position)

	require.NotNil(t, r.Table("t1"))

	snap := alice.lastSnapshot(t)
	assert.Equal(t, "t1", snap.ID)
	assert.Len(t, snap.Players, 1)
	assert.Equal(t, "waiting", snap.Phase)
}

func TestJoinBroadcastsToExistingPlayers(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)

	snap := alice.lastSnapshot(t)
	assert.Len(t, snap.Players, 2, "existing players see the new arrival")
}

func TestLeaveDeletesEmptyTable(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)

	require.NoError(t, r.Leave("t1", "alice"))
	assert.Nil(t, r.Table("t1"), "empty table is deleted")

	// A fresh join recreates it.
	_, err = r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	require.NotNil(t, r.Table("t1"))
}

func TestLeaveNotifiesRemainingPlayers(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)

	require.NoError(t, r.Leave("t1", "bob"))

	left := alice.byType(MessageTypePlayerLeft)
	require.Len(t, left, 1)
	var data PlayerLeftData
	require.NoError(t, json.Unmarshal(left[0].Data, &data))
	assert.Equal(t, "bob", data.PlayerID)

	snap := alice.lastSnapshot(t)
	assert.Len(t, snap.Players, 1)
}

func TestStartAndActionFlow(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)

	require.NoError(t, r.Start("t1"))
	snap := alice.lastSnapshot(t)
	assert.Equal(t, "preflop", snap.Phase)
	assert.Equal(t, 30, snap.Pot)

	// Heads-up: dealer alice acts first.
	res, err := r.Action("t1", "alice", game.Call, 0)
	require.NoError(t, err)
	assert.Equal(t, game.Call, res.Action)

	performed := bob.byType(MessageTypeActionPerformed)
	require.Len(t, performed, 1, "accepted actions are announced to the table")
	var data ActionPerformedData
	require.NoError(t, json.Unmarshal(performed[0].Data, &data))
	assert.Equal(t, "alice", data.PlayerID)
	assert.Equal(t, "call", data.Action)
	assert.Equal(t, 10, data.Amount)
}

func TestRejectedActionDoesNotBroadcast(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, r.Start("t1"))

	updatesBefore := len(alice.byType(MessageTypeTableUpdated))

	// Bob acts out of turn.
	_, err = r.Action("t1", "bob", game.Call, 0)
	require.Error(t, err)
	assert.Equal(t, game.CodeNotYourTurn, game.RuleCode(err))

	assert.Empty(t, alice.byType(MessageTypeActionPerformed))
	assert.Len(t, alice.byType(MessageTypeTableUpdated), updatesBefore,
		"rejections trigger no broadcast")
}

func TestSnapshotsAreRedactedPerRecipient(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, r.Start("t1"))

	for _, tc := range []struct {
		viewer *fakeSender
		own    string
	}{
		{alice, "alice"},
		{bob, "bob"},
	} {
		snap := tc.viewer.lastSnapshot(t)
		for _, p := range snap.Players {
			assert.Equal(t, 2, p.HoleCardCount)
			if p.ID == tc.own {
				assert.Len(t, p.HoleCards, 2)
			} else {
				assert.Empty(t, p.HoleCards, "viewer %s must not see %s's cards", tc.own, p.ID)
			}
		}
	}
}

func TestChatIsRelayedWithIDAndSender(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)

	require.NoError(t, r.Chat("t1", "alice", "good luck"))

	for _, sender := range []*fakeSender{alice, bob} {
		msgs := sender.byType(MessageTypeChatMessage)
		require.Len(t, msgs, 1)
		var data ChatMessageData
		require.NoError(t, json.Unmarshal(msgs[0].Data, &data))
		assert.Equal(t, "alice", data.PlayerID)
		assert.Equal(t, "Alice", data.Name)
		assert.Equal(t, "good luck", data.Text)
		assert.Len(t, data.ID, 26)
		assert.False(t, data.Timestamp.IsZero())
	}
}

func TestChatFromStrangerIsRejected(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)

	err = r.Chat("t1", "mallory", "hi")
	require.Error(t, err)
	assert.Equal(t, game.CodePlayerNotFound, game.RuleCode(err))
}

func TestDisconnectLeavesEveryTable(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	_, err := r.Join("t1", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t2", "alice", "Alice", "", alice)
	require.NoError(t, err)
	_, err = r.Join("t1", "bob", "Bob", "", bob)
	require.NoError(t, err)

	r.Disconnect("alice")

	assert.Nil(t, r.Table("t2"), "table emptied by the disconnect is deleted")
	require.NotNil(t, r.Table("t1"))
	snap := bob.lastSnapshot(t)
	assert.Len(t, snap.Players, 1)
	assert.Equal(t, "bob", snap.Players[0].ID)
}

func TestJoinUnknownStakesFallsBackToDefault(t *testing.T) {
	r := newTestRegistry(t)
	alice := &fakeSender{}

	player, err := r.Join("t1", "alice", "Alice", "nosebleed", alice)
	require.NoError(t, err)
	assert.Equal(t, 1000, player.Chips)
}

func TestStakesPresetSelectsTableConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Server.Seed = 42
	cfg.Stakes = append(cfg.Stakes, StakesConfig{
		Name:          "high",
		SmallBlind:    50,
		BigBlind:      100,
		StartingChips: 5000,
		MaxPlayers:    6,
	})
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	r := NewRegistry(cfg, quartz.NewMock(t), logger)

	alice := &fakeSender{}
	player, err := r.Join("t1", "alice", "Alice", "high", alice)
	require.NoError(t, err)
	assert.Equal(t, 5000, player.Chips)

	snap := alice.lastSnapshot(t)
	assert.Equal(t, 50, snap.SmallBlind)
	assert.Equal(t, 100, snap.BigBlind)
	assert.Equal(t, 6, snap.MaxPlayers)
}

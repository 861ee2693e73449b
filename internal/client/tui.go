package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/cardroom/internal/deck"
	"github.com/lox/cardroom/internal/game"
	"github.com/lox/cardroom/internal/server"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	boardStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	turnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD866"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

const maxLogLines = 12

// serverMsg wraps an inbound websocket message for the update loop
type serverMsg struct{ msg *server.Message }

// disconnectedMsg signals the connection dropped
type disconnectedMsg struct{}

// model renders the latest table snapshot and a command prompt. All
// game state comes from the server; the model never simulates.
type model struct {
	client  *Client
	logger  *log.Logger
	tableID string
	name    string

	playerID string
	snapshot *game.Snapshot
	input    string
	events   []string
	quitting bool
}

func newModel(c *Client, logger *log.Logger, tableID, name string) model {
	return model{
		client:  c,
		logger:  logger,
		tableID: tableID,
		name:    name,
	}
}

// waitForServer blocks on the receive channel as a tea command
func (m model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.client.Receive()
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

func (m model) Init() tea.Cmd {
	return m.waitForServer()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m = m.submit()
			return m, nil
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		default:
			if len(msg.String()) == 1 || msg.String() == " " {
				m.input += msg.String()
			}
			return m, nil
		}

	case serverMsg:
		m = m.handleServer(msg.msg)
		return m, m.waitForServer()

	case disconnectedMsg:
		m.quitting = true
		m.events = append(m.events, errorStyle.Render("disconnected from server"))
		return m, tea.Quit
	}

	return m, nil
}

func (m model) submit() model {
	line := strings.TrimSpace(m.input)
	m.input = ""
	if line == "" {
		return m
	}

	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "quit", "exit":
		m.quitting = true
		_ = m.client.Close()
		return m

	case "start":
		m.send(server.MessageTypeStart, server.StartData{TableID: m.tableID})

	case "fold", "check", "call", "all-in", "allin":
		m.send(server.MessageTypeAction, server.ActionData{
			TableID: m.tableID,
			Action:  strings.Replace(cmd, "allin", "all-in", 1),
		})

	case "bet", "raise":
		if len(fields) < 2 {
			m.events = append(m.events, errorStyle.Render("usage: "+cmd+" <amount>"))
			return m
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil {
			m.events = append(m.events, errorStyle.Render("bad amount: "+fields[1]))
			return m
		}
		m.send(server.MessageTypeAction, server.ActionData{
			TableID: m.tableID,
			Action:  cmd,
			Amount:  amount,
		})

	case "say":
		m.send(server.MessageTypeChat, server.ChatData{
			TableID: m.tableID,
			Text:    strings.TrimSpace(strings.TrimPrefix(line, fields[0])),
		})

	default:
		m.events = append(m.events, errorStyle.Render("unknown command: "+cmd))
	}

	return m
}

func (m *model) send(messageType server.MessageType, data interface{}) {
	if err := m.client.Send(messageType, data); err != nil {
		m.events = append(m.events, errorStyle.Render("send failed: "+err.Error()))
	}
}

func (m model) handleServer(msg *server.Message) model {
	switch msg.Type {
	case server.MessageTypeJoined:
		var data server.JoinedData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			m.playerID = data.PlayerID
			m.events = append(m.events, fmt.Sprintf("joined %s as %s (seat %d, %d chips)",
				data.TableID, data.Name, data.Position, data.Chips))
		}

	case server.MessageTypeTableUpdated:
		var data server.TableUpdatedData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			m.snapshot = &data.Table
		}

	case server.MessageTypeActionPerformed:
		var data server.ActionPerformedData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			if data.Amount > 0 {
				m.events = append(m.events, fmt.Sprintf("%s %ss %d", data.PlayerName, data.Action, data.Amount))
			} else {
				m.events = append(m.events, fmt.Sprintf("%s %ss", data.PlayerName, data.Action))
			}
		}

	case server.MessageTypePlayerLeft:
		var data server.PlayerLeftData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			m.events = append(m.events, dimStyle.Render("player left: "+data.PlayerID))
		}

	case server.MessageTypeChatMessage:
		var data server.ChatMessageData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			m.events = append(m.events, fmt.Sprintf("<%s> %s", data.Name, data.Text))
		}

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			m.events = append(m.events, errorStyle.Render(data.Code+": "+data.Message))
		}
	}

	if len(m.events) > maxLogLines {
		m.events = m.events[len(m.events)-maxLogLines:]
	}
	return m
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("cardroom"))
	b.WriteString(dimStyle.Render("  table " + m.tableID))
	b.WriteString("\n\n")

	if snap := m.snapshot; snap != nil {
		b.WriteString(m.renderTable(snap))
	} else {
		b.WriteString(dimStyle.Render("waiting for table state"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, line := range m.events {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("commands: start, fold, check, call, bet N, raise N, all-in, say ..., quit"))
	return b.String()
}

func (m model) renderTable(snap *game.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  pot %d  to call %d\n",
		boardStyle.Render(strings.ToUpper(snap.Phase)), snap.Pot, snap.CurrentBet))
	b.WriteString("board: " + boardStyle.Render(cards(snap.Community)) + "\n")

	for i, p := range snap.Players {
		marker := "  "
		if i == snap.Dealer {
			marker = "D "
		}
		line := fmt.Sprintf("%s%-12s %5d chips  bet %d", marker, p.Name, p.Chips, p.RoundBet)
		if len(p.HoleCards) > 0 {
			line += "  [" + cards(p.HoleCards) + "]"
		}
		switch {
		case p.Folded:
			line = dimStyle.Render(line + "  folded")
		case p.AllIn:
			line += "  all-in"
		}
		if snap.Started && i == snap.Current {
			line = turnStyle.Render(line + "  <- to act")
		}
		b.WriteString(line + "\n")
	}

	for _, w := range snap.Winners {
		desc := w.Hand
		if desc == "" {
			desc = "uncontested"
		}
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s wins %d (%s)", w.Name, w.Amount, desc)) + "\n")
	}
	if snap.Countdown > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("next hand in %d", snap.Countdown)) + "\n")
	}

	return b.String()
}

func cards(cs []deck.Card) string {
	if len(cs) == 0 {
		return "--"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

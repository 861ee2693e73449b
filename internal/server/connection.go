package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/cardroom/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	registry  *Registry
	onClose   func(*Connection)
}

// NewConnection creates a new connection wrapper. Each connection is
// assigned a fresh player id that identifies the player for its
// lifetime.
func NewConnection(conn *websocket.Conn, playerID string, registry *Registry, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		playerID: playerID,
		logger:   logger.WithPrefix("conn").With("player", playerID),
		ctx:      ctx,
		cancel:   cancel,
		registry: registry,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// PlayerID returns the stable player id for this connection
func (c *Connection) PlayerID() string {
	return c.playerID
}

// Send queues a message for delivery. Messages are dropped and the
// connection closed if the client cannot keep up.
func (c *Connection) Send(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.registry.Disconnect(c.playerID)
		if c.onClose != nil {
			c.onClose(c)
		}
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join data")
			return
		}
		c.handleJoin(data)

	case MessageTypeLeave:
		var data LeaveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse leave data")
			return
		}
		c.handleLeave(data)

	case MessageTypeStart:
		var data StartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse start data")
			return
		}
		c.handleStart(data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse action data")
			return
		}
		c.handleAction(data)

	case MessageTypeChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse chat data")
			return
		}
		c.handleChat(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	c.Send(errorMsg)
}

// sendRuleError maps an engine error to a wire error. Rule errors
// carry their own stable code; anything else goes out as internal.
func (c *Connection) sendRuleError(err error) {
	var ruleErr *game.RuleError
	if errors.As(err, &ruleErr) {
		c.sendError(ruleErr.Code, ruleErr.Message)
		return
	}
	c.sendError("internal_error", err.Error())
}

func (c *Connection) handleJoin(data JoinData) {
	if data.TableID == "" {
		c.sendError("invalid_message", "tableId required")
		return
	}
	if data.Name == "" {
		c.sendError("invalid_message", "name required")
		return
	}

	player, err := c.registry.Join(data.TableID, c.playerID, data.Name, data.Stakes, c)
	if err != nil {
		c.sendRuleError(err)
		return
	}

	response, _ := NewMessage(MessageTypeJoined, JoinedData{
		TableID:  data.TableID,
		PlayerID: c.playerID,
		Name:     player.Name,
		Chips:    player.Chips,
		Position: player.Position,
	})
	c.Send(response)
}

func (c *Connection) handleLeave(data LeaveData) {
	if err := c.registry.Leave(data.TableID, c.playerID); err != nil {
		c.sendRuleError(err)
	}
}

func (c *Connection) handleStart(data StartData) {
	if err := c.registry.Start(data.TableID); err != nil {
		c.sendRuleError(err)
	}
}

func (c *Connection) handleAction(data ActionData) {
	action, err := game.ParseAction(data.Action)
	if err != nil {
		c.sendError(game.CodeInvalidAction, err.Error())
		return
	}

	if _, err := c.registry.Action(data.TableID, c.playerID, action, data.Amount); err != nil {
		c.sendRuleError(err)
	}
}

func (c *Connection) handleChat(data ChatData) {
	if data.Text == "" {
		return
	}
	if err := c.registry.Chat(data.TableID, c.playerID, data.Text); err != nil {
		c.sendRuleError(err)
	}
}

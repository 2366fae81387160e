package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

const commandTimeout = 2 * time.Second

// Controller carries out commands sent by monitors.
type Controller interface {
	SwitchSet(ctx context.Context, set int) error
	Save(ctx context.Context) error
}

// Client represents a connected WebSocket client.
type Client struct {
	id   xid.ID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   xid.New(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) ID() string { return c.id.String() }

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads commands from the WebSocket until it closes.
func (c *Client) ReadPump(ctrl Controller) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.hub.log.Debug().Err(err).Str("client", c.ID()).Msg("bad client message")
			continue
		}
		c.reply(handleCommand(ctrl, clientMsg))
	}
}

func handleCommand(ctrl Controller, msg ClientMessage) *WSMessage {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case "switch_set":
		err = ctrl.SwitchSet(ctx, msg.Set)
	case "save":
		err = ctrl.Save(ctx)
	default:
		return NewErrorMessage(msg.Type, "unknown command")
	}
	if err != nil {
		return NewErrorMessage(msg.Type, err.Error())
	}
	return NewAckMessage(msg.Type)
}

func (c *Client) reply(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.SendTo(c, data)
}

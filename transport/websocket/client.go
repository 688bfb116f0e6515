package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Pose frames with two
	// controllers fit comfortably; anything larger is not game traffic.
	maxMessageSize = 4096
)

// Client is one WebSocket connection known to the relay.
type Client struct {
	relay *Relay
	conn  *websocket.Conn
	send  chan []byte
	id    string
}

// ID returns the server-assigned client identity.
func (c *Client) ID() string { return c.id }

// readPump pumps frames from the connection into the relay loop.
func (c *Client) readPump() {
	defer func() {
		c.relay.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[RELAY] read error from %s: %v", c.id, err)
			}
			break
		}
		c.relay.inbound <- frame{client: c, data: data}
	}
}

// writePump pumps queued frames to the connection and keeps it alive with
// pings. One frame per WebSocket message: peers demultiplex by the type
// field and must never see concatenated JSON.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The relay closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

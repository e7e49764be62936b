package websocket

import (
	"context"
	"log"

	"github.com/gorilla/websocket"
)

// StreamClient pumps payloads from one push subscription to one WebSocket
// connection. There is no shared hub: each subscription owns exactly one
// connection, and the connection going away must release the subscription.
type StreamClient struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// done is closed when the write pump exits, so producers stop queueing
	// into a buffer nobody drains anymore.
	done chan struct{}
}

func NewStreamClient(userID string, conn *websocket.Conn) *StreamClient {
	return &StreamClient{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

// Deliver queues payload for the write pump. It reports false once the pump
// has exited; callers must stop producing at that point instead of blocking
// on a full Send buffer.
func (c *StreamClient) Deliver(payload []byte) bool {
	select {
	case c.Send <- payload:
		return true
	case <-c.done:
		return false
	}
}

// ReadPump discards inbound frames and cancels the subscription when the
// peer closes the connection or the read fails. This is the guarantee that a
// client navigating away does not leak a live store subscription.
func (c *StreamClient) ReadPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump drains Send into the connection. Closing Send ends the pump with
// a close frame.
func (c *StreamClient) WritePump() {
	defer func() {
		close(c.done)
		c.Conn.Close()
	}()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("websocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}

package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rentwheels-backend/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendQueueSize = 32
)

// Client is one websocket connection's view of the hub. The read pump feeds
// frames into the hub's dispatcher; the write pump drains the send queue.
type Client struct {
	hub  *ChatHub
	conn *websocket.Conn
	id   string

	send chan models.EventEnvelope

	// rooms is touched only by the hub's dispatcher goroutine.
	rooms map[string]bool

	mu     sync.Mutex
	closed bool
}

// NewClient registers a fresh connection with the hub. The caller must start
// both pumps.
func NewClient(hub *ChatHub, conn *websocket.Conn) *Client {
	client := &Client{
		hub:   hub,
		conn:  conn,
		id:    uuid.NewString(),
		send:  make(chan models.EventEnvelope, sendQueueSize),
		rooms: make(map[string]bool),
	}
	hub.register <- client
	return client
}

// ReadPump pumps frames from the connection into the hub until the
// connection drops, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var envelope models.EventEnvelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s read error: %v", c.id, err)
			}
			return
		}
		if envelope.Event == "" {
			// Malformed frame; skip it without dropping the connection.
			continue
		}
		c.hub.events <- inboundEvent{client: c, envelope: envelope}
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
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

// enqueue queues an envelope for delivery, dropping it if the client's
// queue is full or the client is gone. Chat traffic is low-volume; a full
// queue means the peer stopped reading.
func (c *Client) enqueue(envelope models.EventEnvelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- envelope:
	default:
		log.Printf("Client %s send queue full, dropping %s", c.id, envelope.Event)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func newMessageID() string {
	return uuid.NewString()
}

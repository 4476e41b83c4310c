package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one feed connection for one owner.
type Client struct {
	OwnerID int64

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(ownerID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		OwnerID: ownerID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

// Run registers the client and pumps until the peer disconnects.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()
	c.readPump()
}

// Close tears the connection down and removes the client from the hub.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		close(c.done)
		c.conn.Close()
	})
}

// readPump discards inbound frames; the feed is one-way. It exists to notice
// disconnects and to answer pings.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

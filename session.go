/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	sendBufferSize = 16
)

// Client binds one websocket connection to at most one room and one
// nickname. It is the unit disconnect cleanup pivots on: when the read pump
// exits, the dispatcher removes the client from its bound room.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any

	mu       sync.Mutex
	roomCode string
	nickname string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, sendBufferSize),
	}
}

// trySend queues msg for delivery without blocking. A full buffer drops the
// message; the connection is assumed dead or hopelessly behind and will be
// torn down by its own pumps.
func (c *Client) trySend(msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) bind(roomCode, nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roomCode = roomCode
	c.nickname = nickname
}

func (c *Client) clearRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roomCode = ""
}

func (c *Client) boundRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.roomCode
}

func (c *Client) setNickname(nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nickname = nickname
}

func (c *Client) readPump(cfg *Config, d *dispatcher) {
	defer func() {
		d.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(cfg, "GAMES: Read error from %s: %v", c.id, err)
			}
			return
		}

		d.dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

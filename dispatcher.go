/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
)

// clientMessage is the single inbound frame shape. Type selects the
// handler; the remaining fields are populated per message type.
type clientMessage struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname,omitempty"` // host-game / join-game / nickname-change
	Code     string `json:"code,omitempty"`     // join-game
	Random   bool   `json:"random,omitempty"`   // clue-giver
}

// serverAckMessage is sent once per new connection and carries the
// connection's own identity.
type serverAckMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// hostAckMessage answers host-game with the generated room code. Error is
// set (and Code empty) only when code generation exhausted its retries.
type hostAckMessage struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// joinAckMessage answers join-game with "success" or "failure".
type joinAckMessage struct {
	Type   string `json:"type"`
	Result string `json:"result"`
	Code   string `json:"code,omitempty"`
}

type playersUpdateMessage struct {
	Type    string   `json:"type"`
	Players []Player `json:"players"`
}

type gameStartingMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type guessStartingMessage struct {
	Type      string `json:"type"`
	ClueGiver string `json:"clueGiver"`
}

// dispatcher maps inbound messages to registry and room operations. Each
// message type has exactly one handler; unknown types are dropped.
type dispatcher struct {
	cfg      *Config
	registry *Registry
	handlers map[string]func(*Client, clientMessage)
}

func newDispatcher(cfg *Config, reg *Registry) *dispatcher {
	d := &dispatcher{
		cfg:      cfg,
		registry: reg,
	}

	d.handlers = map[string]func(*Client, clientMessage){
		"host-game":       d.handleHostGame,
		"join-game":       d.handleJoinGame,
		"nickname-change": d.handleNicknameChange,
		"start-game":      d.handleStartGame,
		"clue-giver":      d.handleClueGiver,
	}

	return d
}

// connect greets a fresh connection with its own identity.
func (d *dispatcher) connect(c *Client) {
	c.trySend(serverAckMessage{
		Type: "server-ack",
		ID:   c.id,
	})
}

// disconnect removes the connection from its bound room, if any, and tears
// the room down once the last player has left.
func (d *dispatcher) disconnect(c *Client) {
	d.leaveCurrentRoom(c)

	logf(d.cfg, "GAMES: Connection %s closed", c.id)
}

func (d *dispatcher) dispatch(c *Client, msg clientMessage) {
	handler, ok := d.handlers[msg.Type]
	if !ok {
		logf(d.cfg, "GAMES: Ignoring unknown message type %q from %s", msg.Type, c.id)
		return
	}

	handler(c, msg)
}

func (d *dispatcher) handleHostGame(c *Client, msg clientMessage) {
	// Hosting while already in a room implicitly leaves the old one, so a
	// connection can never be a member of two rooms at once.
	d.leaveCurrentRoom(c)

	room, err := d.registry.CreateRoom(c, msg.Nickname)
	if err != nil {
		logf(d.cfg, "GAMES: Host request from %s failed: %v", c.id, err)
		c.trySend(hostAckMessage{
			Type:  "host-ack",
			Error: "internal error",
		})
		return
	}

	c.bind(room.Code(), msg.Nickname)

	logf(d.cfg, "GAMES: %q hosted room %s", msg.Nickname, room.Code())

	c.trySend(hostAckMessage{
		Type: "host-ack",
		Code: room.Code(),
	})
}

func (d *dispatcher) handleJoinGame(c *Client, msg clientMessage) {
	code := normalizeCode(msg.Code)

	if _, err := d.registry.Lookup(code); err != nil {
		c.trySend(joinAckMessage{
			Type:   "join-ack",
			Result: "failure",
			Code:   code,
		})
		return
	}

	// Joining the room the connection is already in is a rejoin: AddPlayer
	// overwrites the nickname in place, keeping list order and any held
	// clue-giver role. Only a switch to a different room detaches first.
	if c.boundRoom() != code {
		d.leaveCurrentRoom(c)
	}

	if _, err := d.registry.Admit(code, c, msg.Nickname); err != nil {
		// The room emptied out and was removed after the initial lookup.
		c.trySend(joinAckMessage{
			Type:   "join-ack",
			Result: "failure",
			Code:   code,
		})
		return
	}

	c.bind(code, msg.Nickname)

	logf(d.cfg, "GAMES: %q joined room %s", msg.Nickname, code)

	c.trySend(joinAckMessage{
		Type:   "join-ack",
		Result: "success",
		Code:   code,
	})
}

func (d *dispatcher) handleNicknameChange(c *Client, msg clientMessage) {
	room, ok := d.boundRoom(c, msg.Type)
	if !ok || msg.Nickname == "" {
		return
	}

	if err := room.RenamePlayer(c, msg.Nickname); err != nil {
		if errors.Is(err, errNotAMember) {
			logf(d.cfg, "GAMES: Dropping rename from non-member %s of room %s", c.id, room.Code())
		}
		return
	}

	c.setNickname(msg.Nickname)
}

func (d *dispatcher) handleStartGame(c *Client, msg clientMessage) {
	room, ok := d.boundRoom(c, msg.Type)
	if !ok {
		return
	}

	room.StartGame()

	logf(d.cfg, "GAMES: Game started in room %s", room.Code())
}

func (d *dispatcher) handleClueGiver(c *Client, msg clientMessage) {
	room, ok := d.boundRoom(c, msg.Type)
	if !ok {
		return
	}

	explicit := c
	if msg.Random {
		explicit = nil
	}

	if err := room.AssignClueGiver(explicit); err != nil {
		logf(d.cfg, "GAMES: Dropping clue-giver request from %s: %v", c.id, err)
	}
}

// boundRoom resolves the connection's bound room for fire-and-forget
// messages. Messages from unbound connections are dropped, not errors.
func (d *dispatcher) boundRoom(c *Client, msgType string) (*Room, bool) {
	code := c.boundRoom()
	if code == "" {
		logf(d.cfg, "GAMES: Dropping %q from %s: no bound room", msgType, c.id)
		return nil, false
	}

	room, err := d.registry.Lookup(code)
	if err != nil {
		logf(d.cfg, "GAMES: Dropping %q from %s: room %s is gone", msgType, c.id, code)
		c.clearRoom()
		return nil, false
	}

	return room, true
}

func (d *dispatcher) leaveCurrentRoom(c *Client) {
	code := c.boundRoom()
	if code == "" {
		return
	}

	if room, err := d.registry.Lookup(code); err == nil {
		if room.RemovePlayer(c) && d.registry.removeIfEmpty(code) {
			logf(d.cfg, "GAMES: Removed empty room %s", code)
		}
	}

	c.clearRoom()
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"
)

// Player is the per-member state shared with clients in players-update
// snapshots.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type member struct {
	player Player
	client *Client
}

// Room owns the membership and clue-giver state of one game session. All
// mutation happens under mu; broadcasts are taken from a snapshot of the
// member list while the lock is held, so every member sees the same state.
type Room struct {
	code string

	mu         sync.RWMutex
	members    []*member // join order, which keeps players-update snapshots stable
	clueGiver  string    // connection id of the current clue giver, empty if none
	lastActive time.Time
}

func newRoom(code string) *Room {
	return &Room{
		code:       code,
		lastActive: time.Now(),
	}
}

func (rm *Room) Code() string {
	return rm.code
}

// AddPlayer admits a connection as a member, or renames it if it is already
// present, then broadcasts the updated player list to every member.
func (rm *Room) AddPlayer(c *Client, nickname string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.lastActive = time.Now()

	for _, m := range rm.members {
		if m.player.ID == c.id {
			m.player.Nickname = nickname
			rm.broadcastPlayersLocked()
			return
		}
	}

	rm.members = append(rm.members, &member{
		player: Player{ID: c.id, Nickname: nickname},
		client: c,
	})

	rm.broadcastPlayersLocked()
}

// RemovePlayer drops a connection from the room, clearing the clue-giver
// role if it held it, and broadcasts the updated list to the remaining
// members. Removing a non-member is a no-op. Returns true once the room is
// empty and eligible for registry removal.
func (rm *Room) RemovePlayer(c *Client) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.lastActive = time.Now()

	found := false
	dst := rm.members[:0]
	for _, m := range rm.members {
		if m.player.ID == c.id {
			found = true
			continue
		}
		dst = append(dst, m)
	}
	rm.members = dst

	if !found {
		return len(rm.members) == 0
	}

	if rm.clueGiver == c.id {
		rm.clueGiver = ""
	}

	rm.broadcastPlayersLocked()

	return len(rm.members) == 0
}

// RenamePlayer updates a member's nickname and broadcasts the updated list.
func (rm *Room) RenamePlayer(c *Client, nickname string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.lastActive = time.Now()

	for _, m := range rm.members {
		if m.player.ID == c.id {
			m.player.Nickname = nickname
			rm.broadcastPlayersLocked()
			return nil
		}
	}

	return errNotAMember
}

// StartGame broadcasts game-starting to every member. It carries no state,
// so repeated calls simply re-broadcast.
func (rm *Room) StartGame() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.lastActive = time.Now()

	rm.broadcastLocked(gameStartingMessage{
		Type: "game-starting",
		Code: rm.code,
	})
}

// AssignClueGiver sets the clue-giver role and broadcasts guess-starting
// with the chosen nickname. With c == nil the pick is uniform over the
// members present at the instant of the call. On an empty room it does
// nothing.
func (rm *Room) AssignClueGiver(c *Client) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.lastActive = time.Now()

	if len(rm.members) == 0 {
		return nil
	}

	var chosen *member

	if c == nil {
		chosen = rm.members[randomIndex(len(rm.members))]
	} else {
		for _, m := range rm.members {
			if m.player.ID == c.id {
				chosen = m
				break
			}
		}
		if chosen == nil {
			return errNotAMember
		}
	}

	rm.clueGiver = chosen.player.ID

	rm.broadcastLocked(guessStartingMessage{
		Type:      "guess-starting",
		ClueGiver: chosen.player.Nickname,
	})

	return nil
}

// Players returns an order-stable snapshot of the current member list.
func (rm *Room) Players() []Player {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.playersLocked()
}

// ClueGiver returns the connection id of the current clue giver, or an
// empty string if none is assigned.
func (rm *Room) ClueGiver() string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.clueGiver
}

func (rm *Room) playersLocked() []Player {
	players := make([]Player, 0, len(rm.members))
	for _, m := range rm.members {
		players = append(players, m.player)
	}

	return players
}

func (rm *Room) broadcastPlayersLocked() {
	rm.broadcastLocked(playersUpdateMessage{
		Type:    "players-update",
		Players: rm.playersLocked(),
	})
}

// broadcastLocked delivers msg to every current member. Delivery is
// best-effort per connection: a member whose send buffer is full misses the
// message rather than stalling the rest of the room.
func (rm *Room) broadcastLocked(msg any) {
	for _, m := range rm.members {
		m.client.trySend(msg)
	}
}

func (rm *Room) idleSince() time.Time {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.lastActive
}

// closeConnections closes every member's transport, which drives each
// connection through its normal disconnect cleanup. Used by the reaper.
func (rm *Room) closeConnections() {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, m := range rm.members {
		_ = m.client.Close()
	}
}

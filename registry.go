/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"time"
)

// codeRetryLimit bounds the collision-retry loop in CreateRoom. At 26^4
// possible codes a handful of retries already makes exhaustion vanishingly
// unlikely, so hitting the bound is treated as an internal error.
const codeRetryLimit = 100

// Registry is the process-wide table of live rooms, keyed by code. Code
// generation and insertion happen under one lock, so two concurrent creates
// can never race onto the same code.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// newCode is swapped out in tests to force collisions.
	newCode func(length int) string
}

func newRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		newCode: generateCode,
	}
}

// CreateRoom registers an empty room under a freshly generated unused code
// and admits host as its first player.
func (reg *Registry) CreateRoom(host *Client, nickname string) (*Room, error) {
	reg.mu.Lock()

	var room *Room
	for i := 0; i < codeRetryLimit; i++ {
		code := reg.newCode(codeLength)
		if _, taken := reg.rooms[code]; taken {
			continue
		}
		room = newRoom(code)
		reg.rooms[code] = room
		break
	}

	reg.mu.Unlock()

	if room == nil {
		return nil, errCodeSpaceExhausted
	}

	room.AddPlayer(host, nickname)

	return room, nil
}

// Lookup finds a room by code. Codes compare case-insensitively; the stored
// form is always uppercase.
func (reg *Registry) Lookup(code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[normalizeCode(code)]
	if !ok {
		return nil, errRoomNotFound
	}

	return room, nil
}

// Admit looks up code and admits c to that room in one step under the
// registry lock, so a concurrent last-member departure cannot tear the
// room down between the lookup and the admission.
func (reg *Registry) Admit(code string, c *Client, nickname string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[normalizeCode(code)]
	if !ok {
		return nil, errRoomNotFound
	}

	room.AddPlayer(c, nickname)

	return room, nil
}

// Remove deletes the entry under code. Removing an absent code is a no-op.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, normalizeCode(code))
}

// removeIfEmpty deletes the room only if it still has no members, so a
// concurrent join between the caller's emptiness check and this call keeps
// the room registered.
func (reg *Registry) removeIfEmpty(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code = normalizeCode(code)

	room, ok := reg.rooms[code]
	if !ok {
		return true
	}
	if len(room.Players()) != 0 {
		return false
	}

	delete(reg.rooms, code)

	return true
}

// Stats reports the number of registered rooms and connected players.
func (reg *Registry) Stats() (rooms, players int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rooms = len(reg.rooms)
	for _, room := range reg.rooms {
		players += len(room.Players())
	}

	return rooms, players
}

// reaperLoop periodically tears down rooms that have been idle longer than
// the configured session timeout. Rooms normally disappear as soon as their
// last player leaves; the reaper covers rooms held open by connections that
// never disconnect cleanly.
func (reg *Registry) reaperLoop(cfg *Config) {
	ticker := time.NewTicker(cfg.sessionTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-cfg.sessionTimeout)

		reg.mu.Lock()
		var stale []*Room
		for code, room := range reg.rooms {
			if room.idleSince().Before(cutoff) {
				delete(reg.rooms, code)
				stale = append(stale, room)
			}
		}
		reg.mu.Unlock()

		for _, room := range stale {
			logf(cfg, "GAMES: Reaped idle room %s", room.Code())
			go room.closeConnections()
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateRoomUniqueCodes(t *testing.T) {
	reg := newRegistry()

	codes := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := reg.CreateRoom(newTestClient(string(rune('a'+i%26))+"-host"), "host")
		require.NoError(t, err)
		require.Len(t, room.Code(), codeLength)
		assert.False(t, codes[room.Code()], "code %s assigned twice", room.Code())
		codes[room.Code()] = true
	}

	rooms, players := reg.Stats()
	assert.Equal(t, 50, rooms)
	assert.Equal(t, 50, players)
}

func TestRegistry_CreateRoomRetriesCollisions(t *testing.T) {
	reg := newRegistry()

	sequence := []string{"AAAA", "AAAA", "AAAA", "BBBB"}
	reg.newCode = func(int) string {
		code := sequence[0]
		sequence = sequence[1:]
		return code
	}

	first, err := reg.CreateRoom(newTestClient("conn-1"), "alice")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", first.Code())

	second, err := reg.CreateRoom(newTestClient("conn-2"), "bob")
	require.NoError(t, err)
	assert.Equal(t, "BBBB", second.Code(), "the generator repeated AAAA twice before yielding a free code")
}

func TestRegistry_CreateRoomExhaustion(t *testing.T) {
	reg := newRegistry()
	reg.newCode = func(int) string { return "AAAA" }

	_, err := reg.CreateRoom(newTestClient("conn-1"), "alice")
	require.NoError(t, err)

	_, err = reg.CreateRoom(newTestClient("conn-2"), "bob")
	require.ErrorIs(t, err, errCodeSpaceExhausted)

	rooms, _ := reg.Stats()
	assert.Equal(t, 1, rooms, "a failed create must not corrupt the table")
}

func TestRegistry_Lookup(t *testing.T) {
	reg := newRegistry()

	room, err := reg.CreateRoom(newTestClient("conn-1"), "alice")
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
	}{
		{name: "exact", code: room.Code()},
		{name: "lowercase", code: strings.ToLower(room.Code())},
		{name: "padded", code: "  " + room.Code() + " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := reg.Lookup(tt.code)
			require.NoError(t, err)
			assert.Same(t, room, found)
		})
	}

	_, err = reg.Lookup("QQQQ")
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRegistry_Admit(t *testing.T) {
	reg := newRegistry()
	alice := newTestClient("conn-alice")

	room, err := reg.CreateRoom(alice, "alice")
	require.NoError(t, err)

	bob := newTestClient("conn-bob")
	joined, err := reg.Admit(strings.ToLower(room.Code()), bob, "bob")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	require.Len(t, room.Players(), 2)

	// A removed room admits nobody, so a joiner can never be acked into a
	// room the registry no longer resolves.
	room.RemovePlayer(alice)
	room.RemovePlayer(bob)
	require.True(t, reg.removeIfEmpty(room.Code()))

	_, err = reg.Admit(room.Code(), bob, "bob")
	assert.ErrorIs(t, err, errRoomNotFound)
	assert.Empty(t, room.Players())
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	reg := newRegistry()

	room, err := reg.CreateRoom(newTestClient("conn-1"), "alice")
	require.NoError(t, err)

	reg.Remove(room.Code())
	_, err = reg.Lookup(room.Code())
	assert.ErrorIs(t, err, errRoomNotFound)

	// Removing an absent code is a no-op, not an error.
	reg.Remove(room.Code())
	reg.Remove("QQQQ")
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	reg := newRegistry()
	alice := newTestClient("conn-alice")

	room, err := reg.CreateRoom(alice, "alice")
	require.NoError(t, err)

	assert.False(t, reg.removeIfEmpty(room.Code()), "an occupied room must stay registered")

	room.RemovePlayer(alice)
	assert.True(t, reg.removeIfEmpty(room.Code()))

	_, err = reg.Lookup(room.Code())
	assert.ErrorIs(t, err, errRoomNotFound)

	// Already gone: reports removed.
	assert.True(t, reg.removeIfEmpty(room.Code()))
}

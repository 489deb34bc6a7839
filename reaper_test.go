package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReaperExpiresRoomsByKind(t *testing.T) {
	h := newTestHub(t)
	b1 := connect(t, h, "b1")
	v1 := connect(t, h, "v1")
	p1 := connect(t, h, "p1")
	a1 := connect(t, h, "a1")

	emit(h, b1, ClientMessage{Type: "redroom:create", RoomID: "R1"})
	emit(h, v1, ClientMessage{Type: "redroom:join", RoomID: "R1"})
	emit(h, p1, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	emit(h, a1, ClientMessage{Type: "arena:create", RoomID: "A1"})
	emit(h, a1, ClientMessage{Type: "arena:join", RoomID: "A1"})
	h.sync()

	// Between the two TTLs: only the ritual room (30m) is old enough.
	h.call(func() {
		h.reapRooms(time.Now().Add(45 * time.Minute))
	})

	expired := nextMessage[RoomClosedMessage](t, p1)
	require.Equal(t, "ritual:expired", expired.Type)
	require.Equal(t, "M1", expired.RoomID)

	h.call(func() {
		require.Contains(t, h.redRooms, "R1")
		require.NotContains(t, h.rituals, "M1")
		require.Contains(t, h.arenas, "A1")
	})

	// Past the red room TTL (1h) it goes too; arenas have no TTL at all.
	h.call(func() {
		h.reapRooms(time.Now().Add(2 * time.Hour))
	})

	closed := nextMessage[RoomClosedMessage](t, v1)
	require.Equal(t, "redroom:closed", closed.Type)

	h.call(func() {
		require.NotContains(t, h.redRooms, "R1")
		require.Contains(t, h.arenas, "A1")
	})
}

func TestReapIsNotRenewedByActivity(t *testing.T) {
	h := newTestHub(t)
	b1 := connect(t, h, "b1")
	v1 := connect(t, h, "v1")

	emit(h, b1, ClientMessage{Type: "redroom:create", RoomID: "R1"})
	emit(h, v1, ClientMessage{Type: "redroom:join", RoomID: "R1"})
	emit(h, v1, ClientMessage{Type: "redroom:donate", RoomID: "R1", Amount: 5})
	h.sync()

	// Activity just happened; age is still measured from creation.
	h.call(func() {
		h.reapRooms(time.Now().Add(2 * time.Hour))
	})

	h.call(func() {
		require.NotContains(t, h.redRooms, "R1")
	})
}

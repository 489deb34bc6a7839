package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnounceBroadcastsCountAndLeaderboard(t *testing.T) {
	h := newTestHub(t)
	c1 := connect(t, h, "c1")
	c2 := connect(t, h, "c2")

	announce(h, c1, "Fang", 2, 100)

	lb := nextMessage[LeaderboardMessage](t, c2)
	require.Len(t, lb.Entries, 1)
	require.Equal(t, "c1", lb.Entries[0].ConnectionID)
	require.Equal(t, "Fang", lb.Entries[0].Name)
	require.Equal(t, 100, lb.Entries[0].SoulPoints)

	count := nextMessage[MemberCountMessage](t, c2)
	require.Equal(t, 1, count.Count)
}

func TestAnnounceOverwritesSnapshot(t *testing.T) {
	h := newTestHub(t)
	c1 := connect(t, h, "c1")

	announce(h, c1, "Fang", 2, 100)
	announce(h, c1, "Venom", 3, 50)
	h.sync()

	h.call(func() {
		m := h.members["c1"]
		require.NotNil(t, m)
		require.Equal(t, "Venom", m.Name)
		require.Equal(t, 3, m.Rank)
		require.Equal(t, 50, m.SoulPoints)
	})
}

func TestLeaderboardOrderingAndTieBreak(t *testing.T) {
	h := newTestHub(t)
	c1 := connect(t, h, "c1")
	c2 := connect(t, h, "c2")
	c3 := connect(t, h, "c3")
	c4 := connect(t, h, "c4")

	announce(h, c1, "a", 0, 10)
	announce(h, c2, "b", 0, 20)
	announce(h, c3, "c", 0, 20)
	announce(h, c4, "d", 0, 5)
	h.sync()

	h.call(func() {
		entries := h.computeLeaderboard()
		require.Len(t, entries, 4)
		// Descending by points; the 20-point tie goes to the
		// earlier-announced member.
		require.Equal(t, "c2", entries[0].ConnectionID)
		require.Equal(t, "c3", entries[1].ConnectionID)
		require.Equal(t, "c1", entries[2].ConnectionID)
		require.Equal(t, "c4", entries[3].ConnectionID)
	})
}

func TestLeaderboardIdempotent(t *testing.T) {
	h := newTestHub(t)
	c1 := connect(t, h, "c1")
	c2 := connect(t, h, "c2")

	announce(h, c1, "a", 0, 7)
	announce(h, c2, "b", 0, 7)
	h.sync()

	h.call(func() {
		first := h.computeLeaderboard()
		second := h.computeLeaderboard()
		require.Equal(t, first, second)
	})
}

func TestLeaderboardBounded(t *testing.T) {
	h := newTestHub(t)

	for i := 0; i < leaderboardSize+5; i++ {
		id := fmt.Sprintf("c%03d", i)
		c := connect(t, h, id)
		announce(h, c, id, 0, i)
	}
	h.sync()

	h.call(func() {
		entries := h.computeLeaderboard()
		require.Len(t, entries, leaderboardSize)
		// Lowest scorers fell off the bottom.
		require.Equal(t, leaderboardSize+4, entries[0].SoulPoints)
		require.Equal(t, 5, entries[len(entries)-1].SoulPoints)
	})
}

func TestUnknownUnregisterIsNoOp(t *testing.T) {
	h := newTestHub(t)
	connect(t, h, "c1")

	stranger := &Client{id: "ghost", send: make(chan any, 1)}
	h.unregister <- stranger
	h.sync()

	h.call(func() {
		require.Contains(t, h.clients, "c1")
		require.NotContains(t, h.clients, "ghost")
	})
}

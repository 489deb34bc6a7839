// Coven's socket hub.
//
// A single Hub owns every piece of shared state: the connection registry, the
// member snapshots, and all three room stores. One goroutine (run) consumes
// client events, timer callbacks, and the reaper tick, so every mutation and
// its fan-out happen on one loop. That is what guarantees that two events
// processed for the same room are observed by all recipients in the same
// order, without any per-room locking.
//
// Clients follow the usual gorilla/websocket split: readPump parses inbound
// JSON frames and hands them to the hub, writePump drains a buffered send
// channel. A client that can't keep up with its send channel is closed rather
// than allowed to stall a broadcast.

package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
)

type Client struct {
	id          string
	conn        *websocket.Conn
	send        chan any
	connectedAt time.Time

	// Only touched on the hub loop.
	closed bool
}

type inboundEvent struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	cfg *Config

	clients map[string]*Client
	members map[string]*Member
	seq     uint64

	redRooms map[string]*RedRoom
	rituals  map[string]*RitualRoom
	arenas   map[string]*Arena

	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent
	tasks      chan func()
	done       chan struct{}

	rng *rand.Rand
}

func newHub(cfg *Config) *Hub {
	return &Hub{
		cfg:        cfg,
		clients:    make(map[string]*Client),
		members:    make(map[string]*Member),
		redRooms:   make(map[string]*RedRoom),
		rituals:    make(map[string]*RitualRoom),
		arenas:     make(map[string]*Arena),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inboundEvent),
		tasks:      make(chan func(), 16),
		done:       make(chan struct{}),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *Hub) run() {
	ticker := time.NewTicker(h.cfg.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case ev := <-h.events:
			h.dispatch(ev.client, ev.msg)
		case fn := <-h.tasks:
			fn()
		case now := <-ticker.C:
			h.reapRooms(now)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) stop() {
	close(h.done)
}

// after schedules fn onto the hub loop once d has elapsed. Callbacks must
// re-check that whatever they captured still exists; the room they were armed
// for may have been reaped in the meantime.
func (h *Hub) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case h.tasks <- fn:
		case <-h.done:
		}
	})
}

func (h *Hub) addClient(c *Client) {
	h.clients[c.id] = c
	h.sendTo(c, WelcomeMessage{
		Type:         "cult:welcome",
		ConnectionID: c.id,
	})
	logf(h.cfg, "HUB: Connection %s opened", c.id)
}

// removeClient tears a connection out of the registry and every room it
// belonged to, then refreshes the derived state exactly once.
func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	h.closeClient(c)

	delete(h.members, c.id)

	h.evictFromRedRooms(c.id)
	h.evictFromRituals(c.id)
	h.evictFromArenas(c.id)

	h.refreshLeaderboard()
	h.broadcastMemberCount()

	logf(h.cfg, "HUB: Connection %s closed", c.id)
}

func (h *Hub) closeClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (h *Hub) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "cult:join":
		h.handleAnnounce(c, msg)
	case "redroom:create":
		h.handleRedRoomCreate(c, msg)
	case "redroom:join":
		h.handleRedRoomJoin(c, msg)
	case "redroom:leave":
		h.handleRedRoomLeave(c, msg)
	case "redroom:donate":
		h.handleDonate(c, msg)
	case "redroom:signal":
		h.handleSignal(c, msg)
	case "ritual:join":
		h.handleRitualJoin(c, msg)
	case "ritual:draw_line":
		h.handleDrawLine(c, msg)
	case "arena:create":
		h.handleArenaCreate(c, msg)
	case "arena:join":
		h.handleArenaJoin(c, msg)
	case "arena:move":
		h.handleArenaMove(c, msg)
	case "arena:eat":
		h.handleArenaEat(c, msg)
	case "bloodmoon:trigger":
		h.handleBloodMoon(c, msg)
	case "hex:cast":
		h.handleHexCast(c, msg)
	case "notification:send":
		h.handleNotification(c, msg)
	default:
		// ignore unknown types
	}
}

// sendTo delivers to one client, evicting it if its send buffer is full.
func (h *Hub) sendTo(c *Client, msg any) {
	if c == nil || c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.closeClient(c)
	}
}

func (h *Hub) sendToID(id string, msg any) {
	h.sendTo(h.clients[id], msg)
}

func (h *Hub) sendToIDs(ids []string, msg any) {
	for _, id := range ids {
		h.sendToID(id, msg)
	}
}

// broadcastAll fans out to every registered connection.
func (h *Hub) broadcastAll(msg any) {
	for _, c := range h.clients {
		h.sendTo(c, msg)
	}
}

// broadcastSample fans out to at most n connections, chosen uniformly without
// replacement. n greater than the pool just means everyone, once.
func (h *Hub) broadcastSample(n int, msg any) {
	pool := lo.Filter(lo.Values(h.clients), func(c *Client, _ int) bool {
		return !c.closed
	})
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return
	}
	for _, i := range h.rng.Perm(len(pool))[:n] {
		h.sendTo(pool[i], msg)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			id:          uuid.NewString(),
			conn:        conn,
			send:        make(chan any, 32),
			connectedAt: time.Now(),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.events <- inboundEvent{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

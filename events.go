package main

const (
	bloodMoonMinRank = 5
	hexDefaultCount  = 5
)

// handleBloodMoon fires a site-wide event, gated on the sender's announced
// rank. Below-rank triggers are dropped without a reply.
func (h *Hub) handleBloodMoon(c *Client, msg ClientMessage) {
	member, ok := h.members[c.id]
	if !ok || member.Rank < bloodMoonMinRank {
		return
	}

	h.broadcastAll(BloodMoonMessage{
		Type:      "bloodmoon:activate",
		Initiator: msg.Initiator,
	})

	h.after(h.cfg.bloodMoonDuration, func() {
		h.broadcastAll(BloodMoonMessage{
			Type: "bloodmoon:deactivate",
		})
	})

	logf(h.cfg, "EVENTS: Blood moon triggered by %s", c.id)
}

// handleHexCast relays an opaque hex to a bounded random sample of connected
// peers; each target receives it at most once.
func (h *Hub) handleHexCast(c *Client, msg ClientMessage) {
	targets := msg.Targets
	if targets <= 0 {
		targets = hexDefaultCount
	}

	h.broadcastSample(targets, HexMessage{
		Type: "hex:received",
		Hex:  msg.Hex,
	})
}

// handleNotification is the unvalidated global relay.
func (h *Hub) handleNotification(c *Client, msg ClientMessage) {
	h.broadcastAll(NotificationMessage{
		Type:    "notification:receive",
		Payload: msg.Payload,
	})
}

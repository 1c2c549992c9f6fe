package ws

import (
	"encoding/json"
	"sync"
)

// Client is one connected device subscribed to a kid's reward feed.
type Client struct {
	KidID  uint
	Send   chan []byte
	hub    *FeedHub
	mu     sync.Mutex
	closed bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// FeedHub fans reward events out to the devices watching each kid's wallet
// (the kid's own device plus any guardian apps).
type FeedHub struct {
	mu    sync.RWMutex
	byKid map[uint]map[*Client]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{byKid: make(map[uint]map[*Client]struct{})}
}

func (h *FeedHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byKid[c.KidID] == nil {
		h.byKid[c.KidID] = make(map[*Client]struct{})
	}
	h.byKid[c.KidID][c] = struct{}{}
}

func (h *FeedHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byKid[c.KidID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byKid, c.KidID)
		}
	}
}

// BroadcastToKid pushes a payload to every client watching the kid. Slow
// clients are skipped rather than blocking the reward engine.
func (h *FeedHub) BroadcastToKid(kidID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.byKid[kidID]))
	for c := range h.byKid[kidID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *FeedHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byKid {
		n += len(m)
	}
	return n
}

package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyWatchers(t *testing.T) {
	hub := NewFeedHub()
	watcher := &Client{KidID: 1, Send: make(chan []byte, 1)}
	other := &Client{KidID: 2, Send: make(chan []byte, 1)}
	hub.Register(watcher)
	hub.Register(other)
	assert.Equal(t, 2, hub.ClientCount())

	hub.BroadcastToKid(1, map[string]interface{}{"type": "wallet", "coins": 5})

	require.Len(t, watcher.Send, 1)
	assert.Empty(t, other.Send)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(<-watcher.Send, &msg))
	assert.Equal(t, "wallet", msg["type"])
}

func TestSlowClientIsSkipped(t *testing.T) {
	hub := NewFeedHub()
	slow := &Client{KidID: 1, Send: make(chan []byte)} // unbuffered, nobody reading
	hub.Register(slow)

	done := make(chan struct{})
	go func() {
		hub.BroadcastToKid(1, "ping")
		close(done)
	}()
	<-done
}

func TestCloseUnregistersAndIsIdempotent(t *testing.T) {
	hub := NewFeedHub()
	c := &Client{KidID: 1, Send: make(chan []byte, 1)}
	hub.Register(c)

	c.Close()
	assert.Equal(t, 0, hub.ClientCount())
	c.Close()

	// Broadcasting after close must not panic on the closed channel.
	hub.BroadcastToKid(1, "ping")
}

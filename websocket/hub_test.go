package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan []byte, 8),
		userID:   userID,
		rooms:    make(map[uint]bool),
		watching: make(map[uint]bool),
	}
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubMessageEventsReachMembersOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1)
	watcher := newTestClient(hub, 2)
	hub.register <- member
	hub.register <- watcher

	member.joinRoom(5)
	watcher.watchRoom(5)

	hub.BroadcastToRoom(5, EventMessage, "hello")

	ev := recvEvent(t, member)
	assert.Equal(t, EventMessage, ev.Type)
	assert.Equal(t, "hello", ev.Payload)
	assertNoEvent(t, watcher)
}

func TestHubFileEventsReachWatchersAndMembers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1)
	watcher := newTestClient(hub, 2)
	outsider := newTestClient(hub, 3)
	hub.register <- member
	hub.register <- watcher
	hub.register <- outsider

	member.joinRoom(5)
	watcher.watchRoom(5)

	hub.BroadcastToWatchers(5, EventFileUploaded, "notes.pdf")

	assert.Equal(t, EventFileUploaded, recvEvent(t, member).Type)
	assert.Equal(t, EventFileUploaded, recvEvent(t, watcher).Type)
	assertNoEvent(t, outsider)
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)
	hub.register <- a
	hub.register <- b

	hub.BroadcastAll(EventRoomDeleted, float64(7))

	for _, c := range []*Client{a, b} {
		ev := recvEvent(t, c)
		assert.Equal(t, EventRoomDeleted, ev.Type)
		assert.Equal(t, float64(7), ev.Payload)
	}
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1)
	other := newTestClient(hub, 2)
	hub.register <- member
	hub.register <- other

	member.joinRoom(5)
	other.joinRoom(5)

	hub.unregister <- member
	// Give the hub loop time to finish the removal
	time.Sleep(50 * time.Millisecond)

	// The departed client's channel is closed and it receives nothing more
	hub.BroadcastToRoom(5, EventMessage, "after")
	assert.Equal(t, EventMessage, recvEvent(t, other).Type)

	_, open := <-member.send
	assert.False(t, open)
}

func TestHubLeaveRoomStopsMessages(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1)
	hub.register <- member

	member.joinRoom(5)
	member.leaveRoom(5)

	hub.BroadcastToRoom(5, EventMessage, "gone")
	assertNoEvent(t, member)
}

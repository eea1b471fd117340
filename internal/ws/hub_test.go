package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urbanluxe/urbanluxe/internal/presence"
)

func newTestHub() *Hub {
	return NewHub(presence.NewRegistry(), "")
}

// newTestClient builds a client without a real websocket connection. The
// lifecycle methods under test never touch the transport.
func newTestClient(hub *Hub) *Client {
	return newClient(hub, nil)
}

func recvEvent(t *testing.T, c *Client) DeliveryEvent {
	t.Helper()
	select {
	case payload := <-c.send:
		var ev DeliveryEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return DeliveryEvent{}
	}
}

func TestIdentifyThenDeliver(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	client := newTestClient(hub)

	req.NoError(hub.Identify(client, 7))
	req.True(hub.Online(7))

	sent := DeliveryEvent{ConversationID: 3, AuthorID: 9, Text: "hi", CreatedAt: time.Now().UTC()}
	req.True(hub.Deliver(7, sent))

	got := recvEvent(t, client)
	req.Equal(eventTypeMessage, got.Type)
	req.Equal(sent.ConversationID, got.ConversationID)
	req.Equal(sent.AuthorID, got.AuthorID)
	req.Equal(sent.Text, got.Text)
}

func TestDeliverToOfflineReceiver(t *testing.T) {
	hub := newTestHub()
	require.False(t, hub.Deliver(42, DeliveryEvent{Text: "anyone there?"}))
}

func TestUnidentifiedConnectionGetsNothing(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	client := newTestClient(hub)

	req.False(hub.Deliver(7, DeliveryEvent{Text: "hi"}))
	req.Empty(client.send)

	// Closing a connection that never identified is inert.
	hub.Disconnect(client)
	req.False(hub.Online(7))
}

func TestDisconnectRemovesPresence(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	client := newTestClient(hub)

	req.NoError(hub.Identify(client, 7))
	hub.Disconnect(client)

	req.False(hub.Online(7))
	req.False(hub.Deliver(7, DeliveryEvent{Text: "too late"}))

	// A second disconnect is a no-op, not a panic.
	hub.Disconnect(client)
}

func TestDeliverAfterDisconnectDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	require.NoError(t, hub.Identify(client, 7))
	hub.Disconnect(client)
	require.False(t, client.Deliver([]byte("late")))
}

func TestReidentifyRejected(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	client := newTestClient(hub)

	req.NoError(hub.Identify(client, 7))
	req.Error(hub.Identify(client, 8))
	req.True(hub.Online(7))
	req.False(hub.Online(8))
}

func TestFirstRegistrationWinsThroughHub(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	first := newTestClient(hub)
	second := newTestClient(hub)

	req.NoError(hub.Identify(first, 7))
	req.NoError(hub.Identify(second, 7))

	req.True(hub.Deliver(7, DeliveryEvent{Text: "hello"}))
	req.Len(first.send, 1, "recorded connection receives the event")
	req.Empty(second.send, "ignored connection receives nothing")

	// The ignored connection closing does not evict the recorded one.
	hub.Disconnect(second)
	req.True(hub.Online(7))

	hub.Disconnect(first)
	req.False(hub.Online(7))
}

func TestStalledReceiverIsDropped(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	client := newTestClient(hub)
	req.NoError(hub.Identify(client, 7))

	for i := 0; i < sendBufferSize; i++ {
		req.True(hub.Deliver(7, DeliveryEvent{Text: "fill"}))
	}
	// Buffer full: the connection counts as dead and loses its entry.
	req.False(hub.Deliver(7, DeliveryEvent{Text: "overflow"}))
	req.False(hub.Online(7))
}

func TestParseIdentify(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "valid", raw: `{"type":"identify","userId":"7"}`, want: 7},
		{name: "bad json", raw: `{"type":`, wantErr: true},
		{name: "unknown type", raw: `{"type":"send","userId":"7"}`, wantErr: true},
		{name: "missing userId", raw: `{"type":"identify"}`, wantErr: true},
		{name: "non-numeric userId", raw: `{"type":"identify","userId":"mallory"}`, wantErr: true},
		{name: "zero userId", raw: `{"type":"identify","userId":"0"}`, wantErr: true},
		{name: "negative userId", raw: `{"type":"identify","userId":"-3"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIdentify([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

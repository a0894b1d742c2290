package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub([]string{"https://saboarena.vn"})
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var snapshot *Message
		if r.URL.Query().Get("snapshot") != "" {
			snapshot = &Message{Type: TournamentUpdated, Payload: "hello"}
		}
		hub.ServeRoom(w, r, r.URL.Query().Get("room"), snapshot)
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestRoomFor(t *testing.T) {
	id := uuid.MustParse("6f1c4c1e-4c7a-4d53-9a57-0d0d7f3b2a11")
	assert.Equal(t, "tournament_6f1c4c1e-4c7a-4d53-9a57-0d0d7f3b2a11", RoomFor(id))
}

func TestBroadcastToRoom(t *testing.T) {
	hub, server := startHub(t)

	a := dial(t, server, "room=tournament_a")
	b := dial(t, server, "room=tournament_b")

	require.Eventually(t, func() bool {
		return hub.RoomSize("tournament_a") == 1 && hub.RoomSize("tournament_b") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("tournament_a", Message{Type: BracketUpdated, Payload: map[string]int{"matches": 14}})

	msg := readMessage(t, a)
	assert.Equal(t, BracketUpdated, msg.Type)
	assert.Equal(t, "tournament_a", msg.RoomID)
	assert.Equal(t, map[string]any{"matches": float64(14)}, msg.Payload)

	// the other room hears nothing
	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
}

func TestServeRoom_Snapshot(t *testing.T) {
	_, server := startHub(t)

	conn := dial(t, server, "room=tournament_s&snapshot=1")
	msg := readMessage(t, conn)
	assert.Equal(t, TournamentUpdated, msg.Type)
	assert.Equal(t, "hello", msg.Payload)
	assert.Equal(t, "tournament_s", msg.RoomID)
}

func TestUnregisterOnDisconnect(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "room=tournament_c")
	require.Eventually(t, func() bool { return hub.RoomSize("tournament_c") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize("tournament_c") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://saboarena.vn"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://saboarena.vn")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
	assert.Nil(t, originChecker(nil))
}

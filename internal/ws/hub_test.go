package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatonline-world/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeed(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.ServeWs)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestHubBroadcastsMessages(t *testing.T) {
	hub, conn := newFeed(t)

	hub.NotifyMessage(models.MessageDict{ID: 7, Message: "hello", Lat: 40.1, Lng: -75.3, PostedAt: "2024-05-01T12:00:00Z"})

	got := readEnvelope(t, conn)
	assert.Equal(t, "message", got["type"])
	content, ok := got["content"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", content["message"])
	assert.Equal(t, float64(7), content["id"])
	assert.Equal(t, "2024-05-01T12:00:00Z", content["posted_at"])
}

func TestHubAnswersPing(t *testing.T) {
	_, conn := newFeed(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	got := readEnvelope(t, conn)
	assert.Equal(t, "pong", got["type"])
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, conn := newFeed(t)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

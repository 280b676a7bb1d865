package broadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twopane/internal/models"
)

func TestHub_SSE(t *testing.T) {
	h := NewHub()
	ch := make(chan *models.Snapshot, 1)
	h.RegisterSSE("s1", ch)
	assert.Equal(t, 1, h.Subscribers("s1"))

	snap := &models.Snapshot{SessionID: "s1", Tab: models.TabLookup}
	h.Broadcast("s1", snap)
	h.Broadcast("other", &models.Snapshot{SessionID: "other"})

	select {
	case got := <-ch:
		assert.Same(t, snap, got)
	default:
		t.Fatal("expected a snapshot")
	}

	// full channel drops instead of blocking
	h.Broadcast("s1", snap)
	h.Broadcast("s1", snap)

	h.UnregisterSSE("s1", ch)
	h.UnregisterSSE("s1", ch)
	assert.Equal(t, 0, h.Subscribers("s1"))
	<-ch
	_, open := <-ch
	assert.False(t, open, "channel must be closed after unregister")
}

func TestHub_WebSocket(t *testing.T) {
	h := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		c := h.RegisterWS("s1", ws)
		defer h.UnregisterWS("s1", c)
		close(registered)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("server never registered the connection")
	}

	h.Broadcast("s1", &models.Snapshot{SessionID: "s1", Query: "5"})

	var got models.Snapshot
	client.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "5", got.Query)
}

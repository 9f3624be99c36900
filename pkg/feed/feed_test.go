package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, h *Hub, user string) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, user)
	}))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Count(user) == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestPublishReachesOwnerOnly(t *testing.T) {
	h := NewHub()
	alice, closeA := dial(t, h, "alice")
	defer closeA()

	assert.Equal(t, 0, h.Publish("bob", map[string]any{"score": 1}))
	assert.Equal(t, 1, h.Publish("alice", map[string]any{"type": "rating", "score": 97.9}))

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := alice.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rating","score":97.9}`, string(msg))
}

func TestDisconnectUnsubscribes(t *testing.T) {
	h := NewHub()
	_, closeA := dial(t, h, "alice")
	closeA()
	assert.Eventually(t, func() bool { return h.Count("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.Publish("alice", "x"))
}

func TestPublishUnmarshalable(t *testing.T) {
	assert.Equal(t, 0, NewHub().Publish("alice", func() {}))
}

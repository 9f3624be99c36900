// Package feed pushes new ratings to the websocket connections of their
// owner.
package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks the open connections of every user. The zero value is not
// usable; use NewHub.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[*subscriber]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Count returns the number of open connections of user.
func (h *Hub) Count(user string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[user])
}

// Serve upgrades the request and blocks until the client goes away. Client
// messages are read and discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed upgrade failed for %s: %v", user, err)
		return
	}
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	if h.subs[user] == nil {
		h.subs[user] = map[*subscriber]struct{}{}
	}
	h.subs[user][sub] = struct{}{}
	h.mu.Unlock()

	defer h.remove(user, sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(user string, sub *subscriber) {
	h.mu.Lock()
	delete(h.subs[user], sub)
	if len(h.subs[user]) == 0 {
		delete(h.subs, user)
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// Publish sends v as JSON to every connection of user and returns how many
// received it. Connections that fail the write are dropped.
func (h *Hub) Publish(user string, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("feed marshal for %s: %v", user, err)
		return 0
	}
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs[user]))
	for s := range h.subs[user] {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	sent := 0
	for _, s := range subs {
		if err := s.write(data); err != nil {
			h.remove(user, s)
			continue
		}
		sent++
	}
	return sent
}

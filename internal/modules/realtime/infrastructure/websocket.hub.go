package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// Hub tracks the live dashboard sockets, grouped by session. A session may have
// several tabs open.
type Hub struct {
	sessions map[string]map[*Client]struct{}
	mu       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Client]struct{})}
}

func (h *Hub) AttachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.sessionID] == nil {
		h.sessions[c.sessionID] = make(map[*Client]struct{})
	}
	h.sessions[c.sessionID][c] = struct{}{}
	slog.Info("ws client attached", slog.String("sessionId", c.sessionID), slog.String("username", c.username))
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	if clients, ok := h.sessions[c.sessionID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.sessions, c.sessionID)
		}
	}
	c.close()
	slog.Info("ws client detached", slog.String("sessionId", c.sessionID))
}

// DisconnectSession closes every socket of a session, used on logout.
func (h *Hub) DisconnectSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		h.detachLocked(c)
	}
}

// Count returns the number of attached sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.sessions {
		n += len(clients)
	}
	return n
}

// Broadcast sends msg to every socket except those of the originating session.
// A client whose buffer is full is dropped.
func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions))
	for sessionID, set := range h.sessions {
		if msg.Origin != "" && sessionID == msg.Origin {
			continue
		}
		for c := range set {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			go h.detachClient(c)
		}
	}
}

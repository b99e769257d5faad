package ws

import (
	"encoding/json"
	"sync"
	"time"

	"criptomain/internal/domain"
	"criptomain/internal/logger"
)

// PriceUpdate is the payload pushed to every subscriber when the global
// token price changes.
type PriceUpdate struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	PriceUSD  float64 `json:"price_usd"`
	Reason    string  `json:"reason"`
}

// Hub fans price changes out to connected websocket clients. Unlike a
// game hub there is no matchmaking: every client gets every update.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug("price feed client connected", "clients", n)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

// BroadcastPrice pushes a price point to all subscribers. Slow clients are
// dropped instead of blocking the registration path.
func (h *Hub) BroadcastPrice(p domain.PricePoint) {
	update := PriceUpdate{
		Type:      "price_update",
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339),
		PriceUSD:  p.PriceUSD,
		Reason:    p.Reason,
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}

	h.mu.RLock()
	var stale []*Client
	for c := range h.clients {
		select {
		case c.Send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.Unregister(c)
	}
}

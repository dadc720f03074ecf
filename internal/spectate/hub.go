// Package spectate streams a running session to websocket viewers. Viewers
// only watch; anything they send is ignored.
package spectate

import (
	"context"
	"sync"

	"github.com/Garsondee/Nightwood/internal/record"
	"github.com/Garsondee/Nightwood/internal/sim"
)

// Hub tracks connected viewers and fans frames out to them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	last       []byte        // most recent frame, sent to late joiners

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	maxPerIP   int
	maxTotal   int
}

// NewHub creates a hub with the given connection caps.
func NewHub(maxPerIP, maxTotal int) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		ipConns:    make(map[string]int),
		maxPerIP:   maxPerIP,
		maxTotal:   maxTotal,
	}
}

// acquire reserves a connection slot for ip.
func (h *Hub) acquire(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.maxTotal || h.ipConns[ip] >= h.maxPerIP {
		return false
	}
	h.ipConns[ip]++
	h.totalConns++
	return true
}

func (h *Hub) release(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is done. Once it
// returns, new viewers are turned away and leaving viewers no longer wait on it.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.last != nil {
				c.enqueue(h.last)
			}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		}
	}
}

// Closed reports whether Run has returned.
func (h *Hub) Closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// join hands c to Run. It returns false when the hub has stopped.
func (h *Hub) join(c *Client) bool {
	if h.Closed() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave hands c back to Run, or does nothing when the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues data for every viewer. Slow viewers drop frames.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	h.last = data
	for c := range h.clients {
		c.enqueue(data)
	}
	h.mu.Unlock()
}

// Publish encodes a tick and broadcasts it.
func (h *Hub) Publish(sessionID string, r sim.TickResult) error {
	data, err := record.Encode(record.FromTick(sessionID, r))
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of registered viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the number of reserved connection slots.
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

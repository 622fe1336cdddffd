package ws

import (
	"context"
	"sync/atomic"

	"github.com/zairysbigtae/privdm-backend/internal/metrics"
)

// Hub tracks open command channel connections. Sessions never talk to each other
// through it; it exists for the connection gauge and for closing everything on shutdown.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}
	drained    chan struct{}
	online     atomic.Int32
}

func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		drained:    make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	draining := false
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.online.Store(int32(len(h.clients)))
			metrics.WsConnections.Inc()
			if draining {
				c.cancel()
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			h.online.Store(int32(len(h.clients)))
			metrics.WsConnections.Dec()
			if draining && len(h.clients) == 0 {
				h.markDrained()
			}
		case <-h.shutdown:
			if draining {
				continue
			}
			draining = true
			for c := range h.clients {
				c.cancel()
			}
			if len(h.clients) == 0 {
				h.markDrained()
			}
		}
	}
}

func (h *Hub) markDrained() {
	select {
	case <-h.drained:
	default:
		close(h.drained)
	}
}

// Online returns the number of open connections.
func (h *Hub) Online() int { return int(h.online.Load()) }

// Shutdown cancels every session and waits until all connections have unregistered.
// Connections opened afterwards are cancelled as soon as they register.
func (h *Hub) Shutdown(ctx context.Context) error {
	select {
	case h.shutdown <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-h.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

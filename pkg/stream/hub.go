// Package stream broadcasts tick frames to read-only websocket viewers.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

const (
	defaultBuffer = 64
	writeTimeout  = 5 * time.Second
)

// Frame is one tick as seen by a viewer.
type Frame struct {
	Tick   uint64                 `json:"tick"`
	Time   float64                `json:"time"`
	World  world.WorldState       `json:"world"`
	Traces []intent.DecisionTrace `json:"traces,omitempty"`
	Events []rally.Event          `json:"events,omitempty"`
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to connected viewers. A viewer whose buffer is full is
// disconnected rather than allowed to slow the publisher.
type Hub struct {
	mu       sync.Mutex
	viewers  map[*viewer]struct{}
	last     []byte
	buffer   int
	log      logger.Logger
	upgrader websocket.Upgrader
}

// Option customizes a Hub.
type Option func(*Hub)

// WithBuffer sets how many frames may queue per viewer.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger, opts ...Option) *Hub {
	if log == nil {
		log = logger.New()
	}
	h := &Hub{
		viewers: make(map[*viewer]struct{}),
		buffer:  defaultBuffer,
		log:     log.WithPrefix("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and streams frames until the viewer goes
// away. Viewers joining mid-match first receive the latest frame.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	v := &viewer{conn: conn, send: make(chan []byte, h.buffer)}
	h.add(v)
	h.log.Debugf("viewer connected from %s", r.RemoteAddr)
	go h.write(v)

	// viewers are read-only; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(v)
			h.log.Debugf("viewer %s disconnected", r.RemoteAddr)
			return
		}
	}
}

func (h *Hub) add(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[v] = struct{}{}
	if h.last != nil {
		v.send <- h.last
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(v)
}

func (h *Hub) dropLocked(v *viewer) {
	if _, ok := h.viewers[v]; !ok {
		return
	}
	delete(h.viewers, v)
	close(v.send)
}

func (h *Hub) write(v *viewer) {
	defer v.conn.Close()
	for msg := range v.send {
		_ = v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(v)
			return
		}
	}
	_ = v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Publish encodes f and queues it for every viewer.
func (h *Hub) Publish(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Tick, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			h.log.Warnf("dropping slow viewer at tick %d", f.Tick)
			h.dropLocked(v)
		}
	}
	return nil
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		h.dropLocked(v)
	}
}

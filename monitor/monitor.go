// Package monitor streams live delivery events over a websocket: every
// message a watched peer receives is framed with encoder and broadcast to
// subscribers authenticated with a JWT bearer token.
package monitor

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"sync"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	bus1 "github.com/ailidani/bus1"
	"github.com/ailidani/bus1/encoder"
	"github.com/ailidani/bus1/internal/log"
)

// Event is one observed delivery, framed for subscribers.
type Event struct {
	PeerID string
	Kind   string
	Data   []byte
}

func init() {
	encoder.Register(Event{})
}

// Hub fans Events out to every currently-connected websocket subscriber.
type Hub struct {
	secret []byte

	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*websocket.Conn]chan Event
}

// NewHub returns a hub whose subscribers must present a JWT signed with
// secret.
func NewHub(secret []byte) *Hub {
	return &Hub{
		secret:   secret,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		subs:     make(map[*websocket.Conn]chan Event),
	}
}

// Publish hands ev to every connected subscriber. Slow subscribers drop
// events rather than block the publisher.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			log.Warningf("monitor: subscriber backpressured, dropping event")
		}
	}
}

// Watch wraps p.Recv, publishing every message the peer consumes as an Event.
func (h *Hub) Watch(id bus1.ID, p *bus1.Peer) {
	go func() {
		for {
			m := p.Recv()
			if m == nil {
				if err := p.Distq().Wait(context.Background()); err != nil {
					return
				}
				continue
			}
			h.Publish(Event{PeerID: string(id), Kind: m.Kind().String(), Data: m.Data})
		}
	}()
}

func (h *Hub) authenticate(r *http.Request) error {
	raw := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(raw) <= len(prefix) || raw[:len(prefix)] != prefix {
		return http.ErrNoCookie
	}
	token := raw[len(prefix):]

	_, err := gojwt.Parse(token, func(t *gojwt.Token) (interface{}, error) {
		return h.secret, nil
	})
	return err
}

// ServeHTTP upgrades authenticated requests to a websocket and streams
// events to them until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("monitor: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := make(chan Event, 64)
	h.mu.Lock()
	h.subs[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, conn)
		h.mu.Unlock()
	}()

	for ev := range ch {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		if err := encoder.Encode(w, ev); err != nil {
			log.Errorf("monitor: encode event: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			return
		}
	}
}

package ws

import (
	"sync"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	UserID() string
	ConnectionID() string
	Room() domain.RoomKey
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]map[Conn]struct{} // room key -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[domain.RoomKey]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[c.Room()]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[c.Room()] = rs
	}
	rs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[c.Room()]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, c.Room())
		}
	}
}

func (h *Hub) Broadcast(key domain.RoomKey, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[key]; ok {
		for c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}

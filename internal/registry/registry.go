package registry

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

// memberKey — один участник = пара (user, connection). Несколько вкладок
// одного пользователя живут как отдельные записи и не выселяют друг друга.
type memberKey struct {
	userID string
	connID string
}

// Registry is the process-wide presence store: RoomKey -> live participants.
// Soft state: nothing is persisted, a restart starts empty. One RWMutex
// guards the whole map; every operation is a short in-memory touch, so a
// coarse lock keeps participant records free of torn reads without
// per-room lock bookkeeping.
type Registry struct {
	mu    sync.RWMutex
	ttl   time.Duration
	rooms map[domain.RoomKey]map[memberKey]*domain.Participant
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Registry{
		ttl:   ttl,
		rooms: make(map[domain.RoomKey]map[memberKey]*domain.Participant),
	}
}

func (r *Registry) TTL() time.Duration { return r.ttl }

// Join inserts or refreshes a participant and returns a copy of the stored
// record. Idempotent per (user.ID, connID): a retried join replaces the
// existing entry instead of duplicating it; JoinedAt is kept on refresh.
func (r *Registry) Join(key domain.RoomKey, user domain.User, connID string, cursor json.RawMessage) domain.Participant {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[key]
	if !ok {
		members = make(map[memberKey]*domain.Participant)
		r.rooms[key] = members
	}

	mk := memberKey{userID: user.ID, connID: connID}
	if p, ok := members[mk]; ok {
		p.User = user
		p.LastSeenAt = now
		if cursor != nil {
			p.Cursor = cursor
		}
		return *p
	}

	p := &domain.Participant{
		User:         user,
		ConnectionID: connID,
		Cursor:       cursor,
		JoinedAt:     now,
		LastSeenAt:   now,
	}
	members[mk] = p
	return *p
}

// Heartbeat advances LastSeenAt (and the cursor, if one is supplied) for an
// existing participant. A miss is a normal outcome, not an error: false
// tells the transport layer the client should re-join.
func (r *Registry) Heartbeat(key domain.RoomKey, userID, connID string, cursor json.RawMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[key]
	if !ok {
		return false
	}
	p, ok := members[memberKey{userID: userID, connID: connID}]
	if !ok {
		return false
	}
	p.LastSeenAt = time.Now()
	if cursor != nil {
		p.Cursor = cursor
	}
	return true
}

// Leave removes the participant; the room itself is dropped together with
// its last participant.
func (r *Registry) Leave(key domain.RoomKey, userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[key]
	if !ok {
		return false
	}
	mk := memberKey{userID: userID, connID: connID}
	if _, ok := members[mk]; !ok {
		return false
	}
	delete(members, mk)
	if len(members) == 0 {
		delete(r.rooms, key)
	}
	return true
}

// List returns a snapshot of the room, sorted by LastSeenAt ascending
// (longest-present first); ties break by user id, then connection id, so
// clients render a stable order.
func (r *Registry) List(key domain.RoomKey) []domain.Participant {
	r.mu.RLock()
	members := r.rooms[key]
	out := make([]domain.Participant, 0, len(members))
	for _, p := range members {
		out = append(out, *p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.Before(out[j].LastSeenAt)
		}
		if out[i].User.ID != out[j].User.ID {
			return out[i].User.ID < out[j].User.ID
		}
		return out[i].ConnectionID < out[j].ConnectionID
	})
	return out
}

// SweepExpired evicts every participant whose LastSeenAt is older than the
// TTL relative to now, dropping emptied rooms. Cost is proportional to the
// number of live participants. Returns the eviction count.
func (r *Registry) SweepExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, members := range r.rooms {
		for mk, p := range members {
			if now.Sub(p.LastSeenAt) > r.ttl {
				delete(members, mk)
				evicted++
			}
		}
		if len(members) == 0 {
			delete(r.rooms, key)
		}
	}
	return evicted
}

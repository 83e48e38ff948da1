// Package registry holds the client-side view of all known sessions and the
// active one. It is an explicit object handed to the controllers that need
// it; nothing here is global.
package registry

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/domain"
)

// Snapshot is a point-in-time copy of the registry
type Snapshot struct {
	Active *domain.Session
	All    []domain.Session
}

// Reader is the read handle
type Reader interface {
	Active() (domain.Session, bool)
	All() []domain.Session
	ByID(id int64) (domain.Session, bool)
	ByName(name string) (domain.Session, bool)
	Snapshot() Snapshot
}

// Writer is the write handle
type Writer interface {
	SetSessions(sessions []domain.Session)
	SetActive(session domain.Session)
	ClearActive()
	Upsert(session domain.Session)
	Remove(id int64) bool
}

// Registry is safe for concurrent use. Concurrent writers are
// last-write-wins.
type Registry struct {
	mu          sync.RWMutex
	active      *domain.Session
	all         []domain.Session
	subscribers map[int]chan Snapshot
	nextSub     int
}

var (
	_ Reader = (*Registry)(nil)
	_ Writer = (*Registry)(nil)
)

func New() *Registry {
	return &Registry{subscribers: make(map[int]chan Snapshot)}
}

// SetSessions replaces the whole list, keeping server order. A repeated id
// keeps its first occurrence.
func (r *Registry) SetSessions(sessions []domain.Session) {
	seen := make(map[int64]struct{}, len(sessions))
	all := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if _, dup := seen[s.ID]; dup {
			log.Warn().Int64("session_id", s.ID).Msg("Dropping duplicate session from list")
			continue
		}
		seen[s.ID] = struct{}{}
		all = append(all, s)
	}

	r.mu.Lock()
	r.all = all
	r.mu.Unlock()
	r.publish()
}

// SetActive marks a session as active. It does not touch the list.
func (r *Registry) SetActive(session domain.Session) {
	r.mu.Lock()
	r.active = &session
	r.mu.Unlock()
	r.publish()
}

func (r *Registry) ClearActive() {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	r.publish()
}

// Upsert replaces the entry with the same id or appends a new one
func (r *Registry) Upsert(session domain.Session) {
	r.mu.Lock()
	replaced := false
	for i := range r.all {
		if r.all[i].ID == session.ID {
			r.all[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		r.all = append(r.all, session)
	}
	r.mu.Unlock()
	r.publish()
}

// Remove drops a session by id, clearing it as active if it was
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	removed := false
	for i := range r.all {
		if r.all[i].ID == id {
			r.all = append(r.all[:i:i], r.all[i+1:]...)
			removed = true
			break
		}
	}
	if r.active != nil && r.active.ID == id {
		r.active = nil
		removed = true
	}
	r.mu.Unlock()

	if removed {
		r.publish()
	}
	return removed
}

func (r *Registry) Active() (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return domain.Session{}, false
	}
	return *r.active, true
}

// All returns a copy of the list
func (r *Registry) All() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Session(nil), r.all...)
}

func (r *Registry) ByID(id int64) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.all {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}

func (r *Registry) ByName(name string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.all {
		if s.Name == name {
			return s, true
		}
	}
	return domain.Session{}, false
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	snap := Snapshot{All: append([]domain.Session(nil), r.all...)}
	if r.active != nil {
		active := *r.active
		snap.Active = &active
	}
	return snap
}

// Subscribe returns a channel that receives a snapshot after every change.
// A subscriber that falls behind misses intermediate snapshots.
func (r *Registry) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	r.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (r *Registry) publish() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.subscribers) == 0 {
		return
	}

	snap := r.snapshotLocked()
	for _, ch := range r.subscribers {
		// Drop a stale pending snapshot in favor of the latest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

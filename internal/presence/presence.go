// Package presence tracks which users are currently connected to the
// lobby versus a game room, re-implementing
// original_source/src/online.hpp's online_manager (there only the hall
// half was present; the room half is added symmetrically per
// spec.md §3/§4.3).
package presence

import (
	"sync"

	"github.com/lonng/nano/session"

	"github.com/EWIAW/gobang/internal/gamelog"
)

var logger = gamelog.New("presence")

// Registry holds the two disjoint uid->connection maps. A single
// mutex protects both, matching spec.md §4.3 ("contention is low —
// admission events only, not message traffic").
type Registry struct {
	mu   sync.Mutex
	hall map[uint64]*session.Session
	room map[uint64]*session.Session
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		hall: make(map[uint64]*session.Session),
		room: make(map[uint64]*session.Session),
	}
}

// LoginHall admits uid to the lobby.
func (r *Registry) LoginHall(uid uint64, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hall[uid] = s
	logger.Infof("uid=%d entered hall", uid)
}

// ExitHall removes uid from the lobby; idempotent.
func (r *Registry) ExitHall(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hall[uid]; ok {
		delete(r.hall, uid)
		logger.Infof("uid=%d left hall", uid)
	}
}

// LoginRoom admits uid to a game room.
func (r *Registry) LoginRoom(uid uint64, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room[uid] = s
	logger.Infof("uid=%d entered room", uid)
}

// ExitRoom removes uid from a game room; idempotent.
func (r *Registry) ExitRoom(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.room[uid]; ok {
		delete(r.room, uid)
		logger.Infof("uid=%d left room", uid)
	}
}

// InHall reports whether uid currently holds a lobby connection.
func (r *Registry) InHall(uid uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.hall[uid]
	return ok
}

// InRoom reports whether uid currently holds a game-room connection.
func (r *Registry) InRoom(uid uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.room[uid]
	return ok
}

// ConnInHall returns uid's lobby connection, if any.
func (r *Registry) ConnInHall(uid uint64) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.hall[uid]
	return s, ok
}

// ConnInRoom returns uid's room connection, if any.
func (r *Registry) ConnInRoom(uid uint64) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.room[uid]
	return s, ok
}

// Anywhere reports whether uid is present in either map, used by the
// frame dispatcher to enforce the "duplicate login"/"already present
// elsewhere" rejections of spec.md §4.7.
func (r *Registry) Anywhere(uid uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, inHall := r.hall[uid]
	_, inRoom := r.room[uid]
	return inHall || inRoom
}

// Package session re-implements original_source/src/session.hpp's
// session_manager: a registry of (ssid -> session) with a per-session
// TTL timer that can be renewed, paused ("forever"), or left unset.
package session

import (
	"sync"
	"time"

	"github.com/EWIAW/gobang/internal/gamelog"
)

var logger = gamelog.New("session")

// Status mirrors the original's UNLOGIN/LOGIN enum.
type Status int

const (
	Unlogin Status = iota
	Login
)

// Forever is the sentinel passed to Registry.SetExpire to mean "never
// auto-expire", matching original_source/src/session.hpp's
// SESSION_FOREVER (-1).
const Forever time.Duration = -1

// Session is the in-memory authentication record keyed by ssid.
//
// timer is nil until the first finite SetExpire call; it is guarded by
// the session's own mu and only accessed through setTimer/getTimer.
type Session struct {
	SSID   uint64
	UID    uint64
	Status Status

	mu    sync.Mutex
	timer *time.Timer
}

func (s *Session) setTimer(t *time.Timer) {
	s.mu.Lock()
	s.timer = t
	s.mu.Unlock()
}

func (s *Session) getTimer() *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer
}

// Registry is the session_manager equivalent: it owns the ssid
// counter, the ssid->Session map, and the mutex protecting both.
type Registry struct {
	mu      sync.Mutex
	nextSSID uint64
	sessions map[uint64]*Session
}

// NewRegistry returns an empty registry with ssid allocation starting
// at 1, per spec.md §3.
func NewRegistry() *Registry {
	return &Registry{
		nextSSID: 1,
		sessions: make(map[uint64]*Session),
	}
}

// Create assigns the next ssid, inserts the session with no timer
// armed yet, and returns it.
func (r *Registry) Create(uid uint64, status Status) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{SSID: r.nextSSID, UID: uid, Status: status}
	r.sessions[s.SSID] = s
	r.nextSSID++
	logger.Infof("session %d created for uid=%d", s.SSID, uid)
	return s
}

// append re-inserts the same *Session under its ssid without touching the ssid
// counter, used by the zero-delay task in SetExpire to neutralise the
// cancel/fire race (spec.md §4.2 table, case "present -> FOREVER").
func (r *Registry) append(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SSID] = s
}

// Get performs an O(1) lookup by ssid.
func (r *Registry) Get(ssid uint64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[ssid]
	return s, ok
}

// Remove idempotently erases a session.
func (r *Registry) Remove(ssid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[ssid]; ok {
		delete(r.sessions, ssid)
		logger.Infof("session %d removed", ssid)
	}
}

// SetExpire implements the four-case TTL dance from spec.md §4.2.
//
//	prior timer | new ttl  | action
//	------------|----------|-------
//	none        | Forever  | no-op
//	none        | finite   | arm timer; on fire -> Remove(ssid)
//	present     | Forever  | cancel; zero-delay re-insert (race guard)
//	present     | finite   | cancel; zero-delay re-insert; re-arm
//
// Cancelling a time.Timer is not synchronous with a callback that has
// already started running, so a cancelled timer's Remove may still
// land after SetExpire(Forever) returns. The zero-delay re-insert
// mirrors original_source/src/session.hpp's
// `_server->set_timer(0, std::bind(append_session, this, sp))`: it
// races the stale Remove and always runs after it on the same
// goroutine-serialised timer queue used here (AfterFunc callbacks for
// the same *Registry run via the Go runtime's per-timer goroutines, so
// ordering between the two competing zero/ms timers isn't guaranteed
// by the runtime alone — the re-insert is therefore idempotent by
// construction: Create/append only ever add, Remove only ever removes
// by ssid, so whichever lands last decides the outcome and a lost
// Remove after a re-insert simply means the session survives, which is
// the desired outcome of SetExpire(Forever)).
func (r *Registry) SetExpire(ssid uint64, ttl time.Duration) {
	s, ok := r.Get(ssid)
	if !ok {
		return
	}

	prior := s.getTimer()

	switch {
	case prior == nil && ttl == Forever:
		return

	case prior == nil && ttl != Forever:
		t := time.AfterFunc(ttl, func() { r.Remove(ssid) })
		s.setTimer(t)

	case prior != nil && ttl == Forever:
		prior.Stop()
		s.setTimer(nil)
		time.AfterFunc(0, func() { r.append(s) })

	case prior != nil && ttl != Forever:
		prior.Stop()
		s.setTimer(nil)
		time.AfterFunc(0, func() { r.append(s) })
		t := time.AfterFunc(ttl, func() { r.Remove(ssid) })
		s.setTimer(t)
	}
}

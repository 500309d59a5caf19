package matchqueue

import (
	"github.com/lonng/nano/session"

	"github.com/EWIAW/gobang/internal/gamelog"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/protocol"
	"github.com/EWIAW/gobang/internal/room"
	"github.com/EWIAW/gobang/internal/store"
)

var logger = gamelog.New("matchqueue")

// Tier score boundaries from spec.md §3.
const (
	silverFloor = 2000
	goldFloor   = 3000
)

// ScoreLookup is the subset of store.Store the matcher needs to place
// a uid in the right tier.
type ScoreLookup interface {
	Lookup(uid uint64) (*store.User, error)
}

// RoomCreator is the subset of room.Registry the matcher needs.
type RoomCreator interface {
	CreateRoom(u1, u2 uint64) (*room.Room, bool)
}

// Matcher owns the three tiered queues and their workers, mirroring
// original_source/src/matcher.hpp's matcher class.
type Matcher struct {
	bronze *Queue
	silver *Queue
	gold   *Queue

	users    ScoreLookup
	presence *presence.Registry
	rooms    RoomCreator
}

// New starts the three tier workers and returns the Matcher. Workers
// run for the lifetime of the process, matching the original's three
// std::thread members launched from the constructor's initializer
// list.
func New(users ScoreLookup, presence *presence.Registry, rooms RoomCreator) *Matcher {
	m := &Matcher{
		bronze:   NewQueue(),
		silver:   NewQueue(),
		gold:     NewQueue(),
		users:    users,
		presence: presence,
		rooms:    rooms,
	}
	go m.run(m.bronze)
	go m.run(m.silver)
	go m.run(m.gold)
	logger.Infof("matchmaker started (bronze/silver/gold)")
	return m
}

// run is the per-tier worker loop of spec.md §4.4: wait for >=2
// waiters, pop both, validate presence, create the room, or
// re-enqueue survivors and restart on any failure.
func (m *Matcher) run(q *Queue) {
	for {
		q.WaitUntilAtLeast(2)

		u1, ok := q.Pop()
		if !ok {
			continue
		}
		u2, ok := q.Pop()
		if !ok {
			m.pushByScore(u1)
			continue
		}

		conn1, ok := m.presence.ConnInHall(u1)
		if !ok {
			m.pushByScore(u2)
			continue
		}
		conn2, ok := m.presence.ConnInHall(u2)
		if !ok {
			m.pushByScore(u1)
			continue
		}

		r, ok := m.rooms.CreateRoom(u1, u2)
		if !ok {
			m.pushByScore(u1)
			m.pushByScore(u2)
			continue
		}

		m.announce(conn1, conn2, r.ID())
	}
}

func (m *Matcher) announce(conn1, conn2 *session.Session, roomID uint64) {
	msg := &protocol.MatchSuccess{Optype: "match_success", Result: true}
	if err := conn1.Push("onMatchSuccess", msg); err != nil {
		logger.Errorf("match_success push to first seat of room %d failed: %v", roomID, err)
	}
	if err := conn2.Push("onMatchSuccess", msg); err != nil {
		logger.Errorf("match_success push to second seat of room %d failed: %v", roomID, err)
	}
}

func (m *Matcher) tierFor(score uint64) *Queue {
	switch {
	case score < silverFloor:
		return m.bronze
	case score < goldFloor:
		return m.silver
	default:
		return m.gold
	}
}

func (m *Matcher) pushByScore(uid uint64) {
	user, err := m.users.Lookup(uid)
	if err != nil {
		logger.Errorf("re-enqueue uid=%d: lookup failed: %v", uid, err)
		return
	}
	m.tierFor(user.Score).Push(uid)
}

// Add enqueues uid in the tier matching its current score, per
// spec.md §4.4.
func (m *Matcher) Add(uid uint64) bool {
	user, err := m.users.Lookup(uid)
	if err != nil {
		logger.Errorf("add uid=%d: lookup failed: %v", uid, err)
		return false
	}
	m.tierFor(user.Score).Push(uid)
	return true
}

// Del removes uid from the tier its current score maps to. A miss is
// treated as a successful idempotent cancel (spec.md §4.4).
func (m *Matcher) Del(uid uint64) bool {
	user, err := m.users.Lookup(uid)
	if err != nil {
		logger.Errorf("del uid=%d: lookup failed: %v", uid, err)
		return false
	}
	m.tierFor(user.Score).Remove(uid)
	return true
}

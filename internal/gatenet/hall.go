// Package gatenet wires spec.md §4.7's frame dispatcher on top of
// github.com/lonng/nano, the persistent-connection framing layer the
// spec treats as an external collaborator. HallGate and RoomGate are
// nano components (the teacher's internal/game.Manager is the model
// for this shape: component.Base, AfterInit registering a
// session.Lifetime.OnClosed hook, handler methods keyed on
// *session.Session).
package gatenet

import (
	"github.com/lonng/nano/component"
	"github.com/lonng/nano/session"
	"github.com/pkg/errors"

	"github.com/EWIAW/gobang/internal/config"
	"github.com/EWIAW/gobang/internal/gamelog"
	"github.com/EWIAW/gobang/internal/matchqueue"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/protocol"
	sessionpkg "github.com/EWIAW/gobang/internal/session"
)

var logger = gamelog.New("gatenet")

// stage values stored on a nano session via Set/Value to remember
// which half of the dispatcher (hall or room) owns the connection, so
// the single global session.Lifetime.OnClosed hook can route a close
// event without needing per-path callbacks.
const (
	stageKey  = "stage"
	stageHall = "hall"
	stageRoom = "room"
	uidKey    = "ssid-uid"
)

// HallGate implements the /hall half of spec.md §4.7: duplicate-login
// rejection, lobby admission, and match_start/match_stop relay to the
// matchmaker.
type HallGate struct {
	component.Base

	sessions *sessionpkg.Registry
	presence *presence.Registry
	matcher  *matchqueue.Matcher
	cfg      config.SessionConfig
}

// NewHallGate wires the lobby half of the dispatcher.
func NewHallGate(sessions *sessionpkg.Registry, presence *presence.Registry, matcher *matchqueue.Matcher, cfg config.SessionConfig) *HallGate {
	return &HallGate{sessions: sessions, presence: presence, matcher: matcher, cfg: cfg}
}

// AfterInit registers the close hook that plays the role of the
// original framing layer's "close" callback on /hall connections.
func (h *HallGate) AfterInit() {
	session.Lifetime.OnClosed(func(s *session.Session) {
		if s.Value(stageKey) != stageHall {
			return
		}
		uid, _ := s.Value(uidKey).(uint64)
		h.presence.ExitHall(uid)
		if ssid, ok := s.Value("ssid").(uint64); ok {
			h.sessions.SetExpire(ssid, h.cfg.HallTimeout)
		}
		logger.Infof("hall connection closed for uid=%d", uid)
	})
}

// Enter resolves the session's SSID cookie and admits the connection
// to the lobby, or rejects a duplicate login, per spec.md §4.7
// ("open on path /hall").
func (h *HallGate) Enter(s *session.Session, req *protocol.HallEnterRequest) error {
	sess, ok := h.sessions.Get(req.SSID)
	if !ok || sess.Status != sessionpkg.Login {
		return s.Response(&protocol.HallReady{Optype: "hall_ready", Result: false, Reason: "unknown or expired session"})
	}

	if h.presence.Anywhere(sess.UID) {
		return s.Response(&protocol.HallReady{Optype: "hall_ready", Result: false, Reason: "duplicate login"})
	}

	if err := s.Bind(int64(sess.UID)); err != nil {
		return errors.Wrap(err, "bind session")
	}
	s.Set(stageKey, stageHall)
	s.Set(uidKey, sess.UID)
	s.Set("ssid", req.SSID)

	h.presence.LoginHall(sess.UID, s)
	h.sessions.SetExpire(req.SSID, h.cfg.HallTimeout)

	return s.Response(&protocol.HallReady{Optype: "hall_ready", Result: true})
}

// MatchStart enqueues the caller in the matchmaker.
func (h *HallGate) MatchStart(s *session.Session, req *protocol.MatchRequest) error {
	uid, ok := s.Value(uidKey).(uint64)
	if !ok {
		return s.Response(&protocol.MatchAck{Optype: "match_start", Result: false, Reason: "not in hall"})
	}
	ok = h.matcher.Add(uid)
	return s.Response(&protocol.MatchAck{Optype: "match_start", Result: ok})
}

// MatchStop cancels a pending match request for the caller.
func (h *HallGate) MatchStop(s *session.Session, req *protocol.MatchRequest) error {
	uid, ok := s.Value(uidKey).(uint64)
	if !ok {
		return s.Response(&protocol.MatchAck{Optype: "match_stop", Result: false, Reason: "not in hall"})
	}
	ok = h.matcher.Del(uid)
	return s.Response(&protocol.MatchAck{Optype: "match_stop", Result: ok})
}

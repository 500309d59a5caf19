package gatenet

import (
	"github.com/lonng/nano/component"
	"github.com/lonng/nano/session"

	"github.com/EWIAW/gobang/internal/config"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/protocol"
	"github.com/EWIAW/gobang/internal/room"
	sessionpkg "github.com/EWIAW/gobang/internal/session"
)

// RoomGate implements the /room half of spec.md §4.7: admission to an
// already-created room, put_chess/chat relay, and disconnect-forfeit
// wiring on close.
type RoomGate struct {
	component.Base

	sessions *sessionpkg.Registry
	presence *presence.Registry
	rooms    *room.Registry
	cfg      config.SessionConfig
}

// NewRoomGate wires the game-room half of the dispatcher.
func NewRoomGate(sessions *sessionpkg.Registry, presence *presence.Registry, rooms *room.Registry, cfg config.SessionConfig) *RoomGate {
	return &RoomGate{sessions: sessions, presence: presence, rooms: rooms, cfg: cfg}
}

// AfterInit registers the close hook: exit room presence, refresh TTL
// to finite, and let the room registry run forfeit/teardown logic,
// matching spec.md §4.7's "close on path /room".
func (g *RoomGate) AfterInit() {
	session.Lifetime.OnClosed(func(s *session.Session) {
		if s.Value(stageKey) != stageRoom {
			return
		}
		uid, _ := s.Value(uidKey).(uint64)
		g.presence.ExitRoom(uid)
		if ssid, ok := s.Value("ssid").(uint64); ok {
			g.sessions.SetExpire(ssid, g.cfg.HallTimeout)
		}
		g.rooms.RemoveUser(uid, s)
		logger.Infof("room connection closed for uid=%d", uid)
	})
}

// Enter resolves the session's SSID, rejects callers who are present
// anywhere else, looks up the caller's room, and admits the
// connection, per spec.md §4.7 ("open on path /room").
func (g *RoomGate) Enter(s *session.Session, req *protocol.RoomEnterRequest) error {
	sess, ok := g.sessions.Get(req.SSID)
	if !ok || sess.Status != sessionpkg.Login {
		return s.Response(&protocol.RoomReady{Optype: "room_ready", Result: false, Reason: "unknown or expired session"})
	}

	if g.presence.Anywhere(sess.UID) {
		return s.Response(&protocol.RoomReady{Optype: "room_ready", Result: false, Reason: "duplicate login"})
	}

	r, ok := g.rooms.LookupByUser(sess.UID)
	if !ok {
		return s.Response(&protocol.RoomReady{Optype: "room_ready", Result: false, Reason: "no active room"})
	}

	if err := s.Bind(int64(sess.UID)); err != nil {
		return s.Response(&protocol.RoomReady{Optype: "room_ready", Result: false, Reason: "bind failed"})
	}
	s.Set(stageKey, stageRoom)
	s.Set(uidKey, sess.UID)
	s.Set("ssid", req.SSID)

	g.presence.LoginRoom(sess.UID, s)
	g.sessions.SetExpire(req.SSID, sessionpkg.Forever)
	if err := r.Join(s); err != nil {
		logger.Errorf("join room group failed for uid=%d: %v", sess.UID, err)
	}

	return s.Response(&protocol.RoomReady{
		Optype: "room_ready", Result: true,
		RoomID: r.ID(), UID: sess.UID, WhiteID: r.WhiteID(), BlackID: r.BlackID(),
	})
}

// PutChess relays a move to the caller's room.
func (g *RoomGate) PutChess(s *session.Session, req *protocol.RoomRequest) error {
	uid, ok := s.Value(uidKey).(uint64)
	if !ok {
		return nil
	}
	r, ok := g.rooms.LookupByUser(uid)
	if !ok {
		return nil
	}
	req.Optype = "put_chess"
	r.HandleRequest(req)
	return nil
}

// Chat relays a chat message to the caller's room.
func (g *RoomGate) Chat(s *session.Session, req *protocol.RoomRequest) error {
	uid, ok := s.Value(uidKey).(uint64)
	if !ok {
		return nil
	}
	r, ok := g.rooms.LookupByUser(uid)
	if !ok {
		return nil
	}
	req.Optype = "chat"
	r.HandleRequest(req)
	return nil
}

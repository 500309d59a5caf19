// Package room re-implements original_source/src/room.hpp's room and
// room_manager: authoritative board state, move validation, win
// detection, chat filtering, disconnect-forfeit, and persistence of
// match outcomes.
package room

import (
	"strconv"
	"sync"

	"github.com/lonng/nano"
	"github.com/lonng/nano/session"
	"github.com/pborman/uuid"

	"github.com/EWIAW/gobang/internal/board"
	"github.com/EWIAW/gobang/internal/gamelog"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/protocol"
)

var logger = gamelog.New("room")

// Status mirrors original_source/src/room.hpp's room_status enum.
// Transitions only ever go GameStart -> GameOver (spec.md §4.5).
type Status int

const (
	GameStart Status = iota + 1
	GameOver
)

// UserStore is the subset of store.Store a Room needs, narrowed to an
// interface so room tests can supply a fake.
type UserStore interface {
	RecordWin(uid uint64) error
	RecordLoss(uid uint64) error
}

// ChatFilter reports whether msg should be rejected as containing a
// forbidden word. Parameterised per spec.md §9 ("extensibility...
// unspecified — keep it as a parameterised predicate").
type ChatFilter func(msg string) bool

// Room is one match between a white and a black seat.
type Room struct {
	mu sync.Mutex

	id     uint64
	white  uint64
	black  uint64
	count  int
	status Status
	board  *board.Board

	presence *presence.Registry
	users    UserStore
	filter   ChatFilter
	group    *nano.Group
}

func newRoom(id uint64, presence *presence.Registry, users UserStore, filter ChatFilter) *Room {
	return &Room{
		id:       id,
		status:   GameStart,
		board:    board.New(),
		presence: presence,
		users:    users,
		filter:   filter,
		group:    nano.NewGroup(groupName(id)),
	}
}

func groupName(id uint64) string {
	return "room-" + strconv.FormatUint(id, 10)
}

// ID returns the room's id.
func (r *Room) ID() uint64 {
	return r.id
}

// WhiteID returns the white seat's uid.
func (r *Room) WhiteID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.white
}

// BlackID returns the black seat's uid.
func (r *Room) BlackID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.black
}

// PlayerCount returns how many of the two seats are still occupied.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// AddWhite seats uid as white. Called once by the matchmaker.
func (r *Room) AddWhite(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.white = uid
	r.count++
}

// AddBlack seats uid as black. Called once by the matchmaker.
func (r *Room) AddBlack(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.black = uid
	r.count++
}

// Join adds s to the room's broadcast group, used once a player's
// /room connection is admitted (spec.md §4.7 "open on path /room").
func (r *Room) Join(s *session.Session) error {
	return r.group.Add(s)
}

// Leave removes s from the room's broadcast group, used when a
// player's /room connection closes, matching the teacher's
// session.Lifetime.OnClosed -> group.Leave(s) pattern. A session that
// was never joined (e.g. in tests) is a no-op.
func (r *Room) Leave(s *session.Session) {
	if err := r.group.Leave(s); err != nil {
		logger.Errorf("room %d leave failed: %v", r.id, err)
	}
}

// HandleRequest is the entry point for in-room messages (spec.md
// §4.5). It verifies room_id, dispatches on optype, and always
// broadcasts the result so both seats stay synchronised.
func (r *Room) HandleRequest(req *protocol.RoomRequest) {
	if req.RoomID != r.id {
		r.broadcast(&protocol.RoomResponse{
			Optype: req.Optype,
			Result: false,
			Reason: "room id mismatch",
			RoomID: req.RoomID,
		})
		return
	}

	switch req.Optype {
	case "put_chess":
		r.handleChess(req)
	case "chat":
		r.handleChat(req)
	default:
		r.broadcast(&protocol.RoomResponse{
			Optype: req.Optype,
			Result: false,
			Reason: "unknown optype",
			RoomID: r.id,
		})
	}
}

func (r *Room) handleChess(req *protocol.RoomRequest) {
	r.mu.Lock()

	// GameOver is terminal: no further stones are placed.
	if r.status != GameStart {
		r.mu.Unlock()
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: false, Reason: "game over",
			RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col,
		})
		return
	}

	// Step 1: a disconnected opponent is an immediate forfeit, caught
	// at move time per spec.md §4.5 step 1.
	if !r.presence.InRoom(r.white) {
		winner := r.black
		r.finishLocked(winner, r.white)
		r.mu.Unlock()
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: true, Reason: "opponent disconnected",
			RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col, Winner: winner,
			TraceID: uuid.New(),
		})
		return
	}
	if !r.presence.InRoom(r.black) {
		winner := r.white
		r.finishLocked(winner, r.black)
		r.mu.Unlock()
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: true, Reason: "opponent disconnected",
			RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col, Winner: winner,
			TraceID: uuid.New(),
		})
		return
	}

	if !board.InBounds(req.Row, req.Col) {
		r.mu.Unlock()
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: false, Reason: "cell out of bounds",
			RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col,
		})
		return
	}
	if r.board.Occupied(req.Row, req.Col) {
		r.mu.Unlock()
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: false, Reason: "cell occupied",
			RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col,
		})
		return
	}

	stone := board.White
	if req.UID != r.white {
		stone = board.Black
	}
	r.board.Place(req.Row, req.Col, stone)

	var winner uint64
	wins := r.board.Wins(req.Row, req.Col, stone)
	if wins {
		winner = req.UID
		loser := r.black
		if winner == r.black {
			loser = r.white
		}
		r.finishLocked(winner, loser)
	}
	r.mu.Unlock()

	resp := &protocol.RoomResponse{
		Optype: "put_chess", Result: true,
		RoomID: r.id, UID: req.UID, Row: req.Row, Col: req.Col, Winner: winner,
	}
	if wins {
		resp.Reason = "five in a row"
		resp.TraceID = uuid.New()
	}
	r.broadcast(resp)
}

// finishLocked transitions GameStart -> GameOver and persists the
// outcome exactly once, resolving the double-persist bug noted in
// spec.md §9. Callers must hold r.mu.
func (r *Room) finishLocked(winner, loser uint64) {
	if r.status != GameStart {
		return
	}
	r.status = GameOver
	if err := r.users.RecordWin(winner); err != nil {
		logger.Errorf("record win for uid=%d: %v", winner, err)
	}
	if err := r.users.RecordLoss(loser); err != nil {
		logger.Errorf("record loss for uid=%d: %v", loser, err)
	}
}

func (r *Room) handleChat(req *protocol.RoomRequest) {
	if r.filter != nil && r.filter(req.Message) {
		r.broadcast(&protocol.RoomResponse{
			Optype: "chat", Result: false, Reason: "contains forbidden word",
			RoomID: r.id, UID: req.UID,
		})
		return
	}
	r.broadcast(&protocol.RoomResponse{
		Optype: "chat", Result: true,
		RoomID: r.id, UID: req.UID, Message: req.Message,
	})
}

// HandleExit processes a player's room connection closing (spec.md
// §4.5 "Exit protocol"). If the game was still live, the leaver
// forfeits and a synthetic put_chess broadcast announces it. s is the
// leaver's connection, removed from the broadcast group before the
// announcement goes out so the closed connection never receives it; s
// may be nil in tests that never joined a group.
func (r *Room) HandleExit(uid uint64, s *session.Session) {
	r.mu.Lock()
	var (
		broadcastNeeded bool
		winner          uint64
	)
	if r.status == GameStart {
		winner = r.black
		loser := uid
		if uid == r.black {
			winner = r.white
		}
		r.finishLocked(winner, loser)
		broadcastNeeded = true
	}
	r.count--
	r.mu.Unlock()

	if s != nil {
		r.Leave(s)
	}

	if broadcastNeeded {
		r.broadcast(&protocol.RoomResponse{
			Optype: "put_chess", Result: true, Reason: "opponent disconnected",
			RoomID: r.id, UID: uid, Row: -1, Col: -1, Winner: winner,
			TraceID: uuid.New(),
		})
	}
}

func (r *Room) broadcast(resp *protocol.RoomResponse) {
	if err := r.group.Broadcast("onRoomResponse", resp); err != nil {
		logger.Errorf("room %d broadcast failed: %v", r.id, err)
	}
}

// Registry owns (room id -> Room) and (uid -> room id), mirroring
// original_source/src/room.hpp's room_manager.
type Registry struct {
	mu       sync.Mutex
	nextID   uint64
	rooms    map[uint64]*Room
	byUser   map[uint64]uint64
	presence *presence.Registry
	users    UserStore
	filter   ChatFilter
}

// NewRegistry returns an empty room registry.
func NewRegistry(presence *presence.Registry, users UserStore, filter ChatFilter) *Registry {
	return &Registry{
		nextID:   1,
		rooms:    make(map[uint64]*Room),
		byUser:   make(map[uint64]uint64),
		presence: presence,
		users:    users,
		filter:   filter,
	}
}

// CreateRoom verifies both users are presently in the lobby, then
// allocates a room, seats u1 white / u2 black, and inserts the
// forward and reverse mappings, all under the registry lock.
func (reg *Registry) CreateRoom(u1, u2 uint64) (*Room, bool) {
	if !reg.presence.InHall(u1) || !reg.presence.InHall(u2) {
		return nil, false
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := newRoom(reg.nextID, reg.presence, reg.users, reg.filter)
	r.AddWhite(u1)
	r.AddBlack(u2)
	reg.rooms[r.id] = r
	reg.byUser[u1] = r.id
	reg.byUser[u2] = r.id
	reg.nextID++
	logger.Infof("room %d created: white=%d black=%d", r.id, u1, u2)
	return r, true
}

// LookupByRoom returns the room with the given id.
func (reg *Registry) LookupByRoom(id uint64) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[id]
	return r, ok
}

// LookupByUser returns the room uid currently occupies, if any.
func (reg *Registry) LookupByUser(uid uint64) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.byUser[uid]
	if !ok {
		return nil, false
	}
	r, ok := reg.rooms[id]
	return r, ok
}

// RemoveRoom erases the forward and both reverse mappings atomically
// and closes the room's broadcast group, matching the teacher's
// group.Close() on teardown so a finished room leaks neither map
// entries nor its nano.Group.
func (reg *Registry) RemoveRoom(id uint64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[id]
	if !ok {
		return
	}
	delete(reg.byUser, r.WhiteID())
	delete(reg.byUser, r.BlackID())
	delete(reg.rooms, id)
	if err := r.group.Close(); err != nil {
		logger.Errorf("room %d group close failed: %v", id, err)
	}
	logger.Infof("room %d removed", id)
}

// RemoveUser handles a room-stage connection closing: it runs
// HandleExit (which leaves s from the room's broadcast group) on the
// user's room and, if that empties the room, removes it. Called by
// the frame dispatcher on /room close.
func (reg *Registry) RemoveUser(uid uint64, s *session.Session) {
	r, ok := reg.LookupByUser(uid)
	if !ok {
		return
	}
	r.HandleExit(uid, s)
	if r.PlayerCount() == 0 {
		reg.RemoveRoom(r.ID())
	}
}

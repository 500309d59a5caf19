package room

import (
	"sync"
	"testing"

	"github.com/EWIAW/gobang/internal/board"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/protocol"
)

type recordingStore struct {
	mu    sync.Mutex
	wins  []uint64
	loses []uint64
}

func (s *recordingStore) RecordWin(uid uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins = append(s.wins, uid)
	return nil
}

func (s *recordingStore) RecordLoss(uid uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loses = append(s.loses, uid)
	return nil
}

func newTestRoom(t *testing.T, pres *presence.Registry, users UserStore, filter ChatFilter) *Room {
	t.Helper()
	reg := NewRegistry(pres, users, filter)
	r, ok := reg.CreateRoom(1, 2)
	if !ok {
		t.Fatalf("CreateRoom failed, both users should have been in the lobby")
	}
	return r
}

func presentBoth(pres *presence.Registry) {
	pres.LoginHall(1, nil)
	pres.LoginHall(2, nil)
}

func TestCreateRoomRequiresBothInLobby(t *testing.T) {
	pres := presence.NewRegistry()
	reg := NewRegistry(pres, &recordingStore{}, nil)

	if _, ok := reg.CreateRoom(1, 2); ok {
		t.Fatalf("CreateRoom must fail when neither user is in the lobby")
	}

	pres.LoginHall(1, nil)
	if _, ok := reg.CreateRoom(1, 2); ok {
		t.Fatalf("CreateRoom must fail when only one user is in the lobby")
	}
}

func TestPutChessOccupiedCell(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	r := newTestRoom(t, pres, &recordingStore{}, nil)
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 1, Row: 7, Col: 7})

	before := r.board.At(7, 7)
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 2, Row: 7, Col: 7})
	after := r.board.At(7, 7)

	if before != board.White || after != board.White {
		t.Fatalf("second move onto an occupied cell must not change the board: before=%v after=%v", before, after)
	}
}

func TestPutChessPlacesCorrectColor(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	r := newTestRoom(t, pres, &recordingStore{}, nil)
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 1, Row: 3, Col: 3})
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 2, Row: 4, Col: 4})

	if r.board.At(3, 3) != board.White {
		t.Fatalf("white seat's move must place a white stone")
	}
	if r.board.At(4, 4) != board.Black {
		t.Fatalf("black seat's move must place a black stone")
	}
}

func TestPutChessDetectsWinAndPersistsOnce(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	st := &recordingStore{}
	r := newTestRoom(t, pres, st, nil)

	// White (uid 1) builds four in a row at cols 4..7 of row 7, black
	// plays elsewhere each turn, white completes the five at col 8.
	moves := []struct {
		uid      uint64
		row, col int
	}{
		{1, 7, 4}, {2, 0, 0},
		{1, 7, 5}, {2, 0, 1},
		{1, 7, 6}, {2, 0, 2},
		{1, 7, 7}, {2, 0, 3},
		{1, 7, 8},
	}
	for _, m := range moves {
		r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: m.uid, Row: m.row, Col: m.col})
	}

	if r.status != GameOver {
		t.Fatalf("expected room to transition to GameOver after a win")
	}
	if len(st.wins) != 1 || st.wins[0] != 1 {
		t.Fatalf("expected exactly one win recorded for uid 1, got %v", st.wins)
	}
	if len(st.loses) != 1 || st.loses[0] != 2 {
		t.Fatalf("expected exactly one loss recorded for uid 2, got %v", st.loses)
	}

	// A further put_chess after game over must not place a stone or
	// persist another outcome (terminal state is absorbing).
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 2, Row: 1, Col: 1})
	if r.board.Occupied(1, 1) {
		t.Fatalf("game-over room must not place a further stone")
	}
	if len(st.wins) != 1 || len(st.loses) != 1 {
		t.Fatalf("game-over room must not persist a second outcome")
	}
}

func TestHandleChessForfeitsOnOpponentDisconnect(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil) // only white is in the room

	st := &recordingStore{}
	r := newTestRoom(t, pres, st, nil)

	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID(), UID: 1, Row: 7, Col: 7})

	if r.status != GameOver {
		t.Fatalf("expected forfeit to end the game")
	}
	if len(st.wins) != 1 || st.wins[0] != 1 {
		t.Fatalf("expected the present player (uid 1) to be recorded as the winner, got %v", st.wins)
	}
	if len(st.loses) != 1 || st.loses[0] != 2 {
		t.Fatalf("expected the absent player (uid 2) to be recorded as the loser, got %v", st.loses)
	}
}

func TestHandleExitForfeitsLiveGame(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	st := &recordingStore{}
	r := newTestRoom(t, pres, st, nil)

	r.HandleExit(2, nil) // black leaves

	if r.status != GameOver {
		t.Fatalf("expected HandleExit during GameStart to end the game")
	}
	if len(st.wins) != 1 || st.wins[0] != 1 {
		t.Fatalf("expected white (uid 1) to win by forfeit, got %v", st.wins)
	}
	if r.PlayerCount() != 1 {
		t.Fatalf("expected player count to drop to 1 after one exit, got %d", r.PlayerCount())
	}

	// Draining the second player must not re-trigger forfeit logic.
	r.HandleExit(1, nil)
	if len(st.wins) != 1 {
		t.Fatalf("draining the remaining player must not persist a second outcome")
	}
	if r.PlayerCount() != 0 {
		t.Fatalf("expected player count to reach 0, got %d", r.PlayerCount())
	}
}

func TestChatBlacklist(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	filter := NewBlacklistFilter(DefaultBlacklist)
	r := newTestRoom(t, pres, &recordingStore{}, filter)

	if !filter("这是垃圾消息") {
		t.Fatalf("expected the blacklist filter to catch the forbidden word")
	}
	if filter("hello there") {
		t.Fatalf("expected a clean message to pass the filter")
	}

	// HandleRequest must not panic on chat optype regardless of filter
	// outcome (broadcast happens on an empty group, which is a no-op).
	r.HandleRequest(&protocol.RoomRequest{Optype: "chat", RoomID: r.ID(), UID: 1, Message: "hello"})
}

func TestRoomIDMismatchDoesNotMutateBoard(t *testing.T) {
	pres := presence.NewRegistry()
	presentBoth(pres)
	pres.LoginRoom(1, nil)
	pres.LoginRoom(2, nil)

	r := newTestRoom(t, pres, &recordingStore{}, nil)
	r.HandleRequest(&protocol.RoomRequest{Optype: "put_chess", RoomID: r.ID() + 1, UID: 1, Row: 7, Col: 7})

	if r.board.Occupied(7, 7) {
		t.Fatalf("a mismatched room_id must not be allowed to mutate the board")
	}
}

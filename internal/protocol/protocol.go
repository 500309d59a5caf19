// Package protocol defines the JSON wire messages exchanged on the
// HTTP surface and the two persistent-connection paths (/hall, /room),
// matching spec.md §6. The original server (original_source/src/*.hpp)
// builds these ad hoc with jsoncpp's Json::Value; the teacher's own
// go-mahjong-server/protocol package (referenced throughout
// internal/game/*.go but not among the retrieved files) takes the
// typed-struct approach we follow here.
package protocol

// --- HTTP surface ---

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /login; on success a Set-Cookie:
// SSID=<value> header accompanies it, where value is the ssid sealed
// with xxtea and base64url-encoded.
type LoginResponse struct {
	Result bool   `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// RegisterRequest is the body of POST /reg.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned from POST /reg.
type RegisterResponse struct {
	Result bool   `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// InformationResponse is returned from GET /information.
type InformationResponse struct {
	ID         uint64 `json:"id"`
	Username   string `json:"username"`
	Score      uint64 `json:"score"`
	TotalCount uint32 `json:"total_count"`
	WinCount   uint32 `json:"win_count"`
}

// --- lobby (/hall) ---

// HallEnterRequest is sent immediately after the persistent connection
// opens, standing in for the original framing layer's "opened on path
// /hall" callback: the client presents the SSID cookie value it
// already holds from POST /login, since nano dispatches by route
// rather than by URL path.
type HallEnterRequest struct {
	SSID uint64 `json:"ssid"`
}

// HallReady is sent once a connection is admitted to the lobby.
type HallReady struct {
	Optype string `json:"optype"`
	Result bool   `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// MatchRequest is the client->server message on /hall: optype is
// "match_start" or "match_stop".
type MatchRequest struct {
	Optype string `json:"optype"`
}

// MatchAck acknowledges a match_start/match_stop request.
type MatchAck struct {
	Optype string `json:"optype"`
	Result bool   `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// MatchSuccess is broadcast to both paired players once a room exists.
type MatchSuccess struct {
	Optype  string `json:"optype"`
	Result  bool   `json:"result"`
	TraceID string `json:"trace_id,omitempty"`
}

// --- game room (/room) ---

// RoomEnterRequest is sent immediately after the persistent connection
// opens, standing in for "opened on path /room" (see HallEnterRequest
// for why the SSID travels in the payload rather than a transport
// cookie).
type RoomEnterRequest struct {
	SSID uint64 `json:"ssid"`
}

// RoomReady is sent once a connection is admitted to its room.
type RoomReady struct {
	Optype  string `json:"optype"`
	Result  bool   `json:"result"`
	Reason  string `json:"reason,omitempty"`
	RoomID  uint64 `json:"room_id,omitempty"`
	UID     uint64 `json:"uid,omitempty"`
	WhiteID uint64 `json:"white_id,omitempty"`
	BlackID uint64 `json:"black_id,omitempty"`
}

// RoomRequest is the client->server envelope for /room; Optype selects
// PutChess or Chat handling, the remaining fields are interpreted
// according to Optype.
type RoomRequest struct {
	Optype string `json:"optype"`
	RoomID uint64 `json:"room_id"`
	UID    uint64 `json:"uid"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Message string `json:"message"`
}

// RoomResponse is the broadcast reply for every /room optype.
type RoomResponse struct {
	Optype  string `json:"optype"`
	Result  bool   `json:"result"`
	Reason  string `json:"reason,omitempty"`
	RoomID  uint64 `json:"room_id,omitempty"`
	UID     uint64 `json:"uid,omitempty"`
	Row     int    `json:"row,omitempty"`
	Col     int    `json:"col,omitempty"`
	Winner  uint64 `json:"winner"`
	Message string `json:"message,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

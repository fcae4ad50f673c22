package gamedto

import "encoding/json"

// Client→server event types.
const (
	EvtCreateRoom = "create_room"
	EvtJoinRoom   = "join_room"
	EvtMakeMove   = "make_move"
	EvtBattleMove = "battle_move"
	EvtGameEnd    = "game_end"
	EvtLeaveRoom  = "leave_room"
)

// Server→client event types.
const (
	EvtAuthenticated      = "authenticated"
	EvtRoomCreated        = "room_created"
	EvtGameStart          = "game_start"
	EvtOpponentMove       = "opponent_move"
	EvtMoveAccepted       = "move_accepted"
	EvtBattleResolved     = "battle_resolved"
	EvtGameEnded          = "game_ended"
	EvtPlayerDisconnected = "player_disconnected"
	EvtError              = "error"
)

// Envelope is the tagged frame every client message arrives in. Data is
// decoded per Type; unknown types and malformed payloads are rejected
// before reaching game logic.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the outbound counterpart.
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client→server payloads.

type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

type MakeMoveRequest struct {
	RoomID     string     `json:"room_id"`
	Move       Move       `json:"move"`
	GameState  BoardState `json:"game_state"`
	MoveNumber int        `json:"move_number"`
}

type BattleMoveRequest struct {
	RoomID     string     `json:"room_id"`
	Attacker   PieceState `json:"attacker"`
	Defender   PieceState `json:"defender"`
	MoveNumber int        `json:"move_number"`
}

type GameEndRequest struct {
	RoomID    string     `json:"room_id"`
	Winner    Side       `json:"winner"`
	GameState BoardState `json:"game_state"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"room_id"`
}

// Server→client payloads.

type AuthenticatedEvent struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

type RoomCreatedEvent struct {
	RoomID string `json:"room_id"`
	Role   Side   `json:"role"`
}

type PlayerInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Side     Side   `json:"side"`
}

type GameStartEvent struct {
	RoomID  string       `json:"room_id"`
	Players []PlayerInfo `json:"players"`
}

type OpponentMoveEvent struct {
	Move       Move       `json:"move"`
	GameState  BoardState `json:"game_state"`
	Player     Side       `json:"player"`
	MoveNumber int        `json:"move_number"`
}

type MoveAcceptedEvent struct {
	RoomID     string `json:"room_id"`
	MoveNumber int    `json:"move_number"`
}

type BattleResolvedEvent struct {
	BattleResult BattleResult `json:"battle_result"`
	Points       Points       `json:"points"`
	Player       Side         `json:"player"`
	MoveNumber   int          `json:"move_number"`
}

type GameEndedEvent struct {
	Winner    Side       `json:"winner"`
	GameState BoardState `json:"game_state,omitempty"`
}

type PlayerDisconnectedEvent struct {
	Player Side `json:"player"`
}

type ErrorEvent struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/BattleChess-Server/internal/auth"
	"github.com/park285/BattleChess-Server/internal/msgcat"
	"github.com/park285/BattleChess-Server/internal/obslog"
	"github.com/park285/BattleChess-Server/internal/record"
	"github.com/park285/BattleChess-Server/internal/room"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

const sendTimeout = 5 * time.Second

// Handler owns the per-connection protocol state machine. Shared state
// (registry, rooms) is injected, never ambient.
type Handler struct {
	auth    *auth.Store
	rooms   *room.Registry
	records record.Gateway
	cat     *msgcat.Catalog

	conns atomic.Int64
}

func NewHandler(authStore *auth.Store, rooms *room.Registry, records record.Gateway, cat *msgcat.Catalog) *Handler {
	return &Handler{auth: authStore, rooms: rooms, records: records, cat: cat}
}

// Connections reports the number of live websocket connections.
func (h *Handler) Connections() int64 { return h.conns.Load() }

// ServeHTTP upgrades the connection, authenticates it, then runs the event
// loop until the peer goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.Error(err))
		return
	}

	ctx := r.Context()
	sink := newWSSink(conn)

	token := strings.TrimSpace(r.Header.Get("X-Session-Id"))
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("session"))
	}

	authCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	identity, err := h.auth.Resolve(authCtx, token)
	cancel()
	if err != nil {
		_ = sink.Send(ctx, gamedto.ServerEvent{
			Type: gamedto.EvtAuthenticated,
			Data: gamedto.AuthenticatedEvent{Success: false},
		})
		_ = conn.Close(websocket.StatusPolicyViolation, "unauthenticated")
		if !errors.Is(err, auth.ErrNoSession) {
			obslog.L().Warn("ws_auth_error", zap.Error(err))
		}
		return
	}

	cl := &client{user: *identity, sink: sink}
	if err := sink.Send(ctx, gamedto.ServerEvent{
		Type: gamedto.EvtAuthenticated,
		Data: gamedto.AuthenticatedEvent{Success: true, UserID: identity.UserID, Username: identity.Username},
	}); err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "write failed")
		return
	}

	h.conns.Add(1)
	obslog.L().Info("ws_connect", zap.String("user_id", identity.UserID))
	defer func() {
		h.conns.Add(-1)
		h.handleDisconnect(cl)
		obslog.L().Info("ws_disconnect", zap.String("user_id", identity.UserID))
	}()

	for {
		var env gamedto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "bye")
			return
		}
		h.dispatch(ctx, cl, env)
	}
}

// dispatch routes one inbound envelope. Every rejection is a structured
// error to this connection only; nothing here is fatal to the room.
func (h *Handler) dispatch(ctx context.Context, cl *client, env gamedto.Envelope) {
	switch env.Type {
	case gamedto.EvtCreateRoom:
		h.handleCreateRoom(ctx, cl)
	case gamedto.EvtJoinRoom:
		var req gamedto.JoinRoomRequest
		if !h.decode(ctx, cl, env.Data, &req) {
			return
		}
		h.handleJoinRoom(ctx, cl, req)
	case gamedto.EvtMakeMove:
		var req gamedto.MakeMoveRequest
		if !h.decode(ctx, cl, env.Data, &req) {
			return
		}
		h.handleMakeMove(ctx, cl, req)
	case gamedto.EvtBattleMove:
		var req gamedto.BattleMoveRequest
		if !h.decode(ctx, cl, env.Data, &req) {
			return
		}
		h.handleBattleMove(ctx, cl, req)
	case gamedto.EvtGameEnd:
		var req gamedto.GameEndRequest
		if !h.decode(ctx, cl, env.Data, &req) {
			return
		}
		h.handleGameEnd(ctx, cl, req)
	case gamedto.EvtLeaveRoom:
		var req gamedto.LeaveRoomRequest
		if !h.decode(ctx, cl, env.Data, &req) {
			return
		}
		h.handleLeaveRoom(ctx, cl, req.RoomID)
	default:
		h.sendError(ctx, cl, gamedto.CodeMalformedPayload, nil)
	}
}

// decode strictly unmarshals a payload; unknown fields are rejected before
// reaching game logic.
func (h *Handler) decode(ctx context.Context, cl *client, raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		h.sendError(ctx, cl, gamedto.CodeMalformedPayload, nil)
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.sendError(ctx, cl, gamedto.CodeMalformedPayload, nil)
		return false
	}
	return true
}

func (h *Handler) handleCreateRoom(ctx context.Context, cl *client) {
	if cl.roomCode != "" {
		h.sendError(ctx, cl, gamedto.CodeRoomNotJoinable, map[string]any{"Room": cl.roomCode})
		return
	}
	r, err := h.rooms.Create(cl.user.UserID, cl.user.Username, cl.sink)
	if err != nil {
		obslog.L().Error("room_create_error", zap.Error(err))
		h.sendError(ctx, cl, gamedto.CodeMalformedPayload, nil)
		return
	}
	cl.roomCode = r.Code()
	_ = cl.sink.Send(ctx, gamedto.ServerEvent{
		Type: gamedto.EvtRoomCreated,
		Data: gamedto.RoomCreatedEvent{RoomID: r.Code(), Role: gamedto.White},
	})
}

func (h *Handler) handleJoinRoom(ctx context.Context, cl *client, req gamedto.JoinRoomRequest) {
	if cl.roomCode != "" {
		h.sendError(ctx, cl, gamedto.CodeRoomNotJoinable, map[string]any{"Room": req.RoomID})
		return
	}
	rm, err := h.rooms.Join(req.RoomID, cl.user.UserID, cl.user.Username, cl.sink)
	if err != nil {
		h.sendError(ctx, cl, codeFor(err), map[string]any{"Room": req.RoomID})
		return
	}
	cl.roomCode = rm.Code()

	white, black := rm.Players()
	gameID := uuid.NewString()
	rm.SetGameID(gameID)
	_ = h.records.CreateGameRecord(ctx, gameID, rm.Code(),
		record.PlayerRef{UserID: white.UserID, Username: white.Username},
		record.PlayerRef{UserID: black.UserID, Username: black.Username},
		rm.BoardState(),
	)

	start := gamedto.ServerEvent{
		Type: gamedto.EvtGameStart,
		Data: gamedto.GameStartEvent{
			RoomID: rm.Code(),
			Players: []gamedto.PlayerInfo{
				{UserID: white.UserID, Username: white.Username, Side: gamedto.White},
				{UserID: black.UserID, Username: black.Username, Side: gamedto.Black},
			},
		},
	}
	h.pushTo(white.Sink, start)
	h.pushTo(black.Sink, start)
	obslog.L().Info("game_start",
		zap.String("room", rm.Code()),
		zap.String("game_id", gameID),
		zap.String("white_id", white.UserID),
		zap.String("black_id", black.UserID),
	)
}

func (h *Handler) handleMakeMove(ctx context.Context, cl *client, req gamedto.MakeMoveRequest) {
	rm, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(ctx, cl, gamedto.CodeRoomNotFound, map[string]any{"Room": req.RoomID})
		return
	}
	out, err := rm.ApplyMove(cl.user.UserID, req)
	if err != nil {
		h.sendError(ctx, cl, codeFor(err), map[string]any{"Room": req.RoomID})
		return
	}

	_ = cl.sink.Send(ctx, gamedto.ServerEvent{
		Type: gamedto.EvtMoveAccepted,
		Data: gamedto.MoveAcceptedEvent{RoomID: req.RoomID, MoveNumber: out.MoveNumber},
	})
	if out.Opponent != nil {
		h.pushTo(out.Opponent.Sink, gamedto.ServerEvent{
			Type: gamedto.EvtOpponentMove,
			Data: gamedto.OpponentMoveEvent{
				Move:       out.Move,
				GameState:  out.Board,
				Player:     out.Player,
				MoveNumber: out.MoveNumber,
			},
		})
	}

	if out.GameID != "" {
		_ = h.records.AppendMove(ctx, out.GameID, cl.user.UserID, out.MoveNumber, req.Move)
		_ = h.records.UpdateGameState(ctx, out.GameID, out.Board)
	}
	obslog.L().Info("move_accept",
		zap.String("room", req.RoomID),
		zap.String("user_id", cl.user.UserID),
		zap.Int("move_number", out.MoveNumber),
	)
}

func (h *Handler) handleBattleMove(ctx context.Context, cl *client, req gamedto.BattleMoveRequest) {
	rm, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(ctx, cl, gamedto.CodeRoomNotFound, map[string]any{"Room": req.RoomID})
		return
	}
	out, err := rm.ApplyBattle(cl.user.UserID, req)
	if err != nil {
		h.sendError(ctx, cl, codeFor(err), map[string]any{"Room": req.RoomID})
		return
	}

	resolved := gamedto.ServerEvent{
		Type: gamedto.EvtBattleResolved,
		Data: gamedto.BattleResolvedEvent{
			BattleResult: out.Result,
			Points:       out.Points,
			Player:       out.Player,
			MoveNumber:   out.MoveNumber,
		},
	}
	h.pushToPlayers(resolved, out.White, out.Black)

	if out.GameID != "" {
		_ = h.records.AppendMove(ctx, out.GameID, cl.user.UserID, out.MoveNumber, req)
		_ = h.records.UpdateGamePoints(ctx, out.GameID, out.Points.White, out.Points.Black)
	}
	obslog.L().Info("battle_resolve",
		zap.String("room", req.RoomID),
		zap.String("user_id", cl.user.UserID),
		zap.Int("move_number", out.MoveNumber),
		zap.String("outcome", string(out.Result.Outcome)),
		zap.Bool("king_defeated", out.Result.KingDefeated),
	)

	if out.Finished {
		ended := gamedto.ServerEvent{
			Type: gamedto.EvtGameEnded,
			Data: gamedto.GameEndedEvent{Winner: out.Winner, GameState: rm.BoardState()},
		}
		h.pushToPlayers(ended, out.White, out.Black)
		h.recordCompletion(ctx, rm, out.GameID, out.Winner, out.Points)
	}
}

func (h *Handler) handleGameEnd(ctx context.Context, cl *client, req gamedto.GameEndRequest) {
	rm, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(ctx, cl, gamedto.CodeRoomNotFound, map[string]any{"Room": req.RoomID})
		return
	}
	out, err := rm.Finish(cl.user.UserID, req.Winner, req.GameState)
	if err != nil {
		h.sendError(ctx, cl, codeFor(err), map[string]any{"Room": req.RoomID})
		return
	}

	ended := gamedto.ServerEvent{
		Type: gamedto.EvtGameEnded,
		Data: gamedto.GameEndedEvent{Winner: out.Winner, GameState: out.Board},
	}
	h.pushToPlayers(ended, out.White, out.Black)
	h.recordCompletion(ctx, rm, out.GameID, out.Winner, out.Points)
	obslog.L().Info("game_end",
		zap.String("room", req.RoomID),
		zap.String("winner", string(out.Winner)),
	)
}

func (h *Handler) recordCompletion(ctx context.Context, rm *room.Room, gameID string, winner gamedto.Side, points gamedto.Points) {
	if gameID == "" {
		return
	}
	winnerID := ""
	white, black := rm.Players()
	if winner == gamedto.White && white != nil {
		winnerID = white.UserID
	} else if winner == gamedto.Black && black != nil {
		winnerID = black.UserID
	}
	_ = h.records.RecordCompletion(ctx, gameID, winner, winnerID, points)
}

func (h *Handler) handleLeaveRoom(ctx context.Context, cl *client, roomID string) {
	if roomID == "" || roomID != cl.roomCode {
		h.sendError(ctx, cl, gamedto.CodeNotAParticipant, nil)
		return
	}
	h.leaveCurrentRoom(cl)
}

// handleDisconnect is the only cancellation signal: the departing side's
// room transitions without leaking or leaving the opponent waiting.
func (h *Handler) handleDisconnect(cl *client) {
	if cl.roomCode == "" {
		return
	}
	h.leaveCurrentRoom(cl)
}

func (h *Handler) leaveCurrentRoom(cl *client) {
	code := cl.roomCode
	cl.roomCode = ""
	rm, ok := h.rooms.Get(code)
	if !ok {
		return
	}
	out, err := rm.HandleLeave(cl.user.UserID)
	if err != nil {
		return
	}
	if out.WasWaiting {
		// No orphaned waiting rooms.
		h.rooms.Remove(code)
		obslog.L().Info("room_abandon_waiting", zap.String("room", code))
		return
	}
	if out.Opponent != nil {
		h.pushTo(out.Opponent.Sink, gamedto.ServerEvent{
			Type: gamedto.EvtPlayerDisconnected,
			Data: gamedto.PlayerDisconnectedEvent{Player: out.Side},
		})
	}
	obslog.L().Info("room_player_left",
		zap.String("room", code),
		zap.String("user_id", cl.user.UserID),
		zap.String("side", string(out.Side)),
	)
}

// pushTo delivers a cross-connection event with its own deadline so a slow
// peer cannot stall the submitting connection.
func (h *Handler) pushTo(sink room.Sink, evt gamedto.ServerEvent) {
	if sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := sink.Send(ctx, evt); err != nil {
		obslog.L().Warn("ws_push_error", zap.String("event", evt.Type), zap.Error(err))
	}
}

func (h *Handler) pushToPlayers(evt gamedto.ServerEvent, players ...*room.Player) {
	for _, p := range players {
		if p != nil {
			h.pushTo(p.Sink, evt)
		}
	}
}

func (h *Handler) sendError(ctx context.Context, cl *client, code gamedto.ErrorCode, data any) {
	_ = cl.sink.Send(ctx, gamedto.ServerEvent{
		Type: gamedto.EvtError,
		Data: gamedto.ErrorEvent{Code: code, Message: h.message(code, data)},
	})
}

var fallbackMessages = map[gamedto.ErrorCode]string{
	gamedto.CodeUnauthenticated:       "no valid session",
	gamedto.CodeRoomNotFound:          "room not found",
	gamedto.CodeRoomNotJoinable:       "room is not joinable",
	gamedto.CodeNotAParticipant:       "not a participant of this room",
	gamedto.CodeOutOfTurn:             "not your turn",
	gamedto.CodeSequenceMismatch:      "move number out of sequence",
	gamedto.CodeInvalidPieceOwnership: "piece ownership mismatch",
	gamedto.CodeIllegalMove:           "illegal move",
	gamedto.CodeImplausibleStats:      "implausible piece stats",
	gamedto.CodeMalformedPayload:      "malformed payload",
}

func (h *Handler) message(code gamedto.ErrorCode, data any) string {
	key := "error." + strings.ToLower(string(code))
	return h.cat.RenderOr(key, fallbackMessages[code], data)
}

func codeFor(err error) gamedto.ErrorCode {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return gamedto.CodeRoomNotFound
	case errors.Is(err, room.ErrNotJoinable), errors.Is(err, room.ErrNotPlaying):
		return gamedto.CodeRoomNotJoinable
	case errors.Is(err, room.ErrNotAParticipant):
		return gamedto.CodeNotAParticipant
	case errors.Is(err, room.ErrOutOfTurn):
		return gamedto.CodeOutOfTurn
	case errors.Is(err, room.ErrSequenceMismatch):
		return gamedto.CodeSequenceMismatch
	case errors.Is(err, room.ErrBadOwnership):
		return gamedto.CodeInvalidPieceOwnership
	case errors.Is(err, room.ErrIllegalMove):
		return gamedto.CodeIllegalMove
	case errors.Is(err, room.ErrImplausibleStats):
		return gamedto.CodeImplausibleStats
	default:
		return gamedto.CodeMalformedPayload
	}
}

package record

import (
	"context"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Game record statuses as persisted.
const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// PlayerRef identifies one participant in a persisted game record.
type PlayerRef struct {
	UserID   string
	Username string
}

// Gateway is the persistence collaborator the session core depends on.
// All calls are best-effort durability: the in-memory room state is the
// source of truth for live play, and a failed write never rolls back an
// already-decided outcome.
type Gateway interface {
	CreateGameRecord(ctx context.Context, gameID, roomCode string, white, black PlayerRef, initialState gamedto.BoardState) error
	AppendMove(ctx context.Context, gameID, playerID string, moveNumber int, payload any) error
	UpdateGameState(ctx context.Context, gameID string, state gamedto.BoardState) error
	UpdateGamePoints(ctx context.Context, gameID string, white, black int) error
	UpdateGameStatus(ctx context.Context, gameID, status string, winner gamedto.Side) error
	// RecordCompletion finalizes the game and updates both players'
	// aggregate stats transactionally.
	RecordCompletion(ctx context.Context, gameID string, winnerSide gamedto.Side, winnerUserID string, points gamedto.Points) error
	Close() error
}

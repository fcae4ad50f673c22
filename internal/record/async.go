package record

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/BattleChess-Server/internal/obslog"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

const writeTimeout = 5 * time.Second

// Async wraps a Gateway so every write runs off the caller's path. The
// client-visible result is decided and broadcast before or independently of
// persistence completion; failures are logged, never surfaced to gameplay.
type Async struct {
	next Gateway
	wg   sync.WaitGroup
}

func NewAsync(next Gateway) *Async { return &Async{next: next} }

// Close drains in-flight writes, then closes the wrapped gateway.
func (a *Async) Close() error {
	a.wg.Wait()
	return a.next.Close()
}

func (a *Async) submit(op string, gameID string, fn func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			obslog.L().Error("record_write_error",
				zap.String("op", op),
				zap.String("game_id", gameID),
				zap.Error(err),
			)
		}
	}()
}

func (a *Async) CreateGameRecord(_ context.Context, gameID, roomCode string, white, black PlayerRef, initialState gamedto.BoardState) error {
	a.submit("create_game", gameID, func(ctx context.Context) error {
		return a.next.CreateGameRecord(ctx, gameID, roomCode, white, black, initialState)
	})
	return nil
}

func (a *Async) AppendMove(_ context.Context, gameID, playerID string, moveNumber int, payload any) error {
	a.submit("append_move", gameID, func(ctx context.Context) error {
		return a.next.AppendMove(ctx, gameID, playerID, moveNumber, payload)
	})
	return nil
}

func (a *Async) UpdateGameState(_ context.Context, gameID string, state gamedto.BoardState) error {
	a.submit("update_state", gameID, func(ctx context.Context) error {
		return a.next.UpdateGameState(ctx, gameID, state)
	})
	return nil
}

func (a *Async) UpdateGamePoints(_ context.Context, gameID string, white, black int) error {
	a.submit("update_points", gameID, func(ctx context.Context) error {
		return a.next.UpdateGamePoints(ctx, gameID, white, black)
	})
	return nil
}

func (a *Async) UpdateGameStatus(_ context.Context, gameID, status string, winner gamedto.Side) error {
	a.submit("update_status", gameID, func(ctx context.Context) error {
		return a.next.UpdateGameStatus(ctx, gameID, status, winner)
	})
	return nil
}

func (a *Async) RecordCompletion(_ context.Context, gameID string, winnerSide gamedto.Side, winnerUserID string, points gamedto.Points) error {
	a.submit("record_completion", gameID, func(ctx context.Context) error {
		return a.next.RecordCompletion(ctx, gameID, winnerSide, winnerUserID, points)
	})
	return nil
}

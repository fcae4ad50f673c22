package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// GameRecord is the in-memory shape of one persisted game.
type GameRecord struct {
	GameID      string
	RoomCode    string
	White       PlayerRef
	Black       PlayerRef
	State       gamedto.BoardState
	WhitePoints int
	BlackPoints int
	Status      string
	Winner      gamedto.Side
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MoveRecord is one appended move.
type MoveRecord struct {
	GameID     string
	PlayerID   string
	MoveNumber int
	Payload    any
}

// PlayerStats are per-user aggregates.
type PlayerStats struct {
	UserID      string
	GamesPlayed int
	Wins        int
	Losses      int
	Rating      int
	TotalPoints int
	Level       int
}

// Memory is a development and test Gateway used when no database is
// configured.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*GameRecord
	moves map[string][]MoveRecord
	stats map[string]*PlayerStats
}

func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]*GameRecord),
		moves: make(map[string][]MoveRecord),
		stats: make(map[string]*PlayerStats),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateGameRecord(ctx context.Context, gameID, roomCode string, white, black PlayerRef, initialState gamedto.BoardState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[gameID]; exists {
		return nil
	}
	now := time.Now()
	m.games[gameID] = &GameRecord{
		GameID:    gameID,
		RoomCode:  roomCode,
		White:     white,
		Black:     black,
		State:     initialState,
		Status:    StatusPlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (m *Memory) AppendMove(ctx context.Context, gameID, playerID string, moveNumber int, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mv := range m.moves[gameID] {
		if mv.MoveNumber == moveNumber {
			return nil
		}
	}
	m.moves[gameID] = append(m.moves[gameID], MoveRecord{
		GameID:     gameID,
		PlayerID:   playerID,
		MoveNumber: moveNumber,
		Payload:    payload,
	})
	return nil
}

func (m *Memory) UpdateGameState(ctx context.Context, gameID string, state gamedto.BoardState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.State = state
	g.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) UpdateGamePoints(ctx context.Context, gameID string, white, black int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.WhitePoints, g.BlackPoints = white, black
	g.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) UpdateGameStatus(ctx context.Context, gameID, status string, winner gamedto.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.Status = status
	g.Winner = winner
	g.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) RecordCompletion(ctx context.Context, gameID string, winnerSide gamedto.Side, winnerUserID string, points gamedto.Points) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.Status = StatusFinished
	g.Winner = winnerSide
	g.WhitePoints, g.BlackPoints = points.White, points.Black
	g.UpdatedAt = time.Now()

	m.bumpStats(g.White.UserID, winnerSide == gamedto.White, points.White)
	m.bumpStats(g.Black.UserID, winnerSide == gamedto.Black, points.Black)
	return nil
}

func (m *Memory) bumpStats(userID string, won bool, points int) {
	if userID == "" {
		return
	}
	s, ok := m.stats[userID]
	if !ok {
		s = &PlayerStats{UserID: userID, Rating: 1000}
		m.stats[userID] = s
	}
	s.GamesPlayed++
	if won {
		s.Wins++
		s.Rating += 25
	} else {
		s.Losses++
		s.Rating -= 20
		if s.Rating < 0 {
			s.Rating = 0
		}
	}
	s.TotalPoints += points
	s.Level = 1 + s.TotalPoints/100
}

// Game returns a copy of a stored record, for inspection in tests.
func (m *Memory) Game(gameID string) (GameRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return GameRecord{}, false
	}
	return *g, true
}

// Moves returns the appended moves of a game in insertion order.
func (m *Memory) Moves(gameID string) []MoveRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MoveRecord(nil), m.moves[gameID]...)
}

// Stats returns a copy of a user's aggregates.
func (m *Memory) Stats(userID string) (PlayerStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[userID]
	if !ok {
		return PlayerStats{}, false
	}
	return *s, true
}

package record

import (
	"context"
	"testing"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

func seedGame(t *testing.T, m *Memory, gameID string) {
	t.Helper()
	err := m.CreateGameRecord(context.Background(), gameID, "ABC123",
		PlayerRef{UserID: "u-w", Username: "alice"},
		PlayerRef{UserID: "u-b", Username: "bob"},
		nil,
	)
	if err != nil {
		t.Fatalf("CreateGameRecord: %v", err)
	}
}

func TestMemoryCreateIsIdempotent(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "g1")

	// A duplicate create keeps the original record.
	err := m.CreateGameRecord(context.Background(), "g1", "OTHER0",
		PlayerRef{UserID: "x"}, PlayerRef{UserID: "y"}, nil)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	g, ok := m.Game("g1")
	if !ok || g.RoomCode != "ABC123" {
		t.Fatalf("record overwritten: %+v", g)
	}
	if g.Status != StatusPlaying {
		t.Fatalf("status = %s", g.Status)
	}
}

func TestMemoryAppendMoveDedupes(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "g1")
	ctx := context.Background()

	if err := m.AppendMove(ctx, "g1", "u-w", 1, "first"); err != nil {
		t.Fatalf("AppendMove: %v", err)
	}
	// A resubmitted move number is dropped silently.
	if err := m.AppendMove(ctx, "g1", "u-w", 1, "retry"); err != nil {
		t.Fatalf("AppendMove dup: %v", err)
	}
	if err := m.AppendMove(ctx, "g1", "u-b", 2, "second"); err != nil {
		t.Fatalf("AppendMove: %v", err)
	}

	moves := m.Moves("g1")
	if len(moves) != 2 {
		t.Fatalf("moves = %d", len(moves))
	}
	if moves[0].Payload != "first" || moves[1].MoveNumber != 2 {
		t.Fatalf("moves: %+v", moves)
	}
}

func TestMemoryUpdatesRequireGame(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.UpdateGameState(ctx, "nope", nil); err == nil {
		t.Fatal("state update on missing game accepted")
	}
	if err := m.UpdateGamePoints(ctx, "nope", 1, 2); err == nil {
		t.Fatal("points update on missing game accepted")
	}
	if err := m.RecordCompletion(ctx, "nope", gamedto.White, "u", gamedto.Points{}); err == nil {
		t.Fatal("completion on missing game accepted")
	}
}

func TestMemoryRecordCompletion(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "g1")

	err := m.RecordCompletion(context.Background(), "g1", gamedto.White, "u-w", gamedto.Points{White: 12, Black: 4})
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	g, _ := m.Game("g1")
	if g.Status != StatusFinished || g.Winner != gamedto.White {
		t.Fatalf("game: %+v", g)
	}
	if g.WhitePoints != 12 || g.BlackPoints != 4 {
		t.Fatalf("points: %+v", g)
	}

	win, _ := m.Stats("u-w")
	if win.Wins != 1 || win.Rating != 1025 || win.TotalPoints != 12 {
		t.Fatalf("winner stats: %+v", win)
	}
	loss, _ := m.Stats("u-b")
	if loss.Losses != 1 || loss.Rating != 980 {
		t.Fatalf("loser stats: %+v", loss)
	}
}

func TestMemoryRatingFloorsAtZero(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 60; i++ {
		gameID := "g" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		seedGame(t, m, gameID)
		if err := m.RecordCompletion(context.Background(), gameID, gamedto.White, "u-w", gamedto.Points{}); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}
	s, _ := m.Stats("u-b")
	if s.Rating != 0 {
		t.Fatalf("rating = %d, want floor 0", s.Rating)
	}
}

func TestMemoryLevelFromPoints(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "g1")
	if err := m.RecordCompletion(context.Background(), "g1", gamedto.White, "u-w", gamedto.Points{White: 250}); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	s, _ := m.Stats("u-w")
	if s.Level != 3 {
		t.Fatalf("level = %d, want 3", s.Level)
	}
}

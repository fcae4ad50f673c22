package record

import (
	"context"
	"testing"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

func TestAsyncFlushesOnClose(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	// Writes are unordered relative to each other, so land the create
	// before submitting anything that depends on it.
	boot := NewAsync(mem)
	if err := boot.CreateGameRecord(ctx, "g1", "ABC123",
		PlayerRef{UserID: "u-w"}, PlayerRef{UserID: "u-b"}, nil); err != nil {
		t.Fatalf("CreateGameRecord: %v", err)
	}
	if err := boot.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	a := NewAsync(mem)
	if err := a.AppendMove(ctx, "g1", "u-w", 1, "move"); err != nil {
		t.Fatalf("AppendMove: %v", err)
	}
	if err := a.UpdateGamePoints(ctx, "g1", 3, 0); err != nil {
		t.Fatalf("UpdateGamePoints: %v", err)
	}
	if err := a.RecordCompletion(ctx, "g1", gamedto.White, "u-w", gamedto.Points{White: 3}); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	// Close blocks until every submitted write has landed.
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	g, ok := mem.Game("g1")
	if !ok {
		t.Fatal("game never written")
	}
	if g.Status != StatusFinished || g.WhitePoints != 3 {
		t.Fatalf("game: %+v", g)
	}
	if len(mem.Moves("g1")) != 1 {
		t.Fatal("move never written")
	}
}

func TestAsyncNeverSurfacesErrors(t *testing.T) {
	a := NewAsync(NewMemory())
	// Updates against a game that was never created fail downstream; the
	// caller still sees nil.
	if err := a.UpdateGameState(context.Background(), "missing", nil); err != nil {
		t.Fatalf("UpdateGameState: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

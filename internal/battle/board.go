package battle

import (
	"fmt"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Size is the board edge length.
const Size = 8

// Board is an 8×8 grid of optional pieces. At most one piece per square;
// exactly one king per side while the game is undecided.
type Board struct {
	cells [Size][Size]*Piece
}

var backRank = []gamedto.PieceType{
	gamedto.Rook, gamedto.Knight, gamedto.Bishop, gamedto.Queen,
	gamedto.King, gamedto.Bishop, gamedto.Knight, gamedto.Rook,
}

// NewBoard returns the standard 32-piece starting layout. White occupies
// ranks 0 and 1 and advances toward increasing Y.
func NewBoard() *Board {
	b := &Board{}
	for x := 0; x < Size; x++ {
		b.cells[x][0] = NewPiece(backRank[x], gamedto.White)
		b.cells[x][1] = NewPiece(gamedto.Pawn, gamedto.White)
		b.cells[x][6] = NewPiece(gamedto.Pawn, gamedto.Black)
		b.cells[x][7] = NewPiece(backRank[x], gamedto.Black)
	}
	return b
}

func inBounds(p gamedto.Position) bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// At returns the piece on square p, or nil.
func (b *Board) At(p gamedto.Position) *Piece {
	if !inBounds(p) {
		return nil
	}
	return b.cells[p.X][p.Y]
}

// Place puts a piece on a square, replacing any occupant.
func (b *Board) Place(p gamedto.Position, pc *Piece) {
	if inBounds(p) {
		b.cells[p.X][p.Y] = pc
	}
}

// Remove clears a square.
func (b *Board) Remove(p gamedto.Position) {
	if inBounds(p) {
		b.cells[p.X][p.Y] = nil
	}
}

// MovePiece relocates the piece at from to to, removing any occupant of to.
func (b *Board) MovePiece(from, to gamedto.Position) {
	pc := b.At(from)
	if pc == nil {
		return
	}
	b.cells[from.X][from.Y] = nil
	b.cells[to.X][to.Y] = pc
	pc.Moved = true
}

// Clone deep-copies the board for move simulation.
func (b *Board) Clone() *Board {
	out := &Board{}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if pc := b.cells[x][y]; pc != nil {
				cp := *pc
				out.cells[x][y] = &cp
			}
		}
	}
	return out
}

// ForEach visits every occupied square.
func (b *Board) ForEach(fn func(pos gamedto.Position, pc *Piece)) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if pc := b.cells[x][y]; pc != nil {
				fn(gamedto.Position{X: x, Y: y}, pc)
			}
		}
	}
}

// FindKing locates the king of a side.
func (b *Board) FindKing(side gamedto.Side) (gamedto.Position, bool) {
	var found gamedto.Position
	ok := false
	b.ForEach(func(pos gamedto.Position, pc *Piece) {
		if pc.Type == gamedto.King && pc.Side == side {
			found, ok = pos, true
		}
	})
	return found, ok
}

// FindByID locates a piece by its identity.
func (b *Board) FindByID(id string) (*Piece, gamedto.Position, bool) {
	var (
		foundPc  *Piece
		foundPos gamedto.Position
	)
	b.ForEach(func(pos gamedto.Position, pc *Piece) {
		if pc.ID == id {
			foundPc, foundPos = pc, pos
		}
	})
	return foundPc, foundPos, foundPc != nil
}

// State snapshots the board for the wire.
func (b *Board) State() gamedto.BoardState {
	out := make(gamedto.BoardState, 0, 32)
	b.ForEach(func(pos gamedto.Position, pc *Piece) {
		out = append(out, pc.State(pos))
	})
	return out
}

// BoardFromState rebuilds a board from a wire snapshot, enforcing bounds
// and the one-piece-per-square invariant.
func BoardFromState(st gamedto.BoardState) (*Board, error) {
	b := &Board{}
	for _, s := range st {
		if !inBounds(s.Pos) {
			return nil, fmt.Errorf("piece %s out of bounds at (%d,%d)", s.ID, s.Pos.X, s.Pos.Y)
		}
		if b.cells[s.Pos.X][s.Pos.Y] != nil {
			return nil, fmt.Errorf("square (%d,%d) occupied twice", s.Pos.X, s.Pos.Y)
		}
		pc, err := PieceFromState(s)
		if err != nil {
			return nil, err
		}
		b.cells[s.Pos.X][s.Pos.Y] = pc
	}
	return b, nil
}

package battle

import "github.com/park285/BattleChess-Server/pkg/gamedto"

var (
	rookDirs   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightOffsets = [][2]int{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

// ValidMoves generates the move set for the piece at from. With healMode set
// and a healer on the square, the set is instead its diagonal line-of-sight
// squares occupied by a damaged friendly piece.
func ValidMoves(b *Board, from gamedto.Position, healMode bool) []gamedto.Position {
	pc := b.At(from)
	if pc == nil {
		return nil
	}
	if healMode {
		if pc.Type != HealerType {
			return nil
		}
		return healTargets(b, from, pc)
	}
	switch pc.Type {
	case gamedto.Pawn:
		return pawnMoves(b, from, pc)
	case gamedto.Knight:
		return offsetMoves(b, from, pc, knightOffsets)
	case gamedto.Bishop:
		return slideMoves(b, from, pc, bishopDirs)
	case gamedto.Rook:
		return slideMoves(b, from, pc, rookDirs)
	case gamedto.Queen:
		return append(slideMoves(b, from, pc, rookDirs), slideMoves(b, from, pc, bishopDirs)...)
	case gamedto.King:
		return append(offsetMoves(b, from, pc, rookDirs), offsetMoves(b, from, pc, bishopDirs)...)
	}
	return nil
}

func pawnMoves(b *Board, from gamedto.Position, pc *Piece) []gamedto.Position {
	dir := 1
	if pc.Side == gamedto.Black {
		dir = -1
	}
	var out []gamedto.Position
	one := gamedto.Position{X: from.X, Y: from.Y + dir}
	if inBounds(one) && b.At(one) == nil {
		out = append(out, one)
		two := gamedto.Position{X: from.X, Y: from.Y + 2*dir}
		if !pc.Moved && inBounds(two) && b.At(two) == nil {
			out = append(out, two)
		}
	}
	for _, dx := range []int{-1, 1} {
		diag := gamedto.Position{X: from.X + dx, Y: from.Y + dir}
		if tgt := b.At(diag); tgt != nil && tgt.Side != pc.Side {
			out = append(out, diag)
		}
	}
	return out
}

func slideMoves(b *Board, from gamedto.Position, pc *Piece, dirs [][2]int) []gamedto.Position {
	var out []gamedto.Position
	for _, d := range dirs {
		cur := from
		for {
			cur = gamedto.Position{X: cur.X + d[0], Y: cur.Y + d[1]}
			if !inBounds(cur) {
				break
			}
			tgt := b.At(cur)
			if tgt == nil {
				out = append(out, cur)
				continue
			}
			if tgt.Side != pc.Side {
				out = append(out, cur)
			}
			break
		}
	}
	return out
}

func offsetMoves(b *Board, from gamedto.Position, pc *Piece, offsets [][2]int) []gamedto.Position {
	var out []gamedto.Position
	for _, d := range offsets {
		cur := gamedto.Position{X: from.X + d[0], Y: from.Y + d[1]}
		if !inBounds(cur) {
			continue
		}
		if tgt := b.At(cur); tgt == nil || tgt.Side != pc.Side {
			out = append(out, cur)
		}
	}
	return out
}

// healTargets walks each diagonal ray; the first piece encountered blocks
// sight, and is a target only when friendly and below effective max health.
func healTargets(b *Board, from gamedto.Position, pc *Piece) []gamedto.Position {
	var out []gamedto.Position
	for _, d := range bishopDirs {
		cur := from
		for {
			cur = gamedto.Position{X: cur.X + d[0], Y: cur.Y + d[1]}
			if !inBounds(cur) {
				break
			}
			tgt := b.At(cur)
			if tgt == nil {
				continue
			}
			if tgt.Side == pc.Side && tgt.Health < tgt.MaxHealth() {
				out = append(out, cur)
			}
			break
		}
	}
	return out
}

// IsInCheck reports whether some opposing piece's move set includes the
// king's square.
func IsInCheck(b *Board, side gamedto.Side) bool {
	kingPos, ok := b.FindKing(side)
	if !ok {
		return false
	}
	threatened := false
	b.ForEach(func(pos gamedto.Position, pc *Piece) {
		if threatened || pc.Side == side {
			return
		}
		for _, mv := range ValidMoves(b, pos, false) {
			if mv == kingPos {
				threatened = true
				return
			}
		}
	})
	return threatened
}

// hasLegalMove reports whether any move of side leaves its king out of
// check. Captures are simulated as plain removal for legality purposes.
func hasLegalMove(b *Board, side gamedto.Side) bool {
	legal := false
	b.ForEach(func(pos gamedto.Position, pc *Piece) {
		if legal || pc.Side != side {
			return
		}
		for _, mv := range ValidMoves(b, pos, false) {
			sim := b.Clone()
			sim.MovePiece(pos, mv)
			if !IsInCheck(sim, side) {
				legal = true
				return
			}
		}
	})
	return legal
}

// IsCheckmate reports check with no legal escape.
func IsCheckmate(b *Board, side gamedto.Side) bool {
	return IsInCheck(b, side) && !hasLegalMove(b, side)
}

// IsStalemate reports no legal move while not in check.
func IsStalemate(b *Board, side gamedto.Side) bool {
	return !IsInCheck(b, side) && !hasLegalMove(b, side)
}

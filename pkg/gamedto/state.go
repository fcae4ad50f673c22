package gamedto

// Side identifies one of the two competing players.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// PieceType is one of the six ranks.
type PieceType string

const (
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// Position addresses a board square; X is the file and Y the rank, both 0..7.
// White pawns advance toward increasing Y.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PieceState is the wire snapshot of a single piece.
type PieceState struct {
	ID           string    `json:"id"`
	Type         PieceType `json:"type"`
	Side         Side      `json:"side"`
	Health       int       `json:"health"`
	Level        int       `json:"level"`
	Experience   int       `json:"experience"`
	StatPoints   int       `json:"stat_points"`
	AttackMod    int       `json:"attack_mod"`
	DefenseMod   int       `json:"defense_mod"`
	MaxHealthMod int       `json:"max_health_mod"`
	Moved        bool      `json:"moved"`
	Pos          Position  `json:"pos"`
}

// BoardState is the wire form of a full board snapshot.
type BoardState []PieceState

// Move describes a single movement intent. Heal marks a healer targeting a
// friendly piece; Promote carries the chosen type when a pawn reaches the
// last rank.
type Move struct {
	From    Position  `json:"from"`
	To      Position  `json:"to"`
	Heal    bool      `json:"heal,omitempty"`
	Promote PieceType `json:"promote,omitempty"`
}

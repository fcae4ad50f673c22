package battle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// HealerType is the piece type allowed to enter heal mode. Heal targeting
// follows its normal diagonal sight.
const HealerType = gamedto.Bishop

type baseStats struct {
	Health  int
	Attack  int
	Defense int
	Points  int
	BaseXP  int
}

var statsByType = map[gamedto.PieceType]baseStats{
	gamedto.Pawn:   {Health: 25, Attack: 8, Defense: 5, Points: 1, BaseXP: 10},
	gamedto.Knight: {Health: 35, Attack: 12, Defense: 8, Points: 3, BaseXP: 25},
	gamedto.Bishop: {Health: 30, Attack: 10, Defense: 6, Points: 3, BaseXP: 25},
	gamedto.Rook:   {Health: 45, Attack: 14, Defense: 10, Points: 5, BaseXP: 40},
	gamedto.Queen:  {Health: 50, Attack: 18, Defense: 8, Points: 8, BaseXP: 60},
	gamedto.King:   {Health: 60, Attack: 15, Defense: 12, Points: 15, BaseXP: 100},
}

// PointValue returns the points awarded for defeating a piece of type t.
func PointValue(t gamedto.PieceType) int { return statsByType[t].Points }

// BaseAttack returns the unmodified attack stat for type t.
func BaseAttack(t gamedto.PieceType) int { return statsByType[t].Attack }

// BaseDefense returns the unmodified defense stat for type t.
func BaseDefense(t gamedto.PieceType) int { return statsByType[t].Defense }

// BaseHealth returns the unmodified max health for type t.
func BaseHealth(t gamedto.PieceType) int { return statsByType[t].Health }

// Piece is a live board piece. Health never exceeds effective max health;
// health 0 means the piece is off the board.
type Piece struct {
	ID           string
	Type         gamedto.PieceType
	Side         gamedto.Side
	Health       int
	Level        int
	Experience   int
	StatPoints   int
	AttackMod    int
	DefenseMod   int
	MaxHealthMod int
	Moved        bool
}

// NewPiece creates a level-1 piece at full health.
func NewPiece(t gamedto.PieceType, side gamedto.Side) *Piece {
	return &Piece{
		ID:     uuid.NewString(),
		Type:   t,
		Side:   side,
		Health: statsByType[t].Health,
		Level:  1,
	}
}

func (p *Piece) Attack() int    { return statsByType[p.Type].Attack + p.AttackMod }
func (p *Piece) Defense() int   { return statsByType[p.Type].Defense + p.DefenseMod }
func (p *Piece) MaxHealth() int { return statsByType[p.Type].Health + p.MaxHealthMod }

// Promote converts a pawn into the chosen type. Level, experience and stat
// modifiers carry over; health resets to the new type's effective max.
func (p *Piece) Promote(t gamedto.PieceType) {
	p.Type = t
	p.Health = p.MaxHealth()
	p.Moved = true
}

// State snapshots the piece at a board position for the wire.
func (p *Piece) State(pos gamedto.Position) gamedto.PieceState {
	return gamedto.PieceState{
		ID:           p.ID,
		Type:         p.Type,
		Side:         p.Side,
		Health:       p.Health,
		Level:        p.Level,
		Experience:   p.Experience,
		StatPoints:   p.StatPoints,
		AttackMod:    p.AttackMod,
		DefenseMod:   p.DefenseMod,
		MaxHealthMod: p.MaxHealthMod,
		Moved:        p.Moved,
		Pos:          pos,
	}
}

// PieceFromState rebuilds a piece from a wire snapshot.
func PieceFromState(s gamedto.PieceState) (*Piece, error) {
	if _, ok := statsByType[s.Type]; !ok {
		return nil, fmt.Errorf("unknown piece type %q", s.Type)
	}
	if s.Side != gamedto.White && s.Side != gamedto.Black {
		return nil, fmt.Errorf("unknown side %q", s.Side)
	}
	level := s.Level
	if level < 1 {
		level = 1
	}
	return &Piece{
		ID:           s.ID,
		Type:         s.Type,
		Side:         s.Side,
		Health:       s.Health,
		Level:        level,
		Experience:   s.Experience,
		StatPoints:   s.StatPoints,
		AttackMod:    s.AttackMod,
		DefenseMod:   s.DefenseMod,
		MaxHealthMod: s.MaxHealthMod,
		Moved:        s.Moved,
	}, nil
}

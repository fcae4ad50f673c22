package battle

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Seed is the deterministic battle seed. Identical inputs yield identical
// rolls, which is what lets server and client agree and replays audit.
type Seed [32]byte

// BattleSeed derives the seed from the room, the move number and both piece
// identities. Client-submitted rolls are never trusted.
func BattleSeed(roomCode string, moveNumber int, attackerID, defenderID string) Seed {
	return sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s:%s", roomCode, moveNumber, attackerID, defenderID)))
}

// rolls derives two die values in [1,20] from the seed.
func (s Seed) rolls() (int, int) {
	r1 := int(binary.BigEndian.Uint32(s[0:4])%20) + 1
	r2 := int(binary.BigEndian.Uint32(s[4:8])%20) + 1
	return r1, r2
}

func effAttack(s gamedto.PieceState) int  { return BaseAttack(s.Type) + s.AttackMod }
func effDefense(s gamedto.PieceState) int { return BaseDefense(s.Type) + s.DefenseMod }
func effMaxHealth(s gamedto.PieceState) int {
	return BaseHealth(s.Type) + s.MaxHealthMod
}

func clampHealth(s *gamedto.PieceState) {
	if maxHP := effMaxHealth(*s); s.Health > maxHP {
		s.Health = maxHP
	}
	if s.Health < 0 {
		s.Health = 0
	}
}

// ResolveBattle computes a battle outcome from two piece snapshots and a
// seed. Pure: the inputs are copied, never mutated.
func ResolveBattle(attacker, defender gamedto.PieceState, seed Seed) gamedto.BattleResult {
	clampHealth(&attacker)
	clampHealth(&defender)

	roll1, roll2 := seed.rolls()
	damage := (effAttack(attacker) + roll1) - (effDefense(defender) + roll2)
	if damage < 1 {
		damage = 1
	}
	defender.Health -= damage
	if defender.Health < 0 {
		defender.Health = 0
	}

	res := gamedto.BattleResult{
		AttackerRoll: roll1,
		DefenderRoll: roll2,
		Damage:       damage,
		Outcome:      gamedto.OutcomeBothSurvive,
	}

	if defender.Health == 0 {
		res.Outcome = gamedto.OutcomeAttackerWins
		res.PointsAwarded = PointValue(defender.Type)
		res.PointsTo = attacker.Side
		res.XPAwarded = XPAward(attacker.Level, defender.Level, defender.Type)
		res.KingDefeated = defender.Type == gamedto.King
		ApplyExperience(&attacker, res.XPAwarded)
		res.Attacker, res.Defender = attacker, defender
		return res
	}

	// Limited counter rule: an outclassed attacker that also rolls far
	// worse takes a small amount of return damage.
	statDiff := effAttack(defender) - effDefense(attacker)
	if statDiff > 2 && (roll2-roll1) > 10 {
		counter := statDiff
		if counter > 3 {
			counter = 3
		}
		res.CounterDamage = counter
		attacker.Health -= counter
		if attacker.Health <= 0 {
			attacker.Health = 0
			res.Outcome = gamedto.OutcomeDefenderWins
			res.PointsAwarded = PointValue(attacker.Type)
			res.PointsTo = defender.Side
			res.XPAwarded = XPAward(defender.Level, attacker.Level, attacker.Type)
			res.KingDefeated = attacker.Type == gamedto.King
			ApplyExperience(&defender, res.XPAwarded)
		} else if attacker.Health < 1 {
			attacker.Health = 1
		}
	}

	res.Attacker, res.Defender = attacker, defender
	return res
}

// XPAward scales the defeated type's base XP by the level gap, floored at
// half value, rounded to the nearest integer.
func XPAward(winnerLevel, defeatedLevel int, defeatedType gamedto.PieceType) int {
	scale := 1 + 0.2*float64(defeatedLevel-winnerLevel)
	if scale < 0.5 {
		scale = 0.5
	}
	return int(math.Round(float64(statsByType[defeatedType].BaseXP) * scale))
}

// XPToNext returns the experience threshold to leave the given level.
func XPToNext(level int) int { return 50 + 50*(level-1) }

// ApplyExperience accrues xp onto a snapshot, looping level-ups; each level
// grants one unspent attribute point.
func ApplyExperience(p *gamedto.PieceState, xp int) {
	if p.Level < 1 {
		p.Level = 1
	}
	p.Experience += xp
	for p.Experience >= XPToNext(p.Level) {
		p.Experience -= XPToNext(p.Level)
		p.Level++
		p.StatPoints++
	}
}

// HealAmount computes hit points restored by a healer of the given level,
// capped later at the target's max health by the caller.
func HealAmount(healerLevel, targetMaxHealth int) int {
	pct := 0.25 + 0.05*float64(healerLevel-1)
	if pct > 0.75 {
		pct = 0.75
	}
	return int(math.Floor(float64(targetMaxHealth) * pct))
}

package battle

import (
	"encoding/binary"
	"testing"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// seedWithRolls builds a seed whose first two derived die values are known.
func seedWithRolls(t *testing.T, r1, r2 int) Seed {
	t.Helper()
	if r1 < 1 || r1 > 20 || r2 < 1 || r2 > 20 {
		t.Fatalf("rolls out of range: %d %d", r1, r2)
	}
	var s Seed
	binary.BigEndian.PutUint32(s[0:4], uint32(r1-1))
	binary.BigEndian.PutUint32(s[4:8], uint32(r2-1))
	return s
}

func pieceState(t gamedto.PieceType, side gamedto.Side, health, level int) gamedto.PieceState {
	return gamedto.PieceState{
		ID:     string(t) + "-" + string(side),
		Type:   t,
		Side:   side,
		Health: health,
		Level:  level,
	}
}

func TestBattleSeedDeterministic(t *testing.T) {
	a := BattleSeed("ABC123", 7, "p1", "p2")
	b := BattleSeed("ABC123", 7, "p1", "p2")
	if a != b {
		t.Fatal("same inputs produced different seeds")
	}
	if c := BattleSeed("ABC123", 8, "p1", "p2"); c == a {
		t.Fatal("different move number produced identical seed")
	}
	if c := BattleSeed("XYZ789", 7, "p1", "p2"); c == a {
		t.Fatal("different room produced identical seed")
	}
}

func TestResolveBattleDeterministic(t *testing.T) {
	atk := pieceState(gamedto.Queen, gamedto.White, 50, 1)
	def := pieceState(gamedto.Pawn, gamedto.Black, 25, 1)
	seed := BattleSeed("ROOM01", 3, atk.ID, def.ID)

	first := ResolveBattle(atk, def, seed)
	second := ResolveBattle(atk, def, seed)
	if first != second {
		t.Fatalf("resolution not deterministic: %+v vs %+v", first, second)
	}
}

func TestResolveBattleDamageFloor(t *testing.T) {
	// Worst possible attacker roll against best defender roll still lands 1.
	atk := pieceState(gamedto.Pawn, gamedto.White, 25, 1)
	def := pieceState(gamedto.King, gamedto.Black, 60, 1)
	res := ResolveBattle(atk, def, seedWithRolls(t, 1, 1))
	if res.Damage < 1 {
		t.Fatalf("damage below floor: %d", res.Damage)
	}
	if res.Defender.Health != 60-res.Damage {
		t.Fatalf("defender health %d, want %d", res.Defender.Health, 60-res.Damage)
	}
}

func TestResolveBattleAttackerWins(t *testing.T) {
	atk := pieceState(gamedto.Queen, gamedto.White, 50, 1)
	def := pieceState(gamedto.Pawn, gamedto.Black, 25, 1)
	// damage = (18+20) - (5+1) = 32, lethal against 25 health.
	res := ResolveBattle(atk, def, seedWithRolls(t, 20, 1))

	if res.Outcome != gamedto.OutcomeAttackerWins {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Defender.Health != 0 {
		t.Fatalf("defender health = %d", res.Defender.Health)
	}
	if res.PointsAwarded != PointValue(gamedto.Pawn) || res.PointsTo != gamedto.White {
		t.Fatalf("points %d to %s", res.PointsAwarded, res.PointsTo)
	}
	if res.XPAwarded != 10 {
		t.Fatalf("xp = %d, want 10", res.XPAwarded)
	}
	if res.KingDefeated {
		t.Fatal("pawn defeat flagged as king defeat")
	}
	if res.Attacker.Experience != 10 {
		t.Fatalf("attacker xp not applied: %d", res.Attacker.Experience)
	}
}

func TestResolveBattleQueenVersusPawnArithmetic(t *testing.T) {
	atk := pieceState(gamedto.Queen, gamedto.White, 50, 1)
	def := pieceState(gamedto.Pawn, gamedto.Black, 25, 1)
	// (18+5) - (5+4) = 14, pawn survives on 11.
	res := ResolveBattle(atk, def, seedWithRolls(t, 5, 4))

	if res.Damage != 14 {
		t.Fatalf("damage = %d, want 14", res.Damage)
	}
	if res.Outcome != gamedto.OutcomeBothSurvive || res.Defender.Health != 11 {
		t.Fatalf("result: %+v", res)
	}
	if res.CounterDamage != 0 || res.Attacker.Health != 50 {
		t.Fatalf("attacker touched: %+v", res)
	}
}

func TestResolveBattleKingDefeated(t *testing.T) {
	atk := pieceState(gamedto.Queen, gamedto.White, 50, 1)
	def := pieceState(gamedto.King, gamedto.Black, 1, 1)
	res := ResolveBattle(atk, def, seedWithRolls(t, 1, 1))
	if res.Outcome != gamedto.OutcomeAttackerWins || !res.KingDefeated {
		t.Fatalf("king defeat not reported: %+v", res)
	}
}

func TestResolveBattleCounter(t *testing.T) {
	// Outclassed pawn attacking a queen with a disastrous roll gap.
	atk := pieceState(gamedto.Pawn, gamedto.White, 25, 1)
	def := pieceState(gamedto.Queen, gamedto.Black, 50, 1)
	res := ResolveBattle(atk, def, seedWithRolls(t, 1, 20))

	// statDiff = 18 - 5 = 13, capped counter of 3.
	if res.CounterDamage != 3 {
		t.Fatalf("counter = %d, want 3", res.CounterDamage)
	}
	if res.Outcome != gamedto.OutcomeBothSurvive {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Attacker.Health != 22 {
		t.Fatalf("attacker health = %d, want 22", res.Attacker.Health)
	}
}

func TestResolveBattleCounterKillsAttacker(t *testing.T) {
	atk := pieceState(gamedto.Pawn, gamedto.White, 2, 1)
	def := pieceState(gamedto.Queen, gamedto.Black, 50, 1)
	res := ResolveBattle(atk, def, seedWithRolls(t, 1, 20))

	if res.Outcome != gamedto.OutcomeDefenderWins {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Attacker.Health != 0 {
		t.Fatalf("attacker health = %d", res.Attacker.Health)
	}
	if res.PointsAwarded != PointValue(gamedto.Pawn) || res.PointsTo != gamedto.Black {
		t.Fatalf("points %d to %s", res.PointsAwarded, res.PointsTo)
	}
}

func TestResolveBattleNoCounterWithoutGap(t *testing.T) {
	atk := pieceState(gamedto.Pawn, gamedto.White, 25, 1)
	def := pieceState(gamedto.Queen, gamedto.Black, 50, 1)
	// Roll gap of 10 is not enough; the rule requires strictly more.
	res := ResolveBattle(atk, def, seedWithRolls(t, 5, 15))
	if res.CounterDamage != 0 {
		t.Fatalf("unexpected counter: %d", res.CounterDamage)
	}
}

func TestResolveBattleClampsInflatedHealth(t *testing.T) {
	atk := pieceState(gamedto.Queen, gamedto.White, 50, 1)
	def := pieceState(gamedto.Pawn, gamedto.Black, 400, 1)
	res := ResolveBattle(atk, def, seedWithRolls(t, 20, 1))
	// Health is clamped to effective max before damage, so 32 is lethal.
	if res.Outcome != gamedto.OutcomeAttackerWins {
		t.Fatalf("inflated health survived clamping: %+v", res)
	}
}

func TestXPAward(t *testing.T) {
	cases := []struct {
		winner, defeated int
		typ              gamedto.PieceType
		want             int
	}{
		{1, 1, gamedto.Pawn, 10},
		{5, 1, gamedto.Pawn, 5},  // floored at half value
		{1, 3, gamedto.Pawn, 14}, // 10 * 1.4
		{1, 1, gamedto.Queen, 60},
		{2, 1, gamedto.King, 80},
	}
	for _, c := range cases {
		if got := XPAward(c.winner, c.defeated, c.typ); got != c.want {
			t.Errorf("XPAward(%d,%d,%s) = %d, want %d", c.winner, c.defeated, c.typ, got, c.want)
		}
	}
}

func TestApplyExperienceLevelsUp(t *testing.T) {
	p := pieceState(gamedto.Knight, gamedto.White, 35, 1)

	ApplyExperience(&p, 49)
	if p.Level != 1 || p.Experience != 49 || p.StatPoints != 0 {
		t.Fatalf("premature level up: %+v", p)
	}

	ApplyExperience(&p, 1)
	if p.Level != 2 || p.Experience != 0 || p.StatPoints != 1 {
		t.Fatalf("single level up failed: %+v", p)
	}

	// 100 to leave level 2, then 10 spare: two thresholds in one grant.
	p = pieceState(gamedto.Knight, gamedto.White, 35, 1)
	ApplyExperience(&p, 160)
	if p.Level != 3 || p.Experience != 10 || p.StatPoints != 2 {
		t.Fatalf("chained level up failed: %+v", p)
	}
}

func TestXPToNext(t *testing.T) {
	if got := XPToNext(1); got != 50 {
		t.Fatalf("XPToNext(1) = %d", got)
	}
	if got := XPToNext(4); got != 200 {
		t.Fatalf("XPToNext(4) = %d", got)
	}
}

func TestHealAmount(t *testing.T) {
	if got := HealAmount(1, 30); got != 7 {
		t.Fatalf("level 1 heal = %d, want 7", got)
	}
	if got := HealAmount(2, 45); got != 13 {
		t.Fatalf("level 2 heal = %d, want 13", got)
	}
	// Percentage caps at 75% regardless of level.
	if got := HealAmount(40, 100); got != 75 {
		t.Fatalf("capped heal = %d, want 75", got)
	}
}

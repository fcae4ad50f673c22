package gamedto

// BattleOutcome tags the result of a resolved battle.
type BattleOutcome string

const (
	OutcomeAttackerWins BattleOutcome = "attacker_wins"
	OutcomeDefenderWins BattleOutcome = "defender_wins"
	OutcomeBothSurvive  BattleOutcome = "both_survive"
)

// BattleResult is a computed value, never stored: post-battle snapshots of
// both pieces plus the rolls that produced them. Derived deterministically
// from a server-side seed so replays and audits are reproducible.
type BattleResult struct {
	Attacker      PieceState    `json:"attacker"`
	Defender      PieceState    `json:"defender"`
	AttackerRoll  int           `json:"attacker_roll"`
	DefenderRoll  int           `json:"defender_roll"`
	Damage        int           `json:"damage"`
	CounterDamage int           `json:"counter_damage,omitempty"`
	Outcome       BattleOutcome `json:"outcome"`
	PointsAwarded int           `json:"points_awarded"`
	PointsTo      Side          `json:"points_to,omitempty"`
	XPAwarded     int           `json:"xp_awarded,omitempty"`
	KingDefeated  bool          `json:"king_defeated,omitempty"`
}

// Points carries accumulated per-side point totals.
type Points struct {
	White int `json:"white"`
	Black int `json:"black"`
}

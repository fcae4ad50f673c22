package room

import (
	"context"
	"time"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Status represents the room lifecycle. Transitions only move forward:
// waiting → playing → finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Sink delivers server events to one participant's connection.
type Sink interface {
	Send(ctx context.Context, evt gamedto.ServerEvent) error
}

// Player binds a verified user identity and its live connection to a
// room side. Exactly one connection may occupy a side at a time.
type Player struct {
	UserID   string
	Username string
	Side     gamedto.Side
	Sink     Sink
}

// Config holds the registry timing knobs.
type Config struct {
	// WaitTTL reaps rooms still waiting for a second player.
	WaitTTL time.Duration
	// GraceWindow reaps playing rooms abandoned after a disconnect.
	GraceWindow time.Duration
	// FinishLinger delays removal of finished rooms so final messages
	// can flush.
	FinishLinger time.Duration
}

// DefaultConfig mirrors the shipped timings: tens of minutes for stale
// lobbies, minutes for abandoned games.
func DefaultConfig() Config {
	return Config{
		WaitTTL:      30 * time.Minute,
		GraceWindow:  5 * time.Minute,
		FinishLinger: 30 * time.Second,
	}
}

// Validation gate errors. Each maps to exactly one wire error code; a
// failing gate causes no state change.
var (
	ErrNotFound         = errf("room not found")
	ErrNotJoinable      = errf("room is not accepting players")
	ErrNotPlaying       = errf("room is not in play")
	ErrNotAParticipant  = errf("user does not occupy a slot in this room")
	ErrOutOfTurn        = errf("not this player's turn")
	ErrSequenceMismatch = errf("move number does not match expected sequence")
	ErrBadOwnership     = errf("piece side does not match the submitting player")
	ErrIllegalMove      = errf("move is not legal for that piece")
	ErrImplausibleStats = errf("submitted stats exceed sane bounds")
	ErrBadBoardState    = errf("submitted board state is invalid")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// Plausibility bounds for client-submitted piece snapshots. Values above
// these are tampering, not gameplay.
const (
	maxPlausibleLevel  = 99
	maxPlausibleStat   = 99
	maxPlausibleHealth = 999
)

package room

import (
	"sync"
	"time"

	"github.com/park285/BattleChess-Server/internal/battle"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Room is a single live match session addressed by a short code. All
// mutations are serialized by the per-room mutex; concurrent submissions
// against the same room never interleave partially.
type Room struct {
	mu sync.Mutex

	code      string
	createdAt time.Time
	updatedAt time.Time

	status Status
	white  *Player
	black  *Player

	board     *battle.Board
	turn      gamedto.Side
	moveCount int

	whitePoints int
	blackPoints int

	gameID string
	winner gamedto.Side

	abandonedAt time.Time
	finishedAt  time.Time
}

func newRoom(code string, creator *Player) *Room {
	now := time.Now()
	return &Room{
		code:      code,
		createdAt: now,
		updatedAt: now,
		status:    StatusWaiting,
		white:     creator,
		board:     battle.NewBoard(),
		turn:      gamedto.White,
	}
}

func (r *Room) Code() string { return r.code }

// Status returns the current lifecycle state.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// GameID returns the persisted record id, empty until the game starts.
func (r *Room) GameID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameID
}

// SetGameID stores the persisted record id once known.
func (r *Room) SetGameID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameID = id
}

// BoardState snapshots the authoritative board.
func (r *Room) BoardState() gamedto.BoardState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.State()
}

// Points returns the accumulated per-side totals.
func (r *Room) Points() gamedto.Points {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gamedto.Points{White: r.whitePoints, Black: r.blackPoints}
}

// Players returns both participants; black is nil while waiting.
func (r *Room) Players() (white, black *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.white, r.black
}

func (r *Room) participant(userID string) *Player {
	if r.white != nil && r.white.UserID == userID {
		return r.white
	}
	if r.black != nil && r.black.UserID == userID {
		return r.black
	}
	return nil
}

func (r *Room) opponentOf(side gamedto.Side) *Player {
	if side == gamedto.White {
		return r.black
	}
	return r.white
}

// join assigns the black slot and flips the room to playing.
func (r *Room) join(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusWaiting || r.black != nil {
		return ErrNotJoinable
	}
	if r.white != nil && r.white.UserID == p.UserID {
		return ErrNotJoinable
	}
	p.Side = gamedto.Black
	r.black = p
	r.status = StatusPlaying
	r.updatedAt = time.Now()
	return nil
}

// MoveOutcome carries everything the handler needs to ack and broadcast
// after an accepted move.
type MoveOutcome struct {
	Move       gamedto.Move
	Board      gamedto.BoardState
	Player     gamedto.Side
	MoveNumber int
	Opponent   *Player
	GameID     string
}

// ApplyMove runs the validation gates in order and, on success, updates
// board, turn and move counter atomically. The first failing gate rejects
// with no partial mutation.
func (r *Room) ApplyMove(userID string, req gamedto.MakeMoveRequest) (*MoveOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	p := r.participant(userID)
	if p == nil {
		return nil, ErrNotAParticipant
	}
	if r.turn != p.Side {
		return nil, ErrOutOfTurn
	}
	if req.MoveNumber != r.moveCount+1 {
		return nil, ErrSequenceMismatch
	}

	pc := r.board.At(req.Move.From)
	if pc == nil || pc.Side != p.Side {
		return nil, ErrBadOwnership
	}
	if !moveAllowed(r.board, req.Move, pc) {
		return nil, ErrIllegalMove
	}

	next, err := battle.BoardFromState(req.GameState)
	if err != nil {
		return nil, ErrBadBoardState
	}

	r.board = next
	r.moveCount++
	r.turn = r.turn.Opponent()
	r.updatedAt = time.Now()

	return &MoveOutcome{
		Move:       req.Move,
		Board:      r.board.State(),
		Player:     p.Side,
		MoveNumber: r.moveCount,
		Opponent:   r.opponentOf(p.Side),
		GameID:     r.gameID,
	}, nil
}

func moveAllowed(b *battle.Board, mv gamedto.Move, pc *battle.Piece) bool {
	if mv.Promote != "" {
		if pc.Type != gamedto.Pawn || !promotionRank(mv.To, pc.Side) {
			return false
		}
		switch mv.Promote {
		case gamedto.Queen, gamedto.Rook, gamedto.Bishop, gamedto.Knight:
		default:
			return false
		}
	}
	for _, to := range battle.ValidMoves(b, mv.From, mv.Heal) {
		if to == mv.To {
			return true
		}
	}
	return false
}

func promotionRank(p gamedto.Position, side gamedto.Side) bool {
	if side == gamedto.White {
		return p.Y == battle.Size-1
	}
	return p.Y == 0
}

// BattleOutcome carries the resolved battle plus room bookkeeping for the
// handler broadcast and persistence.
type BattleOutcome struct {
	Result     gamedto.BattleResult
	Points     gamedto.Points
	Player     gamedto.Side
	MoveNumber int
	Finished   bool
	Winner     gamedto.Side
	White      *Player
	Black      *Player
	GameID     string
}

// ApplyBattle validates a battle intent, derives the seed server-side,
// resolves it and applies the result. This is the anti-cheat boundary:
// clients render whatever comes back, never their own rolls.
func (r *Room) ApplyBattle(userID string, req gamedto.BattleMoveRequest) (*BattleOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	p := r.participant(userID)
	if p == nil {
		return nil, ErrNotAParticipant
	}
	if r.turn != p.Side {
		return nil, ErrOutOfTurn
	}
	if req.MoveNumber != r.moveCount+1 {
		return nil, ErrSequenceMismatch
	}
	if req.Attacker.Side != p.Side || req.Defender.Side != p.Side.Opponent() {
		return nil, ErrBadOwnership
	}
	if !plausible(req.Attacker) || !plausible(req.Defender) {
		return nil, ErrImplausibleStats
	}

	seed := battle.BattleSeed(r.code, req.MoveNumber, req.Attacker.ID, req.Defender.ID)
	res := battle.ResolveBattle(req.Attacker, req.Defender, seed)

	r.applyPieceResult(res.Attacker)
	r.applyPieceResult(res.Defender)

	switch res.PointsTo {
	case gamedto.White:
		r.whitePoints += res.PointsAwarded
	case gamedto.Black:
		r.blackPoints += res.PointsAwarded
	}

	r.moveCount++
	r.turn = r.turn.Opponent()
	r.updatedAt = time.Now()

	out := &BattleOutcome{
		Result:     res,
		Points:     gamedto.Points{White: r.whitePoints, Black: r.blackPoints},
		Player:     p.Side,
		MoveNumber: r.moveCount,
		White:      r.white,
		Black:      r.black,
		GameID:     r.gameID,
	}

	// King defeat ends the game immediately, checkmate or not.
	if res.KingDefeated {
		r.status = StatusFinished
		r.winner = res.PointsTo
		r.finishedAt = time.Now()
		out.Finished = true
		out.Winner = r.winner
	}
	return out, nil
}

// applyPieceResult writes a post-battle snapshot back onto the board,
// removing the piece when its health reached zero.
func (r *Room) applyPieceResult(s gamedto.PieceState) {
	pc, pos, ok := r.board.FindByID(s.ID)
	if !ok {
		return
	}
	if s.Health == 0 {
		r.board.Remove(pos)
		return
	}
	pc.Health = s.Health
	pc.Level = s.Level
	pc.Experience = s.Experience
	pc.StatPoints = s.StatPoints
}

func plausible(s gamedto.PieceState) bool {
	if s.Level < 1 || s.Level > maxPlausibleLevel {
		return false
	}
	if s.AttackMod < 0 || s.DefenseMod < 0 || s.MaxHealthMod < 0 {
		return false
	}
	if battle.BaseAttack(s.Type)+s.AttackMod > maxPlausibleStat {
		return false
	}
	if battle.BaseDefense(s.Type)+s.DefenseMod > maxPlausibleStat {
		return false
	}
	if s.Health < 0 || s.Health > maxPlausibleHealth {
		return false
	}
	return true
}

// FinishOutcome reports a terminal transition.
type FinishOutcome struct {
	Winner       gamedto.Side
	WinnerUserID string
	Board        gamedto.BoardState
	Points       gamedto.Points
	White        *Player
	Black        *Player
	GameID       string
}

// Finish moves the room to its terminal state on an explicit end-game
// event from either participant.
func (r *Room) Finish(userID string, winner gamedto.Side, finalBoard gamedto.BoardState) (*FinishOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if r.participant(userID) == nil {
		return nil, ErrNotAParticipant
	}
	if len(finalBoard) > 0 {
		if next, err := battle.BoardFromState(finalBoard); err == nil {
			r.board = next
		}
	}
	r.status = StatusFinished
	r.winner = winner
	r.finishedAt = time.Now()
	r.updatedAt = r.finishedAt

	out := &FinishOutcome{
		Winner: winner,
		Board:  r.board.State(),
		Points: gamedto.Points{White: r.whitePoints, Black: r.blackPoints},
		White:  r.white,
		Black:  r.black,
		GameID: r.gameID,
	}
	if w := r.bySide(winner); w != nil {
		out.WinnerUserID = w.UserID
	}
	return out, nil
}

func (r *Room) bySide(side gamedto.Side) *Player {
	if side == gamedto.White {
		return r.white
	}
	return r.black
}

// LeaveOutcome describes what the departure of one participant means for
// the room.
type LeaveOutcome struct {
	WasWaiting bool
	Side       gamedto.Side
	Opponent   *Player
	GameID     string
}

// HandleLeave processes a leave or disconnect. A waiting room is deleted
// by the registry immediately; a playing room is marked abandoned and
// reaped after the grace window, notifying the opponent in the meantime.
func (r *Room) HandleLeave(userID string) (*LeaveOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.participant(userID)
	if p == nil {
		return nil, ErrNotAParticipant
	}
	out := &LeaveOutcome{Side: p.Side, GameID: r.gameID}
	switch r.status {
	case StatusWaiting:
		out.WasWaiting = true
	case StatusPlaying:
		r.abandonedAt = time.Now()
		out.Opponent = r.opponentOf(p.Side)
	}
	return out, nil
}

// expired reports whether the sweeper should remove the room.
func (r *Room) expired(now time.Time, cfg Config) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case StatusWaiting:
		return now.Sub(r.createdAt) > cfg.WaitTTL
	case StatusPlaying:
		return !r.abandonedAt.IsZero() && now.Sub(r.abandonedAt) > cfg.GraceWindow
	case StatusFinished:
		return now.Sub(r.finishedAt) > cfg.FinishLinger
	}
	return false
}

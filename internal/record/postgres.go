package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Postgres is the production Gateway backed by lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("schema bootstrap: %w", err)
	}
	return p, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id       TEXT PRIMARY KEY,
			room_code     TEXT NOT NULL,
			white_id      TEXT NOT NULL,
			white_name    TEXT NOT NULL DEFAULT '',
			black_id      TEXT NOT NULL,
			black_name    TEXT NOT NULL DEFAULT '',
			state         JSONB,
			white_points  INT NOT NULL DEFAULT 0,
			black_points  INT NOT NULL DEFAULT 0,
			status        TEXT NOT NULL DEFAULT 'playing',
			winner_side   TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS game_moves (
			id          BIGSERIAL PRIMARY KEY,
			game_id     TEXT NOT NULL,
			player_id   TEXT NOT NULL,
			move_number INT NOT NULL,
			payload     JSONB,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (game_id, move_number)
		)`,
		`CREATE TABLE IF NOT EXISTS player_stats (
			user_id      TEXT PRIMARY KEY,
			games_played INT NOT NULL DEFAULT 0,
			wins         INT NOT NULL DEFAULT 0,
			losses       INT NOT NULL DEFAULT 0,
			rating       INT NOT NULL DEFAULT 1000,
			total_points INT NOT NULL DEFAULT 0,
			level        INT NOT NULL DEFAULT 1,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateGameRecord(ctx context.Context, gameID, roomCode string, white, black PlayerRef, initialState gamedto.BoardState) error {
	raw, err := json.Marshal(initialState)
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}
	const q = `INSERT INTO games (game_id, room_code, white_id, white_name, black_id, black_name, state, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		ON CONFLICT (game_id) DO NOTHING`
	_, err = p.db.ExecContext(ctx, q, gameID, roomCode, white.UserID, white.Username, black.UserID, black.Username, raw, StatusPlaying)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (p *Postgres) AppendMove(ctx context.Context, gameID, playerID string, moveNumber int, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal move payload: %w", err)
	}
	const q = `INSERT INTO game_moves (game_id, player_id, move_number, payload)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (game_id, move_number) DO NOTHING`
	if _, err := p.db.ExecContext(ctx, q, gameID, playerID, moveNumber, raw); err != nil {
		return fmt.Errorf("append move: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateGameState(ctx context.Context, gameID string, state gamedto.BoardState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	const q = `UPDATE games SET state = $2::jsonb, updated_at = NOW() WHERE game_id = $1`
	if _, err := p.db.ExecContext(ctx, q, gameID, raw); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateGamePoints(ctx context.Context, gameID string, white, black int) error {
	const q = `UPDATE games SET white_points = $2, black_points = $3, updated_at = NOW() WHERE game_id = $1`
	if _, err := p.db.ExecContext(ctx, q, gameID, white, black); err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateGameStatus(ctx context.Context, gameID, status string, winner gamedto.Side) error {
	const q = `UPDATE games SET status = $2, winner_side = NULLIF($3, ''), updated_at = NOW() WHERE game_id = $1`
	if _, err := p.db.ExecContext(ctx, q, gameID, status, string(winner)); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// RecordCompletion finalizes the game row and updates both players'
// aggregates inside one transaction.
func (p *Postgres) RecordCompletion(ctx context.Context, gameID string, winnerSide gamedto.Side, winnerUserID string, points gamedto.Points) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin completion tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const gameQ = `UPDATE games
		SET status = $2, winner_side = NULLIF($3, ''), white_points = $4, black_points = $5, updated_at = NOW()
		WHERE game_id = $1
		RETURNING white_id, black_id`
	var whiteID, blackID string
	if err := tx.QueryRowContext(ctx, gameQ, gameID, StatusFinished, string(winnerSide), points.White, points.Black).Scan(&whiteID, &blackID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("game %s not found", gameID)
		}
		return fmt.Errorf("finalize game: %w", err)
	}

	for _, u := range []struct {
		id     string
		won    bool
		points int
	}{
		{whiteID, winnerSide == gamedto.White, points.White},
		{blackID, winnerSide == gamedto.Black, points.Black},
	} {
		if strings.TrimSpace(u.id) == "" {
			continue
		}
		if err := upsertStats(ctx, tx, u.id, u.won, u.points); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertStats(ctx context.Context, tx *sql.Tx, userID string, won bool, points int) error {
	wins, losses, delta := 0, 1, -20
	if won {
		wins, losses, delta = 1, 0, 25
	}
	const q = `INSERT INTO player_stats (user_id, games_played, wins, losses, rating, total_points, level, updated_at)
		VALUES ($1, 1, $2, $3, GREATEST(0, 1000 + $4), $5, 1 + $5 / 100, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			games_played = player_stats.games_played + 1,
			wins = player_stats.wins + $2,
			losses = player_stats.losses + $3,
			rating = GREATEST(0, player_stats.rating + $4),
			total_points = player_stats.total_points + $5,
			level = 1 + (player_stats.total_points + $5) / 100,
			updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, q, userID, wins, losses, delta, points); err != nil {
		return fmt.Errorf("upsert player stats: %w", err)
	}
	return nil
}

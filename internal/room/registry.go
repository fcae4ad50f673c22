package room

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/BattleChess-Server/internal/obslog"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// Registry owns the set of live rooms keyed by room code. It is an
// explicitly injected dependency, not ambient global state; per-room
// synchronization lives on the rooms themselves.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   Config
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{rooms: make(map[string]*Room), cfg: cfg}
}

// Create opens a waiting room with a freshly generated collision-checked
// code and assigns the creator the white slot. Always succeeds short of
// entropy exhaustion.
func (g *Registry) Create(userID, username string, sink Sink) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		if _, taken := g.rooms[code]; taken {
			continue
		}
		creator := &Player{UserID: userID, Username: username, Side: gamedto.White, Sink: sink}
		r := newRoom(code, creator)
		g.rooms[code] = r
		obslog.L().Info("room_create",
			zap.String("room", code),
			zap.String("user_id", userID),
		)
		return r, nil
	}
	return nil, fmt.Errorf("failed to allocate room code")
}

// Join looks up the room and assigns the joiner the black slot, flipping
// the room to playing.
func (g *Registry) Join(code, userID, username string, sink Sink) (*Room, error) {
	r, ok := g.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	p := &Player{UserID: userID, Username: username, Sink: sink}
	if err := r.join(p); err != nil {
		return nil, err
	}
	obslog.L().Info("room_join",
		zap.String("room", code),
		zap.String("user_id", userID),
	)
	return r, nil
}

// Get looks up a live room by code.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[code]
	return r, ok
}

// Remove drops a room from the registry.
func (g *Registry) Remove(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// Counts reports live room totals by status.
func (g *Registry) Counts() map[Status]int {
	g.mu.Lock()
	snapshot := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		snapshot = append(snapshot, r)
	}
	g.mu.Unlock()

	out := map[Status]int{}
	for _, r := range snapshot {
		out[r.Status()]++
	}
	return out
}

// Sweep removes rooms past their age/status thresholds: stale lobbies,
// abandoned games past the grace window, finished rooms past the linger.
// Rooms with active players mid-game are untouched.
func (g *Registry) Sweep(now time.Time) int {
	g.mu.Lock()
	snapshot := make(map[string]*Room, len(g.rooms))
	for code, r := range g.rooms {
		snapshot[code] = r
	}
	g.mu.Unlock()

	removed := 0
	for code, r := range snapshot {
		if !r.expired(now, g.cfg) {
			continue
		}
		g.Remove(code)
		removed++
		obslog.L().Info("room_sweep",
			zap.String("room", code),
			zap.String("status", string(r.Status())),
		)
	}
	return removed
}

// Run drives the sweeper on a fixed interval until ctx is cancelled.
func (g *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			g.Sweep(now)
		}
	}
}

// codeGen returns a short human-typeable room code: 6 uppercase
// alphanumeric characters.
func codeGen() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}

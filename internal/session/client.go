package session

import (
	"context"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/BattleChess-Server/internal/auth"
	"github.com/park285/BattleChess-Server/internal/room"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

// client is one authenticated connection and the room slot it currently
// occupies. The room code is only touched from the connection's read loop.
type client struct {
	user     auth.Identity
	sink     room.Sink
	roomCode string
}

// wsSink serializes writes onto a single websocket; wsjson.Write is not
// safe for concurrent use across goroutines.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSink(conn *websocket.Conn) *wsSink { return &wsSink{conn: conn} }

func (s *wsSink) Send(ctx context.Context, evt gamedto.ServerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wsjson.Write(ctx, s.conn, evt)
}

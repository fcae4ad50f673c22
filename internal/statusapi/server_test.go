package statusapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/park285/BattleChess-Server/internal/room"
	"github.com/park285/BattleChess-Server/pkg/gamedto"
)

type nopSink struct{}

func (nopSink) Send(context.Context, gamedto.ServerEvent) error { return nil }

type fixedConns int64

func (c fixedConns) Connections() int64 { return int64(c) }

func request(t *testing.T, s *Server, path string) *fasthttp.RequestCtx {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(path)
	s.handle(ctx)
	return ctx
}

func TestHealthz(t *testing.T) {
	s := NewServer(room.NewRegistry(room.DefaultConfig()), fixedConns(0))
	ctx := request(t, s, "/healthz")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if string(ctx.Response.Body()) != "ok" {
		t.Fatalf("body = %q", ctx.Response.Body())
	}
}

func TestStatusSnapshot(t *testing.T) {
	reg := room.NewRegistry(room.DefaultConfig())
	r, err := reg.Create("u1", "alice", nopSink{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := reg.Join(r.Code(), "u2", "bob", nopSink{}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := reg.Create("u3", "carol", nopSink{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s := NewServer(reg, fixedConns(3))
	ctx := request(t, s, "/status")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}

	var resp StatusResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Connections != 3 || resp.RoomsPlaying != 1 || resp.RoomsWaiting != 1 {
		t.Fatalf("snapshot: %+v", resp)
	}
}

func TestUnknownPath(t *testing.T) {
	s := NewServer(room.NewRegistry(room.DefaultConfig()), nil)
	ctx := request(t, s, "/metrics")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
}

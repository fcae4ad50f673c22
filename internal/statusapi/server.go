package statusapi

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/BattleChess-Server/internal/obslog"
	"github.com/park285/BattleChess-Server/internal/room"
)

// ConnCounter reports live websocket connections.
type ConnCounter interface {
	Connections() int64
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Uptime        string `json:"uptime"`
	Connections   int64  `json:"connections"`
	RoomsWaiting  int    `json:"rooms_waiting"`
	RoomsPlaying  int    `json:"rooms_playing"`
	RoomsFinished int    `json:"rooms_finished"`
}

// Server exposes a small operational sidecar API next to the game port.
type Server struct {
	rooms   *room.Registry
	conns   ConnCounter
	srv     *fasthttp.Server
	started time.Time
}

func NewServer(rooms *room.Registry, conns ConnCounter) *Server {
	s := &Server{rooms: rooms, conns: conns, started: time.Now()}
	s.srv = &fasthttp.Server{
		Handler:      s.handle,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Name:         "battlechess-status",
	}
	return s
}

// Listen blocks serving the status API until Shutdown.
func (s *Server) Listen(addr string) error {
	obslog.L().Info("status_api_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error { return s.srv.Shutdown() }

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case "/status":
		s.handleStatus(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	counts := s.rooms.Counts()
	resp := StatusResponse{
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		RoomsWaiting:  counts[room.StatusWaiting],
		RoomsPlaying:  counts[room.StatusPlaying],
		RoomsFinished: counts[room.StatusFinished],
	}
	if s.conns != nil {
		resp.Connections = s.conns.Connections()
	}
	body, err := json.Marshal(resp)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

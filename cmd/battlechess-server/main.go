package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/BattleChess-Server/internal/auth"
	appcfg "github.com/park285/BattleChess-Server/internal/config"
	"github.com/park285/BattleChess-Server/internal/msgcat"
	"github.com/park285/BattleChess-Server/internal/obslog"
	"github.com/park285/BattleChess-Server/internal/record"
	"github.com/park285/BattleChess-Server/internal/room"
	"github.com/park285/BattleChess-Server/internal/session"
	"github.com/park285/BattleChess-Server/internal/statusapi"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	cat, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	authStore, err := auth.NewStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("auth store init error: %v", err)
	}

	var gw record.Gateway
	if cfg.DatabaseURL != "" {
		pg, err := record.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres init error: %v", err)
		}
		gw = pg
	} else {
		obslog.L().Warn("record_memory_fallback")
		gw = record.NewMemory()
	}
	records := record.NewAsync(gw)

	rooms := room.NewRegistry(room.Config{
		WaitTTL:      cfg.RoomWaitTTL,
		GraceWindow:  cfg.RoomGraceWindow,
		FinishLinger: cfg.RoomFinishLinger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rooms.Run(ctx, cfg.SweepInterval)

	handler := session.NewHandler(authStore, rooms, records, cat)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var status *statusapi.Server
	if cfg.StatusAddr != "" {
		status = statusapi.NewServer(rooms, handler)
		go func() {
			if err := status.Listen(cfg.StatusAddr); err != nil {
				obslog.L().Error("status_api_error", zap.Error(err))
			}
		}()
	}

	go func() {
		obslog.L().Info("server_listen", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obslog.L().Fatal("server_error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	obslog.L().Info("server_shutdown_begin")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	if status != nil {
		_ = status.Shutdown()
	}
	_ = records.Close()
	_ = authStore.Close()
	obslog.L().Info("server_shutdown_done")
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/park285/BattleChess-Server/internal/statusapi"
)

func main() {
	baseURL := os.Getenv("STATUS_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8081"
	}

	client := statusapi.NewClient(baseURL, 8*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Println("/healthz ok")

	st, err := client.Status(ctx)
	if err != nil {
		log.Fatalf("/status error: %v", err)
	}
	log.Printf("/status ok: uptime=%s connections=%d waiting=%d playing=%d finished=%d",
		st.Uptime, st.Connections, st.RoomsWaiting, st.RoomsPlaying, st.RoomsFinished)
}

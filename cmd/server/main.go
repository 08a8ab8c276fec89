package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/whisperbox/whisperbox/internal/bot"
	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/db"
	svc "github.com/whisperbox/whisperbox/internal/services"
	"github.com/whisperbox/whisperbox/internal/web"
)

func main() {
	// .env is optional, real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.Load()

	if err := db.Init(); err != nil {
		log.Fatalf("db init: %v", err)
	}
	svc.BootstrapAdmins(db.Conn(), cfg.AdminTelegramIDs)

	bot.StartRelayLoop(cfg)

	r := web.Router(cfg)

	log.Printf("WhisperBox listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}

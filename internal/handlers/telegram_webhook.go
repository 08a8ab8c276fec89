package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/whisperbox/whisperbox/internal/bot"
	"github.com/whisperbox/whisperbox/internal/config"
)

// POST /tg/webhook?secret=...
func TelegramWebhook(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("secret") != cfg.WebhookSecret {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		defer r.Body.Close()
		b, _ := io.ReadAll(r.Body)

		var up bot.Update
		if err := json.Unmarshal(b, &up); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		bot.NewDispatcher(cfg).Handle(&up)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

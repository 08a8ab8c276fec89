package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/db"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// GET /qr/{token}.png
// Encodes the user's public send-link so scanning opens the form directly.
func QR(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			http.NotFound(w, r)
			return
		}
		user, err := svc.FindByShareToken(db.Conn(), token)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		png, err := qrcode.Encode(user.ShareLink(cfg.BaseURL), qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// GET /api/stats
func Stats(w http.ResponseWriter, r *http.Request) {
	s, err := svc.Collect(db.Conn())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GET /api/user/{token}/info
// Tells the send page what the form may offer for this recipient.
func UserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := svc.FindByShareToken(db.Conn(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "lookup failed"})
		return
	}

	info := map[string]any{
		"display_name":        user.DisplayName(),
		"is_vip":              user.IsVIP,
		"allow_non_anonymous": false,
		"require_contact":     false,
		"custom_message":      nil,
	}
	if user.IsVIP {
		var s models.VIPSettings
		if err := db.Conn().Where("user_id = ?", user.ID).First(&s).Error; err == nil {
			info["allow_non_anonymous"] = s.AllowNonAnonymous
			info["require_contact"] = s.RequireContact
			if s.CustomMessage != "" {
				info["custom_message"] = s.CustomMessage
			}
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

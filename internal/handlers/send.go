package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// GET /send/{token}
func SendForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		user, err := svc.FindByShareToken(db.Conn(), token)
		if err != nil {
			if errors.Is(err, svc.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				_ = t.ExecuteTemplate(w, "error", map[string]any{
					"Title": "Not found",
					"Error": "This link is invalid or the user no longer exists",
				})
				return
			}
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}

		var settings *models.VIPSettings
		if user.IsVIP {
			var s models.VIPSettings
			if err := db.Conn().Where("user_id = ?", user.ID).First(&s).Error; err == nil {
				settings = &s
			}
		}

		data := map[string]any{
			"Title":          "Send a message",
			"Recipient":      user.DisplayName(),
			"IsVIP":          user.IsVIP,
			"Token":          token,
			"MaxLen":         svc.MaxMessageLen,
			"AllowNamed":     user.IsVIP && (settings == nil || settings.AllowNonAnonymous),
			"RequireContact": settings != nil && settings.RequireContact,
		}
		if settings != nil && settings.CustomMessage != "" {
			data["CustomMessage"] = settings.CustomMessage
		}
		if err := t.ExecuteTemplate(w, "send", data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /send/{token}
// Responds with JSON: the form page submits via fetch.
func SendSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed form data"})
		return
	}

	attr := &svc.Attribution{
		ShowName:      r.FormValue("show_name") == "on",
		SenderName:    r.FormValue("sender_name"),
		SenderContact: r.FormValue("sender_contact"),
	}

	_, err := svc.SubmitMessage(db.Conn(),
		chi.URLParam(r, "token"),
		r.FormValue("message"),
		clientIP(r),
		attr)
	if err != nil {
		status := errStatus(err)
		msg := "could not store the message"
		switch status {
		case http.StatusNotFound:
			msg = "user not found"
		case http.StatusBadRequest:
			msg = err.Error()
		}
		writeJSON(w, status, map[string]any{"error": msg})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message sent!",
	})
}

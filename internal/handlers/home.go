package handlers

import (
	"html/template"
	"net/http"

	"github.com/whisperbox/whisperbox/internal/db"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// GET /
func Home(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Collect(db.Conn())
		if err != nil {
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		if err := t.ExecuteTemplate(w, "home", map[string]any{
			"Title": "Whisperbox",
			"Stats": stats,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

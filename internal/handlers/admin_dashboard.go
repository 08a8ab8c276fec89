package handlers

import (
	"html/template"
	"net/http"

	"github.com/whisperbox/whisperbox/internal/db"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// GET /admin/dashboard
func AdminDashboard(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.CollectDashboard(db.Conn())
		if err != nil {
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		if err := t.ExecuteTemplate(w, "admin_dashboard", map[string]any{
			"Title": "Admin • Dashboard",
			"Admin": AdminFrom(r),
			"Stats": stats,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/handlers"
)

//go:embed templates
var tmplFS embed.FS

func Router(cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	tmpl := mustParseTemplates()

	// Public pages
	r.Get("/", handlers.Home(tmpl))
	r.Get("/healthz", handlers.Health)
	r.Post("/tg/webhook", handlers.TelegramWebhook(cfg))

	// Send-form per share token
	r.Get("/send/{token}", handlers.SendForm(tmpl))
	r.Post("/send/{token}", handlers.SendSubmit)

	// JSON APIs
	r.Get("/api/stats", handlers.Stats)
	r.Get("/api/user/{token}/info", handlers.UserInfo)

	// QR image of the share link
	r.Get("/qr/{token}.png", handlers.QR(cfg))

	// --- Admin routes (with login + guard) ---
	r.Route("/admin", func(ar chi.Router) {
		// Auth endpoints (public)
		ar.Get("/login", handlers.AdminLoginForm(tmpl))
		ar.Post("/login", handlers.AdminLoginSubmit(tmpl, cfg))
		ar.Post("/logout", handlers.AdminLogout)

		// Guarded admin pages
		ar.Group(func(ag chi.Router) {
			ag.Use(handlers.RequireAdmin)

			ag.Get("/dashboard", handlers.AdminDashboard(tmpl))

			ag.Get("/users", handlers.AdminUsers(tmpl))
			ag.Post("/users/{id}/grant_vip", handlers.AdminGrantVIP)
			ag.Post("/users/{id}/revoke_vip", handlers.AdminRevokeVIP)

			ag.Get("/messages", handlers.AdminMessages(tmpl))
			ag.Get("/logs", handlers.AdminLogs(tmpl))
		})
	})

	return r
}

func mustParseTemplates() *template.Template {
	funcs := template.FuncMap{
		"year":        func() string { return time.Now().Format("2006") },
		"fmtDate":     func(t time.Time) string { return t.Format("02.01.2006") },
		"fmtDateTime": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
		"snippet": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "…"
		},
	}

	return template.Must(template.New("").Funcs(funcs).ParseFS(tmplFS,
		"templates/layouts/*.tmpl",
		"templates/pages/*.tmpl",
		"templates/pages/admin/*.tmpl",
	))
}

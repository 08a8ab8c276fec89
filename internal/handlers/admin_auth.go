package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

const adminCookieName = "admin_session"

type adminCtxKey struct{}

// AdminFrom returns the authenticated admin placed in the request context
// by RequireAdmin.
func AdminFrom(r *http.Request) *models.User {
	admin, _ := r.Context().Value(adminCtxKey{}).(*models.User)
	return admin
}

// sessionToken accepts the bearer token from the Authorization header
// (bot-issued sessions) or the login cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(adminCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAdmin is middleware: blocks access unless a usable admin session
// is presented. Page requests bounce to the login form; API requests get a
// 401 JSON body.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := svc.ValidateSession(db.Conn(), sessionToken(r))
		if err != nil {
			if r.Method == http.MethodGet {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminCtxKey{}, admin)))
	})
}

// GET /admin/login
func AdminLoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderLogin(w, t, "")
	}
}

// POST /admin/login with form field telegram_id
func AdminLoginSubmit(t *template.Template, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw := strings.TrimSpace(r.FormValue("telegram_id"))
		if raw == "" {
			renderLogin(w, t, "Enter your Telegram ID")
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			renderLogin(w, t, "Invalid Telegram ID format")
			return
		}

		session, err := svc.AuthenticateAdmin(db.Conn(), id, cfg.SessionTTL)
		if err != nil {
			switch {
			case errors.Is(err, svc.ErrNotFound):
				renderLogin(w, t, "User not found")
			case errors.Is(err, svc.ErrPermission):
				renderLogin(w, t, "Insufficient privileges")
			default:
				http.Error(w, "login failed", http.StatusInternalServerError)
			}
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    session.Token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  session.ExpiresAt,
		})
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	}
}

// POST /admin/logout
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		_ = svc.InvalidateSession(db.Conn(), token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func renderLogin(w http.ResponseWriter, t *template.Template, errText string) {
	if err := t.ExecuteTemplate(w, "admin_login", map[string]any{
		"Title": "Admin • Login",
		"Error": errText,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

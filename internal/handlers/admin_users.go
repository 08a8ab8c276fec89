package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

const adminPageSize = 20

// GET /admin/users?search=&page=
func AdminUsers(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := strings.TrimSpace(r.URL.Query().Get("search"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		countQ := db.Conn().Model(&models.User{})
		listQ := db.Conn().Model(&models.User{})
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			where := "LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(username) LIKE ?"
			countQ = countQ.Where(where, like, like, like)
			listQ = listQ.Where(where, like, like, like)
		}

		var total int64
		if err := countQ.Count(&total).Error; err != nil {
			http.Error(w, "db error (count)", http.StatusInternalServerError)
			return
		}

		var users []models.User
		if err := listQ.
			Order("created_at desc").
			Limit(adminPageSize).
			Offset((page - 1) * adminPageSize).
			Find(&users).Error; err != nil {
			http.Error(w, "db error (list)", http.StatusInternalServerError)
			return
		}

		if err := t.ExecuteTemplate(w, "admin_users", map[string]any{
			"Title":      "Admin • Users",
			"Admin":      AdminFrom(r),
			"Users":      users,
			"Search":     search,
			"Pagination": paginate(page, adminPageSize, total),
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /admin/users/{id}/grant_vip
func AdminGrantVIP(w http.ResponseWriter, r *http.Request) {
	vipAction(w, r, svc.GrantVIP, "VIP status granted to %s")
}

// POST /admin/users/{id}/revoke_vip
func AdminRevokeVIP(w http.ResponseWriter, r *http.Request) {
	vipAction(w, r, svc.RevokeVIP, "VIP status revoked from %s")
}

type vipFunc func(gdb *gorm.DB, targetID uint, admin *models.User) (*models.User, error)

func vipAction(w http.ResponseWriter, r *http.Request, fn vipFunc, okFormat string) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "invalid user id",
		})
		return
	}

	target, err := fn(db.Conn(), uint(id), AdminFrom(r))
	if err != nil {
		status := errStatus(err)
		msg := "operation failed"
		if status == http.StatusNotFound {
			msg = "user not found"
		}
		if status == http.StatusUnauthorized {
			msg = "admin privileges required"
		}
		writeJSON(w, status, map[string]any{"success": false, "message": msg})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf(okFormat, target.DisplayName()),
	})
}

package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
)

// GET /admin/logs?action_type=&page=
func AdminLogs(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		actionType := r.URL.Query().Get("action_type")

		countQ := db.Conn().Model(&models.AdminAction{})
		listQ := db.Conn().Model(&models.AdminAction{})
		if actionType != "" {
			countQ = countQ.Where("action_type = ?", actionType)
			listQ = listQ.Where("action_type = ?", actionType)
		}

		var total int64
		if err := countQ.Count(&total).Error; err != nil {
			http.Error(w, "db error (count)", http.StatusInternalServerError)
			return
		}

		var actions []models.AdminAction
		if err := listQ.Preload("Admin").Preload("TargetUser").
			Order("created_at desc").
			Limit(adminPageSize).
			Offset((page - 1) * adminPageSize).
			Find(&actions).Error; err != nil {
			http.Error(w, "db error (list)", http.StatusInternalServerError)
			return
		}

		var actionTypes []string
		_ = db.Conn().Model(&models.AdminAction{}).
			Distinct("action_type").
			Order("action_type asc").
			Pluck("action_type", &actionTypes).Error

		if err := t.ExecuteTemplate(w, "admin_logs", map[string]any{
			"Title":       "Admin • Action log",
			"Admin":       AdminFrom(r),
			"Actions":     actions,
			"ActionTypes": actionTypes,
			"ActionType":  actionType,
			"Pagination":  paginate(page, adminPageSize, total),
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

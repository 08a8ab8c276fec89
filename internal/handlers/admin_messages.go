package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
)

// GET /admin/messages?user_id=&anonymous=all|yes|no&page=
func AdminMessages(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))
		anon := r.URL.Query().Get("anonymous")
		if anon != "yes" && anon != "no" {
			anon = "all"
		}

		countQ := db.Conn().Model(&models.Message{})
		listQ := db.Conn().Model(&models.Message{})
		if userID > 0 {
			countQ = countQ.Where("recipient_id = ?", userID)
			listQ = listQ.Where("recipient_id = ?", userID)
		}
		switch anon {
		case "yes":
			countQ = countQ.Where("is_anonymous = ?", true)
			listQ = listQ.Where("is_anonymous = ?", true)
		case "no":
			countQ = countQ.Where("is_anonymous = ?", false)
			listQ = listQ.Where("is_anonymous = ?", false)
		}

		var total int64
		if err := countQ.Count(&total).Error; err != nil {
			http.Error(w, "db error (count)", http.StatusInternalServerError)
			return
		}

		var msgs []models.Message
		if err := listQ.Preload("Recipient").
			Order("created_at desc").
			Limit(adminPageSize).
			Offset((page - 1) * adminPageSize).
			Find(&msgs).Error; err != nil {
			http.Error(w, "db error (list)", http.StatusInternalServerError)
			return
		}

		// Recipient dropdown for the filter form.
		var users []models.User
		_ = db.Conn().Order("first_name asc").Find(&users).Error

		if err := t.ExecuteTemplate(w, "admin_messages", map[string]any{
			"Title":      "Admin • Messages",
			"Admin":      AdminFrom(r),
			"Messages":   msgs,
			"Users":      users,
			"UserID":     userID,
			"Anonymous":  anon,
			"Pagination": paginate(page, adminPageSize, total),
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/models"
)

// Stats is the public counters payload served at /api/stats.
type Stats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalMessages int64   `json:"total_messages"`
	SentMessages  int64   `json:"sent_messages"`
	VIPUsers      int64   `json:"vip_users"`
	AdminUsers    int64   `json:"admin_users"`
	DeliveryRate  float64 `json:"delivery_rate"`
}

func Collect(gdb *gorm.DB) (Stats, error) {
	var s Stats
	if err := gdb.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return s, err
	}
	if err := gdb.Model(&models.Message{}).Count(&s.TotalMessages).Error; err != nil {
		return s, err
	}
	if err := gdb.Model(&models.Message{}).Where("is_delivered = ?", true).Count(&s.SentMessages).Error; err != nil {
		return s, err
	}
	if err := gdb.Model(&models.User{}).Where("is_vip = ?", true).Count(&s.VIPUsers).Error; err != nil {
		return s, err
	}
	if err := gdb.Model(&models.User{}).Where("is_admin = ?", true).Count(&s.AdminUsers).Error; err != nil {
		return s, err
	}
	s.DeliveryRate = DeliveryRate(s.SentMessages, s.TotalMessages)
	return s, nil
}

// DeliveryRate is sent/total as a percentage, rounded to 2 decimals; 0 on
// an empty store.
func DeliveryRate(sent, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(sent)/float64(total)*100*100) / 100
}

// DashboardStats adds the admin-only counters and the recent audit trail.
type DashboardStats struct {
	Stats
	NewUsers24h    int64
	NewMessages24h int64
	RecentActions  []models.AdminAction
}

func CollectDashboard(gdb *gorm.DB) (DashboardStats, error) {
	var d DashboardStats
	base, err := Collect(gdb)
	if err != nil {
		return d, err
	}
	d.Stats = base

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	if err := gdb.Model(&models.User{}).Where("created_at >= ?", yesterday).Count(&d.NewUsers24h).Error; err != nil {
		return d, err
	}
	if err := gdb.Model(&models.Message{}).Where("created_at >= ?", yesterday).Count(&d.NewMessages24h).Error; err != nil {
		return d, err
	}
	err = gdb.Preload("Admin").Preload("TargetUser").
		Order("created_at desc").Limit(10).
		Find(&d.RecentActions).Error
	return d, err
}

// UserStats is the per-recipient breakdown shown by the bot's /stats.
type UserStats struct {
	Total        int64
	Delivered    int64
	Anonymous    int64
	NonAnonymous int64
}

func CollectUser(gdb *gorm.DB, userID uint) (UserStats, error) {
	type row struct {
		Total        int64
		Delivered    int64
		Anonymous    int64
		NonAnonymous int64
	}
	var r row
	err := gdb.Model(&models.Message{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_delivered THEN 1 ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(CASE WHEN is_anonymous THEN 1 ELSE 0 END), 0) AS anonymous,
			COALESCE(SUM(CASE WHEN NOT is_anonymous THEN 1 ELSE 0 END), 0) AS non_anonymous`).
		Where("recipient_id = ?", userID).
		Scan(&r).Error
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{Total: r.Total, Delivered: r.Delivered, Anonymous: r.Anonymous, NonAnonymous: r.NonAnonymous}, nil
}

package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/models"
)

// AuthenticateAdmin creates a session for the user with the given telegram
// id. Unknown users reject with ErrNotFound, non-admins with ErrPermission.
func AuthenticateAdmin(gdb *gorm.DB, telegramID int64, ttl time.Duration) (*models.AdminSession, error) {
	u, err := FindByTelegramID(gdb, telegramID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, ErrPermission
	}

	s := models.AdminSession{
		AdminID:   u.ID,
		Token:     NewSessionToken(),
		ExpiresAt: time.Now().UTC().Add(ttl),
		IsActive:  true,
	}
	if err := gdb.Create(&s).Error; err != nil {
		return nil, err
	}
	s.Admin = *u
	return &s, nil
}

// ValidateSession resolves a bearer token to the admin behind it. Expiry is
// checked here, on use; expired rows are never swept.
func ValidateSession(gdb *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrPermission
	}
	var s models.AdminSession
	if err := gdb.Preload("Admin").Where("token = ?", token).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermission
		}
		return nil, err
	}
	if !s.Usable(time.Now().UTC()) {
		return nil, ErrPermission
	}
	return &s.Admin, nil
}

// InvalidateSession deactivates the session (explicit logout). Idempotent;
// unknown tokens are a no-op.
func InvalidateSession(gdb *gorm.DB, token string) error {
	return gdb.Model(&models.AdminSession{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

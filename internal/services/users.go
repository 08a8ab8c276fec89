package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/models"
)

func FindByShareToken(gdb *gorm.DB, token string) (*models.User, error) {
	var u models.User
	if err := gdb.Where("share_token = ?", token).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func FindByTelegramID(gdb *gorm.DB, telegramID int64) (*models.User, error) {
	var u models.User
	if err := gdb.Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func FindByID(gdb *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := gdb.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetOrCreateUser upserts a user on first contact (bot /start or webhook).
// Profile fields are refreshed on every call; the share token is generated
// once and never touched again.
func GetOrCreateUser(gdb *gorm.DB, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	u, err := FindByTelegramID(gdb, telegramID)
	if err == nil {
		if u.Username != username || u.FirstName != firstName || u.LastName != lastName {
			u.Username = username
			u.FirstName = firstName
			u.LastName = lastName
			if err := gdb.Save(u).Error; err != nil {
				return nil, err
			}
		}
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Retry on the (astronomically unlikely) share-token collision.
	for i := 0; i < 5; i++ {
		token := NewShareToken()
		if token == "" {
			return nil, fmt.Errorf("share token generation failed")
		}
		nu := models.User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
			LastName:   lastName,
			ShareToken: token,
		}
		if err := gdb.Create(&nu).Error; err != nil {
			var taken int64
			gdb.Model(&models.User{}).Where("share_token = ?", token).Count(&taken)
			if taken > 0 {
				continue
			}
			return nil, err
		}
		return &nu, nil
	}
	return nil, fmt.Errorf("could not allocate a unique share token")
}

// BootstrapAdmins flips is_admin for the configured telegram ids that
// already exist in the store. Called once at startup.
func BootstrapAdmins(gdb *gorm.DB, telegramIDs []int64) {
	for _, id := range telegramIDs {
		res := gdb.Model(&models.User{}).
			Where("telegram_id = ? AND is_admin = ?", id, false).
			Update("is_admin", true)
		if res.Error == nil && res.RowsAffected > 0 {
			log.Printf("admin bootstrap: telegram id %d promoted", id)
		}
	}
}

// GrantVIP marks target as VIP, ensures default VIP settings exist, and
// appends the audit record. The mutation and the audit row commit as one
// unit or not at all.
func GrantVIP(gdb *gorm.DB, targetID uint, admin *models.User) (*models.User, error) {
	if admin == nil || !admin.IsAdmin {
		return nil, ErrPermission
	}
	target, err := FindByID(gdb, targetID)
	if err != nil {
		return nil, err
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		target.IsVIP = true
		target.VIPGrantedAt = &now
		target.VIPGrantedByID = &admin.ID
		if err := tx.Save(target).Error; err != nil {
			return err
		}

		var settings models.VIPSettings
		if err := tx.Where(models.VIPSettings{UserID: target.ID}).
			Attrs(models.VIPSettings{AllowNonAnonymous: true}).
			FirstOrCreate(&settings).Error; err != nil {
			return err
		}

		action := models.AdminAction{
			AdminID:      &admin.ID,
			ActionType:   models.ActionGrantVIP,
			TargetUserID: &target.ID,
			Description:  fmt.Sprintf("VIP status granted to %s", target.DisplayName()),
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// RevokeVIP clears the VIP fields and appends the audit record, atomically.
func RevokeVIP(gdb *gorm.DB, targetID uint, admin *models.User) (*models.User, error) {
	if admin == nil || !admin.IsAdmin {
		return nil, ErrPermission
	}
	target, err := FindByID(gdb, targetID)
	if err != nil {
		return nil, err
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Updates(map[string]any{
			"is_vip":            false,
			"vip_granted_at":    nil,
			"vip_granted_by_id": nil,
		}).Error; err != nil {
			return err
		}
		target.IsVIP = false
		target.VIPGrantedAt = nil
		target.VIPGrantedByID = nil

		action := models.AdminAction{
			AdminID:      &admin.ID,
			ActionType:   models.ActionRevokeVIP,
			TargetUserID: &target.ID,
			Description:  fmt.Sprintf("VIP status revoked from %s", target.DisplayName()),
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

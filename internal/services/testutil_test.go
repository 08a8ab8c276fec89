package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/whisperbox/whisperbox/internal/models"
)

// openTestDB gives each test its own sqlite file under t.TempDir with the
// same DSN parameters production uses.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "svc_test.db") +
		"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.VIPSettings{},
		&models.Message{},
		&models.AdminSession{},
		&models.AdminAction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func mustCreateUser(t *testing.T, gdb *gorm.DB, u *models.User) *models.User {
	t.Helper()
	if u.ShareToken == "" {
		u.ShareToken = NewShareToken()
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

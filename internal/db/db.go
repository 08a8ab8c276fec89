package db

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/models"
)

var conn *gorm.DB

func Init() error {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "whisperbox.db"
	}

	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.AdminSession{},
		&models.AdminAction{},
		&models.VIPSettings{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	// The relay scans (is_delivered, is_dead, next_attempt_at) every tick.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_msg_pending ON messages(is_delivered, is_dead, next_attempt_at)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_msg_recipient_anon ON messages(recipient_id, is_anonymous)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}

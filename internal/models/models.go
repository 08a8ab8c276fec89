package models

import (
	"fmt"
	"time"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TelegramID int64  `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"size:80"`
	FirstName  string `gorm:"size:80"`
	LastName   string `gorm:"size:80"`

	// Opaque identifier embedded in the public send-link. Never changes
	// after creation.
	ShareToken string `gorm:"size:32;uniqueIndex;not null"`

	IsAdmin bool `gorm:"not null;default:false"`
	IsVIP   bool `gorm:"column:is_vip;not null;default:false"`

	VIPGrantedAt   *time.Time `gorm:"column:vip_granted_at"`
	VIPGrantedByID *uint      `gorm:"column:vip_granted_by_id"`

	Messages    []Message `gorm:"foreignKey:RecipientID"`
	VIPSettings *VIPSettings
}

// DisplayName picks the most human-readable identity we have.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return fmt.Sprintf("User %d", u.TelegramID)
	}
}

// ShareLink returns the full public URL for sending this user a message.
func (u *User) ShareLink(baseURL string) string {
	return baseURL + "/send/" + u.ShareToken
}

type Message struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RecipientID uint `gorm:"not null;index"`
	Recipient   User

	Text     string `gorm:"not null"`
	SenderIP string `gorm:"size:45"`

	IsDelivered bool `gorm:"not null;default:false"`

	// Attribution is only meaningful when IsAnonymous is false, and a
	// message may only be stored non-anonymous if the recipient was VIP at
	// submission time.
	IsAnonymous   bool   `gorm:"not null"`
	SenderName    string `gorm:"size:100"`
	SenderContact string `gorm:"size:200"`

	// Relay bookkeeping: failed sends back off exponentially and give up
	// into the dead-letter state after a configured number of attempts.
	Attempts      int `gorm:"not null;default:0"`
	NextAttemptAt *time.Time
	IsDead        bool `gorm:"not null;default:false"`
}

type AdminSession struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	AdminID uint `gorm:"not null;index"`
	Admin   User

	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:true"`
}

// Usable reports whether the session is still accepted at t. Expiry is
// detected lazily on access; nothing sweeps stale rows.
func (s *AdminSession) Usable(t time.Time) bool {
	return s.IsActive && t.Before(s.ExpiresAt)
}

// Action types recorded in the audit log.
const (
	ActionGrantVIP   = "grant_vip"
	ActionRevokeVIP  = "revoke_vip"
	ActionDeadLetter = "message_dead_letter"
)

// AdminAction is an append-only audit record. AdminID is nil for entries
// written by the system itself (the delivery relay's dead-letter log).
type AdminAction struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	AdminID *uint `gorm:"index"`
	Admin   *User

	ActionType string `gorm:"size:50;not null;index"`

	TargetUserID *uint
	TargetUser   *User

	Description string `gorm:"not null"`
}

// VIPSettings controls what the public send-form offers to a VIP user's
// senders. Created with defaults on the first VIP grant.
type VIPSettings struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID uint `gorm:"uniqueIndex;not null"`

	AllowNonAnonymous bool `gorm:"not null;default:true"`
	RequireContact    bool `gorm:"not null;default:false"`
	CustomMessage     string
}

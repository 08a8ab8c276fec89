package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/whisperbox/whisperbox/internal/models"
)

const (
	MaxMessageLen       = 4000
	MaxSenderNameLen    = 100
	MaxSenderContactLen = 200
	maxSenderIPLen      = 45

	// Failed sends back off exponentially but never wait longer than this.
	maxBackoff = 15 * time.Minute
)

// Attribution carries what the sender asked for on the form. It is only
// honored when the recipient is VIP at submission time; otherwise the
// message is stored anonymous and the fields are silently dropped.
type Attribution struct {
	ShowName      bool
	SenderName    string
	SenderContact string
}

// SubmitMessage validates and stores an inbound message addressed to the
// owner of token. Success means "stored", not "delivered".
func SubmitMessage(gdb *gorm.DB, token, text, senderIP string, attr *Attribution) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Reason: "message cannot be empty"}
	}
	if utf8.RuneCountInString(text) > MaxMessageLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("message too long (max %d characters)", MaxMessageLen)}
	}

	recipient, err := FindByShareToken(gdb, token)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		RecipientID: recipient.ID,
		Text:        text,
		SenderIP:    truncate(senderIP, maxSenderIPLen),
		IsAnonymous: true,
	}

	if recipient.IsVIP && attr != nil && attr.ShowName {
		name := strings.TrimSpace(attr.SenderName)
		if name != "" {
			msg.IsAnonymous = false
			msg.SenderName = truncate(name, MaxSenderNameLen)
			msg.SenderContact = truncate(strings.TrimSpace(attr.SenderContact), MaxSenderContactLen)
		}
	}

	if err := gdb.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListDueUndelivered returns messages the relay should attempt this tick:
// undelivered, not dead-lettered, and past their backoff deadline.
func ListDueUndelivered(gdb *gorm.DB, now time.Time) ([]models.Message, error) {
	var msgs []models.Message
	err := gdb.Preload("Recipient").
		Where("is_delivered = ? AND is_dead = ?", false, false).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("created_at asc").
		Find(&msgs).Error
	return msgs, err
}

// MarkDelivered flips the delivery flag. Idempotent: an already-delivered
// message is left untouched.
func MarkDelivered(gdb *gorm.DB, m *models.Message) error {
	if m.IsDelivered {
		return nil
	}
	if err := gdb.Model(m).Updates(map[string]any{
		"is_delivered":    true,
		"next_attempt_at": nil,
	}).Error; err != nil {
		return err
	}
	m.IsDelivered = true
	m.NextAttemptAt = nil
	return nil
}

// RecordDeliveryFailure bumps the attempt counter and schedules the next
// try with exponential backoff. After maxAttempts the message moves to the
// dead-letter state and the abandonment is surfaced in the admin log.
func RecordDeliveryFailure(gdb *gorm.DB, m *models.Message, now time.Time, interval time.Duration, maxAttempts int) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		m.Attempts++

		if m.Attempts >= maxAttempts {
			m.IsDead = true
			m.NextAttemptAt = nil
			if err := tx.Model(m).Updates(map[string]any{
				"attempts":        m.Attempts,
				"is_dead":         true,
				"next_attempt_at": nil,
			}).Error; err != nil {
				return err
			}
			action := models.AdminAction{
				ActionType:   models.ActionDeadLetter,
				TargetUserID: &m.RecipientID,
				Description:  fmt.Sprintf("message %d abandoned after %d delivery attempts", m.ID, m.Attempts),
			}
			return tx.Create(&action).Error
		}

		next := now.Add(Backoff(interval, m.Attempts))
		m.NextAttemptAt = &next
		return tx.Model(m).Updates(map[string]any{
			"attempts":        m.Attempts,
			"next_attempt_at": next,
		}).Error
	})
}

// Backoff returns the delay after the given attempt count: interval
// doubled per failure, capped at maxBackoff.
func Backoff(interval time.Duration, attempts int) time.Duration {
	d := interval
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

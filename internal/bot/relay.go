package bot

import (
	"log"
	"time"

	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/db"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

// StartRelayLoop launches the single background goroutine that forwards
// stored messages to Telegram. Iterations never overlap; the loop sleeps
// for the configured interval between ticks.
func StartRelayLoop(cfg config.Config) {
	if cfg.BotToken == "" {
		log.Println("relay disabled: TELEGRAM_BOT_TOKEN not set")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.RelayInterval)
		defer ticker.Stop()
		for range ticker.C {
			runRelay(cfg)
		}
	}()
}

// runRelay performs one tick: attempt every due undelivered message.
// Delivery is at-least-once; a failure reported after the message actually
// went out will cause a resend on a later tick.
func runRelay(cfg config.Config) {
	now := time.Now().UTC()
	msgs, err := svc.ListDueUndelivered(db.Conn(), now)
	if err != nil {
		log.Printf("relay: scan failed: %v", err)
		return
	}
	if len(msgs) == 0 {
		return
	}

	c := NewClient(cfg.BotToken)
	for i := range msgs {
		m := &msgs[i]
		if err := c.SendMessage(m.Recipient.TelegramID, FormatMessage(m)); err != nil {
			log.Printf("relay: message %d to %d failed (attempt %d): %v",
				m.ID, m.Recipient.TelegramID, m.Attempts+1, err)
			if err := svc.RecordDeliveryFailure(db.Conn(), m, now, cfg.RelayInterval, cfg.RelayMaxAttempts); err != nil {
				log.Printf("relay: bookkeeping for message %d failed: %v", m.ID, err)
			}
			continue
		}
		if err := svc.MarkDelivered(db.Conn(), m); err != nil {
			log.Printf("relay: mark delivered for message %d failed: %v", m.ID, err)
		}
	}
}

package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/whisperbox/whisperbox/internal/models"
)

func TestSubmitMessage_Validation(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})

	var verr *ValidationError
	if _, err := SubmitMessage(gdb, u.ShareToken, "   ", "1.2.3.4", nil); !errors.As(err, &verr) {
		t.Errorf("blank text: expected ValidationError, got %v", err)
	}
	long := strings.Repeat("a", MaxMessageLen+1)
	if _, err := SubmitMessage(gdb, u.ShareToken, long, "1.2.3.4", nil); !errors.As(err, &verr) {
		t.Errorf("oversized text: expected ValidationError, got %v", err)
	}
	if _, err := SubmitMessage(gdb, "wrongtoken", "hello", "1.2.3.4", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token: expected ErrNotFound, got %v", err)
	}

	var count int64
	gdb.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected submissions persisted %d rows", count)
	}
}

// A message exactly at the length cap must pass; the cap counts runes, not
// bytes, so multibyte text is not penalized.
func TestSubmitMessage_LengthCapIsRunes(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})

	msg, err := SubmitMessage(gdb, u.ShareToken, strings.Repeat("ё", MaxMessageLen), "1.2.3.4", nil)
	if err != nil {
		t.Fatalf("max-length multibyte message rejected: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("message not persisted")
	}
}

// Attribution from the form is only honored for VIP recipients. For a plain
// recipient the message stays anonymous and the name fields stay empty.
func TestSubmitMessage_AttributionDroppedForNonVIP(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})

	msg, err := SubmitMessage(gdb, u.ShareToken, "hi there", "1.2.3.4", &Attribution{
		ShowName:      true,
		SenderName:    "Bob",
		SenderContact: "@bob",
	})
	if err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	if !msg.IsAnonymous {
		t.Error("message to non-VIP should be anonymous")
	}
	if msg.SenderName != "" || msg.SenderContact != "" {
		t.Errorf("sender fields should be dropped, got %q / %q", msg.SenderName, msg.SenderContact)
	}
}

func TestSubmitMessage_AttributionForVIP(t *testing.T) {
	gdb := openTestDB(t)
	vip := mustCreateUser(t, gdb, &models.User{TelegramID: 1, IsVIP: true})

	msg, err := SubmitMessage(gdb, vip.ShareToken, "hi there", "1.2.3.4", &Attribution{
		ShowName:      true,
		SenderName:    "  Bob  ",
		SenderContact: "@bob",
	})
	if err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	if msg.IsAnonymous {
		t.Error("attributed message to VIP stored as anonymous")
	}
	if msg.SenderName != "Bob" {
		t.Errorf("sender name = %q, want trimmed %q", msg.SenderName, "Bob")
	}
	if msg.SenderContact != "@bob" {
		t.Errorf("sender contact = %q", msg.SenderContact)
	}

	// show_name checked but name left blank still means anonymous
	blank, err := SubmitMessage(gdb, vip.ShareToken, "again", "1.2.3.4", &Attribution{ShowName: true})
	if err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	if !blank.IsAnonymous {
		t.Error("blank name with show_name should fall back to anonymous")
	}
}

func TestListDueUndelivered(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})
	now := time.Now().UTC()
	future := now.Add(time.Hour)

	due := models.Message{RecipientID: u.ID, Text: "due", IsAnonymous: true}
	backedOff := models.Message{RecipientID: u.ID, Text: "later", IsAnonymous: true, NextAttemptAt: &future}
	delivered := models.Message{RecipientID: u.ID, Text: "done", IsAnonymous: true, IsDelivered: true}
	dead := models.Message{RecipientID: u.ID, Text: "dead", IsAnonymous: true, IsDead: true}
	for _, m := range []*models.Message{&due, &backedOff, &delivered, &dead} {
		if err := gdb.Create(m).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	msgs, err := ListDueUndelivered(gdb, now)
	if err != nil {
		t.Fatalf("ListDueUndelivered: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "due" {
		t.Fatalf("expected only the due message, got %d rows", len(msgs))
	}
	if msgs[0].Recipient.ID != u.ID {
		t.Error("recipient not preloaded")
	}
}

func TestMarkDelivered_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})
	m := models.Message{RecipientID: u.ID, Text: "x", IsAnonymous: true}
	if err := gdb.Create(&m).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := MarkDelivered(gdb, &m); err != nil {
		t.Fatalf("first MarkDelivered: %v", err)
	}
	if err := MarkDelivered(gdb, &m); err != nil {
		t.Fatalf("second MarkDelivered: %v", err)
	}

	var stored models.Message
	gdb.First(&stored, m.ID)
	if !stored.IsDelivered {
		t.Error("delivery flag not persisted")
	}
	if stored.NextAttemptAt != nil {
		t.Error("backoff deadline should be cleared on delivery")
	}
}

func TestBackoff_DoublesAndCaps(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{7, 640 * time.Second},
		{8, 15 * time.Minute},
		{50, 15 * time.Minute},
	}
	for _, c := range cases {
		if got := Backoff(10*time.Second, c.attempts); got != c.want {
			t.Errorf("Backoff(10s, %d) = %v, want %v", c.attempts, got, c.want)
		}
	}
}

func TestRecordDeliveryFailure_SchedulesRetry(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})
	m := models.Message{RecipientID: u.ID, Text: "x", IsAnonymous: true}
	if err := gdb.Create(&m).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	now := time.Now().UTC()
	if err := RecordDeliveryFailure(gdb, &m, now, 10*time.Second, 10); err != nil {
		t.Fatalf("RecordDeliveryFailure: %v", err)
	}
	if m.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", m.Attempts)
	}
	if m.IsDead {
		t.Error("first failure must not dead-letter")
	}
	if m.NextAttemptAt == nil {
		t.Fatal("next attempt not scheduled")
	}
	if got, want := m.NextAttemptAt.Sub(now), 10*time.Second; got != want {
		t.Errorf("first backoff = %v, want %v", got, want)
	}
}

// After the configured attempt cap the message moves to the dead-letter
// state and a system audit row (no admin attached) records the abandonment.
func TestRecordDeliveryFailure_DeadLetter(t *testing.T) {
	gdb := openTestDB(t)
	u := mustCreateUser(t, gdb, &models.User{TelegramID: 1})
	m := models.Message{RecipientID: u.ID, Text: "x", IsAnonymous: true, Attempts: 2}
	if err := gdb.Create(&m).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := RecordDeliveryFailure(gdb, &m, time.Now().UTC(), 10*time.Second, 3); err != nil {
		t.Fatalf("RecordDeliveryFailure: %v", err)
	}
	if !m.IsDead {
		t.Fatal("message should be dead-lettered at the attempt cap")
	}
	if m.NextAttemptAt != nil {
		t.Error("dead-lettered message should have no retry deadline")
	}

	var action models.AdminAction
	if err := gdb.Where("action_type = ?", models.ActionDeadLetter).First(&action).Error; err != nil {
		t.Fatalf("dead-letter audit row missing: %v", err)
	}
	if action.AdminID != nil {
		t.Error("system audit row should have no admin")
	}
	if action.TargetUserID == nil || *action.TargetUserID != u.ID {
		t.Error("audit row should point at the recipient")
	}

	if msgs, _ := ListDueUndelivered(gdb, time.Now().UTC().Add(time.Hour)); len(msgs) != 0 {
		t.Errorf("dead-lettered message still listed as due: %d rows", len(msgs))
	}
}

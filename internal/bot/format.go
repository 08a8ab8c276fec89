package bot

import "github.com/whisperbox/whisperbox/internal/models"

// FormatMessage renders a stored message for the Telegram channel.
// Anonymous messages get a generic header; attributed ones carry the
// sender's name and, when present, their contact.
func FormatMessage(m *models.Message) string {
	if m.IsAnonymous {
		return "📩 Anonymous message:\n\n" + m.Text
	}
	header := "📩 Message"
	if m.SenderName != "" {
		header += " from " + m.SenderName
	}
	if m.SenderContact != "" {
		header += " (" + m.SenderContact + ")"
	}
	return header + ":\n\n" + m.Text
}

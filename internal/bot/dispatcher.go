package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/whisperbox/whisperbox/internal/config"
	"github.com/whisperbox/whisperbox/internal/db"
	"github.com/whisperbox/whisperbox/internal/models"
	svc "github.com/whisperbox/whisperbox/internal/services"
)

type Dispatcher struct {
	c   *Client
	cfg config.Config
}

func NewDispatcher(cfg config.Config) *Dispatcher {
	return &Dispatcher{c: NewClient(cfg.BotToken), cfg: cfg}
}

func (d *Dispatcher) Handle(u *Update) {
	if u.Message == nil || u.Message.From == nil || u.Message.Chat == nil {
		return
	}
	m := u.Message
	chat := m.Chat.ID
	from := m.From

	// First contact creates the user and their share token.
	user, err := svc.GetOrCreateUser(db.Conn(), from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		return
	}

	// Configured admins who registered after startup get promoted here, on
	// their first message.
	if !user.IsAdmin {
		for _, id := range d.cfg.AdminTelegramIDs {
			if id == user.TelegramID {
				if err := db.Conn().Model(user).Update("is_admin", true).Error; err == nil {
					user.IsAdmin = true
				}
				break
			}
		}
	}

	text := strings.TrimSpace(m.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		d.handleStart(chat, user)
	case strings.HasPrefix(text, "/link"):
		d.handleLink(chat, user)
	case strings.HasPrefix(text, "/stats"):
		d.handleStats(chat, user)
	case strings.HasPrefix(text, "/admin"):
		d.handleAdmin(chat, user)
	case strings.HasPrefix(text, "/grant_vip"):
		d.handleGrantVIP(chat, user, text)
	case strings.HasPrefix(text, "/revoke_vip"):
		d.handleRevokeVIP(chat, user, text)
	case strings.HasPrefix(text, "/user_info"):
		d.handleUserInfo(chat, user, text)
	default:
		_ = d.c.SendMessage(chat,
			"🤖 I collect anonymous messages for you!\n\n"+
				"💡 Commands:\n"+
				"/start - Get started\n"+
				"/link - Get your share link\n"+
				"/stats - Your message stats")
	}
}

func (d *Dispatcher) handleStart(chat int64, user *models.User) {
	vipNote := ""
	if user.IsVIP {
		vipNote = "\n\n⭐ You have VIP status! Senders may attach their name and contact."
	}
	_ = d.c.SendMessage(chat, fmt.Sprintf(
		"🤖 Welcome, <b>%s</b>!\n\n"+
			"🔗 Your link for receiving anonymous messages:\n%s\n\n"+
			"📝 Share it and anyone can write to you without revealing who they are.\n\n"+
			"💡 Commands:\n/start - Show this info\n/link - Get your link\n/stats - Your message stats%s",
		user.DisplayName(), user.ShareLink(d.cfg.BaseURL), vipNote))
}

func (d *Dispatcher) handleLink(chat int64, user *models.User) {
	link := user.ShareLink(d.cfg.BaseURL)
	_ = d.c.SendMessage(chat, "🔗 Your anonymous message link:\n"+link)
	_ = d.c.SendPhoto(chat, d.cfg.BaseURL+"/qr/"+user.ShareToken+".png", "Scan to open your send page")
}

func (d *Dispatcher) handleStats(chat int64, user *models.User) {
	st, err := svc.CollectUser(db.Conn(), user.ID)
	if err != nil {
		_ = d.c.SendMessage(chat, "❌ Could not load your stats, try again later.")
		return
	}
	text := fmt.Sprintf(
		"📊 Your stats:\n\n📩 Messages received: %d\n✅ Delivered: %d\n🕶 Anonymous: %d\n👤 Attributed: %d",
		st.Total, st.Delivered, st.Anonymous, st.NonAnonymous)
	if user.IsVIP {
		text += "\n\n⭐ VIP status: active"
		if user.VIPGrantedAt != nil {
			text += "\n📅 VIP since: " + user.VIPGrantedAt.Format("02.01.2006")
		}
	}
	_ = d.c.SendMessage(chat, text)
}

func (d *Dispatcher) handleAdmin(chat int64, user *models.User) {
	if !user.IsAdmin {
		_ = d.c.SendMessage(chat, "❌ You do not have admin rights.")
		return
	}
	session, err := svc.AuthenticateAdmin(db.Conn(), user.TelegramID, d.cfg.SessionTTL)
	if err != nil {
		_ = d.c.SendMessage(chat, "❌ Could not create an admin session.")
		return
	}
	_ = d.c.SendMessage(chat, fmt.Sprintf(
		"👑 Admin panel access\n\n🔗 %s/admin/login\n🔑 Session token: <code>%s</code>\n\n"+
			"⚠️ The token expires in %s. Do not share it.\n\n"+
			"💡 Admin commands:\n/grant_vip [telegram id]\n/revoke_vip [telegram id]\n/user_info [telegram id]",
		d.cfg.BaseURL, session.Token, d.cfg.SessionTTL))
}

func (d *Dispatcher) handleGrantVIP(chat int64, admin *models.User, text string) {
	target, ok := d.resolveTarget(chat, admin, text, "/grant_vip")
	if !ok {
		return
	}
	if target.IsVIP {
		_ = d.c.SendMessage(chat, fmt.Sprintf("⚠️ %s already has VIP status.", target.DisplayName()))
		return
	}
	if _, err := svc.GrantVIP(db.Conn(), target.ID, admin); err != nil {
		_ = d.c.SendMessage(chat, "❌ Could not grant VIP status.")
		return
	}
	_ = d.c.SendMessage(chat, fmt.Sprintf("✅ VIP status granted to %s", target.DisplayName()))
	_ = d.c.SendMessage(target.TelegramID,
		"🎉 Congratulations, you now have VIP status!\n\n"+
			"⭐ Senders can attach their name and contact to messages. See /stats.")
}

func (d *Dispatcher) handleRevokeVIP(chat int64, admin *models.User, text string) {
	target, ok := d.resolveTarget(chat, admin, text, "/revoke_vip")
	if !ok {
		return
	}
	if !target.IsVIP {
		_ = d.c.SendMessage(chat, fmt.Sprintf("⚠️ %s does not have VIP status.", target.DisplayName()))
		return
	}
	if _, err := svc.RevokeVIP(db.Conn(), target.ID, admin); err != nil {
		_ = d.c.SendMessage(chat, "❌ Could not revoke VIP status.")
		return
	}
	_ = d.c.SendMessage(chat, fmt.Sprintf("✅ VIP status revoked from %s", target.DisplayName()))
	_ = d.c.SendMessage(target.TelegramID,
		"📢 Your VIP status has been revoked.\n\nYou will now receive anonymous messages only.")
}

func (d *Dispatcher) handleUserInfo(chat int64, admin *models.User, text string) {
	target, ok := d.resolveTarget(chat, admin, text, "/user_info")
	if !ok {
		return
	}
	st, _ := svc.CollectUser(db.Conn(), target.ID)

	info := fmt.Sprintf(
		"👤 User info:\n\n🆔 Telegram ID: %d\n📝 Name: %s\n📅 Registered: %s\n📩 Messages received: %d\n\n⭐ VIP: %v",
		target.TelegramID, target.DisplayName(),
		target.CreatedAt.Format("02.01.2006 15:04"), st.Total, target.IsVIP)
	if target.IsVIP && target.VIPGrantedAt != nil {
		info += "\n📅 VIP since: " + target.VIPGrantedAt.Format("02.01.2006 15:04")
	}
	if target.IsAdmin {
		info += "\n👑 Admin: yes"
	}
	info += "\n\n🔗 Link: " + target.ShareLink(d.cfg.BaseURL)
	_ = d.c.SendMessage(chat, info)
}

// resolveTarget validates the admin command form "/cmd [telegram id]" and
// loads the target user, replying with usage errors along the way.
func (d *Dispatcher) resolveTarget(chat int64, admin *models.User, text, cmd string) (*models.User, bool) {
	if !admin.IsAdmin {
		_ = d.c.SendMessage(chat, "❌ You do not have admin rights.")
		return nil, false
	}
	parts := strings.Fields(text)
	if len(parts) < 2 {
		_ = d.c.SendMessage(chat, "❌ Usage: "+cmd+" [telegram id]")
		return nil, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		_ = d.c.SendMessage(chat, "❌ Invalid id, use the numeric Telegram ID.")
		return nil, false
	}
	target, err := svc.FindByTelegramID(db.Conn(), id)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			_ = d.c.SendMessage(chat, fmt.Sprintf("❌ User with ID %d not found.", id))
		} else {
			_ = d.c.SendMessage(chat, "❌ Lookup failed, try again later.")
		}
		return nil, false
	}
	return target, true
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the single place runtime behavior is decided. Every knob comes
// from the environment (a .env file is loaded in cmd/server before this
// runs); there is no capability probing anywhere else in the tree.
type Config struct {
	Addr   string
	DBPath string

	// BaseURL is the public origin used when composing share links and
	// QR image URLs sent over Telegram.
	BaseURL string

	BotToken      string
	WebhookSecret string

	// AdminTelegramIDs are flipped to is_admin at startup if the user
	// already exists, or on their first /start otherwise.
	AdminTelegramIDs []int64

	RelayInterval    time.Duration
	RelayMaxAttempts int

	SessionTTL time.Duration
}

func Load() Config {
	return Config{
		Addr:             getEnv("ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "whisperbox.db"),
		BaseURL:          strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		BotToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookSecret:    os.Getenv("TG_WEBHOOK_SECRET"),
		AdminTelegramIDs: parseIDList(os.Getenv("ADMIN_TELEGRAM_IDS")),
		RelayInterval:    getDuration("RELAY_INTERVAL", 10*time.Second),
		RelayMaxAttempts: getInt("RELAY_MAX_ATTEMPTS", 10),
		SessionTTL:       getDuration("SESSION_TTL", 24*time.Hour),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// parseIDList parses "123,456" into telegram ids, ignoring junk entries.
func parseIDList(raw string) []int64 {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err == nil && id != 0 {
			out = append(out, id)
		}
	}
	return out
}

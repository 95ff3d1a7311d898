package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/riddlerbot/riddler/src/riddler/data"
)

type Config struct {
	BearerToken string
	UserToken   string
	BotUserID   string

	APIEndpoint   string
	TriggerPhrase string

	PollSchedule    string
	RefreshSchedule string

	TrustedListURL string

	ReplyLimit   int
	UserCooldown time.Duration

	MySQLDSN   string
	RedisURL   string
	StatusPort string
}

// Load reads configuration from the settings table with env fallbacks.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	cfg := Config{
		BearerToken: getSetting("x_bearer_token", "X_BEARER_TOKEN", ""),
		UserToken:   getSetting("x_user_token", "X_USER_TOKEN", ""),
		BotUserID:   getSetting("bot_user_id", "BOT_USER_ID", ""),

		APIEndpoint:   getSetting("x_api_endpoint", "X_API_ENDPOINT", ""),
		TriggerPhrase: getSetting("trigger_phrase", "TRIGGER_PHRASE", "riddle me this"),

		PollSchedule:    getSetting("poll_schedule", "POLL_SCHEDULE", "@every 2m"),
		RefreshSchedule: getSetting("trusted_refresh_schedule", "TRUSTED_REFRESH_SCHEDULE", "@every 30m"),

		TrustedListURL: getSetting("trusted_list_url", "TRUSTED_LIST_URL", ""),

		ReplyLimit:   getSettingInt("reply_limit", "REPLY_LIMIT", 280),
		UserCooldown: time.Duration(getSettingInt("user_cooldown_minutes", "USER_COOLDOWN_MINUTES", 10)) * time.Minute,

		MySQLDSN:   getenv("MYSQL_DSN", "riddler:riddler@tcp(127.0.0.1:3306)/riddler"),
		RedisURL:   getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		StatusPort: getSetting("status_port", "STATUS_PORT", "8090"),
	}

	return cfg
}

// SearchQuery builds the recent-search query from the trigger phrase:
// exact phrase, replies only, no retweets.
func (c Config) SearchQuery() string {
	return fmt.Sprintf("%q is:reply -is:retweet", c.TriggerPhrase)
}

func getSetting(name, envKey, def string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = os.Getenv(envKey)
	}
	if val == "" {
		val = def
	}
	return val
}

func getSettingInt(name, envKey string, def int) int {
	raw := getSetting(name, envKey, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid %s value %q, using %d", name, raw, def)
		return def
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

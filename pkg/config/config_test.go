package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.True(t, cfg.Features.EnableCarNumber, "вне production флаги включены")
	assert.False(t, cfg.Features.AllowAnyCarNumber)
}

func TestParse_ProductionFlagsOffByDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("ENABLE_TG_ADMIN_NOTIFS", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Features.EnableCarNumber)
	assert.True(t, cfg.Features.EnableTgAdminNotifs, "явное значение важнее умолчания")
}

func TestParse_TelegramSettings(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_IDS", "100,-200")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{100, -200}, cfg.Telegram.AdminChatIDs)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "abc"
store:
  driver: sqlite
  sqlite_path: "`+filepath.Join(t.TempDir(), "db", "bookings.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Moscow", cfg.Schedule.Timezone)
	assert.Equal(t, "Персональная тренировка", cfg.Service.Name)
	assert.Equal(t, "2500", cfg.Service.Price)
	assert.Equal(t, time.Hour, cfg.ServiceDuration())
	assert.Equal(t, 7, cfg.Schedule.BookableDays)

	s := cfg.AvailabilitySchedule()
	assert.Equal(t, 9, s.WorkStartHour)
	assert.Equal(t, 18, s.WorkEndHour)
	assert.Equal(t, time.Hour, s.SlotDuration)
	assert.Equal(t, time.Duration(0), s.BufferTime)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())

	_, err = os.Stat(filepath.Dir(cfg.Store.SQLitePath))
	assert.NoError(t, err)
}

func TestLoadExpandsAndOverridesFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN_FROM_FILE", "file-token")
	t.Setenv("ADMIN_TELEGRAM_ID", "777")
	t.Setenv("SLOT_DURATION", "30")
	t.Setenv("BUFFER_TIME", "15")

	path := writeConfig(t, `
telegram:
  bot_token: "${BOT_TOKEN_FROM_FILE}"
  admin_id: 1
schedule:
  timezone: "Europe/Berlin"
  slot_duration_minutes: 45
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.BotToken)
	assert.Equal(t, int64(777), cfg.Telegram.AdminID)
	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.AvailabilitySchedule().SlotDuration)
	assert.Equal(t, 15*time.Minute, cfg.AvailabilitySchedule().BufferTime)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.BotToken = "abc"
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "no token", mutate: func(c *Config) { c.Telegram.BotToken = "" }},
		{name: "bad timezone", mutate: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{name: "start after end", mutate: func(c *Config) { c.Schedule.WorkStartHour = 19 }},
		{name: "negative slot", mutate: func(c *Config) { c.Schedule.SlotDurationMinutes = -5 }},
		{name: "negative buffer", mutate: func(c *Config) { c.Schedule.BufferMinutes = -1 }},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }},
		{name: "reminder hour", mutate: func(c *Config) { c.Reminders.Hour = 24 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

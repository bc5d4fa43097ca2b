package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookingpro/internal/availability"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
)

type Config struct {
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	Telegram struct {
		BotToken  string  `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		AdminID   int64   `yaml:"admin_id" envconfig:"ADMIN_TELEGRAM_ID"`
		Debug     bool    `yaml:"debug" envconfig:"TELEGRAM_DEBUG"`
		RateLimit float64 `yaml:"rate_limit" envconfig:"TELEGRAM_RATE_LIMIT"`
	} `yaml:"telegram"`

	Service struct {
		Name            string `yaml:"name" envconfig:"SERVICE_NAME"`
		Price           string `yaml:"price" envconfig:"SERVICE_PRICE"`
		DurationMinutes int    `yaml:"duration_minutes" envconfig:"SERVICE_DURATION"`
	} `yaml:"service"`

	Schedule struct {
		Timezone            string `yaml:"timezone" envconfig:"TIMEZONE"`
		WorkStartHour       int    `yaml:"work_start_hour" envconfig:"WORK_START_HOUR"`
		WorkEndHour         int    `yaml:"work_end_hour" envconfig:"WORK_END_HOUR"`
		SlotDurationMinutes int    `yaml:"slot_duration_minutes" envconfig:"SLOT_DURATION"`
		BufferMinutes       int    `yaml:"buffer_minutes" envconfig:"BUFFER_TIME"`
		BookableDays        int    `yaml:"bookable_days" envconfig:"BOOKABLE_DAYS"`
	} `yaml:"schedule"`

	Calendar struct {
		ID              string `yaml:"id" envconfig:"GOOGLE_CALENDAR_ID"`
		CredentialsPath string `yaml:"credentials_path" envconfig:"GOOGLE_CALENDAR_CREDENTIALS_PATH"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds" envconfig:"CALENDAR_CACHE_TTL_SECONDS"`
	} `yaml:"calendar"`

	Store struct {
		Driver                     string `yaml:"driver" envconfig:"STORE_DRIVER"`
		FirebaseServiceAccountPath string `yaml:"firebase_service_account_path" envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
		SQLitePath                 string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"store"`

	Backup struct {
		Enabled       bool   `yaml:"enabled" envconfig:"BACKUP_ENABLED"`
		IntervalHours int    `yaml:"interval_hours" envconfig:"BACKUP_INTERVAL_HOURS"`
		Path          string `yaml:"path" envconfig:"BACKUP_PATH"`
		RetentionDays int    `yaml:"retention_days" envconfig:"BACKUP_RETENTION_DAYS"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address" envconfig:"REDIS_ADDRESS"`
		Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	} `yaml:"redis"`

	AMQP struct {
		URL      string `yaml:"url" envconfig:"RABBIT_URL"`
		Exchange string `yaml:"exchange" envconfig:"BOOKING_EXCHANGE"`
	} `yaml:"amqp"`

	Reminders struct {
		Enabled bool `yaml:"enabled" envconfig:"REMINDERS_ENABLED"`
		Hour    int  `yaml:"hour" envconfig:"REMINDER_HOUR"`
	} `yaml:"reminders"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port" envconfig:"HEALTH_CHECK_PORT"`
		PrometheusEnabled bool `yaml:"prometheus_enabled" envconfig:"PROMETHEUS_ENABLED"`
		PrometheusPort    int  `yaml:"prometheus_port" envconfig:"PROMETHEUS_PORT"`
	} `yaml:"monitoring"`
}

// Load reads .env, the optional YAML file at path and environment overrides,
// in that order of increasing priority.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err = envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Store.Driver == StoreSQLite {
		if err = os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Telegram.RateLimit <= 0 {
		c.Telegram.RateLimit = 25
	}
	if c.Service.Name == "" {
		c.Service.Name = "Персональная тренировка"
	}
	if c.Service.Price == "" {
		c.Service.Price = "2500"
	}
	if c.Service.DurationMinutes == 0 {
		c.Service.DurationMinutes = 60
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Europe/Moscow"
	}
	if c.Schedule.WorkStartHour == 0 && c.Schedule.WorkEndHour == 0 {
		c.Schedule.WorkStartHour = 9
		c.Schedule.WorkEndHour = 18
	}
	if c.Schedule.SlotDurationMinutes == 0 {
		c.Schedule.SlotDurationMinutes = 60
	}
	if c.Schedule.BookableDays <= 0 {
		c.Schedule.BookableDays = 7
	}
	if c.Calendar.CredentialsPath == "" {
		c.Calendar.CredentialsPath = "./google-calendar-credentials.json"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreFirestore
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.FirebaseServiceAccountPath == "" {
		c.Store.FirebaseServiceAccountPath = "./firebase-service-account.json"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "data/bookings.db"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "backups"
	}
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = "booking.exchange"
	}
	if c.Reminders.Hour == 0 {
		c.Reminders.Hour = 9
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8080
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Schedule.Timezone, err)
	}
	if err := c.AvailabilitySchedule().Validate(); err != nil {
		return err
	}
	if c.Service.DurationMinutes <= 0 {
		return errors.New("service duration must be positive")
	}
	if c.Reminders.Hour < 0 || c.Reminders.Hour > 23 {
		return fmt.Errorf("reminder hour %d out of range", c.Reminders.Hour)
	}
	switch c.Store.Driver {
	case StoreFirestore, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) AvailabilitySchedule() availability.Schedule {
	return availability.Schedule{
		WorkStartHour: c.Schedule.WorkStartHour,
		WorkEndHour:   c.Schedule.WorkEndHour,
		SlotDuration:  time.Duration(c.Schedule.SlotDurationMinutes) * time.Minute,
		BufferTime:    time.Duration(c.Schedule.BufferMinutes) * time.Minute,
	}
}

func (c *Config) ServiceDuration() time.Duration {
	return time.Duration(c.Service.DurationMinutes) * time.Minute
}

func (c *Config) CalendarCacheTTL() time.Duration {
	return time.Duration(c.Calendar.CacheTTLSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

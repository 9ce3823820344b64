package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string
	Workers  int // polling workers
	AdminIDs []int64
}

type LogConfig struct {
	Level  string // trace|debug|info|warn|error
	Format string // json|console
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// SchedulerConfig holds the daily reminder wall time. Location is resolved
// at load time so a bad timezone name fails startup, not the first tick.
type SchedulerConfig struct {
	ReminderHour   int
	ReminderMinute int
	TZName         string
	Location       *time.Location
}

type OpsConfig struct {
	Port int
}

type Config struct {
	Bot       BotConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Ops       OpsConfig

	Runtime RuntimeConfig
}

// LoadConfig reads configuration from the environment, optionally seeded from
// a .env file. It fails fast on any missing or malformed required variable,
// before anything touches the network.
func LoadConfig(envFile string, dev bool) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	var cfg Config

	cfg.Bot.Token = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	cfg.Database.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if u, err := url.Parse(cfg.Database.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("DATABASE_URL is not a valid connection URL")
	}

	ids, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Bot.AdminIDs = ids

	cfg.Bot.Workers, err = intEnv("BOT_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}

	cfg.Scheduler.ReminderHour, err = intEnv("REMINDER_HOUR", 9)
	if err != nil {
		return nil, err
	}
	if cfg.Scheduler.ReminderHour < 0 || cfg.Scheduler.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR must be in 0..23")
	}
	cfg.Scheduler.ReminderMinute, err = intEnv("REMINDER_MINUTE", 0)
	if err != nil {
		return nil, err
	}
	if cfg.Scheduler.ReminderMinute < 0 || cfg.Scheduler.ReminderMinute > 59 {
		return nil, fmt.Errorf("REMINDER_MINUTE must be in 0..59")
	}

	cfg.Scheduler.TZName = strings.TrimSpace(os.Getenv("TZ_NAME"))
	if cfg.Scheduler.TZName == "" {
		cfg.Scheduler.TZName = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(cfg.Scheduler.TZName)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME %q: %w", cfg.Scheduler.TZName, err)
	}
	cfg.Scheduler.Location = loc

	cfg.Log.Level = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// Redis is optional: without it the bot runs with rate limiting off.
	cfg.Redis.URL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB, err = intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg.Ops.Port, err = intEnv("OPS_PORT", 8081)
	if err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ADMIN_IDS is required")
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS: %q is not an integer", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS is required")
	}
	return ids, nil
}

func intEnv(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, raw)
	}
	return v, nil
}

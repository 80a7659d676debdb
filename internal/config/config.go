package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string `env:"DB_DSN" env-required:"true"`
	Environment    string `env:"ENV" env-default:"development"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	HTTP     HTTP
	Log      Log
	Telegram Telegram
	Redis    Redis
	Kafka    Kafka
	Agency   Agency
}

type HTTP struct {
	Port        string   `env:"HTTP_PORT" env-default:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"*"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

type Telegram struct {
	Token       string `env:"TELEGRAM_TOKEN"`
	AdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID"`
}

// Redis пустой адрес отключает кеш и идемпотентность
type Redis struct {
	Addr string        `env:"REDIS_ADDR"`
	TTL  time.Duration `env:"REDIS_CACHE_TTL" env-default:"5m"`
}

// Kafka без брокеров события изменений никуда не пересылаются
type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"backoffice-changes"`
}

type Agency struct {
	AirportsCSVPath     string        `env:"AIRPORTS_CSV_PATH"`
	SettingsFile        string        `env:"AGENCY_SETTINGS_FILE"`
	OptionSweepInterval time.Duration `env:"OPTION_SWEEP_INTERVAL" env-default:"1h"`
	OptionAlertWindow   time.Duration `env:"OPTION_ALERT_WINDOW" env-default:"24h"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфиг только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) BotEnabled() bool {
	return c.Telegram.Token != ""
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Gas      GasConfig
	Music    MusicConfig
	Session  SessionConfig
}

type AppConfig struct {
	HTTPPort        string
	Environment     string
	LogFilePath     string
	DataDir         string `validate:"required"`
	Timezone        string `validate:"required"`
	KeyboardColumns int    `validate:"min=1,max=8"`
	NatsURL         string
	OtelEnabled     bool
}

type TelegramConfig struct {
	BotName  string
	BotToken string `validate:"required"`
}

type GasConfig struct {
	BaseURL      string `validate:"required,url"`
	DeploymentID string `validate:"required"`
	Timeout      time.Duration
}

type MusicConfig struct {
	YandexAPIURL string `validate:"required,url"`
	YandexToken  string
	Timeout      time.Duration
}

type SessionConfig struct {
	Backend     string `validate:"oneof=memory redis"`
	IdleTimeout time.Duration
	RedisURL    string
}

// fileConfig mirrors config.yaml. Only the keys the bot has always read from it.
type fileConfig struct {
	Telegram struct {
		Bot struct {
			Name  string `yaml:"name"`
			Token string `yaml:"token"`
		} `yaml:"bot"`
	} `yaml:"telegram"`
	Gas struct {
		Token string `yaml:"token"`
	} `yaml:"gas"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	var file fileConfig
	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := readYAML(path, &file); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to read %s: %v", path, err)
		}
	}

	return &Config{
		App: AppConfig{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			Environment:     getEnv("GO_ENV", "development"),
			LogFilePath:     getEnv("LOG_FILE_PATH", "logs/bot.log"),
			DataDir:         getEnv("DATA_DIR", "data"),
			Timezone:        getEnv("TIMEZONE", "Asia/Yekaterinburg"),
			KeyboardColumns: getEnvAsInt("KEYBOARD_COLUMNS", 3),
			NatsURL:         getEnv("NATS_URL", ""),
			OtelEnabled:     getEnv("OTEL_ENABLED", "") == "true",
		},
		Telegram: TelegramConfig{
			BotName:  getEnv("TELEGRAM_BOT_NAME", file.Telegram.Bot.Name),
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", file.Telegram.Bot.Token),
		},
		Gas: GasConfig{
			BaseURL:      getEnv("GAS_BASE_URL", "https://script.google.com/macros/s"),
			DeploymentID: getEnv("GAS_DEPLOYMENT_ID", file.Gas.Token),
			Timeout:      time.Duration(getEnvAsInt("GAS_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Music: MusicConfig{
			YandexAPIURL: getEnv("YANDEX_API_URL", "https://api.music.yandex.net"),
			YandexToken:  getEnv("YANDEX_MUSIC_TOKEN", ""),
			Timeout:      time.Duration(getEnvAsInt("YANDEX_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Session: SessionConfig{
			Backend:     getEnv("SESSION_BACKEND", "memory"),
			IdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 0),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}
}

// Validate checks the settings required to run the bot. CLI helpers that only
// touch option files do not call it.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: timezone %q: %w", c.App.Timezone, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("file %s is empty", path)
	}
	return yaml.Unmarshal(data, out)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

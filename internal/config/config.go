// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RabbitMQ                `yaml:"rabbitmq"`
	AI                      `yaml:"ai"`
	Reminders               `yaml:"reminders"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// AIRateLimit — запросов в секунду на один IP для /api/ai/*.
	AIRateLimit float64 `yaml:"ai_rate_limit" env-default:"1"`
	AIRateBurst int     `yaml:"ai_rate_burst" env-default:"5"`
	// AIRateIdleTTL — через сколько простоя адрес забывается лимитером.
	AIRateIdleTTL time.Duration `yaml:"ai_rate_idle_ttl" env-default:"10m"`
	// TrustProxy включает middleware.RealIP: адрес клиента берётся из
	// X-Forwarded-For/X-Real-IP. Включать только за своим прокси.
	TrustProxy bool `yaml:"trust_proxy" env:"HTTP_TRUST_PROXY" env-default:"false"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// RabbitMQ структура для подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// AI настройки внешних LLM-сервисов. Без ключа Groq советник работает
// только на локальном словаре и шаблонных ответах.
type AI struct {
	GroqAPIKey       string        `yaml:"groq_api_key" env:"GROQ_API_KEY"`
	GroqBaseURL      string        `yaml:"groq_base_url" env-default:"https://api.groq.com/openai/v1"`
	Model            string        `yaml:"model" env-default:"llama-3.1-8b-instant"`
	TimeoutAI        time.Duration `yaml:"timeout" env-default:"20s"`
	ScaledownAPIKey  string        `yaml:"scaledown_api_key" env:"SCALEDOWN_API_KEY"`
	ScaledownURL     string        `yaml:"scaledown_url" env-default:"https://api.scaledown.xyz/compress/raw/"`
	ScaledownTimeout time.Duration `yaml:"scaledown_timeout" env-default:"5s"`
}

// Reminders настройки планировщика напоминаний о продлениях
type Reminders struct {
	LeadDays int           `yaml:"lead_days" env-default:"3"`
	Interval time.Duration `yaml:"interval" env-default:"24h"`
	Location string        `yaml:"location" env-default:"UTC"`
}

// SMTP настройки отправки писем
type SMTP struct {
	SMTPHost      string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort      string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser      string `yaml:"user" env:"SMTP_USER"`
	SMTPPass      string `yaml:"pass" env:"SMTP_PASS"`
	SMTPRecipient string `yaml:"recipient" env:"SMTP_RECIPIENT"`
}

// MustLoad функция для загрузки конфига, путь к которому берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// ReminderLocation возвращает часовой пояс, в котором считаются даты напоминаний.
func (c *Config) ReminderLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// String описывает конфиг для лога без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConfigured: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  CacheTTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"AI:\n"+
			"  Model: %s\n"+
			"  GroqConfigured: %t\n"+
			"  ScaledownConfigured: %t\n"+
			"Reminders:\n"+
			"  LeadDays: %d\n"+
			"  Interval: %s\n",
		c.Env,
		c.StorageConnectionString != "",
		c.AddressRedis,
		c.DB,
		c.CacheTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Model,
		c.GroqAPIKey != "",
		c.ScaledownAPIKey != "",
		c.LeadDays,
		c.Interval,
	)
}

// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек чекера
type Config struct {
	Env                      string        `yaml:"env" env-default:"local"`
	StorageConnectionString  string        `yaml:"storage_connection_string"`
	RabbitMQConnectionString string        `yaml:"rabbitmq_connection_string"`
	RabbitMQMaxRetries       int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay       time.Duration `yaml:"rabbitmq_retry_delay" env-default:"2s"`
	Target                   `yaml:"target"`
	RedisConnection          `yaml:"redis_connection"`
	HTTPServer               `yaml:"http_server"`
	Checker                  `yaml:"checker"`
	SMTP                     `yaml:"smtp"`
	ReportAuth               `yaml:"report_auth"`
}

// Target структура с параметрами проверяемого API клуба
type Target struct {
	BaseURL        string        `yaml:"base_url"`
	APIUsername    string        `yaml:"api_username"`
	APIPassword    string        `yaml:"api_password"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
	RateLimit      float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst      int           `yaml:"rate_burst" env-default:"10"`
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
}

// HTTPServer структура для настройки сервера отчётов
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Checker структура с режимом запуска проверок.
// Interval == 0 означает одиночный прогон с выходом по завершении.
type Checker struct {
	Interval        time.Duration `yaml:"interval"`
	MembershipTypes []string      `yaml:"membership_types"`
	AlertTTL        time.Duration `yaml:"alert_ttl" env-default:"6h"`
}

// SMTP структура для отправки почтовых оповещений о провалах проверок
type SMTP struct {
	SMTPHost   string `yaml:"smtp_host"`
	SMTPPort   string `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	AlertEmail string `yaml:"alert_email"`
}

// ReportAuth учётные данные basic auth для ручного запуска проверок.
// Пароль хранится как bcrypt-хеш.
type ReportAuth struct {
	ReportUser         string `yaml:"report_user"`
	ReportPasswordHash string `yaml:"report_password_hash"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
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

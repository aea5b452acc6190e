package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	Auth       `yaml:"auth"`
	Uploads    `yaml:"uploads"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	Email      `yaml:"email"`
	HTTPServer `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	BaseURL     string        `yaml:"base_url" env-default:"http://localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disabled"`
}

type Auth struct {
	// SecretKey signs both session cookies and password reset tokens.
	// It is read once at startup and never mutated afterwards.
	SecretKey     string        `yaml:"secret_key" env:"AUTH_SECRET_KEY" env-required:"true"`
	SessionTTL    time.Duration `yaml:"session_ttl" env-default:"12h"`
	RememberTTL   time.Duration `yaml:"remember_ttl" env-default:"720h"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl" env-default:"30m"`
	BcryptCost    int           `yaml:"bcrypt_cost" env-default:"10"`
}

type Uploads struct {
	Dir string `yaml:"dir" env-default:"./static/profile_pics"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env-required:"true"`
	QueueName string `yaml:"queue_name" env-required:"true"`
}

type Email struct {
	Host     string `yaml:"host" env:"EMAIL_HOST"`
	Port     int    `yaml:"port" env:"EMAIL_PORT" env-default:"587"`
	Username string `yaml:"username" env:"EMAIL_USER"`
	Password string `yaml:"password" env:"EMAIL_PASS"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}

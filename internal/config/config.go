package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ExchangeConfig struct {
	Env           string `yaml:"env"`
	HTTPServer    `yaml:"http_server"`
	ExchangeDB    `yaml:"exchange_db"`
	LogConfig     `yaml:"log_config"`
	MyFinAPI      `yaml:"myfin_api"`
	SyncConfig    `yaml:"sync"`
	KafkaService  `yaml:"kafka-service"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type ExchangeDB struct {
	Dsn string `yaml:"dsn"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type MyFinAPI struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout" env-default:"15s"`
	Retries int           `yaml:"retries" env-default:"3"`
}

type SyncConfig struct {
	City          string        `yaml:"city" env-default:"tbilisi"`
	Interval      time.Duration `yaml:"interval" env-default:"10m"`
	RateRetention time.Duration `yaml:"rate_retention" env-default:"168h"`
	SessionTTL    time.Duration `yaml:"session_ttl" env-default:"30m"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"exchange.sync.events"`
}

func MustLoad() *ExchangeConfig {

	// Processing env config variable and file
	configPath := os.Getenv("EXCHANGE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("EXCHANGE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg ExchangeConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

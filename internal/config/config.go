package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RabbitURI      string
	RabbitExchange string
	RedisURI       string
	NLPServiceURL  string
	NLPTimeout     time.Duration
	AllowOrigins   []string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "6660"),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "smart_quiz"),
		RabbitURI:      os.Getenv("RABBITMQ_URI"),
		RabbitExchange: getEnv("RABBITMQ_EXCHANGE", "quiz.events"),
		RedisURI:       os.Getenv("REDIS_URI"),
		NLPServiceURL:  os.Getenv("NLP_SERVICE_URL"),
		NLPTimeout:     getDuration("NLP_TIMEOUT", 3*time.Second),
		AllowOrigins:   strings.Split(getEnv("ALLOW_ORIGINS", "http://localhost:3000"), ","),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

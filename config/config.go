package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	MongoURI  string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB   string `envconfig:"MONGO_DB" default:"homeviadb"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"change-me-in-production"`

	// Outbound notification channels
	SMTPHost    string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort    string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"SMTP_USER"`
	SMTPPass    string `envconfig:"SMTP_PASS"`
	SenderEmail string `envconfig:"SENDER_EMAIL" default:"no-reply@homevia.app"`

	SMSGatewayURL string `envconfig:"SMS_GATEWAY_URL"`
	SMSFromNumber string `envconfig:"SMS_FROM_NUMBER"`
	SMSAPIKey     string `envconfig:"SMS_API_KEY"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeDev    Mode = "dev"
	ModeNormal Mode = "normal"
)

type Config struct {
	ReceiverMail        string
	SenderMail          string
	PostmarkServerToken string
	MistralAPIKey       string
	MistralModel        string
	DBPath              string
	Mode                Mode
}

// Load reads the configuration from the environment. A .env file is
// optional; in scheduled runs the variables come from the environment
// directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ReceiverMail:        os.Getenv("RECEIVER_MAIL"),
		SenderMail:          os.Getenv("SENDER_MAIL"),
		PostmarkServerToken: os.Getenv("POSTMARK_SERVER_API_TOKEN"),
		MistralAPIKey:       os.Getenv("MISTRAL_API_KEY"),
		MistralModel:        os.Getenv("MISTRAL_MODEL"),
		DBPath:              os.Getenv("MESSAGE_DB_PATH"),
		Mode:                ModeNormal,
	}

	if strings.EqualFold(os.Getenv("ENV"), "dev") {
		cfg.Mode = ModeDev
	}

	var missing []string
	if cfg.ReceiverMail == "" {
		missing = append(missing, "RECEIVER_MAIL")
	}
	if cfg.SenderMail == "" {
		missing = append(missing, "SENDER_MAIL")
	}
	if cfg.PostmarkServerToken == "" {
		missing = append(missing, "POSTMARK_SERVER_API_TOKEN")
	}
	if cfg.MistralAPIKey == "" {
		missing = append(missing, "MISTRAL_API_KEY")
	}
	if cfg.MistralModel == "" {
		missing = append(missing, "MISTRAL_MODEL")
	}
	if cfg.DBPath == "" {
		missing = append(missing, "MESSAGE_DB_PATH")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	PublicKey     string
	ApplicationID string
	BotToken      string
	GuildID       string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.PublicKey != "" && c.ApplicationID != ""
	// Note: BotToken is only needed by the command deployment tool, GuildID is optional
}

// PublicKeyBytes decodes the hex-encoded Ed25519 public key Discord publishes
// for the application
func (c DiscordConfig) PublicKeyBytes() (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(c.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Discord public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("discord public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

type PocketBaseConfig struct {
	BaseURL string
}

// IsConfigured returns true if the PocketBase integration is usable
func (c PocketBaseConfig) IsConfigured() bool {
	return c.BaseURL != ""
}

type DatabaseConfig struct {
	URL    string
	Schema string
}

// IsConfigured returns true if the Postgres store is usable
func (c DatabaseConfig) IsConfigured() bool {
	return c.URL != "" && c.Schema != ""
}

type AppConfig struct {
	Port               string // Optional with default "8080"
	Environment        string
	CORSAllowedOrigins string // Optional with default "*"
	AlertWebhookURL    string // Optional Slack webhook for ops alerts

	// Integration configurations (grouped)
	DiscordConfig    DiscordConfig
	PocketBaseConfig PocketBaseConfig
	DatabaseConfig   DatabaseConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// The public key is the one piece of configuration the webhook cannot run without
	publicKey, err := getEnvRequired("DISCORD_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		Port:               getEnvWithDefault("PORT", "8080"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		AlertWebhookURL:    os.Getenv("ALERT_WEBHOOK_URL"),

		DiscordConfig: DiscordConfig{
			PublicKey:     publicKey,
			ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
			BotToken:      os.Getenv("DISCORD_BOT_TOKEN"),
			GuildID:       os.Getenv("DISCORD_GUILD_ID"),
		},

		// PocketBase configuration (optional)
		PocketBaseConfig: PocketBaseConfig{
			BaseURL: os.Getenv("POCKETBASE_BASE_URL"),
		},

		// Database configuration (optional)
		DatabaseConfig: DatabaseConfig{
			URL:    os.Getenv("DB_URL"),
			Schema: getEnvWithDefault("DB_SCHEMA", "public"),
		},
	}

	// Fail fast on a malformed key instead of rejecting every request at runtime
	if _, err := config.DiscordConfig.PublicKeyBytes(); err != nil {
		return nil, err
	}

	if config.PocketBaseConfig.IsConfigured() {
		log.Printf("✅ PocketBase integration configured")
	} else {
		log.Printf("⚠️ PocketBase integration not configured - shift service will be disabled")
	}

	if config.DatabaseConfig.URL != "" {
		log.Printf("✅ Postgres store configured")
	} else {
		log.Printf("⚠️ Postgres store not configured - token linkage and warnings will be disabled")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Vapi     VapiConfig
	Voice    VoiceConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SessionLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret    string // Auth provider's token signing secret
	CookieName   string
	AdminKeyHash string // bcrypt hash guarding administrative routes
}

type VapiConfig struct {
	BaseURL      string
	PrivateKey   string
	ModelName    string
	VoiceID      string
	VoiceBackup  string
	RequestLimit time.Duration
}

type VoiceConfig struct {
	CallQuota       int // 0 disables the cap
	MaxCallSeconds  int
	TranscriptDelay time.Duration
	TickInterval    time.Duration
	OrphanedTopic   string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SessionLogFilePath: getEnv("SESSION_LOG_FILE_PATH", "logs/session.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("SUPABASE_JWT_SECRET", ""),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "sb-access-token"),
			AdminKeyHash: getEnv("ADMIN_KEY_HASH", ""),
		},
		Vapi: VapiConfig{
			BaseURL:      getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
			PrivateKey:   getEnv("VAPI_PRIVATE_KEY", ""),
			ModelName:    getEnv("VAPI_MODEL", "gpt-4o-mini"),
			VoiceID:      getEnv("VAPI_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
			VoiceBackup:  getEnv("VAPI_VOICE_BACKUP_ID", "pNInz6obpgDQGcFmaJgB"),
			RequestLimit: getEnvAsDuration("VAPI_REQUEST_TIMEOUT", 30*time.Second),
		},
		Voice: VoiceConfig{
			CallQuota:       getEnvAsInt("VOICE_CALL_QUOTA", 3),
			MaxCallSeconds:  getEnvAsPositiveInt("VOICE_MAX_CALL_SECONDS", 180),
			TranscriptDelay: getEnvAsDuration("VOICE_TRANSCRIPT_DELAY", 2*time.Second),
			TickInterval:    getEnvAsDuration("VOICE_TICK_INTERVAL", time.Second),
			OrphanedTopic:   getEnv("ORPHANED_ASSISTANT_TOPIC", "assistant.orphaned"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Voice Assistant"),
		},
	}
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

// getEnvAsPositiveInt falls back for zero and negative values too.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("2s", "500ms").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

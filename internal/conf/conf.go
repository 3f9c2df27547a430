package conf

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// OpenAI configuration
	OpenAI OpenAIConfig

	// Access configuration
	Access AccessConfig

	// Staging directory for downloaded media
	StagingDir string

	// Conversation idle timeout
	IdleTimeout time.Duration

	// Optional log file path; empty logs to stderr
	LogFilePath string

	// Messages configuration (loaded from YAML, defaults built in)
	Messages *Messages

	// Debug mode
	Debug bool
}

// TelegramConfig contains Telegram configuration
type TelegramConfig struct {
	BotToken string
}

// OpenAIConfig contains OpenAI configuration
type OpenAIConfig struct {
	APIKey    string
	ChatModel string
}

// AccessConfig contains access-control configuration
type AccessConfig struct {
	OwnerID       int64
	AllowListPath string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	ownerID := int64(0)
	if val := os.Getenv("OWNER_USER_ID"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			ownerID = parsed
		}
	}

	allowListPath := os.Getenv("ALLOWED_USERS_PATH")
	if allowListPath == "" {
		allowListPath = "allowed_users.txt"
	}

	idleMinutes := 180
	if val := os.Getenv("SESSION_IDLE_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			idleMinutes = parsed
		}
	}

	messages, _ := LoadMessages(os.Getenv("MESSAGES_CONFIG_PATH"))

	return &Config{
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			ChatModel: os.Getenv("CHAT_MODEL"),
		},
		Access: AccessConfig{
			OwnerID:       ownerID,
			AllowListPath: allowListPath,
		},
		StagingDir:  os.Getenv("STAGING_DIR"),
		IdleTimeout: time.Duration(idleMinutes) * time.Minute,
		LogFilePath: os.Getenv("LOG_FILE_PATH"),
		Messages:    messages,
		Debug:       os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required"}
	}
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
	}
	if c.Access.OwnerID == 0 {
		return &ConfigError{Field: "OWNER_USER_ID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the application configuration root.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	AI          AIConfig          `mapstructure:"ai"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Log         LogConfig         `mapstructure:"log"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Storage     StorageConfig     `mapstructure:"storage"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// AIConfig selects and tunes the completion backend.
type AIConfig struct {
	Provider     string          `mapstructure:"provider"` // openai, azure, ark, http, mock
	APIKey       string          `mapstructure:"api_key"`
	Model        string          `mapstructure:"model"`
	BaseURL      string          `mapstructure:"base_url"`
	Endpoint     string          `mapstructure:"endpoint"` // completion endpoint for the http provider
	SystemPrompt string          `mapstructure:"system_prompt"`
	Timeout      time.Duration   `mapstructure:"timeout"`
	Options      AIOptionsConfig `mapstructure:"options"`
	Retry        RetryConfig     `mapstructure:"retry"`
}

// AIOptionsConfig model parameters.
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// RetryConfig backoff for rate-limited completions.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// SpeechConfig transcription and text-to-speech gateway.
type SpeechConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	TTSModel           string `mapstructure:"tts_model"`
	DefaultVoice       string `mapstructure:"default_voice"`
	CacheAudio         bool   `mapstructure:"cache_audio"`
}

// ChatConfig conversation policy limits.
type ChatConfig struct {
	MaxMessageLength int           `mapstructure:"max_message_length"`
	MaxMessages      int           `mapstructure:"max_messages"`
	ContextMessages  int           `mapstructure:"context_messages"`
	ArchiveAfter     time.Duration `mapstructure:"archive_after"`
	TitleMaxLength   int           `mapstructure:"title_max_length"`
}

// PersistenceConfig picks the conversation repository.
type PersistenceConfig struct {
	Driver  string `mapstructure:"driver"` // memory, file, sqlite, mongo
	Cache   bool   `mapstructure:"cache"`  // wrap with the redis read-through cache
	DataDir string `mapstructure:"data_dir"`
	FileKey string `mapstructure:"file_key"`
	SQLite  string `mapstructure:"sqlite_path"`
}

// LogConfig zerolog settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB settings.
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig verifies bearer tokens issued by the identity provider.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Required  bool   `mapstructure:"required"` // reject anonymous callers
}

// StorageConfig object storage for cached speech audio.
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig local filesystem storage.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
	BaseURL  string `mapstructure:"base_url"`
}

// OSSConfig Aliyun OSS storage.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	switch c.Persistence.Driver {
	case "memory", "file", "sqlite":
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("persistence driver mongo requires mongo.uri")
		}
	default:
		return fmt.Errorf("unsupported persistence driver: %s", c.Persistence.Driver)
	}

	if c.Chat.MaxMessageLength <= 0 {
		return errors.New("chat.max_message_length must be positive")
	}
	if c.Chat.MaxMessages <= 0 {
		return errors.New("chat.max_messages must be positive")
	}

	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return errors.New("auth.required needs auth.jwt_secret")
	}

	return nil
}

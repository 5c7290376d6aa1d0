package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// OpenAI-compatible chat API
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	// Auth
	PlainfinAPIKey string

	// Upload limits
	MaxUploadBytes int64

	// Summarization
	ChunkSize              int
	MaxSections            int
	ContinueOnSectionError bool

	// Sessions
	SessionBackend string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisDB        int
	RedisPassword  string

	// PDF
	PDFFallbackPdftotext bool
	ReportWrapChars      int

	LogLevel string
}

// Load reads configuration from the environment. Unset or unparsable values
// fall back to defaults.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8090")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("LLM_TIMEOUT", "120s")
	v.SetDefault("MAX_UPLOAD_BYTES", 52428800) // 50MB
	v.SetDefault("CHUNK_SIZE", 2000)
	v.SetDefault("MAX_SECTIONS", 3)
	v.SetDefault("CONTINUE_ON_SECTION_ERROR", false)
	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PDF_FALLBACK_PDFTOTEXT", false)
	v.SetDefault("REPORT_WRAP_CHARS", 0)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := Config{
		Port: v.GetString("PORT"),

		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		LLMTimeout:    v.GetDuration("LLM_TIMEOUT"),

		PlainfinAPIKey: v.GetString("PLAINFIN_API_KEY"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		ChunkSize:              v.GetInt("CHUNK_SIZE"),
		MaxSections:            v.GetInt("MAX_SECTIONS"),
		ContinueOnSectionError: v.GetBool("CONTINUE_ON_SECTION_ERROR"),

		SessionBackend: strings.ToLower(v.GetString("SESSION_BACKEND")),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisDB:        v.GetInt("REDIS_DB"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),

		PDFFallbackPdftotext: v.GetBool("PDF_FALLBACK_PDFTOTEXT"),
		ReportWrapChars:      v.GetInt("REPORT_WRAP_CHARS"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-3.5-turbo"
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 2000
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = 3
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.ReportWrapChars < 0 {
		cfg.ReportWrapChars = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	return nil
}

// Package config loads application configuration from environment variables.
// All variables use the COACH_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned by Validate when no Gemini API key is set.
var ErrMissingCredential = errors.New("COACH_AI_GOOGLE_API_KEY (or GEMINI_API_KEY) is required")

// Gemini client kinds.
const (
	GoogleClientHTTP = "http"
	GoogleClientSDK  = "sdk"
)

// Config holds all application configuration.
type Config struct {
	AI       AIConfig
	Paths    PathsConfig
	Watch    WatchConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Server   ServerConfig
	Telegram TelegramConfig
	Workbook WorkbookConfig
	Log      LogConfig
}

// AIConfig holds configuration for the vision providers.
type AIConfig struct {
	Google GoogleConfig
	OpenAI OpenAIConfig
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey string
	Model  string
	Client string // "http" or "sdk"
}

// OpenAIConfig holds the optional fallback provider settings.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// PathsConfig holds the filesystem locations the coach reads and writes.
type PathsConfig struct {
	WatchDir       string
	ReportDir      string
	CurriculumPath string
	AdviceCatalog  string // empty uses the embedded catalog
}

// WatchConfig holds watcher timing.
type WatchConfig struct {
	SettleDelay time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the history table.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL keeps the seen
// set in memory.
type CacheConfig struct {
	URL     string
	SeenKey string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Enabled bool
	Port    int
}

// TelegramConfig holds Telegram notification settings.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// WorkbookConfig controls the report index workbook.
type WorkbookConfig struct {
	Enabled bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv reads .env files into the environment. Missing files are
// ignored and variables that are already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with COACH_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		AI: AIConfig{
			Google: GoogleConfig{
				APIKey: envStr("COACH_AI_GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
				Model:  envStr("COACH_AI_GOOGLE_MODEL", "gemini-2.5-flash"),
				Client: strings.ToLower(envStr("COACH_AI_GOOGLE_CLIENT", GoogleClientHTTP)),
			},
			OpenAI: OpenAIConfig{
				APIKey: envStr("COACH_AI_OPENAI_API_KEY", ""),
				Model:  envStr("COACH_AI_OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
		Paths: PathsConfig{
			WatchDir:       envStr("COACH_WATCH_DIR", "./soru_resimleri"),
			ReportDir:      envStr("COACH_REPORT_DIR", "./raporlar"),
			CurriculumPath: envStr("COACH_CURRICULUM_PATH", "./mufredat_db.json"),
			AdviceCatalog:  envStr("COACH_ADVICE_CATALOG_PATH", ""),
		},
		Watch: WatchConfig{
			SettleDelay: envDuration("COACH_SETTLE_DELAY", time.Second),
		},
		Database: DatabaseConfig{
			URL:      envStr("COACH_DATABASE_URL", ""),
			MaxConns: envInt("COACH_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("COACH_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:     envStr("COACH_CACHE_URL", ""),
			SeenKey: envStr("COACH_CACHE_SEEN_KEY", "coach:seen"),
		},
		Server: ServerConfig{
			Enabled: envBool("COACH_SERVER_ENABLED", false),
			Port:    envInt("COACH_SERVER_PORT", 8080),
		},
		Telegram: TelegramConfig{
			BotToken: envStr("COACH_TELEGRAM_BOT_TOKEN", ""),
			ChatID:   envStr("COACH_TELEGRAM_CHAT_ID", ""),
		},
		Workbook: WorkbookConfig{
			Enabled: envBool("COACH_WORKBOOK_ENABLED", true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envStr("COACH_LOG_LEVEL", "info")),
			Format: strings.ToLower(envStr("COACH_LOG_FORMAT", "json")),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.AI.Google.APIKey == "" {
		return ErrMissingCredential
	}
	if c.AI.Google.Client != GoogleClientHTTP && c.AI.Google.Client != GoogleClientSDK {
		return fmt.Errorf("COACH_AI_GOOGLE_CLIENT must be 'http' or 'sdk', got %q", c.AI.Google.Client)
	}
	if c.Paths.WatchDir == "" || c.Paths.ReportDir == "" {
		return fmt.Errorf("COACH_WATCH_DIR and COACH_REPORT_DIR must not be empty")
	}
	if c.Paths.CurriculumPath == "" {
		return fmt.Errorf("COACH_CURRICULUM_PATH must not be empty")
	}
	if c.Watch.SettleDelay <= 0 {
		return fmt.Errorf("COACH_SETTLE_DELAY must be positive, got %s", c.Watch.SettleDelay)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("COACH_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("COACH_TELEGRAM_BOT_TOKEN and COACH_TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// HasFallbackProvider reports whether the OpenAI fallback is configured.
func (c *Config) HasFallbackProvider() bool {
	return c.AI.OpenAI.APIKey != ""
}

// HasTelegram reports whether summaries should be sent to Telegram.
func (c *Config) HasTelegram() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Environment variables recognised by Load.
const (
	EnvUploadDir             = "XLQUERY_UPLOAD_DIR"
	EnvAllowedDirs           = "XLQUERY_ALLOWED_DIRS"
	EnvLogLevel              = "XLQUERY_LOG_LEVEL"
	EnvLLMBaseURL            = "XLQUERY_LLM_BASE_URL"
	EnvLLMModel              = "XLQUERY_LLM_MODEL"
	EnvLLMAPIKey             = "XLQUERY_LLM_API_KEY"
	EnvMaxToolRounds         = "XLQUERY_MAX_TOOL_ROUNDS"
	EnvMaxConcurrentRequests = "XLQUERY_MAX_CONCURRENT_REQUESTS"
	EnvMaxOpenWorkbooks      = "XLQUERY_MAX_OPEN_WORKBOOKS"
	EnvOperationTimeout      = "XLQUERY_OPERATION_TIMEOUT"
)

// LLM holds the chat-completion backend settings.
type LLM struct {
	BaseURL string
	Model   string
	APIKey  string
}

// Settings is the resolved process configuration.
type Settings struct {
	UploadDir   string
	AllowedDirs []string
	LogLevel    string
	LLM         LLM

	MaxToolRounds         int
	MaxConcurrentRequests int
	MaxOpenWorkbooks      int
	OperationTimeout      time.Duration
}

// Load reads an optional .env file (existing variables win) and resolves
// Settings from the environment, falling back to the package defaults.
func Load(envFiles ...string) Settings {
	// A missing .env is the normal case.
	_ = godotenv.Load(envFiles...)

	s := Settings{
		UploadDir:             stringEnv(EnvUploadDir, DefaultUploadDir),
		LogLevel:              stringEnv(EnvLogLevel, "info"),
		MaxToolRounds:         intEnv(EnvMaxToolRounds, DefaultMaxToolRounds),
		MaxConcurrentRequests: intEnv(EnvMaxConcurrentRequests, DefaultMaxConcurrentRequests),
		MaxOpenWorkbooks:      intEnv(EnvMaxOpenWorkbooks, DefaultMaxOpenWorkbooks),
		OperationTimeout:      durationEnv(EnvOperationTimeout, DefaultOperationTimeout),
		LLM: LLM{
			BaseURL: stringEnv(EnvLLMBaseURL, ""),
			Model:   stringEnv(EnvLLMModel, DefaultLLMModel),
			APIKey:  stringEnv(EnvLLMAPIKey, ""),
		},
	}
	if list := os.Getenv(EnvAllowedDirs); list != "" {
		s.AllowedDirs = filepath.SplitList(list)
	}
	return s
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

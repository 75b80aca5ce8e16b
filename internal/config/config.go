package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the job service.
type Config struct {
	// Server
	Port string
	Host string
	Env  string // "development" | "production"

	// Persistence
	DatabasePath string

	// Filesystem layout (storage/uploads, storage/results, storage/temp)
	UploadDir  string
	ResultsDir string
	TempDir    string

	// Upload admission control
	MaxFileSize        int64
	MaxFiles           int
	AllowedUploadExts  []string
	AllowedMimePrefix  []string

	// Job scheduling
	MaxConcurrentJobs int
	RetryMaxAttempts  int // K in spec.md §4.3, default 2

	// Recognition defaults
	DefaultDevice string

	// External backend feature flags, mirroring original_source/backend/app/config.py
	EnableGoogle bool
	EnableQwen   bool
	EnableNemo   bool
	EnableTriton bool
	EnableRiva   bool
	EnableHFAuto bool

	HFAutoDefaultModel string
	GoogleProjectID    string
	QwenAPIKey         string
	QwenEndpoint       string
	TritonURL          string
	RivaURL            string

	// fast_conformer runs as an external container subprocess (spec.md §6's
	// "out-of-band collaborators"); this is the argv[0] of that subprocess.
	FastConformerCmd string

	// HTTP surface
	SecretKey      string
	AllowedOrigins []string

	// Diarization
	HuggingFaceToken string
}

// IsProduction reports whether the service is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load loads configuration from environment variables and an optional .env file.
// Every default below matches original_source/backend/app/config.py.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port: getEnv("PORT", "8000"),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		DatabasePath: getEnv("DATABASE_PATH", "storage/asr.db"),

		UploadDir:  getEnv("UPLOAD_DIR", "storage/uploads"),
		ResultsDir: getEnv("RESULTS_DIR", "storage/results"),
		TempDir:    getEnv("TEMP_DIR", "storage/temp"),

		MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 524288000),
		MaxFiles:          getEnvAsInt("MAX_FILES", 10),
		AllowedUploadExts: getEnvAsList("ALLOWED_UPLOAD_EXTS", []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".mp4", ".mkv"}),
		AllowedMimePrefix: getEnvAsList("ALLOWED_MIME_PREFIXES", []string{"audio/", "video/"}),

		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 3),
		RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 2),

		DefaultDevice: getEnv("DEFAULT_DEVICE", "cuda"),

		EnableGoogle: getEnvAsBool("ENABLE_GOOGLE", false),
		EnableQwen:   getEnvAsBool("ENABLE_QWEN", false),
		EnableNemo:   getEnvAsBool("ENABLE_NEMO", false),
		EnableTriton: getEnvAsBool("ENABLE_TRITON", false),
		EnableRiva:   getEnvAsBool("ENABLE_RIVA", false),
		EnableHFAuto: getEnvAsBool("ENABLE_HF_AUTO_ASR", true),

		HFAutoDefaultModel: getEnv("HF_AUTO_DEFAULT_MODEL", "openai/whisper-small"),
		GoogleProjectID:    getEnv("GOOGLE_PROJECT_ID", ""),
		QwenAPIKey:         getEnv("QWEN_API_KEY", ""),
		QwenEndpoint:       getEnv("QWEN_ENDPOINT", ""),
		TritonURL:          getEnv("TRITON_URL", ""),
		RivaURL:            getEnv("RIVA_URL", ""),

		FastConformerCmd: getEnv("FAST_CONFORMER_CMD", ""),

		SecretKey:      getSecretKey(),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		HuggingFaceToken: getEnv("HUGGINGFACE_TOKEN", ""),
	}

	return cfg
}

// WatchEnvFile watches the .env file for edits and invokes onChange with a
// freshly reloaded Config. Mirrors the fsnotify usage in the teacher's
// drop-folder and CLI watchers, repurposed to watch a config file instead of
// a directory of incoming audio.
func WatchEnvFile(path string, onChange func(*Config)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for event := range watcher.Events {
			if event.Name == path && (event.Op&(fsnotify.Write|fsnotify.Create) != 0) {
				_ = godotenv.Overload(path)
				onChange(Load())
			}
		}
	}()
	return watcher, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// getSecretKey returns the HTTP surface's secret key, persisting a generated
// one across restarts the same way the teacher persists its JWT secret.
func getSecretKey() string {
	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		return secret
	}
	secretFile := getEnv("SECRET_KEY_FILE", "storage/secret_key")
	if data, err := os.ReadFile(secretFile); err == nil && len(data) > 0 {
		return strings.TrimSpace(string(data))
	}
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("Warning: could not generate secure secret key, using fallback: %v", err)
		return "fallback-secret-key-please-set-SECRET_KEY-env-var"
	}
	secret := hex.EncodeToString(bytes)
	_ = os.MkdirAll(filepath.Dir(secretFile), 0755)
	_ = os.WriteFile(secretFile, []byte(secret), 0600)
	log.Println("Generated persistent secret key at", secretFile)
	return secret
}

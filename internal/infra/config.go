package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	EditEndpoint       string
	EditTimeout        time.Duration
	PhotoMaxBytes      int64
	PhotoMaxDimension  int
	ProgressDwell      time.Duration
	ProgressFinalHold  time.Duration
	ExportTarget       string
	ExportDir          string
	ShareTarget        string
	DeniedPermissions  []string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	TrustProxyHeaders  bool
	SessionIdleTimeout time.Duration
	GeoIPDBPath        string
}

const (
	ExportTargetFilesystem = "filesystem"
	ExportTargetDownload   = "download"

	ShareTargetLog         = "log"
	ShareTargetUnsupported = "unsupported"

	DefaultEditEndpoint = "https://toolkit.rork.com/images/edit/"
)

// LoadDotEnv reads .env files if present. Missing files are not an error.
func LoadDotEnv() {
	_ = godotenv.Load(".env", ".env.local")
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		EditEndpoint:       getEnv("EDIT_ENDPOINT", DefaultEditEndpoint),
		EditTimeout:        time.Second * time.Duration(getEnvInt("EDIT_TIMEOUT_SECONDS", 60)),
		PhotoMaxBytes:      int64(getEnvInt("PHOTO_MAX_BYTES", 20<<20)),
		PhotoMaxDimension:  getEnvInt("PHOTO_MAX_DIMENSION", 0),
		ProgressDwell:      time.Millisecond * time.Duration(getEnvInt("PROGRESS_DWELL_MS", 800)),
		ProgressFinalHold:  time.Millisecond * time.Duration(getEnvInt("PROGRESS_FINAL_HOLD_MS", 1000)),
		ExportTarget:       strings.ToLower(getEnv("EXPORT_TARGET", ExportTargetFilesystem)),
		ExportDir:          getEnv("EXPORT_DIR", "./exports"),
		ShareTarget:        strings.ToLower(getEnv("SHARE_TARGET", ShareTargetLog)),
		DeniedPermissions:  getEnvList("PERMISSIONS_DENIED"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		SessionIdleTimeout: time.Minute * time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MINUTES", 30)),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
	}

	if cfg.EditTimeout <= 0 {
		return nil, fmt.Errorf("EDIT_TIMEOUT_SECONDS must be positive")
	}
	if cfg.PhotoMaxBytes < 0 || cfg.PhotoMaxDimension < 0 {
		return nil, fmt.Errorf("photo limits must not be negative")
	}
	if cfg.ProgressDwell < 0 || cfg.ProgressFinalHold < 0 {
		return nil, fmt.Errorf("progress timings must not be negative")
	}
	switch cfg.ExportTarget {
	case ExportTargetFilesystem, ExportTargetDownload:
	default:
		return nil, fmt.Errorf("EXPORT_TARGET %q is not supported", cfg.ExportTarget)
	}
	switch cfg.ShareTarget {
	case ShareTargetLog, ShareTargetUnsupported:
	default:
		return nil, fmt.Errorf("SHARE_TARGET %q is not supported", cfg.ShareTarget)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

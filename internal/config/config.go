package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort           = "8080"
	DefaultMaxUploadBytes = 50 << 20
	DefaultRateLimit      = 60
	DefaultRetention      = 24 * time.Hour
	DefaultSweepInterval  = 30 * time.Minute
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
	// PublicURL — база для публичных ссылок, если бакет отдаётся через CDN/другой хост
	PublicURL string
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type Config struct {
	Port            string
	MaxUploadBytes  int64
	RateLimitPerMin int
	CORSOrigins     []string

	S3            S3Config
	Retention     time.Duration
	SweepInterval time.Duration

	DatabaseURL string

	AdminBotToken string
	AdminChatIDs  []int64
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", DefaultPort),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminBotToken: os.Getenv("ADMIN_BOT_TOKEN"),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
	}

	var err error
	if cfg.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	limit, err := getEnvInt64("RATE_LIMIT_PER_MIN", DefaultRateLimit)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitPerMin = int(limit)

	if cfg.S3.Secure, err = getEnvBool("S3_SECURE", true); err != nil {
		return nil, err
	}
	if cfg.Retention, err = getEnvDuration("S3_RETENTION", DefaultRetention); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getEnvDuration("SWEEP_INTERVAL", DefaultSweepInterval); err != nil {
		return nil, err
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}

	for _, s := range splitList(os.Getenv("ADMIN_CHAT_IDS")) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_CHAT_IDS: bad chat id %q", s)
		}
		cfg.AdminChatIDs = append(cfg.AdminChatIDs, id)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

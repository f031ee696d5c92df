package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/mfa/pkg/httpx"
)

type Config struct {
	Issuer          string // Optional: issuer label shown in authenticator apps (default: Campus)
	TOTPAlgorithm   string // Optional: TOTP HMAC algorithm (SHA1, SHA256, SHA512) (default: SHA1)
	BackupCodeCount int    // Optional: backup codes issued per batch (default: 10)

	DatabaseDriver string // Optional: storage backend (sqlite, postgres) (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./mfa.db)
	DatabaseURL    string // Required for postgres: pgx connection string
	PepperFile     string // Optional: path to file containing pepper for backup code hashing (default: ./pepper)
	MasterKeyPath  string // Optional: path to master key used to seal TOTP secrets at rest

	JWTAlgorithm        string        // Optional: access token algorithm (EdDSA, RS256, ES256) (default: EdDSA)
	JWTIssuer           string        // Optional: expected iss claim of access tokens
	JWTAudience         []string      // Optional: accepted aud claims, comma separated
	JWKSURL             string        // Optional: auth service JWKS endpoint
	JWKSRefreshInterval time.Duration // Optional: JWKS refresh period (default: 15m)
	JWTPublicKey        string        // Optional: PEM public key, used when no JWKS URL is set
	JWTPublicKeyFile    string        // Optional: file holding the PEM public key
	JWTKeyID            string        // Optional: kid assigned to the PEM public key (default: default)
	RequiredScope       string        // Optional: scope required on every /v1/mfa route

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	StrictLimit   httpx.RateLimitConfig
	ModerateLimit httpx.RateLimitConfig
	LenientLimit  httpx.RateLimitConfig
}

func LoadConfig() Config {
	// A missing .env is the normal case outside local development
	_ = godotenv.Load()

	cfg := Config{
		Issuer:          getEnvOrDefault("MFA_ISSUER", "Campus"),
		TOTPAlgorithm:   getEnvOrDefault("MFA_TOTP_ALGORITHM", "SHA1"),
		BackupCodeCount: getEnvIntOrDefault("MFA_BACKUP_CODE_COUNT", 10),

		DatabaseDriver: getEnvOrDefault("MFA_DATABASE_DRIVER", "sqlite"),
		DatabaseFile:   getEnvOrDefault("MFA_DATABASE_FILE", "mfa.db"),
		DatabaseURL:    os.Getenv("MFA_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("MFA_PEPPER_FILE", "pepper"),
		MasterKeyPath:  os.Getenv("MFA_MASTER_KEY_PATH"),

		JWTAlgorithm:        getEnvOrDefault("MFA_JWT_ALGORITHM", "EdDSA"),
		JWTIssuer:           os.Getenv("MFA_JWT_ISSUER"),
		JWTAudience:         splitList(os.Getenv("MFA_JWT_AUDIENCE")),
		JWKSURL:             os.Getenv("MFA_JWKS_URL"),
		JWKSRefreshInterval: getEnvDurationOrDefault("MFA_JWKS_REFRESH_INTERVAL", 15*time.Minute),
		JWTPublicKey:        os.Getenv("MFA_JWT_PUBLIC_KEY"),
		JWTPublicKeyFile:    os.Getenv("MFA_JWT_PUBLIC_KEY_FILE"),
		JWTKeyID:            getEnvOrDefault("MFA_JWT_KEY_ID", "default"),
		RequiredScope:       os.Getenv("MFA_REQUIRED_SCOPE"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		StrictLimit:   httpx.ParseRateLimitFromEnv("STRICT", httpx.StrictLimit),
		ModerateLimit: httpx.ParseRateLimitFromEnv("MODERATE", httpx.ModerateLimit),
		LenientLimit:  httpx.ParseRateLimitFromEnv("LENIENT", httpx.LenientLimit),
	}

	if cfg.BackupCodeCount <= 0 {
		cfg.BackupCodeCount = 10
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

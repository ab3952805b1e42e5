package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	APIURL       string // JSON endpoints, e.g. http://localhost:5000/api
	AssetURL     string // static images, may be the same host as APIURL
	HTTPTimeout  time.Duration
	SessionKey   []byte
	CSRFKey      []byte
	CookieDomain string
	CookieSecure bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8585"),
		APIURL:       strings.TrimRight(getEnv("API_URL", "http://localhost:5000/api"), "/"),
		AssetURL:     strings.TrimRight(getEnv("ASSET_URL", "http://localhost:5000"), "/"),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
	}

	timeout := getEnv("HTTP_TIMEOUT", "15s")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		slog.Warn("Invalid HTTP_TIMEOUT, falling back to 15s", "value", timeout)
		d = 15 * time.Second
	}
	cfg.HTTPTimeout = d

	cfg.SessionKey = loadKey("SESSION_KEY")
	cfg.CSRFKey = loadKey("CSRF_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	return cfg, nil
}

// loadKey reads a base64-encoded 32+ byte key from the environment, falling
// back to a random key for development. Sessions and CSRF tokens signed with
// a generated key do not survive a restart.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn("Key not set, generating a random one for development. Set it in production.", "env", name)
		return randomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn("Key is invalid or shorter than 32 bytes, generating a random one. Set a secure key in production.", "env", name)
		return randomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable for key material
		panic(err)
	}
	return b
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process-wide configuration, loaded once at startup.
// None of it is hot-reloadable; rotating the signing secret invalidates
// every outstanding session token.
type Config struct {
	// SigningSecret signs and verifies session tokens. Required.
	SigningSecret []byte

	// AdminWallets is the static allow-list of addresses always granted
	// the ADMIN role.
	AdminWallets []string

	// ChallengeTTL bounds how long an unconsumed challenge stays valid.
	ChallengeTTL time.Duration

	// SessionTTL is the lifetime of issued session tokens.
	SessionTTL time.Duration

	// RedisURL selects the backing store. Empty means in-process memory
	// stores, which break single-use nonce guarantees across processes
	// and are only for local development.
	RedisURL string

	// ListenAddr is the HTTP listen address.
	ListenAddr string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	secret := os.Getenv("GATEKEEPER_SIGNING_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("GATEKEEPER_SIGNING_SECRET is required")
	}

	cfg := &Config{
		SigningSecret: []byte(secret),
		AdminWallets:  ParseAdminWallets(os.Getenv("GATEKEEPER_ADMIN_WALLETS")),
		ChallengeTTL:  300 * time.Second,
		SessionTTL:    7 * 24 * time.Hour,
		RedisURL:      os.Getenv("REDIS_URL"),
		ListenAddr:    ":9000",
	}

	if v := os.Getenv("GATEKEEPER_CHALLENGE_TTL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid GATEKEEPER_CHALLENGE_TTL %q", v)
		}
		cfg.ChallengeTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("GATEKEEPER_SESSION_TTL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid GATEKEEPER_SESSION_TTL %q", v)
		}
		cfg.SessionTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("GATEKEEPER_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	return cfg, nil
}

// ParseAdminWallets splits a comma-separated allow-list, dropping empty
// entries and surrounding whitespace.
func ParseAdminWallets(raw string) []string {
	if raw == "" {
		return nil
	}
	var wallets []string
	for _, w := range strings.Split(raw, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			wallets = append(wallets, w)
		}
	}
	return wallets
}

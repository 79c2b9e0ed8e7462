// Package config centralizes tunables the way meta.go and config.py did
// for their respective programs: small, flat, read once at startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything a worker needs to connect, authenticate, and
// tune its evaluators. Every field has a sane default so a bare Load()
// against an empty environment still produces a runnable configuration
// pointed at a local dev server.
type Config struct {
	ServerURL string
	Username  string
	Password  string

	PollInterval           time.Duration
	RequestTimeout         time.Duration
	GameStateTimeout       time.Duration
	HallCheckIntervalInGame time.Duration

	CardJSONDir string
	BrainName   string
	TableName   string
	GameFormat  string

	MaxHandSize     int
	HandSoftCap     int
	DeployThreshold int
	ForceGenTarget  int

	BattleFavorableThreshold int
	BattleDangerThreshold    int

	ConsecutiveTimeoutLimit int
}

// Load reads configuration from the environment, falling back to the same
// defaults the reference implementation shipped with.
func Load() Config {
	return Config{
		ServerURL: getenv("GEMP_SERVER_URL", "http://localhost:8082/gemp-swccg-server/"),
		Username:  getenv("GEMP_USERNAME", "rando_cal"),
		Password:  getenv("GEMP_PASSWORD", ""),

		PollInterval:            getenvDuration("GAME_POLL_INTERVAL_SECONDS", 1*time.Second),
		RequestTimeout:          getenvDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		GameStateTimeout:        getenvDuration("GAME_STATE_TIMEOUT_SECONDS", 15*time.Second),
		HallCheckIntervalInGame: getenvDuration("HALL_CHECK_INTERVAL_DURING_GAME_SECONDS", 60*time.Second),

		CardJSONDir: getenv("CARD_JSON_DIR", "./data/cards"),
		BrainName:   getenv("BOT_BRAIN", "static"),
		TableName:   getenv("TABLE_NAME", "Bot Table"),
		GameFormat:  getenv("GAME_FORMAT", "open"),

		MaxHandSize:     getenvInt("MAX_HAND_SIZE", 16),
		HandSoftCap:     getenvInt("HAND_SOFT_CAP", 12),
		DeployThreshold: getenvInt("DEPLOY_THRESHOLD", 6),
		ForceGenTarget:  getenvInt("FORCE_GEN_TARGET", 6),

		BattleFavorableThreshold: getenvInt("BATTLE_FAVORABLE_THRESHOLD", 4),
		BattleDangerThreshold:    getenvInt("BATTLE_DANGER_THRESHOLD", -4),

		ConsecutiveTimeoutLimit: getenvInt("CONSECUTIVE_TIMEOUT_LIMIT", 3),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

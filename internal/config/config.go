package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	Store  string // "memory" | "sqlite"; defaults to memory in dev, sqlite in prod
	DBPath string // e.g. "./data/gatehouse.db"

	// Approval workflow
	ApprovalTTL time.Duration // host answer deadline, default 60s
	HostPrefix  string        // dialing prefix for bare host numbers

	// Photo references
	PhotoBaseURL string // delivery prefix for bare public ids

	// Retention
	RetentionDays      int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	addr := getenvDefault("GATEHOUSE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("GATEHOUSE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("GATEHOUSE_DB_PATH", "./data/gatehouse.db")

	storeBackend := strings.ToLower(os.Getenv("GATEHOUSE_STORE"))
	if storeBackend != "memory" && storeBackend != "sqlite" {
		if env == "prod" {
			storeBackend = "sqlite"
		} else {
			storeBackend = "memory"
		}
	}

	ttlSeconds := getenvInt("GATEHOUSE_APPROVAL_TTL_SECONDS", 60)
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}

	hostPrefix := getenvDefault("GATEHOUSE_HOST_PREFIX", "+91")
	photoBase := getenvDefault("GATEHOUSE_PHOTO_BASE_URL", "https://res.cloudinary.com/demo/image/upload")

	retentionDays := getenvInt("GATEHOUSE_RETENTION_DAYS", 0)
	pruneInterval := getenvInt("GATEHOUSE_PRUNE_INTERVAL_HOURS", 6)

	return Config{
		HTTPAddr: addr,
		Env:      env,
		Store:    storeBackend,
		DBPath:   dbPath,

		ApprovalTTL: time.Duration(ttlSeconds) * time.Second,
		HostPrefix:  hostPrefix,

		PhotoBaseURL: photoBase,

		RetentionDays:      retentionDays,
		PruneIntervalHours: pruneInterval,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr                  string
	DatabaseURL           string
	SnapshotPath          string
	SnapshotEvery         time.Duration
	MarketTickEvery       time.Duration
	SampleEveryTicks      int
	StartingBalanceMicros int64
	BackfillURL           string
	BackfillTTL           time.Duration
	BackfillDays          int
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() APIConfig {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("NOWM_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:                  addr,
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SnapshotPath:          envDefault("NOWM_SNAPSHOT_PATH", "nowmarket-snapshot.json"),
		SnapshotEvery:         envDurationDefault("NOWM_SNAPSHOT_EVERY", time.Minute),
		MarketTickEvery:       envDurationDefault("NOWM_MARKET_TICK_EVERY", time.Second),
		SampleEveryTicks:      envIntDefault("NOWM_SAMPLE_EVERY_TICKS", 5),
		StartingBalanceMicros: envMicrosDefault("NOWM_STARTING_BALANCE", 10_000_000_000),
		BackfillURL:           strings.TrimRight(strings.TrimSpace(os.Getenv("NOWM_BACKFILL_URL")), "/"),
		BackfillTTL:           envDurationDefault("NOWM_BACKFILL_TTL", time.Hour),
		BackfillDays:          envIntDefault("NOWM_BACKFILL_DAYS", 30),
	}
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("NOWM_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envMicrosDefault reads a whole-currency amount and returns micros.
func envMicrosDefault(key string, fallbackMicros int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallbackMicros
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallbackMicros
	}
	return int64(f * 1_000_000)
}

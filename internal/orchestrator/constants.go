package orchestrator

import (
	"os"
	"strconv"
	"time"
)

// Retry tuning for the tag push, overridable from the environment.
var (
	// DefaultRetryCount is the number of push attempts after the first.
	DefaultRetryCount = getRetryCountOrDefault("GITBUMP_RETRY_COUNT", 3)
	// DefaultRetryDelay is the initial delay for exponential backoff.
	DefaultRetryDelay = getDelayOrDefault("GITBUMP_RETRY_DELAY", 1*time.Second)
)

func getRetryCountOrDefault(envVar string, fallback uint64) uint64 {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.ParseUint(env, 10, 64); err == nil {
			return count
		}
	}
	return fallback
}

func getDelayOrDefault(envVar string, fallback time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if delay, err := time.ParseDuration(env); err == nil {
			return delay
		}
	}
	return fallback
}

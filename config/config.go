package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddress   string
	RedisAddress  string
	KeyPrefix     string
	PagesFile     string
	InitialCount  int
	TargetCount   int
	IncrementMin  int
	IncrementMax  int
	BaseInterval  time.Duration
	Jitter        time.Duration
	SubmitDelay   time.Duration
	VisitorBase   int
	VisitorSpread int
	LogLevel      string
	LogPretty     bool
}

func Load() (*Config, error) {
	// Load .env file only if not in k8s environment
	if os.Getenv("KUBERNETES_SERVICE_HOST") == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment, applying defaults for
// anything unset.
func FromEnv() (*Config, error) {
	c := &Config{
		HTTPAddress:  getEnv("HTTP_ADDRESS", ":8080"),
		RedisAddress: getEnv("REDIS_ADDRESS", ""),
		KeyPrefix:    getEnv("WAITLIST_KEY_PREFIX", "waitlistCount"),
		PagesFile:    getEnv("PAGES_FILE", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	var err error
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"INITIAL_COUNT", 247, &c.InitialCount},
		{"TARGET_COUNT", 500, &c.TargetCount},
		{"INCREMENT_MIN", 1, &c.IncrementMin},
		{"INCREMENT_MAX", 4, &c.IncrementMax},
		{"VISITOR_BASE", 487, &c.VisitorBase},
		{"VISITOR_SPREAD", 20, &c.VisitorSpread},
	}
	for _, i := range ints {
		if *i.dest, err = getInt(i.key, i.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"BASE_INTERVAL", 45 * time.Second, &c.BaseInterval},
		{"INTERVAL_JITTER", 30 * time.Second, &c.Jitter},
		{"SUBMIT_DELAY", time.Second, &c.SubmitDelay},
	}
	for _, d := range durations {
		if *d.dest, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if c.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	return c, nil
}

func getEnv(key, def string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return def
}

func getInt(key string, def int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s is not an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s is not a duration: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("environment variable %s is not a boolean: %w", key, err)
	}
	return b, nil
}

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every knob the echo server reads at startup. A set
// environment variable overrides the matching flag, including a flag given
// explicitly on the command line.
type Config struct {
	Port            string
	Env             string
	ResponsesDir    string
	DefaultStatus   int
	DefaultDelay    int // milliseconds
	MaxIncludeDepth int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	responsesDir := flag.String("responses-dir", "responses", "base directory file: locations resolve under")
	defaultStatus := flag.Int("default-status", 200, "status used when no rule matches")
	defaultDelay := flag.Int("default-delay", 0, "delay in milliseconds used when no rule matches")
	maxIncludeDepth := flag.Int("max-include-depth", 16, "maximum recursion depth for file: inclusion")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}
	if v := strings.TrimSpace(os.Getenv("ECHO_RESPONSES_DIR")); v != "" {
		*responsesDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ECHO_DEFAULT_STATUS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*defaultStatus = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ECHO_DEFAULT_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*defaultDelay = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ECHO_MAX_INCLUDE_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*maxIncludeDepth = n
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:            *port,
		Env:             env,
		ResponsesDir:    *responsesDir,
		DefaultStatus:   *defaultStatus,
		DefaultDelay:    *defaultDelay,
		MaxIncludeDepth: *maxIncludeDepth,
	}, nil
}

package config

import (
	"os"
	"strconv"
	"time"
)

const (
	baseURLVar        = "LEDGRIO_BASE_URL"
	appNameVar        = "LEDGRIO_APP_NAME"
	requestTimeoutVar = "LEDGRIO_REQUEST_TIMEOUT"
	logLevelVar       = "LEDGRIO_LOG_LEVEL"
)

type EnvConfig interface {
	GetBaseURL() string
	GetAppName() string
	GetRequestTimeout() time.Duration
	GetLogLevel() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetBaseURL returns the base URL of the Ledgrio API (e.g. "https://api.ledgrio.com/api/v1").
// All request paths are resolved against this URL.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000/api/v1")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Ledgrio Client")
}

// GetRequestTimeout returns the per-request timeout. Requests exceeding it
// fail as network-class errors.
func (EnvVars) GetRequestTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(requestTimeoutVar, "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

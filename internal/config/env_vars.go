package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	baseURLVar     = "BASE_URL"
	logLevelEnvVar = "LOG_LEVEL"
	envEnvVar      = "ENV"

	devEnv = "DEV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "DB Admin")
}

// GetBaseURL returns the externally visible base URL (e.g., "https://admin.example.com")
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelEnvVar, "info"))
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envEnvVar, devEnv))
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == devEnv
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvBool parses envVar with strconv.ParseBool, falling back to defaultValue
// when unset or unparsable.
func GetEnvBool(envVar string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetEnvInt(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvDuration accepts Go duration strings ("15m", "1h30m").
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	appNameVar     = "WINIX_APP_NAME"
	configPathVar  = "WINIX_CONFIG"
	logLevelVar    = "WINIX_LOG_LEVEL"
	httpTimeoutVar = "WINIX_HTTP_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "winix")
}

// GetConfigPath returns the credential store location. Defaults to
// ~/.config/winix/config.json, falling back to a relative path when the home
// directory cannot be resolved.
func (EnvVars) GetConfigPath() string {
	if p := os.Getenv(configPathVar); p != "" {
		return ExpandHome(p)
	}
	return defaultConfigPath()
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "warn")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(httpTimeoutVar, "30s"))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "winix", "config.json")
	}
	return filepath.Join(home, ".config", "winix", "config.json")
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
func ExpandHome(p string) string {
	if p != "~" && (len(p) < 2 || p[:2] != "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

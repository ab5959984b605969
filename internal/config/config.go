package config

import "time"

type Config interface {
	EnvConfig
	CognitoConfig
	WinixConfig
}

type EnvConfig interface {
	GetAppName() string
	GetConfigPath() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cognito
	Winix
}

func New() Config {
	return mainConfig{}
}

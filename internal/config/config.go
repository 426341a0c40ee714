package config

type Config interface {
	EnvConfig
	AuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetDataFolder() string
	GetRedisAddr() string
	GetLoginPath() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
}

func New() Config {
	return mainConfig{}
}

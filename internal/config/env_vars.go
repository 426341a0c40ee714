package config

import "os"

const (
	appNameVar   = "APP_NAME"
	baseURLVar   = "AUTH_BASE_URL"
	folderEnvVar = "FOLDER"
	redisAddrVar = "REDIS_ADDR"
	loginPathVar = "LOGIN_PATH"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Auth Client")
}

// GetBaseURL returns the base URL of the authentication server that owns
// the /auth/login, /auth/refresh and /auth/logout endpoints.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetRedisAddr returns the redis address for token storage; empty selects
// the file-backed store.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetLoginPath() string {
	return GetEnv(loginPathVar, "/login")
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

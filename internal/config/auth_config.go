package config

import "time"

type AuthConfig interface {
	GetRenewalBuffer() time.Duration
	GetValidityCacheTTL() time.Duration
	GetHTTPTimeout() time.Duration
	GetErrorDisplayWindow() time.Duration
	GetAuthPathSuffixes() []string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetRenewalBuffer() time.Duration {
	return 300 * time.Second
}

func (Auth) GetValidityCacheTTL() time.Duration {
	return 30 * time.Second
}

func (Auth) GetHTTPTimeout() time.Duration {
	return 15 * time.Second
}

func (Auth) GetErrorDisplayWindow() time.Duration {
	return 5 * time.Second
}

func (Auth) GetAuthPathSuffixes() []string {
	return []string{"/auth/login", "/auth/refresh", "/auth/logout", "/auth/register"}
}

package config

import "time"

type RateLimitConfig interface {
	GetLoginMaxAttempts() int
	GetLoginCooldown() time.Duration
	GetTOTPMaxAttempts() int
	GetTOTPCooldown() time.Duration
}

type RateLimit struct{}

var _ RateLimitConfig = RateLimit{}

func (RateLimit) GetLoginMaxAttempts() int {
	return GetEnvInt("LOGIN_MAX_ATTEMPTS", 5)
}

func (RateLimit) GetLoginCooldown() time.Duration {
	return GetEnvDuration("LOGIN_COOLDOWN", 15*time.Minute)
}

func (RateLimit) GetTOTPMaxAttempts() int {
	return GetEnvInt("TOTP_MAX_ATTEMPTS", 5)
}

func (RateLimit) GetTOTPCooldown() time.Duration {
	return GetEnvDuration("TOTP_COOLDOWN", time.Minute)
}

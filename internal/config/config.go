package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	BootstrapConfig
	TwoFactorConfig
	StorageConfig
	RateLimitConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetLogLevel() string
	GetEnv() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Bootstrap
	TwoFactor
	Storage
	RateLimit
}

func New() Config {
	return mainConfig{}
}

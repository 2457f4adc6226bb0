package config

type StorageConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetDatabaseURL is a pgx connection string. Empty selects the in-memory user store.
func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetRedisAddr enables attempt limiting when set.
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

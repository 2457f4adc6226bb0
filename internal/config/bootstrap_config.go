package config

type BootstrapConfig interface {
	GetAdminUsername() string
	GetAdminPassword() string
	GetAdmin2FAEnabled() bool
}

// Bootstrap holds the first-run administrator credentials. The account is
// only created by the first successful login with exactly these values.
type Bootstrap struct{}

var _ BootstrapConfig = Bootstrap{}

func (Bootstrap) GetAdminUsername() string {
	return GetEnv("ADMIN_USERNAME", "admin")
}

func (Bootstrap) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

func (Bootstrap) GetAdmin2FAEnabled() bool {
	return GetEnvBool("ADMIN_2FA_ENABLED", true)
}

package config

type TwoFactorConfig interface {
	GetTOTPIssuer() string
}

type TwoFactor struct{}

var _ TwoFactorConfig = TwoFactor{}

// GetTOTPIssuer is the issuer label shown in authenticator apps.
func (TwoFactor) GetTOTPIssuer() string {
	return GetEnv("TOTP_ISSUER", EnvVars{}.GetAppName())
}

package session

import "github.com/jrsteele09/go-db-admin/users"

// Flags is the 2FA state carried inside a session token. The edge guard makes
// every routing decision from Flags alone.
type Flags struct {
	UserID                string `json:"userId"`
	Username              string `json:"username"`
	Is2FAEnabled          bool   `json:"is2FAEnabled"`
	HasSetup2FA           bool   `json:"hasSetup2FA"`
	Is2FAVerified         bool   `json:"is2FAVerified"`
	NeedsVerification     bool   `json:"needsVerification"`
	Secret2FAHasValue     bool   `json:"secret2FAHasValue"`
	TempSecret2FAHasValue bool   `json:"tempSecret2FAHasValue"`
}

// FlagsFromStatus is the only place NeedsVerification is derived.
func FlagsFromStatus(s users.Status) Flags {
	return Flags{
		UserID:                s.UserID,
		Username:              s.Username,
		Is2FAEnabled:          s.Is2FAEnabled,
		HasSetup2FA:           s.HasSetup2FA,
		Is2FAVerified:         s.Is2FAVerified,
		NeedsVerification:     s.Is2FAEnabled && s.HasSetup2FA && !s.Is2FAVerified,
		Secret2FAHasValue:     s.Secret2FA != "",
		TempSecret2FAHasValue: s.TempSecret2FA != "",
	}
}

// Complete reports whether the holder may reach protected routes.
func (f Flags) Complete() bool {
	if !f.Is2FAEnabled {
		return true
	}
	return f.HasSetup2FA && f.Is2FAVerified && !f.NeedsVerification
}

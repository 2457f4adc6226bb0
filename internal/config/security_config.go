package config

import (
	"net/netip"
	"strings"
	"time"
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetLegacyTokensEnabled() bool
	GetTrustedProxies() TrustedProxies
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret is the HMAC key for auth-token. Empty means the server
// generates an ephemeral one (DEV only).
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Security) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", time.Hour)
}

// GetLegacyTokensEnabled controls the unsigned auth-token fallback. A legacy
// token is a bare user ID, so only enable it while migrating old sessions.
func (Security) GetLegacyTokensEnabled() bool {
	return GetEnvBool("LEGACY_TOKENS_ENABLED", false)
}

// TrustedProxies are the peers whose X-Forwarded-For header is believed.
type TrustedProxies []netip.Prefix

func (p TrustedProxies) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies reads a comma separated list of CIDRs or bare IPs.
// Unparsable entries are skipped.
func ParseTrustedProxies(list string) TrustedProxies {
	var proxies TrustedProxies
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(p); err == nil {
			proxies = append(proxies, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(p); err == nil {
			addr = addr.Unmap()
			proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return proxies
}

// GetTrustedProxies reads TRUSTED_PROXIES. Empty means X-Forwarded-For is ignored.
func (Security) GetTrustedProxies() TrustedProxies {
	return ParseTrustedProxies(GetEnv("TRUSTED_PROXIES", ""))
}

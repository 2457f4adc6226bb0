package config_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/jrsteele09/go-db-admin/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("LEGACY_TOKENS_ENABLED", "")
	t.Setenv("TRUSTED_PROXIES", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDev())
	require.Equal(t, time.Hour, c.GetSessionTTL())
	require.False(t, c.GetLegacyTokensEnabled())
	require.Empty(t, c.GetTrustedProxies())
	require.Equal(t, "admin", c.GetAdminUsername())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "prod")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LEGACY_TOKENS_ENABLED", "true")
	t.Setenv("TOTP_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_COOLDOWN", "not-a-duration")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.False(t, c.IsDev())
	require.Equal(t, 15*time.Minute, c.GetSessionTTL())
	require.True(t, c.GetLegacyTokensEnabled())
	require.Equal(t, 3, c.GetTOTPMaxAttempts())
	require.Equal(t, 15*time.Minute, c.GetLoginCooldown())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("BASE_URL", "https://admin.example.com/")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com")

	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://admin.example.com"))
	require.False(t, origins.IsAllowedOrigin(""))
	require.Equal(t, "https://a.example.com, https://admin.example.com, https://b.example.com", origins.String())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7 ,garbage,,::1")

	proxies := config.New().GetTrustedProxies()
	require.Len(t, proxies, 3)
	require.True(t, proxies.Contains(netip.MustParseAddr("10.20.30.40")))
	require.True(t, proxies.Contains(netip.MustParseAddr("192.168.1.7")))
	require.True(t, proxies.Contains(netip.MustParseAddr("::ffff:10.0.0.1")))
	require.True(t, proxies.Contains(netip.MustParseAddr("::1")))
	require.False(t, proxies.Contains(netip.MustParseAddr("192.168.1.8")))
	require.False(t, proxies.Contains(netip.MustParseAddr("203.0.113.9")))
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-db-admin/auth"
	"github.com/jrsteele09/go-db-admin/internal/config"
	"github.com/jrsteele09/go-db-admin/ratelimit"
	"github.com/jrsteele09/go-db-admin/server"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/jrsteele09/go-db-admin/twofactor"
	"github.com/jrsteele09/go-db-admin/users"
	fakeuserrepo "github.com/jrsteele09/go-db-admin/users/repofake"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret       = "0123456789abcdef0123456789abcdef"
	testUserID       = "user-1"
	testUsername     = "alice"
	testUserPassword = "Password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	now      time.Time
	repo     *fakeuserrepo.FakeUserRepo
	provider *twofactor.TOTPProvider
	codec    *session.Codec
	server   *server.Server
	cookies  map[string]*http.Cookie

	loginLimiter auth.AttemptLimiter
}

type fixtureOption func(*testFixture)

func withLoginLimiter(l auth.AttemptLimiter) fixtureOption {
	return func(f *testFixture) { f.loginLimiter = l }
}

type apiResult struct {
	Success  bool            `json:"success"`
	NextStep string          `json:"nextStep"`
	Error    string          `json:"error"`
	Data     json.RawMessage `json:"data"`
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, options ...fixtureOption) *testFixture {
	t.Helper()

	f := &testFixture{
		now:     time.Now(),
		repo:    fakeuserrepo.NewFakeUserRepo(),
		cookies: map[string]*http.Cookie{},
	}
	for _, option := range options {
		option(f)
	}
	nowFunc := func() time.Time { return f.now }
	f.provider = twofactor.NewTOTPProvider("DB Admin", twofactor.WithNowTime(nowFunc))

	login, err := auth.NewLoginStrategy(f.repo, users.BcryptHasher{Cost: bcrypt.MinCost}, f.loginLimiter, auth.BootstrapAdmin{})
	require.NoError(t, err)
	setup, err := auth.NewSetup2FAStrategy(f.repo, f.provider)
	require.NoError(t, err)
	verify, err := auth.NewVerify2FAStrategy(f.repo, f.provider, nil, auth.WithNowTime(nowFunc))
	require.NoError(t, err)
	manager, err := auth.NewManager(f.repo, login, setup, verify)
	require.NoError(t, err)

	f.codec, err = session.NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	c := config.New()
	f.server, err = server.New(c, server.Deps{
		Store:   f.repo,
		Manager: manager,
		Codec:   f.codec,
		Guard:   server.NewGuard(c, f.codec, f.repo),
	})
	require.NoError(t, err)
	return f
}

// createTestUser stores a user with testUserPassword
func (f *testFixture) createTestUser(t *testing.T, u users.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testUserPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u.ID = testUserID
	u.Username = testUsername
	u.PasswordHash = string(hash)
	u.IsActive = true
	f.repo.Put(u)
}

func (f *testFixture) user(t *testing.T) *users.User {
	t.Helper()

	u, err := f.repo.GetByID(context.Background(), testUserID)
	require.NoError(t, err)
	return u
}

// do sends a request carrying the fixture's cookie jar and stores any cookies set.
func (f *testFixture) do(r *http.Request) *httptest.ResponseRecorder {
	for _, c := range f.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, r)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(f.cookies, c.Name)
			continue
		}
		f.cookies[c.Name] = c
	}
	return rec
}

func (f *testFixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *testFixture) postJSON(path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return f.do(r)
}

func (f *testFixture) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(r)
}

func (f *testFixture) sessionFlags(t *testing.T) session.Flags {
	t.Helper()

	c, ok := f.cookies[session.AuthCookieName]
	require.True(t, ok, "no auth-token cookie")
	flags, ok := f.codec.Decode(c.Value)
	require.True(t, ok)
	return flags
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) apiResult {
	t.Helper()

	var res apiResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func (f *testFixture) login(t *testing.T) apiResult {
	t.Helper()

	rec := f.postJSON(server.RouteAPILogin, map[string]string{"username": testUsername, "password": testUserPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeResult(t, rec)
}

// TestEnrollmentFlow walks a fresh 2FA user from login to a protected page over HTTP.
func TestEnrollmentFlow(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{Is2FAEnabled: true})

	res := f.login(t)
	require.True(t, res.Success)
	require.Equal(t, string(auth.StepSetup2FA), res.NextStep)
	require.False(t, f.sessionFlags(t).HasSetup2FA)

	rec := f.get(server.RouteUsers)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteSetup2FA, rec.Header().Get("Location"))

	rec = f.postJSON(server.RouteAPISetup2FA, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var setup auth.SetupData
	require.NoError(t, json.Unmarshal(decodeResult(t, rec).Data, &setup))
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, f.cookies, session.TempMarkerCookieName)
	require.True(t, f.sessionFlags(t).TempSecret2FAHasValue)
	require.False(t, f.user(t).HasSetup2FA)

	code, err := totp.GenerateCode(setup.Secret, f.now)
	require.NoError(t, err)
	rec = f.postJSON(server.RouteAPIVerify2FA, map[string]string{"code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, string(auth.StepComplete), decodeResult(t, rec).NextStep)
	require.NotContains(t, f.cookies, session.TempMarkerCookieName)

	flags := f.sessionFlags(t)
	require.True(t, flags.HasSetup2FA)
	require.True(t, flags.Is2FAVerified)
	require.False(t, flags.NeedsVerification)

	rec = f.get(server.RouteUsers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Signed in as alice")
}

// TestLogin_TwoFactorDisabled tests that a user without 2FA lands on the dashboard directly.
func TestLogin_TwoFactorDisabled(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})

	res := f.login(t)
	require.Equal(t, string(auth.StepComplete), res.NextStep)

	rec := f.get("/")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.get(server.RouteVerify2FA)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogin_Failures(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})

	rec := f.postJSON(server.RouteAPILogin, map[string]string{"username": testUsername, "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid credentials", decodeResult(t, rec).Error)
	require.NotContains(t, f.cookies, session.AuthCookieName)

	r := httptest.NewRequest(http.MethodPost, server.RouteAPILogin, strings.NewReader("{"))
	r.Header.Set("Content-Type", "application/json")
	rec = f.do(r)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_FormPost(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{Is2FAEnabled: true, HasSetup2FA: true, Secret2FA: "JBSWY3DPEHPK3PXP"})

	rec := f.postForm(server.RouteAPILogin, url.Values{"username": {testUsername}, "password": {"wrong"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), server.RouteLogin+"?error="))

	rec = f.postForm(server.RouteAPILogin, url.Values{"username": {testUsername}, "password": {testUserPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteVerify2FA, rec.Header().Get("Location"))

	rec = f.get(server.RouteVerify2FA)
	require.Equal(t, http.StatusOK, rec.Code)
}

// TestLogin_ResetsVerification tests that a verified flag left by an earlier
// session does not let a new login skip the code.
func TestLogin_ResetsVerification(t *testing.T) {
	f := setupTestFixture(t)
	e, err := f.provider.Generate(testUsername)
	require.NoError(t, err)
	f.createTestUser(t, users.User{Is2FAEnabled: true, HasSetup2FA: true, Is2FAVerified: true, Secret2FA: e.Secret})

	res := f.login(t)
	require.Equal(t, string(auth.StepVerify2FA), res.NextStep)
	require.False(t, f.user(t).Is2FAVerified)
	require.True(t, f.sessionFlags(t).NeedsVerification)

	rec := f.get(server.RouteConnections)
	require.Equal(t, server.RouteVerify2FA, rec.Header().Get("Location"))

	code, err := totp.GenerateCode(e.Secret, f.now)
	require.NoError(t, err)
	rec = f.postForm(server.RouteAPIVerify2FA, url.Values{"code": {code}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	require.Equal(t, http.StatusOK, f.get(server.RouteConnections).Code)
}

func TestVerify2FA_InvalidCode(t *testing.T) {
	f := setupTestFixture(t)
	e, err := f.provider.Generate(testUsername)
	require.NoError(t, err)
	f.createTestUser(t, users.User{Is2FAEnabled: true, HasSetup2FA: true, Secret2FA: e.Secret})
	f.login(t)

	rec := f.postJSON(server.RouteAPIVerify2FA, map[string]string{"code": "000000x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid verification code", decodeResult(t, rec).Error)

	r := httptest.NewRequest(http.MethodPost, server.RouteAPIVerify2FA, strings.NewReader(url.Values{"code": {"1"}}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("HX-Request", "true")
	rec = f.do(r)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("HX-Redirect"), server.RouteVerify2FA+"?error="))
}

func TestEndpoints_RequireSession(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{server.RouteAPISetup2FA, server.RouteAPIVerify2FA} {
		rec := f.postJSON(path, map[string]string{"code": "123456"})
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	require.Equal(t, http.StatusUnauthorized, f.get(server.RouteAPICheckStatus).Code)
}

func TestSetup2FA_AlreadySetUp(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{Is2FAEnabled: true, HasSetup2FA: true, Secret2FA: "JBSWY3DPEHPK3PXP"})
	f.login(t)

	rec := f.postJSON(server.RouteAPISetup2FA, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// set up but unverified without an enrollment artifact stays on the setup
	// page, which hands over to verification
	rec = f.get(server.RouteSetup2FA)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteVerify2FA, rec.Header().Get("Location"))
}

func TestSetupPage_RendersQRCode(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{Is2FAEnabled: true})
	f.login(t)

	rec := f.get(server.RouteSetup2FA)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "data:image/png;base64,")
	require.Contains(t, body, f.user(t).TempSecret2FA)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCheck2FAStatus(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{Is2FAEnabled: true})
	f.login(t)

	rec := f.get(server.RouteAPICheckStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, string(auth.StepSetup2FA), res.NextStep)

	var data struct {
		Status      session.Flags `json:"status"`
		InitialStep string        `json:"initialStep"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &data))
	require.Equal(t, testUserID, data.Status.UserID)
	require.True(t, data.Status.Is2FAEnabled)
	require.Equal(t, string(auth.StepSetup2FA), data.InitialStep)
}

// TestCheck2FAStatus_DoesNotShareVerification tests that a password-only
// session stays gated after the same user verifies in another browser.
func TestCheck2FAStatus_DoesNotShareVerification(t *testing.T) {
	f := setupTestFixture(t)
	e, err := f.provider.Generate(testUsername)
	require.NoError(t, err)
	f.createTestUser(t, users.User{Is2FAEnabled: true, HasSetup2FA: true, Secret2FA: e.Secret})

	res := f.login(t)
	require.Equal(t, string(auth.StepVerify2FA), res.NextStep)
	passwordOnly := f.cookies

	f.cookies = map[string]*http.Cookie{}
	f.login(t)
	code, err := totp.GenerateCode(e.Secret, f.now)
	require.NoError(t, err)
	rec := f.postJSON(server.RouteAPIVerify2FA, map[string]string{"code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, f.user(t).Is2FAVerified)
	require.Equal(t, http.StatusOK, f.get(server.RouteUsers).Code)

	f.cookies = passwordOnly
	rec = f.get(server.RouteAPICheckStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, string(auth.StepVerify2FA), decodeResult(t, rec).NextStep)

	flags := f.sessionFlags(t)
	require.False(t, flags.Is2FAVerified)
	require.True(t, flags.NeedsVerification)

	rec = f.get(server.RouteUsers)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteVerify2FA, rec.Header().Get("Location"))
}

// TestAdminUpdate_DoesNotShareVerification tests that re-minting your own
// session after an admin change keeps the verification the token carried.
func TestAdminUpdate_DoesNotShareVerification(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.login(t)

	// verified by another session while 2FA was off for this one
	u := f.user(t)
	u.HasSetup2FA = true
	u.Secret2FA = "JBSWY3DPEHPK3PXP"
	u.Is2FAVerified = true
	f.repo.Put(*u)

	rec := f.postJSON("/api/users/"+testUserID+"/2fa", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	flags := f.sessionFlags(t)
	require.True(t, flags.Is2FAEnabled)
	require.False(t, flags.Is2FAVerified)
	require.Equal(t, server.RouteVerify2FA, f.get(server.RouteUsers).Header().Get("Location"))
}

func newRedisLoginLimiter(t *testing.T, maxAttempts int) (*ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return ratelimit.New(rdb, ratelimit.Config{MaxAttempts: maxAttempts, Cooldown: time.Minute}), mr
}

func loginFrom(f *testFixture, forwardedFor, password string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(map[string]string{"username": testUsername, "password": password})
	r := httptest.NewRequest(http.MethodPost, server.RouteAPILogin, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Forwarded-For", forwardedFor)
	return f.do(r)
}

func TestLogin_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	limiter, mr := newRedisLoginLimiter(t, 3)
	f := setupTestFixture(t, withLoginLimiter(limiter))
	f.createTestUser(t, users.User{})

	limited := 0
	for i := 0; i < 20; i++ {
		rec := loginFrom(f, fmt.Sprintf("198.51.100.%d", i), "WrongPassword1")
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	require.Equal(t, 17, limited)

	// httptest requests come from 192.0.2.1; the header was not believed
	require.True(t, mr.Exists("dbadmin:att:login:addr:192.0.2.1"))
	require.False(t, mr.Exists("dbadmin:att:login:addr:198.51.100.0"))

	rec := loginFrom(f, "198.51.100.99", testUserPassword)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLogin_TrustedProxyForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "192.0.2.0/24, 10.0.0.0/8")
	limiter, mr := newRedisLoginLimiter(t, 3)
	f := setupTestFixture(t, withLoginLimiter(limiter))
	f.createTestUser(t, users.User{})

	// the left-most hop is client supplied; the right-most untrusted hop is what the proxy saw
	rec := loginFrom(f, "1.2.3.4, 203.0.113.7, 10.1.2.3", "WrongPassword1")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.True(t, mr.Exists("dbadmin:att:login:addr:203.0.113.7"))
	require.False(t, mr.Exists("dbadmin:att:login:addr:1.2.3.4"))
	require.False(t, mr.Exists("dbadmin:att:login:addr:192.0.2.1"))
	require.True(t, mr.Exists("dbadmin:att:login:user:alice"))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.login(t)
	require.NoError(t, f.repo.MarkVerified(context.Background(), testUserID, f.now))

	rec := f.postJSON(server.RouteAPILogout, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, f.cookies, session.AuthCookieName)
	require.False(t, f.user(t).Is2FAVerified)

	rec = f.get("/")
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
}

func TestLogoutPage_RequiresPost(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.login(t)

	rec := f.get(server.RouteAuthLogout)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="/auth/logout"`)
	require.Contains(t, f.cookies, session.AuthCookieName)
	require.Equal(t, http.StatusOK, f.get(server.RouteUsers).Code)

	rec = f.postForm(server.RouteAuthLogout, url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	require.NotContains(t, f.cookies, session.AuthCookieName)
}

func TestAdminTwoFactorEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.repo.Put(users.User{ID: "user-2", Username: "bob", IsActive: true, Is2FAEnabled: true, HasSetup2FA: true, Secret2FA: "S"})

	path := "/api/users/user-2/2fa"
	require.Equal(t, http.StatusUnauthorized, f.postJSON(path, map[string]bool{"enabled": false}).Code)

	f.login(t)

	rec := f.postJSON(path, map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bob, err := f.repo.GetByID(context.Background(), "user-2")
	require.NoError(t, err)
	require.False(t, bob.Is2FAEnabled)

	r := httptest.NewRequest(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, f.do(r).Code)
	bob, err = f.repo.GetByID(context.Background(), "user-2")
	require.NoError(t, err)
	require.False(t, bob.HasSetup2FA)
	require.Empty(t, bob.Secret2FA)

	require.Equal(t, http.StatusBadRequest, f.postJSON(path, map[string]string{}).Code)
	require.Equal(t, http.StatusNotFound, f.postJSON("/api/users/nobody/2fa", map[string]bool{"enabled": true}).Code)

	// turning 2FA on for yourself takes effect on your own session immediately
	rec = f.postJSON("/api/users/"+testUserID+"/2fa", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.sessionFlags(t).Is2FAEnabled)
	require.Equal(t, server.RouteSetup2FA, f.get("/").Header().Get("Location"))
}

func TestHealthAndStatic(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get(server.RouteAPIHealth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.get("/static/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	require.Equal(t, http.StatusOK, f.get(server.RouteLogin).Code)
}

func TestLegacyTokenIsReissued(t *testing.T) {
	t.Setenv("LEGACY_TOKENS_ENABLED", "true")
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.cookies[session.AuthCookieName] = &http.Cookie{Name: session.AuthCookieName, Value: testUserID}

	rec := f.get(server.RouteScreens)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, session.IsSignedFormat(f.cookies[session.AuthCookieName].Value))
	require.Equal(t, testUserID, f.sessionFlags(t).UserID)
}

func TestLegacyTokenRejectedByDefault(t *testing.T) {
	t.Setenv("LEGACY_TOKENS_ENABLED", "")
	f := setupTestFixture(t)
	f.createTestUser(t, users.User{})
	f.cookies[session.AuthCookieName] = &http.Cookie{Name: session.AuthCookieName, Value: testUserID}

	rec := f.get(server.RouteScreens)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	require.NotContains(t, f.cookies, session.AuthCookieName)
}

func TestCors(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://ops.example.com")
	f := setupTestFixture(t)

	r := httptest.NewRequest(http.MethodOptions, server.RouteAPILogin, nil)
	r.Header.Set("Origin", "https://ops.example.com")
	rec := f.do(r)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "HX-Request")

	r = httptest.NewRequest(http.MethodOptions, server.RouteAPILogin, nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = f.do(r)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

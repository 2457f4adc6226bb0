package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-db-admin/auth"
	"github.com/jrsteele09/go-db-admin/internal/config"
	"github.com/jrsteele09/go-db-admin/ratelimit"
	"github.com/jrsteele09/go-db-admin/server"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/jrsteele09/go-db-admin/twofactor"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/jrsteele09/go-db-admin/users/pgstore"
	fakeuserrepo "github.com/jrsteele09/go-db-admin/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	c := config.New()
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	loginLimiter, totpLimiter, closeLimiters, err := openLimiters(ctx, c)
	if err != nil {
		return err
	}
	defer closeLimiters()

	secret, err := sessionSecret(c)
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(secret, c.GetSessionTTL())
	if err != nil {
		return err
	}

	manager, err := newManager(c, store, loginLimiter, totpLimiter)
	if err != nil {
		return err
	}

	handler, err := server.New(c, server.Deps{
		Store:   store,
		Manager: manager,
		Codec:   codec,
		Guard:   server.NewGuard(c, codec, store),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func newManager(c config.Config, store users.StatusStore, loginLimiter, totpLimiter auth.AttemptLimiter) (*auth.Manager, error) {
	if pw := c.GetAdminPassword(); pw != "" {
		if err := users.ValidatePasswordStrength(pw); err != nil {
			if !c.IsDev() {
				return nil, fmt.Errorf("ADMIN_PASSWORD: %w", err)
			}
			log.Warn().Err(err).Msg("Weak bootstrap admin password")
		}
	}
	login, err := auth.NewLoginStrategy(store, users.BcryptHasher{}, loginLimiter, auth.BootstrapAdmin{
		Username:         c.GetAdminUsername(),
		Password:         c.GetAdminPassword(),
		TwoFactorEnabled: c.GetAdmin2FAEnabled(),
	})
	if err != nil {
		return nil, err
	}
	provider := twofactor.NewTOTPProvider(c.GetTOTPIssuer())
	setup, err := auth.NewSetup2FAStrategy(store, provider)
	if err != nil {
		return nil, err
	}
	verify, err := auth.NewVerify2FAStrategy(store, provider, totpLimiter)
	if err != nil {
		return nil, err
	}
	return auth.NewManager(store, login, setup, verify)
}

// openStore uses PostgreSQL when DATABASE_URL is set and an in-memory store otherwise.
func openStore(ctx context.Context, c config.Config) (users.StatusStore, func(), error) {
	url := c.GetDatabaseURL()
	if url == "" {
		if !c.IsDev() {
			return nil, nil, errors.New("DATABASE_URL is required outside DEV")
		}
		log.Warn().Msg("DATABASE_URL not set, using in-memory user store")
		return fakeuserrepo.NewFakeUserRepo(), func() {}, nil
	}

	pool, err := pgstore.Connect(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	store := pgstore.New(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info().Msg("Connected to PostgreSQL")
	return store, pool.Close, nil
}

// openLimiters returns Redis-backed limiters when REDIS_ADDR is set; otherwise
// attempts are not throttled.
func openLimiters(ctx context.Context, c config.Config) (login, totp auth.AttemptLimiter, closeFn func(), err error) {
	addr := c.GetRedisAddr()
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, login and 2FA attempts are not rate limited")
		return auth.NoopLimiter{}, auth.NoopLimiter{}, func() {}, nil
	}

	client, err := ratelimit.Connect(ctx, addr, c.GetRedisPassword())
	if err != nil {
		return nil, nil, nil, err
	}
	login = ratelimit.New(client, ratelimit.Config{MaxAttempts: c.GetLoginMaxAttempts(), Cooldown: c.GetLoginCooldown()})
	totp = ratelimit.New(client, ratelimit.Config{MaxAttempts: c.GetTOTPMaxAttempts(), Cooldown: c.GetTOTPCooldown()})
	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return login, totp, func() { _ = client.Close() }, nil
}

// sessionSecret falls back to a random per-process secret in DEV, which
// invalidates every session on restart.
func sessionSecret(c config.Config) (string, error) {
	if s := c.GetSessionSecret(); s != "" {
		return s, nil
	}
	if !c.IsDev() {
		return "", errors.New("SESSION_SECRET is required outside DEV")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	log.Warn().Msg("SESSION_SECRET not set, using an ephemeral secret")
	return hex.EncodeToString(b), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

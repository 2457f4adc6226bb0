package auth

import "context"

// AttemptLimiter throttles repeated attempts for a key.
type AttemptLimiter interface {
	// Attempt counts one attempt for key and reports whether it is within the
	// limit. Counting and checking happen in one step, so parallel attempts
	// cannot all slip under the limit.
	Attempt(ctx context.Context, key string) (bool, error)

	// Reset forgets all attempts for key
	Reset(ctx context.Context, key string) error
}

// NoopLimiter never limits.
type NoopLimiter struct{}

var _ AttemptLimiter = NoopLimiter{}

func (NoopLimiter) Attempt(context.Context, string) (bool, error) { return true, nil }
func (NoopLimiter) Reset(context.Context, string) error           { return nil }

// loginUserKey limits guesses against one account whatever their origin.
func loginUserKey(username string) string {
	return "login:user:" + username
}

// loginAddrKey limits guesses from one client across accounts.
func loginAddrKey(remoteAddr string) string {
	return "login:addr:" + remoteAddr
}

func totpLimiterKey(userID string) string {
	return "totp:" + userID
}

package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

type claims struct {
	Flags
	jwt.RegisteredClaims
}

// Codec encodes Flags into signed, expiring session tokens and decodes them back.
type Codec struct {
	signer  Signer
	ttl     time.Duration
	nowTime func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithNowFunc sets the clock used for iat, exp and expiry checks (primarily for testing).
func WithNowFunc(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

func NewCodec(secret string, ttl time.Duration, options ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("[session NewCodec] secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("[session NewCodec] ttl must be positive")
	}
	c := &Codec{
		signer:  NewHMACSigner(secret),
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// TTL is the lifetime of an encoded token.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs flags. For a fixed clock the output is deterministic.
func (c *Codec) Encode(flags Flags) (string, error) {
	now := c.nowTime().Truncate(time.Second)
	return c.signer.Sign(claims{
		Flags: flags,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   flags.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
}

// Decode verifies algorithm, signature and expiry. Any failure, including
// garbage input, yields (Flags{}, false).
func (c *Codec) Decode(token string) (flags Flags, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			flags, ok = Flags{}, false
		}
	}()

	if token == "" {
		return Flags{}, false
	}
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowTime),
	)
	if err != nil || !parsed.Valid || cl.UserID == "" {
		return Flags{}, false
	}
	return cl.Flags, true
}

// IsSignedFormat reports whether token has the shape of a JWT. It does not
// verify anything; tokens that fail it are treated as legacy raw tokens.
func IsSignedFormat(token string) bool {
	_, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}

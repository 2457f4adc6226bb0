package twofactor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	qrCodeSize    = 200
	defaultPeriod = 30
	defaultSkew   = 1
)

// Enrollment is a freshly generated TOTP secret together with its provisioning artifacts.
type Enrollment struct {
	Secret string // base32 secret
	URL    string // otpauth:// provisioning URI
	QRCode string // data:image/png;base64 QR code of URL
}

// Provider generates and validates one-time codes.
type Provider interface {
	Generate(accountName string) (*Enrollment, error)
	Validate(code, secret string) bool
}

// TOTPProvider is an RFC 6238 Provider (30s period, six SHA1 digits, one step of skew).
type TOTPProvider struct {
	issuer  string
	nowTime func() time.Time
}

var _ Provider = (*TOTPProvider)(nil)

// TOTPOption configures a TOTPProvider.
type TOTPOption func(*TOTPProvider)

// WithNowTime sets the clock used for validation (primarily for testing).
func WithNowTime(nowFunc func() time.Time) TOTPOption {
	return func(p *TOTPProvider) {
		p.nowTime = nowFunc
	}
}

func NewTOTPProvider(issuer string, options ...TOTPOption) *TOTPProvider {
	p := &TOTPProvider{
		issuer:  issuer,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *TOTPProvider) Generate(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: accountName,
		Period:      defaultPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("[TOTPProvider Generate] totp.Generate: %w", err)
	}

	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("[TOTPProvider Generate] key.Image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("[TOTPProvider Generate] png.Encode: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Validate reports whether code is valid for secret. Malformed input is simply invalid.
func (p *TOTPProvider) Validate(code, secret string) bool {
	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, p.nowTime(), totp.ValidateOpts{
		Period:    defaultPeriod,
		Skew:      defaultSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

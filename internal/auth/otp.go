package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	// DefaultOTPTTL is how long an issued login code stays valid.
	DefaultOTPTTL = 5 * time.Minute
	otpDigits     = 6
	otpKeyPrefix  = "otp:login:"
)

var otpSpace = big.NewInt(1_000_000)

// OTPStore issues and checks one-time login codes keyed by email.
type OTPStore struct {
	cache Cache
	ttl   time.Duration
}

func NewOTPStore(cache Cache, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPStore{cache: cache, ttl: ttl}
}

// Issue generates a fresh code for email, replacing any earlier one.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())
	if err := s.cache.Set(ctx, otpKey(email), code, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify reports whether code is the live code for email. A matching code
// stays valid until it expires or is replaced.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, ok, err := s.cache.Get(ctx, otpKey(email))
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}
	if !ok {
		return false, nil
	}
	code = strings.TrimSpace(code)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/metrics"
	"github.com/techmaa/portal/internal/notify"
	"github.com/techmaa/portal/internal/store"
	"github.com/techmaa/portal/types"
)

const otpSubject = "Your Techmaa Portal Login OTP"

// LoginResult is a successful login: the session token and the account.
type LoginResult struct {
	Token string
	User  types.User
}

// AuthService covers password and one-time-code logins.
type AuthService struct {
	users    UserRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenService
	otp      *auth.OTPStore
	notifier notify.Notifier
}

func NewAuthService(users UserRepository, hasher auth.PasswordHasher, tokens *auth.TokenService, otp *auth.OTPStore, notifier notify.Notifier) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		otp:      otp,
		notifier: notifier,
	}
}

// Login authenticates by email when one is supplied, otherwise by phone.
func (s *AuthService) Login(ctx context.Context, email, phone, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return LoginResult{}, apperr.InvalidCredentials("email or phone is required")
	}

	var (
		user types.User
		err  error
	)
	if email != "" {
		user, err = s.users.GetActiveByEmail(ctx, email)
	} else {
		user, err = s.users.GetActiveByPhone(ctx, phone)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			countLogin(metrics.MethodPassword, metrics.OutcomeNotFound)
			return LoginResult{}, apperr.NotFound("no account found for the given credentials")
		}
		countLogin(metrics.MethodPassword, metrics.OutcomeError)
		return LoginResult{}, apperr.Internal("failed to load account", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		countLogin(metrics.MethodPassword, metrics.OutcomeInvalidCredentials)
		return LoginResult{}, apperr.InvalidCredentials("invalid credentials")
	}
	return s.issue(metrics.MethodPassword, user)
}

// RequestOTP issues a login code for an active account and sends it by
// email. A new request replaces any earlier code.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.activeByEmail(ctx, email); err != nil {
		return err
	}

	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return apperr.Internal("failed to issue login code", err)
	}
	metrics.OTPIssued.Inc()

	body := fmt.Sprintf("Your one-time login code is %s. It expires in 5 minutes.", code)
	if err := s.notifier.Send(ctx, email, otpSubject, body); err != nil {
		return apperr.Internal("failed to send login code", err)
	}
	return nil
}

// VerifyOTP logs an account in with a code from RequestOTP. The code stays
// valid until it expires or is replaced.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (LoginResult, error) {
	email = normalizeEmail(email)
	user, err := s.activeByEmail(ctx, email)
	if err != nil {
		countLogin(metrics.MethodOTP, outcomeOf(err))
		return LoginResult{}, err
	}

	ok, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		countLogin(metrics.MethodOTP, metrics.OutcomeError)
		return LoginResult{}, apperr.Internal("failed to check login code", err)
	}
	if !ok {
		countLogin(metrics.MethodOTP, metrics.OutcomeInvalidCredentials)
		return LoginResult{}, apperr.InvalidCredentials("invalid or expired code")
	}
	return s.issue(metrics.MethodOTP, user)
}

func (s *AuthService) activeByEmail(ctx context.Context, email string) (types.User, error) {
	if email == "" {
		return types.User{}, apperr.Invalid("email is required", map[string]string{"email": "required"})
	}
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("no account found for the given email")
		}
		return types.User{}, apperr.Internal("failed to load account", err)
	}
	return user, nil
}

func (s *AuthService) issue(method string, user types.User) (LoginResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		countLogin(method, metrics.OutcomeError)
		return LoginResult{}, apperr.Internal("failed to create token", err)
	}
	countLogin(method, metrics.OutcomeSuccess)
	return LoginResult{Token: token, User: user}, nil
}

func countLogin(method, outcome string) {
	metrics.LoginAttempts.WithLabelValues(method, outcome).Inc()
}

func outcomeOf(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return metrics.OutcomeNotFound
	case apperr.KindInvalidCredentials:
		return metrics.OutcomeInvalidCredentials
	default:
		return metrics.OutcomeError
	}
}

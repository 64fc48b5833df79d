package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhq/task-manager-api/internal/api/metrics"
	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/auth/password"
	"github.com/taskhq/task-manager-api/internal/auth/token"
	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

// LoginThrottle abstracts the failed-attempt limiter (Redis).
type LoginThrottle interface {
	TooMany(ctx context.Context, principal string) (bool, error)
	RecordFailure(ctx context.Context, principal string) error
	Reset(ctx context.Context, principal string) error
}

// AuthService implements registration, login, and token refresh.
type AuthService struct {
	repo     ports.UserRepository
	policy   password.Policy
	hasher   *password.Hasher
	codec    *token.Codec
	throttle LoginThrottle // nil disables throttling
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	policy password.Policy,
	hasher *password.Hasher,
	codec *token.Codec,
	throttle LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		policy:   policy,
		hasher:   hasher,
		codec:    codec,
		throttle: throttle,
		log:      log,
	}
}

// Register creates a self-service account. The role is always user: letting
// the caller pick a role would make the admin ownership override
// self-assignable.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.createAccount(ctx, input.Username, input.Password, input.Email, auth.RoleUser)
}

// CreateUser creates an account with an explicit role. The HTTP surface
// admin-gates this path; the service still validates the role itself.
func (s *AuthService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	role := auth.Role(input.Role)
	if input.Role == "" {
		role = auth.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}
	return s.createAccount(ctx, input.Username, input.Password, input.Email, role)
}

// createAccount evaluates the secret against the strength policy before any
// hash is computed; all violations are reported at once.
func (s *AuthService) createAccount(ctx context.Context, username, secret, email string, role auth.Role) (*domain.User, error) {
	if username == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if violations := s.policy.Evaluate(secret); len(violations) > 0 {
		return nil, &auth.SecretError{Kind: auth.SecretPolicyViolation, Violations: violations}
	}

	start := time.Now()
	hash, err := s.hasher.Hash(secret)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// An unknown principal and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, secret string) (*ports.TokenPair, *domain.User, error) {
	if usernameOrEmail == "" || secret == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.TooMany(ctx, usernameOrEmail)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		} else if blocked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return nil, nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	start := time.Now()
	ok, err := s.hasher.Verify(secret, user.PasswordHash)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		if s.throttle != nil {
			if thErr := s.throttle.RecordFailure(ctx, usernameOrEmail); thErr != nil {
				s.log.Warn().Err(thErr).Msg("failed to record login failure")
			}
		}
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if thErr := s.throttle.Reset(ctx, usernameOrEmail); thErr != nil {
			s.log.Warn().Err(thErr).Msg("failed to reset login throttle")
		}
	}

	pair, err := s.issuePair(user.Identity())
	if err != nil {
		return nil, nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Msg("login succeeded")
	return pair, user, nil
}

// Refresh validates a refresh token and issues a fresh pair. The account is
// re-read so deleted accounts and role changes take effect at rotation time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != token.KindRefresh {
		return nil, &auth.AuthnError{Kind: auth.AuthnWrongTokenType, Message: "not a refresh token"}
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issuePair(user.Identity())
}

func (s *AuthService) issuePair(ident auth.Identity) (*ports.TokenPair, error) {
	access, err := s.codec.Issue(ident, token.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(ident, token.KindRefresh)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"accounts-be/internal/database"
	"accounts-be/internal/entities"
	"accounts-be/internal/jwt"
	"accounts-be/internal/models"
	"accounts-be/internal/password"
	"accounts-be/internal/repository"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// LockedError is returned by Login while the account key is locked out.
// It matches ErrTooManyAttempts with errors.Is.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrTooManyAttempts, e.RetryAfter)
}

func (e *LockedError) Unwrap() error { return ErrTooManyAttempts }

// LoginGuard throttles repeated failed logins. Implemented by guard.LoginGuard.
type LoginGuard interface {
	Check(ctx context.Context, key string) (time.Duration, error)
	RecordFailure(ctx context.Context, key string) (time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Identify(ctx context.Context, token string) (*entities.User, error)
}

type authService struct {
	db         *sql.DB
	users      repository.Factory
	hasher     password.Hasher
	jwtService *jwt.JWTService
	guard      LoginGuard
	logger     *slog.Logger

	// dummyHash is verified when the email is unknown so both login
	// failures cost the same.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service. guard may be nil to disable lockout.
func NewAuthService(
	db *sql.DB,
	users repository.Factory,
	hasher password.Hasher,
	jwtService *jwt.JWTService,
	guard LoginGuard,
	logger *slog.Logger,
) AuthService {
	return &authService{
		db:         db,
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
		guard:      guard,
		logger:     logger,
	}
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	var user *entities.User
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		repo := s.users(tx)

		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return ErrDuplicateEmail
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}

		hashed, err := s.hasher.Hash(req.Password)
		if err != nil {
			return err
		}

		user, err = repo.Create(ctx, name, email, hashed)
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrDuplicateEmail
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, password.ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return &models.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// Login verifies credentials and returns a bearer token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	email := NormalizeEmail(req.Email)

	if s.guard != nil {
		wait, err := s.guard.Check(ctx, email)
		if err != nil {
			s.logger.WarnContext(ctx, "login guard unavailable", "error", err)
		} else if wait > 0 {
			return nil, &LockedError{RetryAfter: wait}
		}
	}

	var user *entities.User
	err := database.WithConn(ctx, s.db, func(ctx context.Context, conn database.DBTX) error {
		u, err := s.users(conn).FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(req.Password, s.dummy())
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !s.hasher.Verify(req.Password, u.PasswordHash) {
			return ErrInvalidCredentials
		}
		user = u
		return nil
	})
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, s.loginFailed(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, email); err != nil {
			s.logger.WarnContext(ctx, "login guard reset failed", "error", err)
		}
	}

	token, err := s.jwtService.GenerateToken(user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   models.TokenTypeBearer,
		Name:        user.Name,
	}, nil
}

func (s *authService) loginFailed(ctx context.Context, email string) error {
	s.logger.WarnContext(ctx, "login failed", "email", email)
	if s.guard == nil {
		return ErrInvalidCredentials
	}

	lock, err := s.guard.RecordFailure(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "login guard unavailable", "error", err)
		return ErrInvalidCredentials
	}
	if lock > 0 {
		s.logger.WarnContext(ctx, "login locked", "email", email, "lockout", lock)
	}
	return ErrInvalidCredentials
}

// Identify resolves a bearer token to the stored user. The token's own
// name claim is not trusted; the user is re-read by subject.
func (s *authService) Identify(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var user *entities.User
	err = database.WithConn(ctx, s.db, func(ctx context.Context, conn database.DBTX) error {
		var err error
		user, err = s.users(conn).FindByEmail(ctx, claims.Subject)
		return err
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		s.logger.WarnContext(ctx, "token subject not found", "subject", claims.Subject)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to identify user: %w", err)
	}

	return user, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

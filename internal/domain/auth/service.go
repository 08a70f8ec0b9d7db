package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
	"registrar/internal/domain/filter"
	"registrar/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// Service provides authentication. Writes go through the unit-of-work; the
// acting user of login and refresh is the user being authenticated.
type Service struct {
	users      domain.Reader[*User]
	tokens     domain.Reader[*RefreshToken]
	units      domain.UnitOfWorkFactory
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(
	users domain.Reader[*User],
	tokens domain.Reader[*RefreshToken],
	units domain.UnitOfWorkFactory,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		units:      units,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
	}
}

// JWT exposes the token validator for the auth middleware.
func (s *Service) JWT() *JWTService {
	return s.jwtService
}

// Register creates a user. Only admins reach it over HTTP; the seeder calls
// it as the system actor.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(hash), req.Role)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsBy(ctx, "email", user.Email, id.Nil())
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate(UserEntity, "email", user.Email)
	}

	if _, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Insert(user) }); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, creds Credentials, client ClientInfo) (*TokenPair, *User, error) {
	user, err := s.users.FindBy(ctx, "email", strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now()
	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		u := s.units.New()
		u.Update(user)
		if _, err := u.Commit(ctx, user.ID); err != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", err)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin(now)
	tokens, refresh, err := s.issue(user, client)
	if err != nil {
		return nil, nil, err
	}

	u := s.units.New()
	u.Update(user)
	u.Insert(refresh)
	if _, err := u.Commit(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return tokens, user, nil
}

// Refresh rotates a refresh token: the presented one is removed and a new
// pair is issued in the same commit.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	old, err := s.tokens.FindBy(ctx, "token_hash", hashToken(refreshToken))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	now := s.now()
	if !old.IsValid(now) {
		return nil, apperror.NewUnauthorized("refresh token expired")
	}

	user, err := s.users.GetByID(ctx, old.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	tokens, refresh, err := s.issue(user, client)
	if err != nil {
		return nil, err
	}

	u := s.units.New()
	u.Delete(old)
	u.Insert(refresh)
	if _, err := u.Commit(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return tokens, nil
}

// Logout removes every refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID id.ID) (int, error) {
	res, err := s.tokens.List(ctx, domain.ListFilter{
		AdvancedFilters: []filter.Item{{Field: "user_id", Operator: filter.Equal, Value: userID}},
		Limit:           domain.MaxLimit,
	})
	if err != nil {
		return 0, fmt.Errorf("list refresh tokens: %w", err)
	}
	if len(res.Items) == 0 {
		return 0, nil
	}

	stats, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) {
		for _, t := range res.Items {
			u.Delete(t)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("logout: %w", err)
	}
	return stats.Removed, nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	caller := appctx.GetUser(ctx)
	if caller == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return s.users.GetByID(ctx, caller.UserID)
}

// issue builds a token pair and the refresh row to persist.
func (s *Service) issue(user *User, client ClientInfo) (*TokenPair, *RefreshToken, error) {
	raw, err := generateRandomToken(32)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now().UTC()
	refresh := &RefreshToken{
		BaseEntity: entity.NewBaseEntity(),
		UserID:     user.ID,
		TokenHash:  hashToken(raw),
		ExpiresAt:  now.Add(s.config.RefreshTokenExpiry),
		IssuedAt:   now,
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
	}

	access, expiresAt, err := s.jwtService.GenerateAccessToken(user, refresh.ID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, refresh, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func generateRandomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

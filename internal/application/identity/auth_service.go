package identity

import (
	"context"
	"errors"
	"time"

	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/infrastructure/auth"
	"github.com/freightcore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	config     config.JWTConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	cfg config.JWTConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a user and returns an access token. Unknown users,
// wrong passwords and locked accounts all answer INVALID_CREDENTIALS.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("username", input.Username))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if !user.CanLogin(now) {
		s.logger.Warn("Login attempt for locked or deactivated account",
			zap.String("username", user.Username),
			zap.String("status", string(user.Status)))
		return nil, shared.ErrInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockoutDuration, now)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", user.Username),
				zap.Int("attempts", user.FailedAttempts))
		}
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.Principal(), user.Username)
	if err != nil {
		s.logger.Error("Failed to issue access token", zap.Error(err))
		return nil, err
	}

	user.RecordLoginSuccess(now)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserInfo(user),
	}, nil
}

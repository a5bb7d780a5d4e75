package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/auth"
	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/domain"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// AdminToken is a signed operator token.
type AdminToken struct {
	Token     string
	ExpiresAt time.Time
	Role      domain.AdminRole
}

// AuthService logs the configured operator in.
type AuthService struct {
	tokens       *auth.TokenManager
	username     string
	passwordHash string
	logger       *zap.Logger
}

// NewAuthService builds the service. Login is refused while no password hash is configured.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tokens:       tokens,
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		logger:       logger,
	}
}

// Login checks the operator credentials and issues an ADMIN token.
func (s *AuthService) Login(_ context.Context, username, password string) (*AdminToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	if s.passwordHash == "" {
		return nil, apperrors.NewUnauthorized("admin login disabled")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always run bcrypt so an unknown username costs the same as a wrong password.
	pwErr := auth.ComparePassword(s.passwordHash, password)
	if !userOK || pwErr != nil {
		s.logger.Warn("admin login rejected", zap.String("username", username))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(username, domain.AdminRoleAdmin)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("admin login", zap.String("username", username))
	return &AdminToken{Token: token, ExpiresAt: exp, Role: domain.AdminRoleAdmin}, nil
}

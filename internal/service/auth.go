package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/auth"
	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	apperrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
	"github.com/royaltydesk/royaltydesk-server/internal/id"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// AuthService handles account setup, login and refresh-token sessions.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(st *store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// SetupRequest creates the first (admin) account.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=128"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a fresh token pair and the account it belongs to.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // Access token lifetime in seconds
}

// NeedsSetup reports whether no account exists yet.
func (s *AuthService) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count == 0, nil
}

// Setup creates the first account and grants it admin. Fails once any account
// exists; later accounts go through an admin flow instead.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, apperrors.ErrAlreadyConfigured
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if err == store.ErrAlreadyExists {
			return nil, apperrors.ErrAlreadyConfigured
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Initial admin account created", "user_id", user.ID)
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password return the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidCredentials("invalid email or password")
	}

	if err := s.store.TouchLastLogin(ctx, user.ID, time.Now()); err != nil && s.logger != nil {
		// Bookkeeping only; never blocks a login.
		s.logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token. The presented token's session is deleted
// and a new pair is issued; a stolen token is only good once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized("missing refresh token")
	}

	hash := auth.HashRefreshToken(refreshToken)

	session, err := s.store.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired() {
		if delErr := s.store.DeleteSession(ctx, session.ID); delErr != nil && s.logger != nil {
			s.logger.Warn("Failed to delete expired session", "session_id", session.ID, "error", delErr)
		}
		return nil, apperrors.ErrTokenExpired
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout deletes every session of the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("User logged out", "user_id", userID)
	}
	return nil
}

// CurrentUser loads the account behind verified token claims.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// VerifyAccessToken verifies a PASETO access token and loads its user.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("account no longer exists")
	}

	return user, claims, nil
}

// CleanupExpiredSessions removes sessions past their expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, time.Now())
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenDuration().Seconds()),
	}, nil
}

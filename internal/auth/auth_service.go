package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/Wakkzz12/employee-leave-tracker/internal/auth/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
}

type service struct {
	repo   Repository
	cfg    config.AuthConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, cfg config.AuthConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, cfg: cfg, now: time.Now, logger: l}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// emailAllowed accepts only addresses on the configured company domain.
func (s *service) emailAllowed(email string) bool {
	if s.cfg.AllowedEmailDomain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+s.cfg.AllowedEmailDomain)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.log(ctx).Debug("register user", zap.String("email", email))

	if !s.emailAllowed(email) {
		s.log(ctx).Warn("register rejected: email domain", zap.String("email", email))
		return AuthResponse{}, autherrors.ErrEmailDomainNotAllowed
	}
	if req.Password != req.PasswordConfirmation {
		return AuthResponse{}, autherrors.ErrPasswordMismatch
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		s.log(ctx).Warn("register rejected: duplicate email", zap.String("email", email))
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}
	if err != nil && !errors.Is(mapRepositoryError(err), autherrors.ErrUserNotFound) {
		s.log(ctx).Error("lookup user by email failed", zap.Error(err))
		return AuthResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log(ctx).Error("hash password failed", zap.Error(err))
		return AuthResponse{}, err
	}

	role := s.cfg.DefaultUserRole
	if role == "" {
		role = "HEAD"
	}

	user := &User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrEmailAlreadyRegistered) {
			s.log(ctx).Warn("register rejected: duplicate email", zap.String("email", email))
		} else {
			s.log(ctx).Error("create user failed", zap.Error(err))
		}
		return AuthResponse{}, mapped
	}

	s.log(ctx).Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return mapToResponse(user), nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.log(ctx).Debug("login", zap.String("email", email))

	if !s.emailAllowed(email) {
		s.log(ctx).Warn("login rejected: email domain", zap.String("email", email))
		return "", "", AuthResponse{}, autherrors.ErrEmailDomainNotAllowed
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(mapRepositoryError(err), autherrors.ErrUserNotFound) {
			s.log(ctx).Warn("login failed: unknown email", zap.String("email", email))
			return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
		}
		s.log(ctx).Error("lookup user by email failed", zap.Error(err))
		return "", "", AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log(ctx).Warn("login failed: wrong password", zap.String("user_id", user.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(user)
	if err != nil {
		s.log(ctx).Error("sign tokens failed", zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed.WithCause(err)
	}

	s.log(ctx).Info("user logged in", zap.String("user_id", user.ID.String()))
	return access, refresh, mapToResponse(user), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := middleware.ParseToken(refreshToken, s.cfg.JWTSecret, middleware.TokenTypeRefresh)
	if err != nil {
		s.log(ctx).Warn("refresh rejected", zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	// role changes take effect on refresh since the user is reloaded
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrUserNotFound) {
			return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
		}
		s.log(ctx).Error("lookup user failed", zap.Error(err))
		return "", "", AuthResponse{}, err
	}

	access, refresh, err := s.issueTokens(user)
	if err != nil {
		s.log(ctx).Error("sign tokens failed", zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed.WithCause(err)
	}

	return access, refresh, mapToResponse(user), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := mapToResponse(u)
	return &resp, nil
}

func (s *service) issueTokens(user *User) (string, string, error) {
	access, err := s.generateToken(user, middleware.TokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.generateToken(user, middleware.TokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *service) generateToken(user *User, typ string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"typ":     typ,
		"iat":     now.Unix(),
		"exp":     now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func mapToResponse(u *User) AuthResponse {
	return AuthResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/crypt"
	"github.com/nlysenko/datahub-gateway/store"
)

type LoginResponse struct {
	AccessToken  string
	RefreshToken string
	User         *types.User
}

type AuthService interface {
	Login(ctx context.Context, login string, password string) (*LoginResponse, error)
	LoginOAuth(ctx context.Context, user *types.User) (*LoginResponse, error)
	Register(ctx context.Context, req types.RegisterUser) error
	GetCurrentUser(ctx context.Context, accessToken string) (*types.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenPair, error)
}

type AuthServiceImpl struct {
	userStore        store.UserStore
	JwtAccessSecret  string
	JwtRefreshSecret string
}

func NewAuthServiceImpl(userStore store.UserStore, jwtAccessSecret, jwtRefreshSecret string) *AuthServiceImpl {
	return &AuthServiceImpl{
		userStore:        userStore,
		JwtAccessSecret:  jwtAccessSecret,
		JwtRefreshSecret: jwtRefreshSecret,
	}
}

func (s *AuthServiceImpl) GenerateTokenPair(user *types.User) (*types.TokenPair, error) {
	accessClaims := types.JWTClaims{
		Issuer:    "datahub",
		Subject:   user.Login,
		ExpiresAt: time.Now().Add(types.AccessTokenDuration).Unix(),
		IssuedAt:  time.Now().Unix(),
		Type:      "access",
		JTI:       uuid.New().String(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)

	accessToken, err := t.SignedString([]byte(s.JwtAccessSecret))
	if err != nil {
		log.Printf("could not sign JWT token: %v", err)
		return nil, fmt.Errorf("%w: %w", apperr.ErrTokenSignature, err)
	}

	refreshClaims := types.JWTClaims{
		Issuer:    "datahub",
		Subject:   user.Login,
		ExpiresAt: time.Now().Add(types.RefreshTokenDuration).Unix(),
		IssuedAt:  time.Now().Unix(),
		Type:      "refresh",
		JTI:       uuid.New().String(),
	}

	ref := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err := ref.SignedString([]byte(s.JwtRefreshSecret))
	if err != nil {
		log.Printf("could not sign refresh token: %v", err)
		return nil, fmt.Errorf("%w: %w", apperr.ErrTokenSignature, err)
	}

	return &types.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, login string, password string) (*LoginResponse, error) {
	user, err := s.userStore.GetByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUserNotFound, err)
	}

	// OAuth-only accounts never had a password set; surface that instead of
	// a generic credential failure.
	if !user.HasPassword() {
		return nil, apperr.ErrNoPassword
	}

	if !crypt.VerifyPasswordWithSalt(password, user.Password, user.Salt) {
		return nil, apperr.ErrUserNotFound
	}

	return s.sessionFor(user)
}

// LoginOAuth issues a session for an account that already passed the
// handshake; no password is involved.
func (s *AuthServiceImpl) LoginOAuth(ctx context.Context, user *types.User) (*LoginResponse, error) {
	return s.sessionFor(user)
}

func (s *AuthServiceImpl) sessionFor(user *types.User) (*LoginResponse, error) {
	tokenPair, err := s.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, req types.RegisterUser) error {
	var user types.User
	user.Login = req.Login
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Password, user.Salt = crypt.HashPasswordWithSalt(req.Password)

	err := s.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperr.ErrUserAlreadyExists) {
			return apperr.ErrUserAlreadyExists
		}
		return fmt.Errorf("%w: %w", apperr.ErrInternalServer, err)
	}

	return nil
}

func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, accessToken string) (*types.User, error) {
	claims, err := s.ValidateToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByLogin(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUserNotFound, err)
	}

	return user, nil
}

func (s *AuthServiceImpl) ValidateToken(tokenString string) (*types.JWTClaims, error) {
	return s.parseToken(tokenString, s.JwtAccessSecret)
}

func (s *AuthServiceImpl) ValidateRefreshToken(tokenString string) (*types.JWTClaims, error) {
	return s.parseToken(tokenString, s.JwtRefreshSecret)
}

func (s *AuthServiceImpl) parseToken(tokenString, secret string) (*types.JWTClaims, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &types.JWTClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})

	if err != nil || !parsedToken.Valid {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidAuthToken, err)
	}

	return parsedToken.Claims.(*types.JWTClaims), nil
}

func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Type != "refresh" {
		return nil, apperr.ErrInvalidTokenType
	}

	user, err := s.userStore.GetByLogin(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUserNotFound, err)
	}

	return s.GenerateTokenPair(user)
}

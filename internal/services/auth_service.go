package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// Signup and login failures surfaced to users.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const (
	minPasswordLength = 8
	trialPeriod       = 14 * 24 * time.Hour
)

// TokenStore is the slice of the cache used for refresh-token state and
// access-token revocation.
type TokenStore interface {
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SignupRequest carries the fields a new account is created from.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	Plan        string `json:"plan"`
}

// AuthService owns signup, login, logout and JWT token management. Identity
// is carried per request in the bearer token; there is no ambient session.
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, *models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	hasher     PasswordHasher
	tokens     TokenStore
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, tokens TokenStore, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

// Signup creates the account and immediately logs it in. The duplicate check
// happens here, not in the repository, so the error surfaces before any row
// is written.
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.User, *models.TokenResponse, error) {
	if len(req.Password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	plan := req.Plan
	if !models.ValidPlan(plan) {
		plan = models.PlanStarter
	}

	trialEndsAt := time.Now().Add(trialPeriod)
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		CompanyName:  req.CompanyName,
		Plan:         plan,
		Role:         models.RoleOwner,
		Status:       models.UserStatusTrial,
		TrialEndsAt:  &trialEndsAt,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Auto login with the same credentials
	return s.Login(ctx, req.Email, req.Password)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Logout revokes the access token until its natural expiry and deletes the
// refresh-token state, returning the caller to anonymous.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.ValidateToken(ctx, accessToken)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		key := fmt.Sprintf("grantfinder:revoked:%s", claims.TokenID)
		if err := s.tokens.SetString(ctx, key, "revoked", ttl); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}

	if refreshToken != "" {
		hash := s.hashToken(refreshToken)
		if err := s.tokens.Delete(ctx, fmt.Sprintf("grantfinder:refresh_token:%s", hash)); err != nil {
			log.Printf("Failed to delete refresh token: %v", err)
		}
	}
	return nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair. The old
// refresh token is consumed.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	hash := s.hashToken(refreshToken)
	cacheKey := fmt.Sprintf("grantfinder:refresh_token:%s", hash)

	tokenData, err := s.tokens.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, ErrInvalidCredentials
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 2 {
		return nil, ErrInvalidCredentials
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		s.tokens.Delete(ctx, cacheKey)
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.tokens.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete consumed refresh token: %v", err)
	}

	return s.generateTokens(ctx, user)
}

// ValidateToken validates the JWT signature, expiry and revocation state.
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := jwtToken.Claims.(*TokenClaims)
	if !ok || !jwtToken.Valid {
		return nil, errors.New("invalid token claims")
	}

	revoked, err := s.tokens.GetString(ctx, fmt.Sprintf("grantfinder:revoked:%s", claims.TokenID))
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked != "" {
		return nil, errors.New("token revoked")
	}

	return claims, nil
}

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  user.ID.String(),
		Role:    user.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "grantfinder-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"grantfinder-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken, err := s.generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// The persisted session pointer: a later process validates the presented
	// tokens instead of recomputing credentials.
	refreshData := fmt.Sprintf("%s:%d", user.ID.String(), now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("grantfinder:refresh_token:%s", s.hashToken(refreshToken))
	if err := s.tokens.SetString(ctx, cacheKey, refreshData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

func (s *authService) generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

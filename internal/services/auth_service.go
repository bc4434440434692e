package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agroinnova-backend/internal/models"
)

// TokenIssuer is the iss claim of every token
const TokenIssuer = "agroinnova"

func init() {
	// iat is compared against session cut-offs, which need sub-second resolution
	jwt.TimePrecision = time.Microsecond
}

// AuthService handles authentication-related business logic
type AuthService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	blacklist     TokenBlacklist
}

// NewAuthService creates a new auth service. A nil blacklist falls back to memory.
func NewAuthService(jwtSecret string, jwtExpirationSeconds int, blacklist TokenBlacklist) *AuthService {
	if blacklist == nil {
		blacklist = NewInMemoryTokenBlacklist()
	}
	return &AuthService{
		jwtSecret:     jwtSecret,
		jwtExpiration: time.Duration(jwtExpirationSeconds) * time.Second,
		blacklist:     blacklist,
	}
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

// Blacklist exposes the token blacklist for housekeeping
func (s *AuthService) Blacklist() TokenBlacklist {
	return s.blacklist
}

// Expiration returns the lifetime of issued tokens
func (s *AuthService) Expiration() time.Duration {
	return s.jwtExpiration
}

// GenerateToken generates a JWT token for a user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	return s.sign(user.ID, user.Username, string(user.Role))
}

func (s *AuthService) sign(userID int64, username, rol string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:   userID,
		Username: username,
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken checks signature, expiry and issuer without consulting the blacklist
func (s *AuthService) ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token has been revoked: %w", ErrInvalidToken)
	}

	if claims.IssuedAt != nil {
		invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			return nil, err
		}
		if invalidated {
			return nil, fmt.Errorf("user sessions were revoked: %w", ErrInvalidToken)
		}
	}

	return claims, nil
}

// RefreshToken issues a new token for a valid one and revokes the old token
func (s *AuthService) RefreshToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return "", err
	}

	fresh, err := s.sign(claims.UserID, claims.Username, claims.Rol)
	if err != nil {
		return "", fmt.Errorf("failed to sign refreshed token: %w", err)
	}

	if err := s.revoke(ctx, claims); err != nil {
		return "", err
	}
	return fresh, nil
}

// BlacklistToken revokes a token until its natural expiry
func (s *AuthService) BlacklistToken(ctx context.Context, tokenString string) error {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

func (s *AuthService) revoke(ctx context.Context, claims *JWTClaims) error {
	ttl := s.jwtExpiration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, ttl)
}

// RevokeUserSessions rejects every token issued to the user so far
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.blacklist.InvalidateUserTokens(ctx, userID, s.jwtExpiration)
}

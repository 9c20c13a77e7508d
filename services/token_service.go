package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// DefaultAccessTokenTTL is used when no TTL is configured.
const DefaultAccessTokenTTL = time.Hour

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID, username string) (string, error)
	ValidateAccessToken(tokenStr string) (uuid.UUID, error)
	TTL() time.Duration
}

// JWTTokenService implements TokenService with HS256 signed JWTs.
type JWTTokenService struct {
	secretKey []byte
	ttl       time.Duration
}

// NewTokenService creates a JWTTokenService. The secret must not be empty.
func NewTokenService(secret string, ttl time.Duration) (*JWTTokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &JWTTokenService{secretKey: []byte(secret), ttl: ttl}, nil
}

func (s *JWTTokenService) GenerateAccessToken(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"typ":      accessTokenType,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateAccessToken parses tokenStr and returns the user id in its subject.
func (s *JWTTokenService) ValidateAccessToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != accessTokenType {
		return uuid.Nil, fmt.Errorf("invalid token type")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject")
	}
	return userID, nil
}

func (s *JWTTokenService) TTL() time.Duration {
	return s.ttl
}

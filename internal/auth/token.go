package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 182 * 24 * time.Hour
)

type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed claim set: iat, exp, the subject's account name and the token type.
type Claims struct {
	Name string    `json:"name"`
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	UserID       int64  `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IssueTokenPair signs an access and a refresh token for subject, both issued at now.
func IssueTokenPair(subject, secret string, now time.Time) (*TokenPair, error) {
	at, err := GenerateToken(subject, secret, TypeAccess, now, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	rt, err := GenerateToken(subject, secret, TypeRefresh, now, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: at, RefreshToken: rt}, nil
}

func GenerateToken(subject, secret string, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Name: subject,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature, expiry and type.
func ParseToken(tokenStr, secret string, typ TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, typ, claims.Type)
	}
	return claims, nil
}
